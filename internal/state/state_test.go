package state

import (
	"testing"

	"github.com/akashgupta157/tasktracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *model.BoardTree {
	tree := &model.BoardTree{Board: model.Board{ID: "board-1", Title: "Sprint"}}
	todo := &model.ListNode{List: model.List{ID: "todo", BoardID: "board-1", Title: "Todo", Position: 0}}
	doing := &model.ListNode{List: model.List{ID: "doing", BoardID: "board-1", Title: "Doing", Position: 1}}
	for i, id := range []string{"a", "b", "c"} {
		todo.Cards = append(todo.Cards, &model.Card{ID: id, ListID: "todo", Position: i})
	}
	for i, id := range []string{"x", "y"} {
		doing.Cards = append(doing.Cards, &model.Card{ID: id, ListID: "doing", Position: i})
	}
	tree.Lists = []*model.ListNode{todo, doing}
	return tree
}

func loaded() *BoardState {
	s := New()
	s.Load(testTree())
	return s
}

func cardOrder(t *testing.T, s *BoardState, listID string) []string {
	t.Helper()
	list := s.Tree().FindList(listID)
	require.NotNil(t, list)
	out := make([]string, len(list.Cards))
	for i, c := range list.Cards {
		require.Equal(t, i, c.Position, "positions must stay contiguous")
		out[i] = c.ID
	}
	return out
}

func TestLoadNormalizesCorruptPositions(t *testing.T) {
	tree := testTree()
	tree.Lists[0].Cards[0].Position = 7
	tree.Lists[0].Cards[1].Position = 7

	s := New()
	s.Load(tree)
	assert.Equal(t, []string{"a", "b", "c"}, cardOrder(t, s, "todo"))
}

func TestMoveCardWithinList(t *testing.T) {
	s := loaded()
	mv, err := s.MoveCard("c", "todo", 0)
	require.NoError(t, err)
	assert.False(t, mv.NoOp)
	assert.Equal(t, []string{"todo"}, mv.Containers)
	assert.Equal(t, []string{"c", "a", "b"}, cardOrder(t, s, "todo"))
}

func TestMoveCardAcrossLists(t *testing.T) {
	s := loaded()
	mv, err := s.MoveCard("a", "doing", 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"todo", "doing"}, mv.Containers)
	assert.Equal(t, []string{"b", "c"}, cardOrder(t, s, "todo"))
	assert.Equal(t, []string{"x", "a", "y"}, cardOrder(t, s, "doing"))

	_, card := s.Tree().FindCard("a")
	require.NotNil(t, card)
	assert.Equal(t, "doing", card.ListID)
}

func TestMoveCardNoOp(t *testing.T) {
	s := loaded()
	mv, err := s.MoveCard("b", "todo", 1)
	require.NoError(t, err)
	assert.True(t, mv.NoOp)
	assert.Zero(t, mv.Seq)
	assert.Equal(t, []string{"a", "b", "c"}, cardOrder(t, s, "todo"))

	// a no-op leaves no in-flight guard behind
	_, err = s.MoveCard("b", "todo", 2)
	assert.NoError(t, err)
}

func TestMoveCardErrors(t *testing.T) {
	s := loaded()

	_, err := s.MoveCard("nope", "todo", 0)
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = s.MoveCard("a", "nope", 0)
	assert.ErrorIs(t, err, ErrListNotFound)

	_, err = s.MoveCard("a", "todo", -1)
	assert.ErrorIs(t, err, ErrNegativeIndex)

	_, err = New().MoveCard("a", "todo", 0)
	assert.ErrorIs(t, err, ErrNoBoard)
}

func TestMoveCardRefusedWhileInFlight(t *testing.T) {
	s := loaded()
	_, err := s.MoveCard("a", "doing", 0)
	require.NoError(t, err)

	_, err = s.MoveCard("a", "todo", 0)
	assert.ErrorIs(t, err, ErrMoveInFlight)

	s.Resolve("a")
	_, err = s.MoveCard("a", "todo", 0)
	assert.NoError(t, err)
}

func TestMoveList(t *testing.T) {
	s := loaded()
	mv, err := s.MoveList("doing", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"board-1"}, mv.Containers)
	assert.Equal(t, "doing", s.Tree().Lists[0].ID)
	assert.Equal(t, 0, s.Tree().Lists[0].Position)
	assert.Equal(t, 1, s.Tree().Lists[1].Position)
}

func TestMoveListOutOfBoundsClamps(t *testing.T) {
	s := loaded()
	mv, err := s.MoveList("todo", 99)
	require.NoError(t, err)
	assert.False(t, mv.NoOp)
	assert.Equal(t, "todo", s.Tree().Lists[1].ID)
}

func TestConfirmCardsAppliesCanonicalOrder(t *testing.T) {
	s := loaded()
	mv, err := s.MoveCard("c", "todo", 0)
	require.NoError(t, err)

	ok := s.ConfirmCards("todo", mv.Seq, []model.Card{
		{ID: "c", Position: 0},
		{ID: "a", Position: 1},
		{ID: "b", Position: 2},
	})
	assert.True(t, ok)
	assert.Equal(t, []string{"c", "a", "b"}, cardOrder(t, s, "todo"))
}

func TestConfirmCardsDiscardsStaleResponse(t *testing.T) {
	s := loaded()
	first, err := s.MoveCard("c", "todo", 0)
	require.NoError(t, err)
	s.Resolve("c")
	second, err := s.MoveCard("a", "todo", 2)
	require.NoError(t, err)
	require.Greater(t, second.Seq, first.Seq)

	// the earlier move's reply arrives after the later move was issued
	stale := s.ConfirmCards("todo", first.Seq, []model.Card{
		{ID: "c", Position: 0}, {ID: "a", Position: 1}, {ID: "b", Position: 2},
	})
	assert.False(t, stale)
	assert.Equal(t, []string{"c", "b", "a"}, cardOrder(t, s, "todo"))
}

func TestRollbackRevertsToConfirmedState(t *testing.T) {
	s := loaded()
	_, err := s.MoveCard("a", "doing", 0)
	require.NoError(t, err)

	require.NoError(t, s.Rollback())
	assert.Equal(t, []string{"a", "b", "c"}, cardOrder(t, s, "todo"))
	assert.Equal(t, []string{"x", "y"}, cardOrder(t, s, "doing"))

	// the guard is cleared, the card can be dragged again
	_, err = s.MoveCard("a", "doing", 0)
	assert.NoError(t, err)
}

func TestRollbackAfterConfirmKeepsConfirmedMove(t *testing.T) {
	s := loaded()
	mv, err := s.MoveCard("c", "todo", 0)
	require.NoError(t, err)
	require.True(t, s.ConfirmCards("todo", mv.Seq, []model.Card{
		{ID: "c", Position: 0}, {ID: "a", Position: 1}, {ID: "b", Position: 2},
	}))

	// a later failed move rolls back to the confirmed order, not the original
	_, err = s.MoveCard("b", "doing", 0)
	require.NoError(t, err)
	require.NoError(t, s.Rollback())
	assert.Equal(t, []string{"c", "a", "b"}, cardOrder(t, s, "todo"))
}

func TestConfirmListsReordersBoard(t *testing.T) {
	s := loaded()
	mv, err := s.MoveList("doing", 0)
	require.NoError(t, err)

	ok := s.ConfirmLists(mv.Seq, []model.List{
		{ID: "doing", BoardID: "board-1", Title: "Doing", Position: 0},
		{ID: "todo", BoardID: "board-1", Title: "Todo", Position: 1},
	})
	assert.True(t, ok)
	assert.Equal(t, "doing", s.Tree().Lists[0].ID)
	// cards stayed attached to their lists through the reorder
	assert.Equal(t, []string{"a", "b", "c"}, cardOrder(t, s, "todo"))
}
