// Package state is the client half of the move protocol: an optimistic
// in-memory board that applies the same reordering algorithm the server
// will run, so the predicted state matches what gets persisted. It keeps a
// last-confirmed snapshot for rollback and a per-container sequence number
// so a slow earlier move's response cannot overwrite a later move.
package state

import (
	"errors"
	"fmt"

	"github.com/akashgupta157/tasktracker/internal/model"
	"github.com/akashgupta157/tasktracker/internal/order"
)

var (
	// ErrNoBoard indicates no board has been loaded.
	ErrNoBoard = errors.New("no board loaded")
	// ErrListNotFound indicates the destination list does not exist.
	ErrListNotFound = errors.New("list not found")
	// ErrCardNotFound indicates the requested card does not exist.
	ErrCardNotFound = errors.New("card not found")
	// ErrNegativeIndex indicates a negative destination index.
	ErrNegativeIndex = errors.New("negative destination index")
	// ErrMoveInFlight indicates the item already has an unconfirmed move.
	ErrMoveInFlight = errors.New("move already in flight")
)

// Move describes the outcome of an optimistic move. NoOp moves carry no
// sequence number and must not be sent to the server.
type Move struct {
	// Seq is the sequence number stamped on every container the move
	// touched. A confirmation for one of those containers is stale when it
	// carries a smaller number.
	Seq uint64
	// Containers lists the ids of the containers whose order changed: one
	// for an intra-container move, two for a cross-container move. The
	// board id stands in for the board-as-container-of-lists.
	Containers []string
	NoOp       bool
}

// BoardState owns one board tree. It is not safe for concurrent use; the
// UI event loop is expected to drive it from a single goroutine.
type BoardState struct {
	tree      *model.BoardTree
	confirmed *model.BoardTree

	seq    uint64
	issued map[string]uint64 // container id -> last issued seq
	// items with a move awaiting server confirmation; re-dragging one of
	// these is refused so optimistic moves cannot compound
	inflight map[string]bool
}

// New returns an empty BoardState.
func New() *BoardState {
	return &BoardState{
		issued:   make(map[string]uint64),
		inflight: make(map[string]bool),
	}
}

// Load replaces the whole state with a server-provided tree. Positions are
// normalized defensively and the tree becomes the confirmed snapshot.
func (s *BoardState) Load(tree *model.BoardTree) {
	order.Normalize(tree.Lists)
	for _, l := range tree.Lists {
		order.Normalize(l.Cards)
	}
	s.tree = tree
	s.confirmed = tree.Clone()
	s.issued = make(map[string]uint64)
	s.inflight = make(map[string]bool)
}

// Tree returns the current (possibly unconfirmed) board tree for rendering.
func (s *BoardState) Tree() *model.BoardTree { return s.tree }

// MoveCard applies a card move optimistically. The source list is resolved
// from the tree, never from the caller, so a stale drag payload cannot
// corrupt positions. Returns a NoOp move when the card is already at the
// requested slot.
func (s *BoardState) MoveCard(cardID, destListID string, destIndex int) (Move, error) {
	if s.tree == nil {
		return Move{}, ErrNoBoard
	}
	if destIndex < 0 {
		return Move{}, fmt.Errorf("%w: %d", ErrNegativeIndex, destIndex)
	}
	if s.inflight[cardID] {
		return Move{}, fmt.Errorf("%w: card %s", ErrMoveInFlight, cardID)
	}
	srcList, card := s.tree.FindCard(cardID)
	if card == nil {
		return Move{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	destList := s.tree.FindList(destListID)
	if destList == nil {
		return Move{}, fmt.Errorf("%w: %s", ErrListNotFound, destListID)
	}

	if srcList.ID == destList.ID {
		srcIdx := order.IndexOf(srcList.Cards, cardID)
		if !order.MoveWithin(srcList.Cards, srcIdx, destIndex) {
			return Move{NoOp: true}, nil
		}
		s.inflight[cardID] = true
		return s.stamp(destList.ID), nil
	}

	srcIdx := order.IndexOf(srcList.Cards, cardID)
	srcList.Cards, destList.Cards = order.MoveAcross(srcList.Cards, srcIdx, destList.Cards, destIndex)
	card.ListID = destList.ID
	s.inflight[cardID] = true
	return s.stamp(srcList.ID, destList.ID), nil
}

// MoveList reorders a list within the board.
func (s *BoardState) MoveList(listID string, destIndex int) (Move, error) {
	if s.tree == nil {
		return Move{}, ErrNoBoard
	}
	if destIndex < 0 {
		return Move{}, fmt.Errorf("%w: %d", ErrNegativeIndex, destIndex)
	}
	if s.inflight[listID] {
		return Move{}, fmt.Errorf("%w: list %s", ErrMoveInFlight, listID)
	}
	srcIdx := order.IndexOf(s.tree.Lists, listID)
	if srcIdx < 0 {
		return Move{}, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	if !order.MoveWithin(s.tree.Lists, srcIdx, destIndex) {
		return Move{NoOp: true}, nil
	}
	s.inflight[listID] = true
	return s.stamp(s.tree.ID), nil
}

// ConfirmCards reconciles the server's canonical card order for one list.
// Confirmations older than the last issued move for that list are discarded
// (reported false) so out-of-order responses cannot roll the UI backwards.
// An accepted confirmation refreshes the rollback snapshot.
func (s *BoardState) ConfirmCards(listID string, seq uint64, canonical []model.Card) bool {
	if s.tree == nil || seq < s.issued[listID] {
		return false
	}
	list := s.tree.FindList(listID)
	if list == nil {
		return false
	}
	list.Cards = list.Cards[:0]
	for i := range canonical {
		c := canonical[i]
		c.ListID = listID
		list.Cards = append(list.Cards, &c)
		delete(s.inflight, c.ID)
	}
	order.Normalize(list.Cards)
	s.confirmed = s.tree.Clone()
	return true
}

// ConfirmLists is ConfirmCards for the board's list order.
func (s *BoardState) ConfirmLists(seq uint64, canonical []model.List) bool {
	if s.tree == nil || seq < s.issued[s.tree.ID] {
		return false
	}
	byID := make(map[string]*model.ListNode, len(s.tree.Lists))
	for _, l := range s.tree.Lists {
		byID[l.ID] = l
	}
	lists := make([]*model.ListNode, 0, len(canonical))
	for i := range canonical {
		c := canonical[i]
		node := byID[c.ID]
		if node == nil {
			node = &model.ListNode{}
		}
		node.List = c
		lists = append(lists, node)
		delete(s.inflight, c.ID)
	}
	s.tree.Lists = lists
	order.Normalize(s.tree.Lists)
	s.confirmed = s.tree.Clone()
	return true
}

// Resolve clears the in-flight guard for an item whose network call has
// completed, whether or not its confirmation was applied.
func (s *BoardState) Resolve(itemID string) {
	delete(s.inflight, itemID)
}

// Rollback reverts to the last confirmed snapshot. Called when the server
// rejects a move; a full revert is preferred over partial repair, which
// risks exactly the position corruption this package exists to prevent.
func (s *BoardState) Rollback() error {
	if s.confirmed == nil {
		return ErrNoBoard
	}
	s.tree = s.confirmed.Clone()
	s.inflight = make(map[string]bool)
	return nil
}

func (s *BoardState) stamp(containers ...string) Move {
	s.seq++
	for _, id := range containers {
		s.issued[id] = s.seq
	}
	return Move{Seq: s.seq, Containers: containers}
}
