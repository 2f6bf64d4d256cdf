package model

// ListNode is a list together with its cards, ordered by Card.Position.
type ListNode struct {
	List
	Cards []*Card `json:"cards"`
}

// BoardTree is the full materialized board: the shape the API returns and
// the client state operates on.
type BoardTree struct {
	Board
	Lists []*ListNode `json:"lists"`
}

// FindList returns the list with the given id, or nil.
func (t *BoardTree) FindList(listID string) *ListNode {
	for _, l := range t.Lists {
		if l.ID == listID {
			return l
		}
	}
	return nil
}

// FindCard returns the card with the given id along with its owning list,
// or (nil, nil) when absent.
func (t *BoardTree) FindCard(cardID string) (*ListNode, *Card) {
	for _, l := range t.Lists {
		for _, c := range l.Cards {
			if c.ID == cardID {
				return l, c
			}
		}
	}
	return nil, nil
}

// Clone deep-copies the tree. Used by the client state to keep a
// last-confirmed snapshot for rollback.
func (t *BoardTree) Clone() *BoardTree {
	if t == nil {
		return nil
	}
	out := &BoardTree{Board: t.Board}
	out.Lists = make([]*ListNode, len(t.Lists))
	for i, l := range t.Lists {
		node := &ListNode{List: l.List}
		node.Cards = make([]*Card, len(l.Cards))
		for j, c := range l.Cards {
			cc := *c
			node.Cards[j] = &cc
		}
		out.Lists[i] = node
	}
	return out
}
