// Package model holds the domain types shared by the optimistic client
// state, the persistence layer, and the HTTP API: boards own ordered lists,
// lists own ordered cards, and ordering is carried entirely by the zero-based
// Position field compared across siblings.
package model

import "time"

// Board is the top-level container. Its lists are ordered by List.Position.
type Board struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// List belongs to exactly one board and owns an ordered set of cards.
type List struct {
	ID       string `json:"id"`
	BoardID  string `json:"boardId"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// Card belongs to exactly one list. ListID changes on a cross-list move.
type Card struct {
	ID          string `json:"id"`
	ListID      string `json:"listId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
}

// Member is a collaborator invited to a board by email. Delivery of the
// invitation itself is delegated to the mail collaborator.
type Member struct {
	BoardID   string    `json:"boardId"`
	Email     string    `json:"email"`
	InvitedAt time.Time `json:"invitedAt"`
}

// GetID implements the ordering item interface.
func (l *List) GetID() string { return l.ID }

// GetPosition implements the ordering item interface.
func (l *List) GetPosition() int { return l.Position }

// SetPosition implements the ordering item interface.
func (l *List) SetPosition(p int) { l.Position = p }

// GetID implements the ordering item interface.
func (c *Card) GetID() string { return c.ID }

// GetPosition implements the ordering item interface.
func (c *Card) GetPosition() int { return c.Position }

// SetPosition implements the ordering item interface.
func (c *Card) SetPosition(p int) { c.Position = p }
