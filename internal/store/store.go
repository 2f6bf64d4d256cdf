// Package store is the server-side source of truth for boards. The SQLite
// implementation applies every move as one transaction so readers never see
// a half-shifted container; the S3 snapshot store keeps whole-board JSON
// documents for export and restore.
package store

import (
	"context"
	"errors"

	"github.com/akashgupta157/tasktracker/internal/model"
)

var (
	// ErrBoardNotFound indicates the board does not exist.
	ErrBoardNotFound = errors.New("board not found")
	// ErrListNotFound indicates the list does not exist.
	ErrListNotFound = errors.New("list not found")
	// ErrCardNotFound indicates the card does not exist.
	ErrCardNotFound = errors.New("card not found")
	// ErrNegativeIndex indicates a negative destination index in a move.
	ErrNegativeIndex = errors.New("negative destination index")
	// ErrConflict indicates a row vanished mid-transaction, e.g. the moved
	// card was deleted concurrently. The transaction is rolled back.
	ErrConflict = errors.New("concurrent modification")
	// ErrUnavailable indicates the underlying storage failed; retryable.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrSnapshotNotFound indicates no snapshot exists for the board.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Store is the durable board store consumed by the HTTP layer.
type Store interface {
	CreateBoard(ctx context.Context, title string) (*model.Board, error)
	Boards(ctx context.Context) ([]model.Board, error)
	// BoardTree returns the board with its lists and cards ordered by
	// position, defensively renormalized.
	BoardTree(ctx context.Context, boardID string) (*model.BoardTree, error)
	DeleteBoard(ctx context.Context, boardID string) error

	// CreateList appends the list, or inserts at *at (clamped) shifting the
	// tail up.
	CreateList(ctx context.Context, boardID, title string, at *int) (*model.List, error)
	RenameList(ctx context.Context, listID, title string) error
	// MoveList reorders a list within its board. The source position comes
	// from persisted state, never from the caller.
	MoveList(ctx context.Context, listID string, destIndex int) (*model.List, error)
	DeleteList(ctx context.Context, listID string) error

	CreateCard(ctx context.Context, listID, title, description string, at *int) (*model.Card, error)
	UpdateCard(ctx context.Context, cardID, title, description string) (*model.Card, error)
	// MoveCard relocates a card within or across lists. destIndex beyond
	// the container length clamps to append; negative is ErrNegativeIndex.
	MoveCard(ctx context.Context, cardID, destListID string, destIndex int) (*model.Card, error)
	DeleteCard(ctx context.Context, cardID string) error

	AddMember(ctx context.Context, boardID, email string) (*model.Member, error)
	Members(ctx context.Context, boardID string) ([]model.Member, error)

	// RestoreBoard replaces a board's lists and cards with the given tree,
	// used when importing a snapshot.
	RestoreBoard(ctx context.Context, tree *model.BoardTree) error

	Close() error
}
