package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akashgupta157/tasktracker/internal/ids"
	"github.com/akashgupta157/tasktracker/internal/model"
	"github.com/akashgupta157/tasktracker/internal/order"

	_ "modernc.org/sqlite"
)

// SQLite is the transactional board store. Every structural change runs in
// one transaction: shift the affected position spans, update the moved row,
// then re-read and renormalize the touched containers before commit.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path. The modernc.org
// driver name is "sqlite".
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("open database", err)
	}
	// SQLite allows one writer at a time; a single pooled connection
	// serializes position shifts instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, unavailable("apply pragma", err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS lists (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			position INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_lists_board_position ON lists(board_id, position);`,
		`CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			list_id TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cards_list_position ON cards(list_id, position);`,
		`CREATE TABLE IF NOT EXISTS members (
			board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
			email TEXT NOT NULL,
			invited_at_unixms INTEGER NOT NULL,
			PRIMARY KEY (board_id, email)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return unavailable("migrate schema", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

func (s *SQLite) CreateBoard(ctx context.Context, title string) (*model.Board, error) {
	b := &model.Board{ID: ids.New(), Title: title, CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO boards (id, title, created_at_unixms) VALUES (?, ?, ?)`,
		b.ID, b.Title, b.CreatedAt.UnixMilli())
	if err != nil {
		return nil, unavailable("insert board", err)
	}
	return b, nil
}

func (s *SQLite) Boards(ctx context.Context) ([]model.Board, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at_unixms FROM boards ORDER BY created_at_unixms, id`)
	if err != nil {
		return nil, unavailable("list boards", err)
	}
	defer rows.Close()
	var out []model.Board
	for rows.Next() {
		var b model.Board
		var createdMS int64
		if err := rows.Scan(&b.ID, &b.Title, &createdMS); err != nil {
			return nil, unavailable("scan board", err)
		}
		b.CreatedAt = time.UnixMilli(createdMS).UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list boards", err)
	}
	return out, nil
}

// BoardTree materializes the whole board. Positions are normalized in the
// returned tree but not written back; persisted drift is repaired by the
// renormalization pass inside the next write transaction.
func (s *SQLite) BoardTree(ctx context.Context, boardID string) (*model.BoardTree, error) {
	tree := &model.BoardTree{}
	var createdMS int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at_unixms FROM boards WHERE id = ?`, boardID).
		Scan(&tree.ID, &tree.Title, &createdMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}
	if err != nil {
		return nil, unavailable("read board", err)
	}
	tree.CreatedAt = time.UnixMilli(createdMS).UTC()

	lrows, err := s.db.QueryContext(ctx,
		`SELECT id, board_id, title, position FROM lists WHERE board_id = ? ORDER BY position, id`, boardID)
	if err != nil {
		return nil, unavailable("read lists", err)
	}
	defer lrows.Close()
	byID := make(map[string]*model.ListNode)
	for lrows.Next() {
		node := &model.ListNode{Cards: []*model.Card{}}
		if err := lrows.Scan(&node.ID, &node.BoardID, &node.Title, &node.Position); err != nil {
			return nil, unavailable("scan list", err)
		}
		tree.Lists = append(tree.Lists, node)
		byID[node.ID] = node
	}
	if err := lrows.Err(); err != nil {
		return nil, unavailable("read lists", err)
	}

	crows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.list_id, c.title, c.description, c.position
		 FROM cards c JOIN lists l ON l.id = c.list_id
		 WHERE l.board_id = ? ORDER BY c.list_id, c.position, c.id`, boardID)
	if err != nil {
		return nil, unavailable("read cards", err)
	}
	defer crows.Close()
	for crows.Next() {
		c := &model.Card{}
		if err := crows.Scan(&c.ID, &c.ListID, &c.Title, &c.Description, &c.Position); err != nil {
			return nil, unavailable("scan card", err)
		}
		if node := byID[c.ListID]; node != nil {
			node.Cards = append(node.Cards, c)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, unavailable("read cards", err)
	}

	order.Normalize(tree.Lists)
	for _, node := range tree.Lists {
		order.Normalize(node.Cards)
	}
	return tree, nil
}

func (s *SQLite) DeleteBoard(ctx context.Context, boardID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, boardID)
	if err != nil {
		return unavailable("delete board", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}
	return nil
}

func (s *SQLite) CreateList(ctx context.Context, boardID, title string, at *int) (*model.List, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, unavailable("begin create list", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM boards WHERE id = ?`, boardID).Scan(&exists)
	if err != nil {
		return nil, unavailable("read board", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lists WHERE board_id = ?`, boardID).Scan(&count); err != nil {
		return nil, unavailable("count lists", err)
	}
	pos := count
	if at != nil {
		if *at < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNegativeIndex, *at)
		}
		pos = min(*at, count)
		if _, err := tx.ExecContext(ctx,
			`UPDATE lists SET position = position + 1 WHERE board_id = ? AND position >= ?`,
			boardID, pos); err != nil {
			return nil, unavailable("shift lists", err)
		}
	}
	l := &model.List{ID: ids.New(), BoardID: boardID, Title: title, Position: pos}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lists (id, board_id, title, position) VALUES (?, ?, ?, ?)`,
		l.ID, l.BoardID, l.Title, l.Position); err != nil {
		return nil, unavailable("insert list", err)
	}
	if err := renormalizeLists(ctx, tx, boardID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit create list", err)
	}
	return l, nil
}

func (s *SQLite) RenameList(ctx context.Context, listID, title string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE lists SET title = ? WHERE id = ?`, title, listID)
	if err != nil {
		return unavailable("rename list", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	return nil
}

// MoveList reorders a list within its board inside one transaction.
func (s *SQLite) MoveList(ctx context.Context, listID string, destIndex int) (*model.List, error) {
	if destIndex < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeIndex, destIndex)
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, unavailable("begin move list", err)
	}
	defer tx.Rollback()

	l := &model.List{ID: listID}
	err = tx.QueryRowContext(ctx,
		`SELECT board_id, title, position FROM lists WHERE id = ?`, listID).
		Scan(&l.BoardID, &l.Title, &l.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	if err != nil {
		return nil, unavailable("read list", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lists WHERE board_id = ?`, l.BoardID).Scan(&count); err != nil {
		return nil, unavailable("count lists", err)
	}
	dst := min(destIndex, count-1)
	if dst == l.Position {
		return l, nil // no-op, no write
	}
	if err := shiftSpan(ctx, tx, "lists", "board_id", l.BoardID, l.Position, dst); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `UPDATE lists SET position = ? WHERE id = ?`, dst, listID)
	if err != nil {
		return nil, unavailable("update list position", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: list %s deleted during move", ErrConflict, listID)
	}
	if err := renormalizeLists(ctx, tx, l.BoardID); err != nil {
		return nil, err
	}
	err = tx.QueryRowContext(ctx, `SELECT position FROM lists WHERE id = ?`, listID).Scan(&l.Position)
	if err != nil {
		return nil, unavailable("reread list", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit move list", err)
	}
	return l, nil
}

func (s *SQLite) DeleteList(ctx context.Context, listID string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return unavailable("begin delete list", err)
	}
	defer tx.Rollback()

	var boardID string
	var pos int
	err = tx.QueryRowContext(ctx, `SELECT board_id, position FROM lists WHERE id = ?`, listID).Scan(&boardID, &pos)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	if err != nil {
		return unavailable("read list", err)
	}
	// cascade removes the cards
	if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, listID); err != nil {
		return unavailable("delete list", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE lists SET position = position - 1 WHERE board_id = ? AND position > ?`,
		boardID, pos); err != nil {
		return unavailable("close list gap", err)
	}
	if err := renormalizeLists(ctx, tx, boardID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit delete list", err)
	}
	return nil
}

func (s *SQLite) CreateCard(ctx context.Context, listID, title, description string, at *int) (*model.Card, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, unavailable("begin create card", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lists WHERE id = ?`, listID).Scan(&exists); err != nil {
		return nil, unavailable("read list", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE list_id = ?`, listID).Scan(&count); err != nil {
		return nil, unavailable("count cards", err)
	}
	pos := count
	if at != nil {
		if *at < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNegativeIndex, *at)
		}
		pos = min(*at, count)
		if _, err := tx.ExecContext(ctx,
			`UPDATE cards SET position = position + 1 WHERE list_id = ? AND position >= ?`,
			listID, pos); err != nil {
			return nil, unavailable("shift cards", err)
		}
	}
	c := &model.Card{ID: ids.New(), ListID: listID, Title: title, Description: description, Position: pos}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cards (id, list_id, title, description, position) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.ListID, c.Title, c.Description, c.Position); err != nil {
		return nil, unavailable("insert card", err)
	}
	if err := renormalizeCards(ctx, tx, listID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit create card", err)
	}
	return c, nil
}

func (s *SQLite) UpdateCard(ctx context.Context, cardID, title, description string) (*model.Card, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cards SET title = ?, description = ? WHERE id = ?`, title, description, cardID)
	if err != nil {
		return nil, unavailable("update card", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	return s.card(ctx, cardID)
}

// MoveCard is the server-side Move Orchestrator: the source list comes from
// the persisted row, the whole shift runs in one transaction, and both
// touched lists are renormalized before commit so no reader ever observes a
// duplicate or gapped position.
func (s *SQLite) MoveCard(ctx context.Context, cardID, destListID string, destIndex int) (*model.Card, error) {
	if destIndex < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeIndex, destIndex)
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, unavailable("begin move card", err)
	}
	defer tx.Rollback()

	c := &model.Card{ID: cardID}
	var srcListID string
	var srcPos int
	err = tx.QueryRowContext(ctx,
		`SELECT list_id, title, description, position FROM cards WHERE id = ?`, cardID).
		Scan(&srcListID, &c.Title, &c.Description, &srcPos)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	if err != nil {
		return nil, unavailable("read card", err)
	}
	c.ListID = srcListID
	c.Position = srcPos

	var destExists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lists WHERE id = ?`, destListID).Scan(&destExists); err != nil {
		return nil, unavailable("read destination list", err)
	}
	if destExists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, destListID)
	}
	var destLen int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE list_id = ?`, destListID).Scan(&destLen); err != nil {
		return nil, unavailable("count destination cards", err)
	}

	if srcListID == destListID {
		dst := min(destIndex, destLen-1)
		if dst == srcPos {
			return c, nil // no-op, no write
		}
		if err := shiftSpan(ctx, tx, "cards", "list_id", srcListID, srcPos, dst); err != nil {
			return nil, err
		}
		res, err := tx.ExecContext(ctx, `UPDATE cards SET position = ? WHERE id = ?`, dst, cardID)
		if err != nil {
			return nil, unavailable("update card position", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, fmt.Errorf("%w: card %s deleted during move", ErrConflict, cardID)
		}
		if err := renormalizeCards(ctx, tx, srcListID); err != nil {
			return nil, err
		}
	} else {
		dst := min(destIndex, destLen)
		if _, err := tx.ExecContext(ctx,
			`UPDATE cards SET position = position - 1 WHERE list_id = ? AND position > ?`,
			srcListID, srcPos); err != nil {
			return nil, unavailable("close source gap", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE cards SET position = position + 1 WHERE list_id = ? AND position >= ?`,
			destListID, dst); err != nil {
			return nil, unavailable("shift destination cards", err)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE cards SET list_id = ?, position = ? WHERE id = ?`, destListID, dst, cardID)
		if err != nil {
			return nil, unavailable("reparent card", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, fmt.Errorf("%w: card %s deleted during move", ErrConflict, cardID)
		}
		if err := renormalizeCards(ctx, tx, srcListID); err != nil {
			return nil, err
		}
		if err := renormalizeCards(ctx, tx, destListID); err != nil {
			return nil, err
		}
	}

	err = tx.QueryRowContext(ctx,
		`SELECT list_id, position FROM cards WHERE id = ?`, cardID).Scan(&c.ListID, &c.Position)
	if err != nil {
		return nil, unavailable("reread card", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit move card", err)
	}
	return c, nil
}

func (s *SQLite) DeleteCard(ctx context.Context, cardID string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return unavailable("begin delete card", err)
	}
	defer tx.Rollback()

	var listID string
	var pos int
	err = tx.QueryRowContext(ctx, `SELECT list_id, position FROM cards WHERE id = ?`, cardID).Scan(&listID, &pos)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	if err != nil {
		return unavailable("read card", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, cardID); err != nil {
		return unavailable("delete card", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE cards SET position = position - 1 WHERE list_id = ? AND position > ?`,
		listID, pos); err != nil {
		return unavailable("close card gap", err)
	}
	if err := renormalizeCards(ctx, tx, listID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit delete card", err)
	}
	return nil
}

func (s *SQLite) AddMember(ctx context.Context, boardID, email string) (*model.Member, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM boards WHERE id = ?`, boardID).Scan(&exists); err != nil {
		return nil, unavailable("read board", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}
	m := &model.Member{BoardID: boardID, Email: email, InvitedAt: time.Now().UTC().Truncate(time.Millisecond)}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (board_id, email, invited_at_unixms) VALUES (?, ?, ?)
		 ON CONFLICT (board_id, email) DO UPDATE SET invited_at_unixms = excluded.invited_at_unixms`,
		m.BoardID, m.Email, m.InvitedAt.UnixMilli())
	if err != nil {
		return nil, unavailable("insert member", err)
	}
	return m, nil
}

func (s *SQLite) Members(ctx context.Context, boardID string) ([]model.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT board_id, email, invited_at_unixms FROM members WHERE board_id = ? ORDER BY invited_at_unixms, email`,
		boardID)
	if err != nil {
		return nil, unavailable("list members", err)
	}
	defer rows.Close()
	var out []model.Member
	for rows.Next() {
		var m model.Member
		var invitedMS int64
		if err := rows.Scan(&m.BoardID, &m.Email, &invitedMS); err != nil {
			return nil, unavailable("scan member", err)
		}
		m.InvitedAt = time.UnixMilli(invitedMS).UTC()
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list members", err)
	}
	return out, nil
}

// RestoreBoard replaces the board's lists and cards with the given tree in
// one transaction. Positions are taken from slice order, not from the
// snapshot's stored values.
func (s *SQLite) RestoreBoard(ctx context.Context, tree *model.BoardTree) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return unavailable("begin restore", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE boards SET title = ? WHERE id = ?`, tree.Title, tree.ID)
	if err != nil {
		return unavailable("update board", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrBoardNotFound, tree.ID)
	}
	// cascade removes the cards
	if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE board_id = ?`, tree.ID); err != nil {
		return unavailable("clear lists", err)
	}
	for i, node := range tree.Lists {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lists (id, board_id, title, position) VALUES (?, ?, ?, ?)`,
			node.ID, tree.ID, node.Title, i); err != nil {
			return unavailable("insert list", err)
		}
		for j, c := range node.Cards {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cards (id, list_id, title, description, position) VALUES (?, ?, ?, ?, ?)`,
				c.ID, node.ID, c.Title, c.Description, j); err != nil {
				return unavailable("insert card", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit restore", err)
	}
	return nil
}

func (s *SQLite) card(ctx context.Context, cardID string) (*model.Card, error) {
	c := &model.Card{ID: cardID}
	err := s.db.QueryRowContext(ctx,
		`SELECT list_id, title, description, position FROM cards WHERE id = ?`, cardID).
		Scan(&c.ListID, &c.Title, &c.Description, &c.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	if err != nil {
		return nil, unavailable("read card", err)
	}
	return c, nil
}

// shiftSpan moves the run of siblings between the old and new slot of an
// intra-container move: down one when the item moves toward the front, up
// one when it moves toward the back.
func shiftSpan(ctx context.Context, tx *sql.Tx, table, parentCol, parentID string, src, dst int) error {
	var err error
	if dst < src {
		_, err = tx.ExecContext(ctx,
			`UPDATE `+table+` SET position = position + 1 WHERE `+parentCol+` = ? AND position >= ? AND position < ?`,
			parentID, dst, src)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE `+table+` SET position = position - 1 WHERE `+parentCol+` = ? AND position > ? AND position <= ?`,
			parentID, src, dst)
	}
	if err != nil {
		return unavailable("shift positions", err)
	}
	return nil
}

// renormalizeCards re-fetches a list's cards in stored order and rewrites
// any position that drifted from 0..n-1. Run inside every write transaction
// as the defensive final pass; ties break on id, which sorts by creation
// time for ULIDs.
func renormalizeCards(ctx context.Context, tx *sql.Tx, listID string) error {
	return renormalize(ctx, tx, "cards", "list_id", listID)
}

func renormalizeLists(ctx context.Context, tx *sql.Tx, boardID string) error {
	return renormalize(ctx, tx, "lists", "board_id", boardID)
}

func renormalize(ctx context.Context, tx *sql.Tx, table, parentCol, parentID string) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, position FROM `+table+` WHERE `+parentCol+` = ? ORDER BY position, id`, parentID)
	if err != nil {
		return unavailable("read order", err)
	}
	type row struct {
		id  string
		pos int
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.pos); err != nil {
			rows.Close()
			return unavailable("scan order", err)
		}
		all = append(all, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return unavailable("read order", err)
	}
	for i, r := range all {
		if r.pos == i {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET position = ? WHERE id = ?`, i, r.id); err != nil {
			return unavailable("rewrite position", err)
		}
	}
	return nil
}
