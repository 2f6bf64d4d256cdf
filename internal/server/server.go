// Package server exposes the board store over a JSON REST API and
// translates the storage error taxonomy into HTTP status codes.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/akashgupta157/tasktracker/internal/model"
	"github.com/akashgupta157/tasktracker/internal/store"
)

// Snapshotter is the board export/import collaborator.
// *store.SnapshotStore implements it.
type Snapshotter interface {
	Save(ctx context.Context, tree *model.BoardTree) error
	Load(ctx context.Context, boardID string) (*model.BoardTree, error)
}

// Mailer delivers collaborator invitations. Actual delivery is an external
// concern; the default implementation only logs.
type Mailer interface {
	SendInvite(ctx context.Context, email string, board model.Board) error
}

// LogMailer logs invitations instead of sending them.
type LogMailer struct {
	Log *slog.Logger
}

func (m LogMailer) SendInvite(_ context.Context, email string, board model.Board) error {
	m.Log.Info("invite queued", "email", email, "board", board.ID, "title", board.Title)
	return nil
}

// Server wires the store, the optional snapshot store and the mailer
// behind the REST routes.
type Server struct {
	log     *slog.Logger
	store   store.Store
	snaps   Snapshotter
	mail    Mailer
	handler http.Handler
}

// New builds the server and its router. snaps may be nil, in which case the
// snapshot endpoints report 501.
func New(log *slog.Logger, st store.Store, snaps Snapshotter, mail Mailer) *Server {
	s := &Server{log: log, store: st, snaps: snaps, mail: mail}
	if s.mail == nil {
		s.mail = LogMailer{Log: log}
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/boards", s.handleListBoards).Methods("GET")
	r.HandleFunc("/api/boards", s.handleCreateBoard).Methods("POST")
	r.HandleFunc("/api/boards/{id}", s.handleGetBoard).Methods("GET")
	r.HandleFunc("/api/boards/{id}", s.handleDeleteBoard).Methods("DELETE")
	r.HandleFunc("/api/boards/{id}/lists", s.handleCreateList).Methods("POST")
	r.HandleFunc("/api/boards/{id}/members", s.handleInviteMember).Methods("POST")
	r.HandleFunc("/api/boards/{id}/members", s.handleListMembers).Methods("GET")
	r.HandleFunc("/api/boards/{id}/snapshot", s.handleSnapshotBoard).Methods("POST")
	r.HandleFunc("/api/boards/{id}/restore", s.handleRestoreBoard).Methods("POST")
	r.HandleFunc("/api/lists/{id}", s.handleRenameList).Methods("PUT")
	r.HandleFunc("/api/lists/{id}", s.handleDeleteList).Methods("DELETE")
	r.HandleFunc("/api/lists/{id}/move", s.handleMoveList).Methods("PUT")
	r.HandleFunc("/api/lists/{id}/cards", s.handleCreateCard).Methods("POST")
	r.HandleFunc("/api/cards/{id}", s.handleUpdateCard).Methods("PUT")
	r.HandleFunc("/api/cards/{id}", s.handleDeleteCard).Methods("DELETE")
	r.HandleFunc("/api/cards/{id}/move", s.handleMoveCard).Methods("PUT")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = s.requestLog(c.Handler(r))
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.handler }

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start))
	})
}
