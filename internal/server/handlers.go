package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/akashgupta157/tasktracker/internal/model"
	"github.com/akashgupta157/tasktracker/internal/store"
)

type createBoardRequest struct {
	Title string `json:"title"`
}

type createListRequest struct {
	Title    string `json:"title"`
	Position *int   `json:"position,omitempty"`
}

type renameListRequest struct {
	Title string `json:"title"`
}

type moveListRequest struct {
	Position int `json:"position"`
}

type createCardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    *int   `json:"position,omitempty"`
}

type updateCardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type moveCardRequest struct {
	ListID   string `json:"listId"`
	Position int    `json:"position"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Message: msg})
}

// writeError translates the storage error taxonomy: not-found 404, invalid
// input 400, concurrent deletion 409, storage failure 503, the rest 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrBoardNotFound),
		errors.Is(err, store.ErrListNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, store.ErrSnapshotNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNegativeIndex):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		s.log.Error("storage failure", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "storage unavailable, retry later")
	default:
		s.log.Error("internal error", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.store.Boards(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if boards == nil {
		boards = []model.Board{}
	}
	writeJSON(w, http.StatusOK, boards)
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req createBoardRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeMessage(w, http.StatusBadRequest, "title is required")
		return
	}
	board, err := s.store.CreateBoard(r.Context(), req.Title)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, board)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	tree, err := s.store.BoardTree(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBoard(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeMessage(w, http.StatusBadRequest, "title is required")
		return
	}
	list, err := s.store.CreateList(r.Context(), mux.Vars(r)["id"], req.Title, req.Position)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (s *Server) handleRenameList(w http.ResponseWriter, r *http.Request) {
	var req renameListRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeMessage(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := s.store.RenameList(r.Context(), mux.Vars(r)["id"], req.Title); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveList(w http.ResponseWriter, r *http.Request) {
	var req moveListRequest
	if !decode(w, r, &req) {
		return
	}
	list, err := s.store.MoveList(r.Context(), mux.Vars(r)["id"], req.Position)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteList(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeMessage(w, http.StatusBadRequest, "title is required")
		return
	}
	card, err := s.store.CreateCard(r.Context(), mux.Vars(r)["id"], req.Title, req.Description, req.Position)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var req updateCardRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeMessage(w, http.StatusBadRequest, "title is required")
		return
	}
	card, err := s.store.UpdateCard(r.Context(), mux.Vars(r)["id"], req.Title, req.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// handleMoveCard is the network boundary of the Move Orchestrator. Only the
// destination comes from the client; the source list is resolved from
// persisted state inside the store.
func (s *Server) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	var req moveCardRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ListID == "" {
		writeMessage(w, http.StatusBadRequest, "listId is required")
		return
	}
	card, err := s.store.MoveCard(r.Context(), mux.Vars(r)["id"], req.ListID, req.Position)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCard(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInviteMember(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !decode(w, r, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeMessage(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	boardID := mux.Vars(r)["id"]
	tree, err := s.store.BoardTree(r.Context(), boardID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	member, err := s.store.AddMember(r.Context(), boardID, email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.mail.SendInvite(r.Context(), email, tree.Board); err != nil {
		// membership is already persisted; delivery failure is not fatal
		s.log.Warn("invite delivery failed", "email", email, "error", err)
	}
	writeJSON(w, http.StatusCreated, member)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["id"]
	if _, err := s.store.BoardTree(r.Context(), boardID); err != nil {
		s.writeError(w, err)
		return
	}
	members, err := s.store.Members(r.Context(), boardID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleSnapshotBoard(w http.ResponseWriter, r *http.Request) {
	if s.snaps == nil {
		writeMessage(w, http.StatusNotImplemented, "no snapshot store configured")
		return
	}
	tree, err := s.store.BoardTree(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.snaps.Save(r.Context(), tree); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreBoard(w http.ResponseWriter, r *http.Request) {
	if s.snaps == nil {
		writeMessage(w, http.StatusNotImplemented, "no snapshot store configured")
		return
	}
	boardID := mux.Vars(r)["id"]
	tree, err := s.snaps.Load(r.Context(), boardID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.RestoreBoard(r.Context(), tree); err != nil {
		s.writeError(w, err)
		return
	}
	restored, err := s.store.BoardTree(r.Context(), boardID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restored)
}
