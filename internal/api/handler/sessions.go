package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/newthinker/tickertalk/internal/api/response"
	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/session"
)

// SessionsHandler handles session API requests.
type SessionsHandler struct {
	store  *session.Store
	logger *zap.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(store *session.Store, logger *zap.Logger) *SessionsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionsHandler{store: store, logger: logger}
}

// SessionInfo describes a live session.
type SessionInfo struct {
	ID         string    `json:"id"`
	State      string    `json:"state"`
	Messages   int       `json:"messages"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// MessageRequest is the request body for submitting user input.
type MessageRequest struct {
	Input string `json:"input"`
}

// TurnResponse reports what one submitted input produced.
type TurnResponse struct {
	SessionID string                `json:"session_id"`
	Outputs   []Output              `json:"outputs"`
	Error     *response.ErrorDetail `json:"error,omitempty"`
}

func info(sess *session.Session) SessionInfo {
	return SessionInfo{
		ID:         sess.ID(),
		State:      sess.State().String(),
		Messages:   len(sess.Messages()),
		CreatedAt:  sess.CreatedAt(),
		LastActive: sess.LastActive(),
	}
}

// Create starts a new session.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create(r.Context())
	response.JSON(w, http.StatusCreated, info(sess))
}

// Get returns session details.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, info(sess))
}

// Messages returns the session transcript.
func (h *SessionsHandler) Messages(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		response.Fail(w, err)
		return
	}
	msgs := sess.Messages()
	response.JSON(w, http.StatusOK, map[string]any{
		"messages": msgs,
		"count":    len(msgs),
	})
}

// Submit runs one turn. A failed turn still answers 200: the user-facing
// line is in the outputs and the error detail rides alongside.
func (h *SessionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		response.Fail(w, err)
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, core.WrapError(core.ErrBadRequest, err))
		return
	}

	var outputs Outputs
	err = sess.Submit(r.Context(), req.Input, &outputs)
	if errors.Is(err, core.ErrBadRequest) {
		response.Fail(w, err)
		return
	}

	resp := TurnResponse{SessionID: sess.ID(), Outputs: outputs.Items()}
	if err != nil {
		detail := response.Detail(err)
		resp.Error = &detail
		h.logger.Debug("turn returned error",
			zap.String("session", sess.ID()), zap.Error(err))
	}
	response.JSON(w, http.StatusOK, resp)
}

// Delete ends a session and releases its charts.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		response.Fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
