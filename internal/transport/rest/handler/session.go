package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"chatform/internal/catalog"
	"chatform/internal/engine"
	"chatform/internal/model"
	"chatform/internal/service"
	"chatform/internal/transport/ws"
)

// SessionHandler handles questionnaire conversation endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	cat        *catalog.Catalog
	hub        *ws.Hub
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, cat *catalog.Catalog, hub *ws.Hub) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc, cat: cat, hub: hub}
}

type sessionResponse struct {
	SessionID string              `json:"sessionId"`
	Status    model.SessionStatus `json:"status"`
	Messages  []string            `json:"messages"`
	Answered  int                 `json:"answered"`
	Total     int                 `json:"total"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, greeting, err := h.sessionSvc.Create(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID,
		Status:    sess.Status,
		Messages:  []string{greeting},
		Answered:  0,
		Total:     h.cat.Len(),
	})
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	SessionID       string              `json:"sessionId"`
	Status          model.SessionStatus `json:"status"`
	Kind            engine.ReplyKind    `json:"kind"`
	Messages        []string            `json:"messages"`
	Answered        int                 `json:"answered"`
	Total           int                 `json:"total"`
	PendingRequired int                 `json:"pendingRequired"`
}

// Message handles POST /v1/sessions/{id}/messages
func (h *SessionHandler) Message(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, reply, err := h.sessionSvc.ProcessMessage(r.Context(), id, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	if h.hub != nil {
		ws.PublishReply(h.hub, sess.ID, reply)
	}

	writeJSON(w, http.StatusOK, messageResponse{
		SessionID:       sess.ID,
		Status:          sess.Status,
		Kind:            reply.Kind,
		Messages:        reply.Messages,
		Answered:        reply.Answered,
		Total:           reply.Total,
		PendingRequired: reply.PendingRequired,
	})
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	sess, err := h.sessionSvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// Catalog handles GET /v1/catalog
func (h *SessionHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cat.Questions())
}
