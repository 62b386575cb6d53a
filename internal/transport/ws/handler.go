package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"chatform/internal/engine"
	"chatform/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// One turn may span two Gemini calls; keep headroom over their timeouts
	turnTimeout = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub        *Hub
	sessionSvc *service.SessionService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, sessionSvc *service.SessionService) *Handler {
	return &Handler{
		hub:        hub,
		sessionSvc: sessionSvc,
	}
}

// inboundChat is what a respondent socket sends per turn
type inboundChat struct {
	Message string `json:"message"`
}

// SessionWS handles GET /v1/ws/sessions/{id}
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.sessionSvc.Get(r.Context(), id); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		SessionID: id,
		Send:      make(chan []byte, 256),
		Hub:       h.hub,
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var in inboundChat
		if err := json.Unmarshal(data, &in); err != nil || in.Message == "" {
			h.hub.BroadcastToSession(conn.SessionID, MsgError, map[string]string{"error": "expected {\"message\": \"...\"}"})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		_, reply, err := h.sessionSvc.ProcessMessage(ctx, conn.SessionID, in.Message)
		cancel()
		if err != nil {
			h.hub.BroadcastToSession(conn.SessionID, MsgError, map[string]string{"error": err.Error()})
			continue
		}

		PublishReply(h.hub, conn.SessionID, reply)
	}
}

// PublishReply pushes one turn's outcome to every socket on the session
func PublishReply(hub *Hub, sessionID string, reply engine.TurnReply) {
	for _, msg := range reply.Messages {
		hub.BroadcastToSession(sessionID, MsgAssistantMessage, map[string]string{"content": msg})
	}
	hub.BroadcastToSession(sessionID, MsgProgressUpdate, map[string]int{
		"answered": reply.Answered,
		"total":    reply.Total,
	})
	if reply.Kind == engine.ReplyEnded {
		hub.BroadcastToSession(sessionID, MsgSessionEnded, map[string]string{"sessionId": sessionID})
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
