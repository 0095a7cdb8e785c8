package ws

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"livequiz/internal/model"
	"livequiz/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Handler serves GET /ws: one player session per connection
type Handler struct {
	hub        *Hub
	game       *service.GameService
	authSvc    *service.AuthService
	sendBuffer int
	upgrader   websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. allowedOrigins follows the REST
// CORS setting: empty or "*" accepts any origin.
func NewHandler(hub *Hub, game *service.GameService, authSvc *service.AuthService, sendBuffer int, allowedOrigins []string) *Handler {
	return &Handler{
		hub:        hub,
		game:       game,
		authSvc:    authSvc,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker accepts requests without an Origin header, same-host
// origins, and origins on the allowed list
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowAny := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAny = true
		}
		allowed[o] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if allowAny || origin == "" || allowed[origin] {
			return true
		}
		u, err := url.Parse(origin)
		if err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		log.Printf("Rejected WebSocket origin %q", origin)
		return false
	}
}

// ServeHTTP upgrades the request. A valid ?token= resumes an earlier session id.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.New().String()
	if token := r.URL.Query().Get("token"); token != "" {
		resumed, err := h.authSvc.ValidateSessionToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		sessionID = resumed
	}

	token, err := h.authSvc.GenerateSessionToken(sessionID)
	if err != nil {
		log.Printf("Failed to sign session token: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := NewConnection(sessionID, h.sendBuffer)
	if old := h.hub.Register(conn); old != nil {
		log.Printf("Session %s resumed on a new connection, previous connection closed", sessionID)
	}
	h.hub.SendTo(sessionID, model.MsgSession, model.SessionMessage{
		SessionID: sessionID,
		Token:     token,
	})

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		if h.hub.Unregister(conn) {
			h.game.Disconnect(conn.SessionID)
		}
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
		h.dispatch(conn.SessionID, data)
	}
}

func (h *Handler) dispatch(sessionID string, data []byte) {
	in, err := DecodeInbound(data)
	if err != nil {
		log.Printf("Rejected message from %s: %v", sessionID, err)
		h.sendError(sessionID, &model.GameError{Code: model.CodeInvalidJSON, Message: "Invalid message format"})
		return
	}

	switch {
	case in.Join != nil:
		err = h.game.Join(sessionID, in.Join.Nickname)
	case in.Answer != nil:
		err = h.game.Answer(sessionID, in.Answer.QuestionID, in.Answer.Option, in.Answer.ClientTs)
	case in.Ping != nil:
		h.hub.SendTo(sessionID, model.MsgPong, model.PongMessage{
			Nonce:    in.Ping.Nonce,
			ServerTs: time.Now().UnixMilli(),
		})
		return
	}

	var gameErr *model.GameError
	switch {
	case err == nil:
	case errors.As(err, &gameErr):
		h.sendError(sessionID, gameErr)
	default:
		log.Printf("Ignored %s from %s: %v", in.Type, sessionID, err)
	}
}

func (h *Handler) sendError(sessionID string, gameErr *model.GameError) {
	h.hub.SendTo(sessionID, model.MsgError, gameErr.ToMessage())
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

			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
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
