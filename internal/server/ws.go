package server

import (
	"encoding/json"
	"net/http"
	"path"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"teamboard/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSession adapts one websocket connection to the hub. Writes are
// serialized through the mutex; gorilla connections allow only one
// concurrent writer.
type wsSession struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSession) Send(evt ws.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(evt)
}

// inboundFrame is a client event. team:join and team:leave carry
// team_id; team:message adds content.
type inboundFrame struct {
	Event string `json:"event"`
	Data  struct {
		TeamID  int64  `json:"team_id"`
		Content string `json:"content"`
	} `json:"data"`
}

// registerWS mounts the chat endpoint. The token travels as a query
// parameter since browsers cannot set headers on websocket upgrades;
// a bad token gets the error event and a closed connection, matching
// the REST 401 contract.
func registerWS(router chi.Router, basePath string, gw *ws.Gateway, auth AuthConfig) {
	router.Get(path.Join(basePath, "ws"), func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		session := &wsSession{conn: conn}
		defer func() {
			gw.Disconnect(session)
			conn.Close()
		}()

		principal, err := authenticateJWT(r.URL.Query().Get("token"), auth.JWTSecret)
		if err != nil {
			_ = session.Send(ws.Event{Name: "error", Data: map[string]string{"message": "Authentication failed"}})
			return
		}

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame inboundFrame
			if err := json.Unmarshal(raw, &frame); err != nil {
				continue
			}
			switch frame.Event {
			case "team:join":
				gw.Join(r.Context(), session, principal.UserID, frame.Data.TeamID)
			case "team:leave":
				gw.Leave(session, frame.Data.TeamID)
			case "team:message":
				gw.Message(r.Context(), session, principal.UserID, frame.Data.TeamID, frame.Data.Content)
			}
		}
	})
}
