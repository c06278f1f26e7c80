package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"leadpilot.com/lead-qualifier/internal/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The widget is served from arbitrary third-party origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsReply struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WSHandler is the prototype bidirectional surface: each incoming message
// gets a canned acknowledgement. The real conversation logic lives on the
// SSE streaming path.
func (h *APIHandler) WSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		reply := wsReply{
			Role:    core.RoleAssistant,
			Content: "Recibido: " + string(msg),
		}
		if err := conn.WriteJSON(reply); err != nil {
			h.log.Warn().Err(err).Msg("websocket write failed")
			return
		}
	}
}
