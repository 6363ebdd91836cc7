package plugin

import (
	"net/http"
	"time"

	"payhost-backend/internal/payment"
	"payhost-backend/internal/services"
	"payhost-backend/internal/utils"
	"payhost-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

func newUpgrader(allowOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		allowed[o] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Echoed back so browser clients that sent their token as a
		// subprotocol accept the handshake.
		Subprotocols: []string{utils.WebSocketTokenProtocol},
		// Non-browser clients send no Origin; browsers must come from a
		// configured CORS origin.
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		},
	}
}

// StreamMessage is sent to websocket clients. The first message is a
// "snapshot" of every plugin; each later one is a single "change".
type StreamMessage struct {
	Type    string               `json:"type"`
	Plugins []PluginState        `json:"plugins,omitempty"`
	Change  *services.DebugEvent `json:"change,omitempty"`
}

type PluginState struct {
	Platform payment.PlatformType `json:"platform"`
	Debug    bool                 `json:"debug"`
}

// Stream upgrades to a websocket and pushes debug mode changes as they happen.
func (h *Handler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Named("stream").Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := services.WatchDebugChanges()
	defer cancel()

	snapshot := StreamMessage{Type: "snapshot"}
	for _, p := range h.registry.List() {
		snapshot.Plugins = append(snapshot.Plugins, PluginState{Platform: p.PlatformType(), Debug: p.IsDebug()})
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(snapshot); err != nil {
		return
	}

	// The read loop only detects a closed connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(StreamMessage{Type: "change", Change: &event}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
