package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/model"
	ws "github.com/smb564/21-points/internal/websocket"
)

// sendBuffer is how many frames may queue for a slow client before updates
// to it are dropped.
const sendBuffer = 32

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams user settings updates to websocket clients.
type WSHandler struct {
	bus      *eventbus.Bus
	topic    string
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler fed from topic on bus.
func NewWSHandler(bus *eventbus.Bus, topic string, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		bus:      bus,
		topic:    topic,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// UserSettingsUpdates godoc
// WS /ws/user-settings/updates
// Pushes every saved user settings record to the connected client.
func (h *WSHandler) UserSettingsUpdates(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("remote", c.ClientIP()).Logger()
	wsLog.Info().Msg("Client connected")

	send := make(chan any, sendBuffer)
	done := make(chan struct{})
	defer close(done)

	sub := eventbus.Subscribe(h.bus, h.topic, func(s *model.UserSettings) {
		payload, err := json.Marshal(s)
		if err != nil {
			wsLog.Error().Err(err).Msg("Marshal update error")
			return
		}
		enqueue(send, done, ws.EventEnvelope{Event: ws.EventUserSettingsUpdate, Payload: payload}, wsLog)
	})
	defer sub.Unsubscribe()

	go h.writeLoop(conn, send, done, wsLog)

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			enqueue(send, done, ws.PongResponse{Event: ws.EventPong}, wsLog)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			enqueue(send, done, ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}, wsLog)
		}
	}
}

// writeLoop is the only writer on conn.
func (h *WSHandler) writeLoop(conn *websocket.Conn, send <-chan any, done <-chan struct{}, log zerolog.Logger) {
	for {
		select {
		case <-done:
			return
		case frame := <-send:
			if err := ws.WriteTyped(conn, frame); err != nil {
				log.Debug().Err(err).Msg("Write error")
				// Unblock the read loop.
				conn.Close()
				return
			}
		}
	}
}

// enqueue never blocks the publisher; a full buffer drops the frame.
func enqueue(send chan<- any, done <-chan struct{}, frame any, log zerolog.Logger) {
	select {
	case <-done:
	case send <- frame:
	default:
		log.Warn().Msg("Client too slow, dropping frame")
	}
}
