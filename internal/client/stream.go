package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/model"
	ws "github.com/smb564/21-points/internal/websocket"
)

const updatesPath = "/ws/user-settings/updates"

// UpdateStream mirrors the server's user settings update feed onto a local
// bus topic, so views in this process follow edits made elsewhere.
type UpdateStream struct {
	url    string
	bus    *eventbus.Bus
	topic  string
	dialer *websocket.Dialer
	log    zerolog.Logger

	pingPeriod time.Duration
}

// NewUpdateStream builds a stream against the client's base URL.
func (c *Client) NewUpdateStream(bus *eventbus.Bus, topic string) *UpdateStream {
	return &UpdateStream{
		url:    websocketURL(c.baseURL) + updatesPath,
		bus:    bus,
		topic:  topic,
		dialer: websocket.DefaultDialer,
		log:    c.log.With().Str("stream", "user_settings_updates").Logger(),

		pingPeriod: ws.PingPeriod,
	}
}

// URL returns the websocket endpoint the stream dials.
func (s *UpdateStream) URL() string {
	return s.url
}

// Run dials the feed and publishes every update until ctx is cancelled or
// the connection drops. There is no reconnect.
func (s *UpdateStream) Run(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go s.keepAlive(ctx, conn, done)

	s.log.Info().Str("url", s.url).Msg("update stream connected")

	for {
		var frame ws.EventEnvelope
		if err := ws.ReadJSON(conn, &frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read update: %w", err)
		}

		switch frame.Event {
		case ws.EventUserSettingsUpdate:
			var settings model.UserSettings
			if err := json.Unmarshal(frame.Payload, &settings); err != nil {
				s.log.Warn().Err(err).Msg("malformed update payload")
				continue
			}
			s.bus.Publish(s.topic, &settings)
		case ws.EventError:
			s.log.Warn().Str("error", frame.Error).Msg("update stream error")
		}
	}
}

// keepAlive pings the server so neither side times out on a quiet feed, and
// closes the connection when ctx is cancelled.
func (s *UpdateStream) keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.Close()
			return
		case <-done:
			return
		case <-ticker.C:
			if err := ws.WriteTyped(conn, ws.RequestEnvelope{Action: ws.ActionPing}); err != nil {
				s.log.Debug().Err(err).Msg("ping failed")
				return
			}
		}
	}
}

func websocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}
