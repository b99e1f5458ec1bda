package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rustyeddy/pitlane/events"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeTimeout = 5 * time.Second

// handleStream upgrades to a websocket, sends a snapshot event and then
// forwards every bus event as JSON until either side goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.origin,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	defer c.Close(websocket.StatusInternalError, "stream closed")

	bus := s.engine.Bus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	// Client messages are ignored; CloseRead cancels ctx when it disconnects.
	ctx := c.CloseRead(r.Context())

	s.log.Debug().Str("remote", r.RemoteAddr).Msg("stream opened")

	first := events.Event{Type: events.Snapshot, Timestamp: time.Now(), Data: s.engine.Snapshot()}
	if err := write(ctx, c, first); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Str("remote", r.RemoteAddr).Msg("stream closed")
			c.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := write(ctx, c, ev); err != nil {
				s.log.Debug().Err(err).Msg("stream write failed")
				return
			}
		}
	}
}

func write(ctx context.Context, c *websocket.Conn, ev events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c, ev)
}
