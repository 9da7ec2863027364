package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"gigchain/core/types"
)

const wsWriteTimeout = 10 * time.Second

// eventCarrier is implemented by the market event wrappers and exposes the
// structured payload behind the generic event interface.
type eventCarrier interface {
	Event() *types.Event
}

// handleEventsWS streams market events to the client as JSON frames until
// the connection closes.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	if s == nil || s.node == nil {
		http.Error(w, "node unavailable", http.StatusServiceUnavailable)
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	subID := uuid.NewString()
	s.log.Info("event stream subscribed", "subscriber", subID)
	defer s.log.Info("event stream closed", "subscriber", subID)

	updates, cancel := s.node.SubscribeEvents(s.eventBuffer)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-updates:
			if !ok {
				return
			}
			carrier, ok := evt.(eventCarrier)
			if !ok {
				continue
			}
			if err := writeEvent(r.Context(), conn, carrier.Event()); err != nil {
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, evt *types.Event) error {
	if evt == nil {
		return nil
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
