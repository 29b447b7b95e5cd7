package api

import (
	"net/http"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// handleEvents upgrades to a websocket and writes one JSON message per
// engine event until the client goes away. The subscription is taken before
// the handshake completes, so a client sees every event after Dial returns.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, cancel := s.engine.Subscribe(0)
	defer cancel()

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "err", err)
		return
	}
	s.logger.Debug("websocket connect", "path", r.URL.Path, "remote", r.RemoteAddr)
	defer s.logger.Debug("websocket disconnect", "remote", r.RemoteAddr)
	defer c.Close(websocket.StatusInternalError, "")

	// Reading is only needed to notice the close frame.
	ctx := c.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				c.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, c, ev); err != nil {
				s.logger.Debug("websocket write failed", "err", err)
				return
			}
		}
	}
}
