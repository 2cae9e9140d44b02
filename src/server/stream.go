package server

import (
	"encoding/json"
	"io"
	"time"

	"market-pulse/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// SSE Stream Gateway
//
// Primary live channel. Each event is one line-framed payload: a JSON tick or
// the heartbeat sentinel. The heartbeat fires on a fixed per-connection timer
// regardless of tick traffic, so subscribers can detect a dead pipe.
// -----------------------------------------------------------------------------

func (s *Server) handleStream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", models.StreamContentType)
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	sub := s.Hub.Subscribe()
	defer sub.Close()

	heartbeat := time.Duration(s.Config.Stream.HeartbeatSeconds) * time.Second
	if heartbeat <= 0 {
		heartbeat = models.DefaultHeartbeatSecs * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	s.Logger.Info("Stream subscriber connected from %s", c.ClientIP())

	c.Stream(func(w io.Writer) bool {
		select {
		case tick, ok := <-sub.C():
			if !ok {
				// Hub dropped us (slow consumer or shutdown).
				return false
			}
			payload, err := json.Marshal(tick)
			if err != nil {
				s.Logger.Error("Failed to encode tick for %s: %v", tick.Ticker, err)
				return true
			}
			if _, err := w.Write(frame(payload)); err != nil {
				return false
			}
			return true

		case <-ticker.C:
			if _, err := w.Write(frame([]byte(models.HeartbeatSentinel))); err != nil {
				return false
			}
			return true

		case <-c.Request.Context().Done():
			return false
		}
	})

	s.Logger.Info("Stream subscriber disconnected from %s", c.ClientIP())
}

// -----------------------------------------------------------------------------

// frame wraps a payload in the wire framing: prefix, payload, blank line.
func frame(payload []byte) []byte {
	out := make([]byte, 0, len(models.StreamDataPrefix)+len(payload)+2)
	out = append(out, models.StreamDataPrefix...)
	out = append(out, payload...)
	out = append(out, '\n', '\n')
	return out
}
