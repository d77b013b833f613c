package handlers

import (
	"encoding/json"
	"net/http"

	recordingrepo "github.com/courtscribe/courtscribe/internal/repository/recording"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // dev-only
}

// StatusStreamHandler pushes pipeline status events to WebSocket clients.
// Events come from the redis pub/sub channel the repository publishes to.
type StatusStreamHandler struct {
	rc     *redis.Client
	logger *Logger.Logger
}

func NewStatusStreamHandler(rc *redis.Client, logger *Logger.Logger) *StatusStreamHandler {
	return &StatusStreamHandler{rc: rc, logger: logger}
}

// Stream handles GET /ws/status. An optional recording_id query parameter
// narrows the stream to one recording.
func (h *StatusStreamHandler) Stream(c *gin.Context) {
	var filter *uuid.UUID
	if raw := c.Query("recording_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid recording ID"})
			return
		}
		filter = &id
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("status ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	pubsub := h.rc.Subscribe(recordingrepo.StatusChannel)
	defer pubsub.Close()

	// Detect client disconnect; reads are otherwise unused.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			if filter != nil {
				var event recordingrepo.StatusEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				if event.RecordingID != *filter {
					continue
				}
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.logger.Debugf("status ws write failed: %v", err)
				return
			}
		}
	}
}
