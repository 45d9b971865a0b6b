package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/realtime"
)

// EventsHandler streams a household's change feed over SSE. One subscription
// per connection; clients that reconnect re-list tasks, so dropped events are
// recoverable.
type EventsHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewEventsHandler(log *logger.Logger, hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{log: log.With("handler", "EventsHandler"), hub: hub}
}

func (eh *EventsHandler) Stream(c *gin.Context) {
	householdID, err := uuid.Parse(c.Param("householdID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid household id"})
		return
	}

	events, unsubscribe := eh.hub.Subscribe(realtime.TaskChannel(householdID))
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Op), ev)
			return true
		}
	})
}
