package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"example.com/greenpoints/internal/docstore"
)

// CollectionEventLog holds one document per consumed event.
const CollectionEventLog = "event_log"

// EventLogHandler appends consumed events to the event_log collection for auditing.
type EventLogHandler struct {
	store docstore.Store
	now   func() time.Time
}

// NewEventLogHandler constructs a handler backed by store.
func NewEventLogHandler(store docstore.Store) *EventLogHandler {
	return &EventLogHandler{store: store, now: time.Now}
}

// Handle stores the event and its Kafka coordinates.
func (h *EventLogHandler) Handle(ctx context.Context, msg Message) error {
	var payload map[string]any
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	_, err := h.store.InsertOne(ctx, CollectionEventLog, docstore.Document{
		"event_type":  msg.EventType,
		"key":         msg.Key,
		"topic":       msg.Topic,
		"partition":   msg.Partition,
		"offset":      msg.Offset,
		"payload":     payload,
		"produced_at": msg.Timestamp.UTC(),
		"received_at": h.now().UTC(),
	})
	return err
}
