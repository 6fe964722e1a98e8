// Package events defines the payloads GreenPoints emits after an activity is logged.
package events

import (
	"context"
	"time"
)

// Event types carried in the event_type header.
const (
	TypeActivityLogged = "activity.logged"
	TypeBadgeAwarded   = "badge.awarded"
)

// HeaderEventType names the Kafka header holding the event type.
const HeaderEventType = "event_type"

// ActivityLogged is emitted once per persisted activity.
type ActivityLogged struct {
	ActivityID   string    `json:"activity_id"`
	Username     string    `json:"username"`
	ActivityType string    `json:"activity_type"`
	Quantity     int       `json:"quantity"`
	Points       int       `json:"points"`
	Notes        *string   `json:"notes,omitempty"`
	LoggedAt     time.Time `json:"logged_at"`
}

// BadgeAwarded is emitted for every badge record created while logging an activity.
type BadgeAwarded struct {
	BadgeID    string    `json:"badge_id"`
	ActivityID string    `json:"activity_id"`
	Username   string    `json:"username"`
	BadgeKey   string    `json:"badge_key"`
	Name       string    `json:"name"`
	AwardedAt  time.Time `json:"awarded_at"`
}

// Event is a typed payload ready for publication. Key selects the partition.
type Event struct {
	Type    string
	Key     string
	Payload any
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }
