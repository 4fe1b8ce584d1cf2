package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Event types published on a user's task channel.
const (
	TaskCreated = "task_created"
	TaskUpdated = "task_updated"
	TaskDeleted = "task_deleted"
)

const userChannelPrefix = "channel:tasks:"

// UserChannel returns the Pub/Sub channel carrying the events of one user's tasks.
func UserChannel(userID int64) string {
	return userChannelPrefix + strconv.FormatInt(userID, 10)
}

// Event represents a task change published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// TaskDeletedPayload is the payload for the "task_deleted" event.
type TaskDeletedPayload struct {
	TaskID int64 `json:"task_id"`
}

// NewEvent marshals payload into an Event of the given type.
func NewEvent(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: raw}, nil
}

//go:generate mockgen -source=events.go -destination=mocks/publisher.go -package=mocks

// Publisher delivers events to the subscribers of a user's channel.
type Publisher interface {
	Publish(ctx context.Context, userID int64, event Event) error
}

// NopPublisher drops every event. It is used when no event bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, int64, Event) error { return nil }
