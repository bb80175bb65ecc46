package person

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventsQueue is the broker queue carrying directory change events.
const EventsQueue = "queue_people_events"

const (
	EventCreated = "created"
	EventPurged  = "purged"
)

// Event is the message emitted on the events queue when the directory
// changes. The email is empty on a purge.
type Event struct {
	Kind  string    `json:"kind"`
	Email string    `json:"email,omitempty"`
	At    time.Time `json:"at"`
}

func publishEvent(broker publisher, kind string, email string) error {
	bs, err := json.Marshal(Event{
		Kind:  kind,
		Email: email,
		At:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := broker.Publish(EventsQueue, bs); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
