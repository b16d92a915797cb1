// Package events fans out reconciler changes to live subscribers.
package events

import (
	"context"

	"github.com/google/uuid"
)

type Type string

const (
	ProjectCreated   Type = "project_created"
	ProjectUpdated   Type = "project_updated"
	MilestoneAdded   Type = "milestone_added"
	MilestoneUpdated Type = "milestone_updated"
	MilestoneDeleted Type = "milestone_deleted"
	StatusAdded      Type = "status_added"
	StatusUpdated    Type = "status_updated"
	StatusDeleted    Type = "status_deleted"
	NoteAdded        Type = "note_added"
	NoteDeleted      Type = "note_deleted"
	NotesMigrated    Type = "notes_migrated"
)

// Event is the JSON message delivered to subscribers.
type Event struct {
	Type      Type      `json:"type"`
	ProjectID uuid.UUID `json:"projectId"`
	UserID    uuid.UUID `json:"userId"`
	Data      any       `json:"data,omitempty"`
}

// RoutingKey is the AMQP topic routing key for the event.
func (e Event) RoutingKey() string {
	return "roadmap." + string(e.Type)
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Multi delivers every event to each publisher in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, e)
		}
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Recorder keeps published events in memory; used by tests and the CLI.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) {
	r.Events = append(r.Events, e)
}

func (r *Recorder) Types() []Type {
	out := make([]Type, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}
