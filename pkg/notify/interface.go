package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// EventBatchGenerated fans invites out to the notification subsystem.
	EventBatchGenerated EventType = "batch_generated"
	// EventProjectClaimed feeds downstream billing and usage tracking.
	EventProjectClaimed EventType = "project_claimed"
	// EventCandidateStatusChanged feeds UI and polling consumers.
	EventCandidateStatusChanged EventType = "candidate_status_changed"
)

type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ProjectID   uint      `json:"projectID"`
	BatchID     uint      `json:"batchID,omitempty"`
	CandidateID uint      `json:"candidateID,omitempty"`
	DeveloperID uint      `json:"developerID,omitempty"`
	Status      string    `json:"status,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func NewEvent(t EventType, projectID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		ProjectID:  projectID,
		OccurredAt: time.Now(),
	}
}

// Notifier delivers one event to one sink. Delivery is best-effort from the
// rotation core's point of view; a failed dispatch never rolls back the
// state change that produced the event.
type Notifier interface {
	Dispatch(ctx context.Context, ev Event) error
}
