// Package events publishes social domain events for downstream consumers.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	PostCreated          = "post.created"
	PostDeleted          = "post.deleted"
	PostLiked            = "post.liked"
	PostUnliked          = "post.unliked"
	PostCommented        = "post.commented"
	UserFollowed         = "user.followed"
	UserUnfollowed       = "user.unfollowed"
	VerificationDecided  = "verification.decided"
	VerificationReceived = "verification.submitted"
)

// Event is the envelope written to the event stream
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	ActorID    uint                   `json:"actor_id"`
	SubjectID  string                 `json:"subject_id"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType string, actorID uint, subjectID string, payload map[string]interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ActorID:    actorID,
		SubjectID:  subjectID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops events; used when no broker is configured
type NopPublisher struct {
	Logger *slog.Logger
}

func (p NopPublisher) Publish(_ context.Context, event Event) error {
	if p.Logger != nil {
		p.Logger.Debug("event dropped, no broker configured", "event_type", event.Type, "subject_id", event.SubjectID)
	}
	return nil
}
