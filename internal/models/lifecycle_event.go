package models

import (
	"time"
)

// Lifecycle event types published after a command commits
const (
	EventParticipationRegistered = "participation.registered"
	EventParticipationReviewed   = "participation.reviewed"
	EventSubmissionCreated       = "submission.created"
	EventSubmissionReviewStarted = "submission.review_started"
	EventSubmissionGraded        = "submission.graded"
)

// LifecycleEvent is the message published to the lifecycle events queue
type LifecycleEvent struct {
	Type            string    `json:"type"`
	CampaignID      string    `json:"campaign_id"`
	ActorID         string    `json:"actor_id"`
	ParticipationID string    `json:"participation_id,omitempty"`
	SubmissionID    string    `json:"submission_id,omitempty"`
	Status          string    `json:"status"`
	TriggeredBy     string    `json:"triggered_by"`
	OccurredAt      time.Time `json:"occurred_at"`
}
