package models

import (
	"time"
)

// ParticipationStatus is the review outcome of a request to join a campaign
type ParticipationStatus string

const (
	ParticipationPending  ParticipationStatus = "pending"
	ParticipationApproved ParticipationStatus = "approved"
	ParticipationRejected ParticipationStatus = "rejected"
)

// Valid reports whether s is a known participation status
func (s ParticipationStatus) Valid() bool {
	switch s {
	case ParticipationPending, ParticipationApproved, ParticipationRejected:
		return true
	}
	return false
}

// SubmissionStatus tracks delivered work through grading and ranking.
// NotSubmitted only ever appears on the participation mirror.
type SubmissionStatus string

const (
	SubmissionNotSubmitted SubmissionStatus = "not_submitted"
	SubmissionSubmitted    SubmissionStatus = "submitted"
	SubmissionUnderReview  SubmissionStatus = "under_review"
	SubmissionGraded       SubmissionStatus = "graded"
	SubmissionWinner       SubmissionStatus = "winner"
	SubmissionRunnerUp     SubmissionStatus = "runner_up"
	SubmissionNotSelected  SubmissionStatus = "not_selected"
)

// Valid reports whether s is a known submission status
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionNotSubmitted, SubmissionSubmitted, SubmissionUnderReview, SubmissionGraded,
		SubmissionWinner, SubmissionRunnerUp, SubmissionNotSelected:
		return true
	}
	return false
}

// Participation is one actor's request to join one campaign
type Participation struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CampaignID string `json:"campaign_id" gorm:"type:uuid;not null;uniqueIndex:idx_participations_campaign_actor"`
	ActorID    string `json:"actor_id" gorm:"type:uuid;not null;uniqueIndex:idx_participations_campaign_actor;index"`

	Status           ParticipationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	SubmissionStatus SubmissionStatus    `json:"submission_status,omitempty" gorm:"type:varchar(20)"`

	// Actor-authored content
	Motivation     string `json:"motivation" gorm:"type:text;not null"`
	Experience     string `json:"experience" gorm:"type:text;not null"`
	Portfolio      string `json:"portfolio,omitempty" gorm:"type:text"`
	AdditionalInfo string `json:"additional_info,omitempty" gorm:"type:text"`

	// Review
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  string     `json:"reviewed_by,omitempty" gorm:"type:varchar(64)"`
	ReviewNotes string     `json:"review_notes,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Participation model
func (Participation) TableName() string {
	return "participations"
}

// RegisterParticipationRequest is the form an actor fills in to join a campaign
type RegisterParticipationRequest struct {
	Motivation     string `json:"motivation" example:"I want to make our campus greener"`
	Experience     string `json:"experience" example:"Two hackathons, one shipped app"`
	Portfolio      string `json:"portfolio,omitempty" example:"https://github.com/me"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// ReviewParticipationRequest is a reviewer's decision on a pending participation
type ReviewParticipationRequest struct {
	Status ParticipationStatus `json:"status" binding:"required" example:"approved"`
	Notes  string              `json:"notes,omitempty" example:"Strong motivation"`
}
