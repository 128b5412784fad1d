package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProjectLinks groups the optional external links of a submitted project
type ProjectLinks struct {
	DemoURL   string `json:"demo_url,omitempty"`
	GithubURL string `json:"github_url,omitempty"`
	FilesURL  string `json:"files_url,omitempty"`
}

// Submission is the work product an approved participant delivers to a campaign
type Submission struct {
	ID              string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CampaignID      string `json:"campaign_id" gorm:"type:uuid;not null;index"`
	ActorID         string `json:"actor_id" gorm:"type:uuid;not null;index"`
	ParticipationID string `json:"participation_id" gorm:"type:uuid;not null;uniqueIndex"`

	// Actor-authored content
	ProjectTitle       string                           `json:"project_title" gorm:"type:varchar(255);not null"`
	ProjectDescription string                           `json:"project_description" gorm:"type:text;not null"`
	ProjectScreenshots datatypes.JSONSlice[string]      `json:"project_screenshots" gorm:"type:jsonb"`
	ProjectLinks       datatypes.JSONType[ProjectLinks] `json:"project_links" gorm:"type:jsonb"`
	PitchDeckURL       string                           `json:"pitch_deck_url,omitempty" gorm:"type:text"`

	// Grading
	Status      SubmissionStatus `json:"status" gorm:"type:varchar(20);not null;default:'submitted';index"`
	Score       *float64         `json:"score,omitempty" gorm:"type:numeric(5,2)"`
	Grade       string           `json:"grade,omitempty" gorm:"type:varchar(2)"`
	Feedback    string           `json:"feedback,omitempty" gorm:"type:text"`
	Position    *int             `json:"position,omitempty"`
	PrizeAmount *float64         `json:"prize_amount,omitempty" gorm:"type:numeric(14,2)"`
	GradedAt    *time.Time       `json:"graded_at,omitempty"`
	GradedBy    string           `json:"graded_by,omitempty" gorm:"type:varchar(64)"`

	SubmissionDate time.Time `json:"submission_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Submission model
func (Submission) TableName() string {
	return "submissions"
}

// SubmitProjectRequest is the payload an approved participant submits
type SubmitProjectRequest struct {
	ProjectTitle       string       `json:"project_title" example:"Campus Compost Tracker"`
	ProjectDescription string       `json:"project_description" example:"A mobile app that tracks compost bins"`
	ProjectScreenshots []string     `json:"project_screenshots,omitempty"`
	ProjectLinks       ProjectLinks `json:"project_links"`
	PitchDeckURL       string       `json:"pitch_deck_url,omitempty"`
}

// GradeSubmissionRequest is a reviewer's grading/ranking decision
type GradeSubmissionRequest struct {
	Score       *float64         `json:"score" example:"92.5"`
	Grade       string           `json:"grade,omitempty" example:"A"`
	Feedback    string           `json:"feedback,omitempty"`
	Status      SubmissionStatus `json:"status,omitempty" example:"graded"` // graded (default), winner, runner_up, not_selected
	Position    *int             `json:"position,omitempty" example:"1"`
	PrizeAmount *float64         `json:"prize_amount,omitempty"`
}

// LeaderboardEntry is one ranked row of a campaign's results
type LeaderboardEntry struct {
	SubmissionID string           `json:"submission_id"`
	ActorID      string           `json:"actor_id"`
	ProjectTitle string           `json:"project_title"`
	Status       SubmissionStatus `json:"status"`
	Score        *float64         `json:"score,omitempty"`
	Grade        string           `json:"grade,omitempty"`
	Position     *int             `json:"position,omitempty"`
	PrizeAmount  *float64         `json:"prize_amount,omitempty"`
}
