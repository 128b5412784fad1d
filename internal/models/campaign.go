package models

import (
	"time"
)

// CampaignStatus is the run state of a campaign
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

// Valid reports whether s is a known campaign status
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignActive, CampaignCompleted, CampaignCancelled:
		return true
	}
	return false
}

// CampaignType only affects prize metadata
type CampaignType string

const (
	CampaignTypeCustom CampaignType = "custom"
	CampaignTypeMini   CampaignType = "mini"
)

// Valid reports whether t is a known campaign type
func (t CampaignType) Valid() bool {
	return t == CampaignTypeCustom || t == CampaignTypeMini
}

// Campaign represents a time-boxed competition that students register for and submit projects to
type Campaign struct {
	ID           string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatorID    string         `json:"creator_id" gorm:"not null;index;type:uuid"`
	Title        string         `json:"title" gorm:"type:varchar(255);not null"`
	Slug         string         `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex"`
	Description  string         `json:"description" gorm:"type:text"`
	Status       CampaignStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	CampaignType CampaignType   `json:"campaign_type" gorm:"type:varchar(20);not null;default:'custom'"`
	FundingTrail bool           `json:"funding_trail" gorm:"default:false"`

	// Overall run
	StartDate time.Time `json:"start_date" gorm:"not null;index"`
	EndDate   time.Time `json:"end_date" gorm:"not null;index"`

	// Optional gating windows
	RegistrationStartDate *time.Time `json:"registration_start_date,omitempty"`
	RegistrationEndDate   *time.Time `json:"registration_end_date,omitempty"`
	SubmissionStartDate   *time.Time `json:"submission_start_date,omitempty"`
	SubmissionEndDate     *time.Time `json:"submission_end_date,omitempty"`

	// Informational milestones
	ResultsAnnouncementDate *time.Time `json:"results_announcement_date,omitempty"`
	AwardDistributionDate   *time.Time `json:"award_distribution_date,omitempty"`

	// Prize per ranked slot (position 1..3)
	FirstPrize  *float64 `json:"first_prize,omitempty" gorm:"type:numeric(14,2)"`
	SecondPrize *float64 `json:"second_prize,omitempty" gorm:"type:numeric(14,2)"`
	ThirdPrize  *float64 `json:"third_prize,omitempty" gorm:"type:numeric(14,2)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}

// PrizeForPosition returns the configured prize for a ranked slot, if any
func (c *Campaign) PrizeForPosition(position int) *float64 {
	var prize *float64
	switch position {
	case 1:
		prize = c.FirstPrize
	case 2:
		prize = c.SecondPrize
	case 3:
		prize = c.ThirdPrize
	}
	if prize == nil {
		return nil
	}
	v := *prize
	return &v
}

// CampaignRequest carries the editable fields of a campaign for create and update
type CampaignRequest struct {
	Title                   string       `json:"title" binding:"required" example:"Green Schools Hackathon"`
	Description             string       `json:"description" example:"Build something for your campus"`
	CampaignType            CampaignType `json:"campaign_type" example:"custom"`
	FundingTrail            bool         `json:"funding_trail"`
	StartDate               time.Time    `json:"start_date" binding:"required" example:"2026-01-01T00:00:00Z"`
	EndDate                 time.Time    `json:"end_date" binding:"required" example:"2026-03-31T23:59:59Z"`
	RegistrationStartDate   *time.Time   `json:"registration_start_date,omitempty" example:"2026-01-01T00:00:00Z"`
	RegistrationEndDate     *time.Time   `json:"registration_end_date,omitempty" example:"2026-01-31T23:59:59Z"`
	SubmissionStartDate     *time.Time   `json:"submission_start_date,omitempty" example:"2026-02-01T00:00:00Z"`
	SubmissionEndDate       *time.Time   `json:"submission_end_date,omitempty" example:"2026-03-15T23:59:59Z"`
	ResultsAnnouncementDate *time.Time   `json:"results_announcement_date,omitempty"`
	AwardDistributionDate   *time.Time   `json:"award_distribution_date,omitempty"`
	FirstPrize              *float64     `json:"first_prize,omitempty" example:"1000"`
	SecondPrize             *float64     `json:"second_prize,omitempty" example:"500"`
	ThirdPrize              *float64     `json:"third_prize,omitempty" example:"250"`
}

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest = CampaignRequest

// UpdateCampaignRequest represents the request to update a campaign
type UpdateCampaignRequest = CampaignRequest

// UpdateCampaignStatusRequest represents a campaign status change
type UpdateCampaignStatusRequest struct {
	Status CampaignStatus `json:"status" binding:"required" example:"active"`
}

// ApplyTo copies the request fields onto a campaign
func (r *CampaignRequest) ApplyTo(c *Campaign) {
	c.Title = r.Title
	c.Description = r.Description
	c.CampaignType = r.CampaignType
	if c.CampaignType == "" {
		c.CampaignType = CampaignTypeCustom
	}
	c.FundingTrail = r.FundingTrail
	c.StartDate = r.StartDate
	c.EndDate = r.EndDate
	c.RegistrationStartDate = r.RegistrationStartDate
	c.RegistrationEndDate = r.RegistrationEndDate
	c.SubmissionStartDate = r.SubmissionStartDate
	c.SubmissionEndDate = r.SubmissionEndDate
	c.ResultsAnnouncementDate = r.ResultsAnnouncementDate
	c.AwardDistributionDate = r.AwardDistributionDate
	c.FirstPrize = r.FirstPrize
	c.SecondPrize = r.SecondPrize
	c.ThirdPrize = r.ThirdPrize
}

// CampaignResponse represents the response for campaign operations
type CampaignResponse struct {
	Campaign
	Warnings []TimelineIssue `json:"warnings,omitempty"`
}

// TimelineIssue is a single violated timeline invariant
type TimelineIssue struct {
	Field    string `json:"field" example:"submission_start_date"`
	Code     string `json:"code" example:"SUBMISSION_BEFORE_REGISTRATION_END"`
	Message  string `json:"message"`
	Severity string `json:"severity" example:"warning"`
}
