// Package store declares the persistence ports the campaign services depend
// on. Implementations return gorm.ErrRecordNotFound for missing records and
// gorm.ErrDuplicatedKey for unique violations.
package store

import (
	"context"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/utils"
)

// CampaignFilter narrows a campaign listing
type CampaignFilter struct {
	Status   models.CampaignStatus
	Search   string
	utils.PageRequest
}

// ParticipationFilter narrows a participation listing
type ParticipationFilter struct {
	CampaignID string
	Status     models.ParticipationStatus
	utils.PageRequest
}

// SubmissionFilter narrows a submission listing
type SubmissionFilter struct {
	CampaignID string
	Status     models.SubmissionStatus
	utils.PageRequest
}

// Reader is the non-transactional read side. Lookups that may legitimately
// find nothing (Find*) return nil, nil.
type Reader interface {
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]models.Campaign, int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListEndedActiveCampaigns(ctx context.Context, now time.Time) ([]models.Campaign, error)

	GetParticipation(ctx context.Context, id string) (*models.Participation, error)
	FindParticipation(ctx context.Context, campaignID, actorID string) (*models.Participation, error)
	ListParticipations(ctx context.Context, filter ParticipationFilter) ([]models.Participation, int64, error)

	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	FindSubmissionByParticipation(ctx context.Context, participationID string) (*models.Submission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error)
	ListRankedSubmissions(ctx context.Context, campaignID string) ([]models.Submission, error)

	ListStatusHistory(ctx context.Context, entityType, entityID string) ([]models.StatusHistory, error)
}

// Tx is the write side, only reachable inside Store.Transaction. Lock*
// methods hold a row lock until the transaction ends.
type Tx interface {
	GetCampaign(id string) (*models.Campaign, error)
	LockCampaign(id string) (*models.Campaign, error)
	CreateCampaign(c *models.Campaign) error
	SaveCampaign(c *models.Campaign) error

	FindParticipation(campaignID, actorID string) (*models.Participation, error)
	LockParticipation(id string) (*models.Participation, error)
	CreateParticipation(p *models.Participation) error
	SaveParticipation(p *models.Participation) error

	FindSubmissionByParticipation(participationID string) (*models.Submission, error)
	FindSubmissionByPosition(campaignID string, position int) (*models.Submission, error)
	LockSubmission(id string) (*models.Submission, error)
	CreateSubmission(s *models.Submission) error
	SaveSubmission(s *models.Submission) error

	AppendStatusHistory(h *models.StatusHistory) error
}

// Store combines reads with all-or-nothing writes. A non-nil error from fn
// rolls back every write made through its Tx.
type Store interface {
	Reader
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}
