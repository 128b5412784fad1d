package services

import (
	"context"
	"fmt"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"
	"github.com/onegreenvn/student-campaigns-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
)

// campaignTransitions lists the allowed status changes
var campaignTransitions = map[models.CampaignStatus][]models.CampaignStatus{
	models.CampaignDraft:  {models.CampaignActive, models.CampaignCancelled},
	models.CampaignActive: {models.CampaignCompleted, models.CampaignCancelled},
}

type CampaignService struct {
	store  store.Store
	policy lifecycle.TimelinePolicy
	now    func() time.Time
}

func NewCampaignService(st store.Store, policy lifecycle.TimelinePolicy, now func() time.Time) *CampaignService {
	if now == nil {
		now = time.Now
	}
	return &CampaignService{store: st, policy: policy, now: now}
}

// ValidateTimeline reports every timeline issue of a campaign draft without saving it
func (s *CampaignService) ValidateTimeline(req *models.CampaignRequest) []models.TimelineIssue {
	var c models.Campaign
	req.ApplyTo(&c)
	return lifecycle.ValidateTimeline(&c, s.policy)
}

// CreateCampaign creates a draft campaign. Blocking timeline issues fail the
// call; warnings are returned with the campaign.
func (s *CampaignService) CreateCampaign(ctx context.Context, creator *lifecycle.Actor, req *models.CreateCampaignRequest) (*models.CampaignResponse, error) {
	if err := requireAdmin(creator); err != nil {
		return nil, err
	}

	campaign := models.Campaign{
		ID:        uuid.NewString(),
		CreatorID: creator.ID,
		Status:    models.CampaignDraft,
	}
	req.ApplyTo(&campaign)

	issues := lifecycle.ValidateTimeline(&campaign, s.policy)
	if err := lifecycle.TimelineErrors(issues); err != nil {
		return nil, err
	}

	campaignSlug, err := s.uniqueSlug(ctx, campaign.Title)
	if err != nil {
		return nil, err
	}
	campaign.Slug = campaignSlug

	err = s.store.Transaction(ctx, func(tx store.Tx) error {
		return tx.CreateCampaign(&campaign)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	logrus.Infof("Campaign %s (%s) created by %s", campaign.ID, campaign.Slug, creator.ID)
	return &models.CampaignResponse{Campaign: campaign, Warnings: lifecycle.TimelineWarnings(issues)}, nil
}

// UpdateCampaign replaces the editable fields of a draft or active campaign
func (s *CampaignService) UpdateCampaign(ctx context.Context, editor *lifecycle.Actor, id string, req *models.UpdateCampaignRequest) (*models.CampaignResponse, error) {
	if err := requireAdmin(editor); err != nil {
		return nil, err
	}

	var updated models.Campaign
	var issues []models.TimelineIssue
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		current, err := tx.LockCampaign(id)
		if err != nil {
			return notFound(err, "campaign", id)
		}
		if current.Status == models.CampaignCompleted || current.Status == models.CampaignCancelled {
			return lifecycle.NewError(lifecycle.CodeCampaignClosed, "campaign %s is %s and can no longer be edited", id, current.Status)
		}

		updated = *current
		req.ApplyTo(&updated)
		issues = lifecycle.ValidateTimeline(&updated, s.policy)
		if err := lifecycle.TimelineErrors(issues); err != nil {
			return err
		}
		return tx.SaveCampaign(&updated)
	})
	if err != nil {
		return nil, err
	}

	return &models.CampaignResponse{Campaign: updated, Warnings: lifecycle.TimelineWarnings(issues)}, nil
}

// UpdateStatus moves a campaign along draft -> active -> completed, or cancels it
func (s *CampaignService) UpdateStatus(ctx context.Context, editor *lifecycle.Actor, id string, status models.CampaignStatus) (*models.Campaign, error) {
	if err := requireAdmin(editor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, lifecycle.NewError(lifecycle.CodeValidation, "unknown campaign status %q", status)
	}

	var updated models.Campaign
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		current, err := tx.LockCampaign(id)
		if err != nil {
			return notFound(err, "campaign", id)
		}
		if !canTransitionCampaign(current.Status, status) {
			return lifecycle.NewError(lifecycle.CodeValidation, "invalid status transition from %s to %s", current.Status, status)
		}
		if status == models.CampaignActive {
			if err := lifecycle.TimelineErrors(lifecycle.ValidateTimeline(current, s.policy)); err != nil {
				return err
			}
		}
		updated = *current
		updated.Status = status
		return tx.SaveCampaign(&updated)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("Campaign %s moved to %s by %s", id, status, editor.ID)
	return &updated, nil
}

func canTransitionCampaign(from, to models.CampaignStatus) bool {
	for _, allowed := range campaignTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// GetCampaign returns a campaign by ID
func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	campaign, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return nil, notFound(err, "campaign", id)
	}
	return campaign, nil
}

// ListCampaigns returns campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, filter store.CampaignFilter) ([]models.Campaign, utils.PaginationResponse, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, utils.PaginationResponse{}, lifecycle.NewError(lifecycle.CodeValidation, "unknown campaign status %q", filter.Status)
	}
	filter.PageRequest = filter.Normalized()

	campaigns, total, err := s.store.ListCampaigns(ctx, filter)
	if err != nil {
		return nil, utils.PaginationResponse{}, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, filter.Result(total), nil
}

// CompleteEndedCampaigns marks every active campaign past its end date as
// completed. It is run by the scheduler.
func (s *CampaignService) CompleteEndedCampaigns(ctx context.Context) (int, error) {
	now := s.now()
	ended, err := s.store.ListEndedActiveCampaigns(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list ended campaigns: %w", err)
	}

	completed := 0
	for _, candidate := range ended {
		changed := false
		err := s.store.Transaction(ctx, func(tx store.Tx) error {
			changed = false
			current, err := tx.LockCampaign(candidate.ID)
			if err != nil {
				return err
			}
			// Re-check under the lock; an admin may have changed it meanwhile
			if current.Status != models.CampaignActive || !current.EndDate.Before(now) {
				return nil
			}
			current.Status = models.CampaignCompleted
			if err := tx.SaveCampaign(current); err != nil {
				return err
			}
			changed = true
			return nil
		})
		if err != nil {
			logrus.Errorf("Failed to complete campaign %s: %v", candidate.ID, err)
			continue
		}
		if changed {
			completed++
		}
	}
	return completed, nil
}

func (s *CampaignService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "campaign"
	}
	candidate := base
	for attempt := 0; attempt < 5; attempt++ {
		exists, err := s.store.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
	}
	return "", fmt.Errorf("could not find a free slug for %q", title)
}
