package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"
	"github.com/onegreenvn/student-campaigns-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ParticipationService struct {
	store     store.Store
	publisher EventPublisher
	now       func() time.Time
}

func NewParticipationService(st store.Store, publisher EventPublisher, now func() time.Time) *ParticipationService {
	if now == nil {
		now = time.Now
	}
	return &ParticipationService{store: st, publisher: publisher, now: now}
}

// Register creates a pending participation for the actor. Eligibility is
// evaluated against the state read inside the transaction.
func (s *ParticipationService) Register(ctx context.Context, actor *lifecycle.Actor, campaignID string, form models.RegisterParticipationRequest) (*models.Participation, error) {
	if actor == nil {
		return nil, lifecycle.NewError(lifecycle.CodeForbidden, "sign in to take part in this campaign")
	}

	var created models.Participation
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		now := s.now()

		campaign, err := tx.GetCampaign(campaignID)
		if err != nil {
			return notFound(err, "campaign", campaignID)
		}

		existing, err := tx.FindParticipation(campaignID, actor.ID)
		if err != nil {
			return fmt.Errorf("failed to look up participation: %w", err)
		}
		if existing != nil {
			return lifecycle.ErrDuplicateParticipation
		}

		decision, err := lifecycle.Decide(lifecycle.Input{Actor: actor, Campaign: campaign, Now: now})
		if err != nil {
			return err
		}
		if err := lifecycle.RegistrationError(decision); err != nil {
			return err
		}
		if err := lifecycle.ValidateRegistrationForm(form); err != nil {
			return err
		}

		created = lifecycle.NewParticipation(uuid.NewString(), actor, campaign, form, now)
		if err := tx.CreateParticipation(&created); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return lifecycle.ErrDuplicateParticipation
			}
			return fmt.Errorf("failed to create participation: %w", err)
		}
		return recordTransition(tx, models.EntityParticipation, created.ID, campaignID,
			"", string(created.Status), actor.ID, "", now)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"campaign_id":      campaignID,
		"participation_id": created.ID,
		"actor_id":         actor.ID,
	}).Info("Participation registered")

	publish(ctx, s.publisher, models.LifecycleEvent{
		Type:            models.EventParticipationRegistered,
		CampaignID:      campaignID,
		ActorID:         actor.ID,
		ParticipationID: created.ID,
		Status:          string(created.Status),
		TriggeredBy:     actor.ID,
		OccurredAt:      created.SubmittedAt,
	})
	return &created, nil
}

// Review applies a reviewer's approve or reject decision to a pending
// participation. The row lock makes concurrent reviews serialize, so exactly
// one succeeds.
func (s *ParticipationService) Review(ctx context.Context, reviewer *lifecycle.Actor, participationID string, req models.ReviewParticipationRequest) (*models.Participation, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, err
	}

	var reviewed models.Participation
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		now := s.now()

		current, err := tx.LockParticipation(participationID)
		if err != nil {
			return notFound(err, "participation", participationID)
		}

		reviewed, err = lifecycle.ApplyReview(*current, reviewer, req.Status, req.Notes, now)
		if err != nil {
			return err
		}
		if err := tx.SaveParticipation(&reviewed); err != nil {
			return fmt.Errorf("failed to save participation: %w", err)
		}
		return recordTransition(tx, models.EntityParticipation, reviewed.ID, reviewed.CampaignID,
			string(current.Status), string(reviewed.Status), reviewer.ID, reviewed.ReviewNotes, now)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"participation_id": reviewed.ID,
		"status":           reviewed.Status,
		"reviewer_id":      reviewer.ID,
	}).Info("Participation reviewed")

	publish(ctx, s.publisher, models.LifecycleEvent{
		Type:            models.EventParticipationReviewed,
		CampaignID:      reviewed.CampaignID,
		ActorID:         reviewed.ActorID,
		ParticipationID: reviewed.ID,
		Status:          string(reviewed.Status),
		TriggeredBy:     reviewer.ID,
		OccurredAt:      *reviewed.ReviewedAt,
	})
	return &reviewed, nil
}

// ParticipationView is an actor's own participation with its submission, if any
type ParticipationView struct {
	Participation *models.Participation `json:"participation"`
	Submission    *models.Submission    `json:"submission,omitempty"`
}

// GetMine returns the actor's participation in a campaign
func (s *ParticipationService) GetMine(ctx context.Context, actor *lifecycle.Actor, campaignID string) (*ParticipationView, error) {
	if actor == nil {
		return nil, lifecycle.NewError(lifecycle.CodeForbidden, "sign in to view your participation")
	}
	p, err := s.store.FindParticipation(ctx, campaignID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participation: %w", err)
	}
	if p == nil {
		return nil, lifecycle.NewError(lifecycle.CodeNotFound, "no participation in campaign %s", campaignID)
	}
	sub, err := s.store.FindSubmissionByParticipation(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &ParticipationView{Participation: p, Submission: sub}, nil
}

// List returns the participations of a campaign for review
func (s *ParticipationService) List(ctx context.Context, reviewer *lifecycle.Actor, filter store.ParticipationFilter) ([]models.Participation, utils.PaginationResponse, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, utils.PaginationResponse{}, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, utils.PaginationResponse{}, lifecycle.NewError(lifecycle.CodeValidation, "unknown participation status %q", filter.Status)
	}
	filter.PageRequest = filter.Normalized()

	participations, total, err := s.store.ListParticipations(ctx, filter)
	if err != nil {
		return nil, utils.PaginationResponse{}, fmt.Errorf("failed to list participations: %w", err)
	}
	return participations, filter.Result(total), nil
}

// History returns the status changes of a participation
func (s *ParticipationService) History(ctx context.Context, reviewer *lifecycle.Actor, participationID string) ([]models.StatusHistory, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, err
	}
	if _, err := s.store.GetParticipation(ctx, participationID); err != nil {
		return nil, notFound(err, "participation", participationID)
	}
	return s.store.ListStatusHistory(ctx, models.EntityParticipation, participationID)
}
