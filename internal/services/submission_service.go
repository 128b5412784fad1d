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

type SubmissionService struct {
	store     store.Store
	publisher EventPublisher
	now       func() time.Time
}

func NewSubmissionService(st store.Store, publisher EventPublisher, now func() time.Time) *SubmissionService {
	if now == nil {
		now = time.Now
	}
	return &SubmissionService{store: st, publisher: publisher, now: now}
}

// Submit creates the actor's project submission and mirrors its status onto
// the participation in the same transaction.
func (s *SubmissionService) Submit(ctx context.Context, actor *lifecycle.Actor, campaignID string, payload models.SubmitProjectRequest) (*models.Submission, error) {
	if actor == nil {
		return nil, lifecycle.NewError(lifecycle.CodeForbidden, "sign in to submit a project")
	}

	var created models.Submission
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		now := s.now()

		campaign, err := tx.GetCampaign(campaignID)
		if err != nil {
			return notFound(err, "campaign", campaignID)
		}

		var participation *models.Participation
		found, err := tx.FindParticipation(campaignID, actor.ID)
		if err != nil {
			return fmt.Errorf("failed to look up participation: %w", err)
		}
		if found != nil {
			if participation, err = tx.LockParticipation(found.ID); err != nil {
				return fmt.Errorf("failed to lock participation: %w", err)
			}
			existing, err := tx.FindSubmissionByParticipation(participation.ID)
			if err != nil {
				return fmt.Errorf("failed to look up submission: %w", err)
			}
			if existing != nil {
				return lifecycle.ErrAlreadySubmitted
			}
		}

		decision, err := lifecycle.Decide(lifecycle.Input{
			Actor:         actor,
			Campaign:      campaign,
			Participation: participation,
			Now:           now,
		})
		if err != nil {
			return err
		}
		if err := lifecycle.SubmissionError(decision); err != nil {
			return err
		}
		if err := lifecycle.ValidateSubmissionPayload(payload); err != nil {
			return err
		}

		created = lifecycle.NewSubmission(uuid.NewString(), participation, payload, now)
		if err := tx.CreateSubmission(&created); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return lifecycle.ErrAlreadySubmitted
			}
			return fmt.Errorf("failed to create submission: %w", err)
		}

		previous := participation.SubmissionStatus
		participation.SubmissionStatus = created.Status
		if err := tx.SaveParticipation(participation); err != nil {
			return fmt.Errorf("failed to update participation: %w", err)
		}
		return recordTransition(tx, models.EntitySubmission, created.ID, campaignID,
			string(previous), string(created.Status), actor.ID, "", now)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"campaign_id":   campaignID,
		"submission_id": created.ID,
		"actor_id":      actor.ID,
	}).Info("Project submitted")

	publish(ctx, s.publisher, models.LifecycleEvent{
		Type:            models.EventSubmissionCreated,
		CampaignID:      campaignID,
		ActorID:         actor.ID,
		ParticipationID: created.ParticipationID,
		SubmissionID:    created.ID,
		Status:          string(created.Status),
		TriggeredBy:     actor.ID,
		OccurredAt:      created.SubmissionDate,
	})
	return &created, nil
}

// StartReview moves a submitted project to under_review
func (s *SubmissionService) StartReview(ctx context.Context, reviewer *lifecycle.Actor, submissionID string) (*models.Submission, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, err
	}

	var updated models.Submission
	var at time.Time
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		at = s.now()

		current, err := tx.LockSubmission(submissionID)
		if err != nil {
			return notFound(err, "submission", submissionID)
		}
		if updated, err = lifecycle.StartReview(*current, reviewer); err != nil {
			return err
		}
		if err := tx.SaveSubmission(&updated); err != nil {
			return fmt.Errorf("failed to save submission: %w", err)
		}
		if err := mirrorSubmissionStatus(tx, &updated); err != nil {
			return err
		}
		return recordTransition(tx, models.EntitySubmission, updated.ID, updated.CampaignID,
			string(current.Status), string(updated.Status), reviewer.ID, "", at)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, models.LifecycleEvent{
		Type:            models.EventSubmissionReviewStarted,
		CampaignID:      updated.CampaignID,
		ActorID:         updated.ActorID,
		ParticipationID: updated.ParticipationID,
		SubmissionID:    updated.ID,
		Status:          string(updated.Status),
		TriggeredBy:     reviewer.ID,
		OccurredAt:      at,
	})
	return &updated, nil
}

// Grade records a reviewer's score and outcome. The campaign row is locked
// first so that position assignments within one campaign serialize, which
// keeps each ranked position held by at most one submission.
func (s *SubmissionService) Grade(ctx context.Context, reviewer *lifecycle.Actor, submissionID string, req models.GradeSubmissionRequest) (*models.Submission, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, err
	}

	target, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, notFound(err, "submission", submissionID)
	}

	var graded models.Submission
	err = s.store.Transaction(ctx, func(tx store.Tx) error {
		now := s.now()

		campaign, err := tx.LockCampaign(target.CampaignID)
		if err != nil {
			return notFound(err, "campaign", target.CampaignID)
		}
		current, err := tx.LockSubmission(submissionID)
		if err != nil {
			return notFound(err, "submission", submissionID)
		}

		if graded, err = lifecycle.ApplyGrade(*current, reviewer, campaign, req, now); err != nil {
			return err
		}

		if graded.Position != nil {
			holder, err := tx.FindSubmissionByPosition(campaign.ID, *graded.Position)
			if err != nil {
				return fmt.Errorf("failed to check position: %w", err)
			}
			if holder != nil && holder.ID != graded.ID {
				return lifecycle.NewError(lifecycle.CodePositionConflict,
					"position %d is already held by submission %s", *graded.Position, holder.ID)
			}
		}

		if err := tx.SaveSubmission(&graded); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return lifecycle.ErrPositionConflict
			}
			return fmt.Errorf("failed to save submission: %w", err)
		}
		if err := mirrorSubmissionStatus(tx, &graded); err != nil {
			return err
		}
		return recordTransition(tx, models.EntitySubmission, graded.ID, graded.CampaignID,
			string(current.Status), string(graded.Status), reviewer.ID, graded.Feedback, now)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": graded.ID,
		"status":        graded.Status,
		"score":         *graded.Score,
		"reviewer_id":   reviewer.ID,
	}).Info("Submission graded")

	publish(ctx, s.publisher, models.LifecycleEvent{
		Type:            models.EventSubmissionGraded,
		CampaignID:      graded.CampaignID,
		ActorID:         graded.ActorID,
		ParticipationID: graded.ParticipationID,
		SubmissionID:    graded.ID,
		Status:          string(graded.Status),
		TriggeredBy:     reviewer.ID,
		OccurredAt:      *graded.GradedAt,
	})
	return &graded, nil
}

// mirrorSubmissionStatus copies the submission status onto its participation
func mirrorSubmissionStatus(tx store.Tx, sub *models.Submission) error {
	participation, err := tx.LockParticipation(sub.ParticipationID)
	if err != nil {
		return fmt.Errorf("failed to lock participation %s: %w", sub.ParticipationID, err)
	}
	participation.SubmissionStatus = sub.Status
	if err := tx.SaveParticipation(participation); err != nil {
		return fmt.Errorf("failed to update participation: %w", err)
	}
	return nil
}

// Get returns a submission visible to the actor: its owner or a reviewer
func (s *SubmissionService) Get(ctx context.Context, actor *lifecycle.Actor, submissionID string) (*models.Submission, error) {
	if actor == nil {
		return nil, lifecycle.ErrForbidden
	}
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, notFound(err, "submission", submissionID)
	}
	if sub.ActorID != actor.ID && !actor.CanReview() {
		return nil, lifecycle.ErrForbidden
	}
	return sub, nil
}

// List returns the submissions of a campaign for review
func (s *SubmissionService) List(ctx context.Context, reviewer *lifecycle.Actor, filter store.SubmissionFilter) ([]models.Submission, utils.PaginationResponse, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, utils.PaginationResponse{}, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, utils.PaginationResponse{}, lifecycle.NewError(lifecycle.CodeValidation, "unknown submission status %q", filter.Status)
	}
	filter.PageRequest = filter.Normalized()

	submissions, total, err := s.store.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, utils.PaginationResponse{}, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, filter.Result(total), nil
}

// Leaderboard returns the graded submissions of a campaign in rank order
func (s *SubmissionService) Leaderboard(ctx context.Context, campaignID string) ([]models.LeaderboardEntry, error) {
	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return nil, notFound(err, "campaign", campaignID)
	}
	ranked, err := s.store.ListRankedSubmissions(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(ranked))
	for _, sub := range ranked {
		entries = append(entries, models.LeaderboardEntry{
			SubmissionID: sub.ID,
			ActorID:      sub.ActorID,
			ProjectTitle: sub.ProjectTitle,
			Status:       sub.Status,
			Score:        sub.Score,
			Grade:        sub.Grade,
			Position:     sub.Position,
			PrizeAmount:  sub.PrizeAmount,
		})
	}
	return entries, nil
}

// History returns the status changes of a submission
func (s *SubmissionService) History(ctx context.Context, reviewer *lifecycle.Actor, submissionID string) ([]models.StatusHistory, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, err
	}
	if _, err := s.store.GetSubmission(ctx, submissionID); err != nil {
		return nil, notFound(err, "submission", submissionID)
	}
	return s.store.ListStatusHistory(ctx, models.EntitySubmission, submissionID)
}
