package services

import (
	"context"
	"fmt"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"
)

// EligibilityService answers "what can this actor do next" for a campaign
type EligibilityService struct {
	store store.Reader
	now   func() time.Time
}

func NewEligibilityService(st store.Reader, now func() time.Time) *EligibilityService {
	if now == nil {
		now = time.Now
	}
	return &EligibilityService{store: st, now: now}
}

// GetDecision loads the actor's current records and evaluates them. A nil
// actor is an anonymous visitor.
func (s *EligibilityService) GetDecision(ctx context.Context, actor *lifecycle.Actor, campaignID string) (lifecycle.Decision, error) {
	campaign, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return lifecycle.Decision{}, notFound(err, "campaign", campaignID)
	}

	in := lifecycle.Input{Actor: actor, Campaign: campaign, Now: s.now()}
	if actor != nil {
		if in.Participation, err = s.store.FindParticipation(ctx, campaignID, actor.ID); err != nil {
			return lifecycle.Decision{}, fmt.Errorf("failed to get participation: %w", err)
		}
		if in.Participation != nil {
			if in.Submission, err = s.store.FindSubmissionByParticipation(ctx, in.Participation.ID); err != nil {
				return lifecycle.Decision{}, fmt.Errorf("failed to get submission: %w", err)
			}
		}
	}
	return lifecycle.Decide(in)
}
