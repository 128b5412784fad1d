package services

import (
	"context"
	"testing"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
)

func TestGetDecisionFollowsLifecycle(t *testing.T) {
	h := newHarness(t)
	eligibility := NewEligibilityService(h.store, fixedClock)
	ctx := context.Background()

	decide := func(actor *lifecycle.Actor) lifecycle.Decision {
		t.Helper()
		d, err := eligibility.GetDecision(ctx, actor, "campaign-1")
		if err != nil {
			t.Fatalf("GetDecision: %v", err)
		}
		return d
	}

	if d := decide(nil); d.Kind != lifecycle.DecisionNotAuthenticated {
		t.Fatalf("anonymous = %s", d.Kind)
	}
	if d := decide(student("student-1")); d.Kind != lifecycle.DecisionCanRegister || d.Action != lifecycle.ActionRegister {
		t.Fatalf("before register = %+v", d)
	}

	p, err := h.participation.Register(ctx, student("student-1"), "campaign-1", validForm())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if d := decide(student("student-1")); d.Kind != lifecycle.DecisionAwaitingApproval || d.Enabled() {
		t.Fatalf("pending = %+v", d)
	}

	if _, err := h.participation.Review(ctx, reviewerActor(), p.ID, models.ReviewParticipationRequest{Status: models.ParticipationApproved}); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if d := decide(student("student-1")); d.Kind != lifecycle.DecisionCanSubmit {
		t.Fatalf("approved = %+v", d)
	}

	sub, err := h.submission.Submit(ctx, student("student-1"), "campaign-1", validProject("p"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if d := decide(student("student-1")); d.Kind != lifecycle.DecisionUnderReview {
		t.Fatalf("submitted = %+v", d)
	}

	if _, err := h.submission.Grade(ctx, reviewerActor(), sub.ID, models.GradeSubmissionRequest{Score: ptrFloat(40), Status: models.SubmissionNotSelected}); err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if d := decide(student("student-1")); d.Kind != lifecycle.DecisionNotSelected || !d.Terminal() {
		t.Fatalf("not selected = %+v", d)
	}
}

func TestGetDecisionUnknownCampaign(t *testing.T) {
	h := newHarness(t)
	_, err := NewEligibilityService(h.store, fixedClock).GetDecision(context.Background(), student("student-1"), "missing")
	assertCode(t, err, lifecycle.ErrNotFound)
}
