package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"
)

func TestRegisterCreatesPendingParticipation(t *testing.T) {
	h := newHarness(t)

	p, err := h.participation.Register(context.Background(), student("student-1"), "campaign-1", validForm())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p.Status != models.ParticipationPending {
		t.Fatalf("status = %s, want pending", p.Status)
	}
	if !p.SubmittedAt.Equal(base) {
		t.Fatalf("submitted_at = %v, want %v", p.SubmittedAt, base)
	}
	if got := h.publisher.types(); len(got) != 1 || got[0] != models.EventParticipationRegistered {
		t.Fatalf("events = %v", got)
	}
	history := h.store.History()
	if len(history) != 1 || history[0].NewStatus != string(models.ParticipationPending) || history[0].OldStatus != "" {
		t.Fatalf("history = %+v", history)
	}
}

func TestRegisterRejections(t *testing.T) {
	closed := openCampaign()
	closed.ID = "campaign-closed"
	closed.Slug = "closed"
	closed.RegistrationEndDate = at(-1)

	tests := []struct {
		name     string
		actor    *lifecycle.Actor
		campaign string
		form     models.RegisterParticipationRequest
		want     *lifecycle.Error
	}{
		{"anonymous", nil, "campaign-1", validForm(), lifecycle.ErrForbidden},
		{"reviewer role", reviewerActor(), "campaign-1", validForm(), lifecycle.ErrForbidden},
		{"unverified", &lifecycle.Actor{ID: "s", Role: models.RoleStudent, VerificationStatus: models.VerificationPending}, "campaign-1", validForm(), lifecycle.ErrForbidden},
		{"registration ended", student("student-1"), "campaign-closed", validForm(), lifecycle.ErrCampaignClosed},
		{"missing campaign", student("student-1"), "nope", validForm(), lifecycle.ErrNotFound},
		{"empty form", student("student-1"), "campaign-1", models.RegisterParticipationRequest{Motivation: " "}, lifecycle.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.store.PutCampaign(closed)
			_, err := h.participation.Register(context.Background(), tt.actor, tt.campaign, tt.form)
			assertCode(t, err, tt.want)
			if len(h.store.History()) != 0 {
				t.Fatal("rejected registration left history behind")
			}
			if len(h.publisher.types()) != 0 {
				t.Fatal("rejected registration published an event")
			}
		})
	}
}

func TestRegisterTwiceIsDuplicate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.participation.Register(ctx, student("student-1"), "campaign-1", validForm()); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := h.participation.Register(ctx, student("student-1"), "campaign-1", validForm())
	assertCode(t, err, lifecycle.ErrDuplicateParticipation)
}

func TestConcurrentRegisterCreatesOneParticipation(t *testing.T) {
	h := newHarness(t)
	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.participation.Register(context.Background(), student("student-1"), "campaign-1", validForm())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, lifecycle.ErrDuplicateParticipation):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want 1", succeeded)
	}
	if n := h.store.CountParticipations("campaign-1", "student-1"); n != 1 {
		t.Fatalf("participations = %d, want 1", n)
	}
}

func TestReviewApprovesAndMirrorsNotSubmitted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p, err := h.participation.Register(ctx, student("student-1"), "campaign-1", validForm())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	reviewed, err := h.participation.Review(ctx, reviewerActor(), p.ID, models.ReviewParticipationRequest{Status: models.ParticipationApproved, Notes: " ok "})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if reviewed.Status != models.ParticipationApproved || reviewed.SubmissionStatus != models.SubmissionNotSubmitted {
		t.Fatalf("reviewed = %s/%s", reviewed.Status, reviewed.SubmissionStatus)
	}
	if reviewed.ReviewedBy != "reviewer-1" || reviewed.ReviewNotes != "ok" {
		t.Fatalf("review fields = %q %q", reviewed.ReviewedBy, reviewed.ReviewNotes)
	}

	history, err := h.participation.History(ctx, reviewerActor(), p.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 || history[1].OldStatus != "pending" || history[1].NewStatus != "approved" {
		t.Fatalf("history = %+v", history)
	}
}

func TestReviewRequiresReviewer(t *testing.T) {
	h := newHarness(t)
	p, err := h.participation.Register(context.Background(), student("student-1"), "campaign-1", validForm())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err = h.participation.Review(context.Background(), student("student-2"), p.ID, models.ReviewParticipationRequest{Status: models.ParticipationApproved})
	assertCode(t, err, lifecycle.ErrForbidden)
}

func TestConcurrentReviewExactlyOneWins(t *testing.T) {
	h := newHarness(t)
	p, err := h.participation.Register(context.Background(), student("student-1"), "campaign-1", validForm())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	outcomes := []models.ParticipationStatus{models.ParticipationApproved, models.ParticipationRejected}
	errs := make([]error, len(outcomes))
	var wg sync.WaitGroup
	for i, outcome := range outcomes {
		wg.Add(1)
		go func(i int, outcome models.ParticipationStatus) {
			defer wg.Done()
			_, errs[i] = h.participation.Review(context.Background(), reviewerActor(), p.ID, models.ReviewParticipationRequest{Status: outcome})
		}(i, outcome)
	}
	wg.Wait()

	succeeded, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, lifecycle.ErrAlreadyReviewed):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || conflicts != 1 {
		t.Fatalf("succeeded=%d conflicts=%d", succeeded, conflicts)
	}
	if got := len(h.store.History()); got != 2 {
		t.Fatalf("history rows = %d, want 2", got)
	}
}

func TestGetMineAndList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, id := range []string{"student-1", "student-2"} {
		if _, err := h.participation.Register(ctx, student(id), "campaign-1", validForm()); err != nil {
			t.Fatalf("Register %s: %v", id, err)
		}
	}

	view, err := h.participation.GetMine(ctx, student("student-2"), "campaign-1")
	if err != nil {
		t.Fatalf("GetMine: %v", err)
	}
	if view.Participation.ActorID != "student-2" || view.Submission != nil {
		t.Fatalf("view = %+v", view)
	}

	_, err = h.participation.GetMine(ctx, student("student-3"), "campaign-1")
	assertCode(t, err, lifecycle.ErrNotFound)

	list, page, err := h.participation.List(ctx, reviewerActor(), store.ParticipationFilter{CampaignID: "campaign-1", Status: models.ParticipationPending})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || page.Total != 2 {
		t.Fatalf("list = %d total = %d", len(list), page.Total)
	}

	_, _, err = h.participation.List(ctx, reviewerActor(), store.ParticipationFilter{Status: "bogus"})
	assertCode(t, err, lifecycle.ErrValidation)
}

func TestPublishFailureDoesNotUndoRegistration(t *testing.T) {
	h := newHarness(t)
	h.publisher.err = errors.New("broker down")

	if _, err := h.participation.Register(context.Background(), student("student-1"), "campaign-1", validForm()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if n := h.store.CountParticipations("campaign-1", "student-1"); n != 1 {
		t.Fatalf("participations = %d, want 1", n)
	}
}
