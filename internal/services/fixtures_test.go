package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/testkit"
)

var base = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return base }

func at(d time.Duration) *time.Time {
	t := base.Add(d)
	return &t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.LifecycleEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.LifecycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func student(id string) *lifecycle.Actor {
	return &lifecycle.Actor{ID: id, Role: models.RoleStudent, VerificationStatus: models.VerificationApproved}
}

func reviewerActor() *lifecycle.Actor {
	return &lifecycle.Actor{ID: "reviewer-1", Role: models.RoleReviewer}
}

func adminActor() *lifecycle.Actor {
	return &lifecycle.Actor{ID: "admin-1", Role: models.RoleAdmin}
}

// openCampaign has both registration and submission open at base
func openCampaign() models.Campaign {
	first, second := 1000.0, 500.0
	return models.Campaign{
		ID:                    "campaign-1",
		Title:                 "Green Schools",
		Slug:                  "green-schools",
		Status:                models.CampaignActive,
		CampaignType:          models.CampaignTypeCustom,
		StartDate:             base.Add(-10 * 24 * time.Hour),
		EndDate:               base.Add(30 * 24 * time.Hour),
		RegistrationStartDate: at(-5 * 24 * time.Hour),
		RegistrationEndDate:   at(5 * 24 * time.Hour),
		SubmissionStartDate:   at(-24 * time.Hour),
		SubmissionEndDate:     at(20 * 24 * time.Hour),
		FirstPrize:            &first,
		SecondPrize:           &second,
	}
}

type harness struct {
	store         *testkit.MemStore
	publisher     *recordingPublisher
	participation *ParticipationService
	submission    *SubmissionService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := testkit.NewMemStore()
	st.PutCampaign(openCampaign())
	pub := &recordingPublisher{}
	return &harness{
		store:         st,
		publisher:     pub,
		participation: NewParticipationService(st, pub, fixedClock),
		submission:    NewSubmissionService(st, pub, fixedClock),
	}
}

func validForm() models.RegisterParticipationRequest {
	return models.RegisterParticipationRequest{Motivation: "greener campus", Experience: "two hackathons"}
}

func validProject(title string) models.SubmitProjectRequest {
	return models.SubmitProjectRequest{ProjectTitle: title, ProjectDescription: "tracks compost bins"}
}

// approvedSubmission registers, approves and submits for the given student
func (h *harness) approvedSubmission(t *testing.T, studentID string) *models.Submission {
	t.Helper()
	ctx := context.Background()
	p, err := h.participation.Register(ctx, student(studentID), "campaign-1", validForm())
	if err != nil {
		t.Fatalf("register %s: %v", studentID, err)
	}
	if _, err := h.participation.Review(ctx, reviewerActor(), p.ID, models.ReviewParticipationRequest{Status: models.ParticipationApproved}); err != nil {
		t.Fatalf("approve %s: %v", studentID, err)
	}
	sub, err := h.submission.Submit(ctx, student(studentID), "campaign-1", validProject("project of "+studentID))
	if err != nil {
		t.Fatalf("submit %s: %v", studentID, err)
	}
	return sub
}

func assertCode(t *testing.T, err error, target *lifecycle.Error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %s", err, target.Code)
	}
}

func ptrFloat(v float64) *float64 { return &v }

func ptrInt(v int) *int { return &v }
