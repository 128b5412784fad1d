package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"
	"github.com/onegreenvn/student-campaigns-backend/internal/testkit"
)

func campaignRequest(title string) *models.CampaignRequest {
	return &models.CampaignRequest{
		Title:                 title,
		StartDate:             base,
		EndDate:               base.Add(60 * 24 * time.Hour),
		RegistrationStartDate: at(0),
		RegistrationEndDate:   at(10 * 24 * time.Hour),
		SubmissionStartDate:   at(11 * 24 * time.Hour),
		SubmissionEndDate:     at(40 * 24 * time.Hour),
	}
}

func TestCreateCampaign(t *testing.T) {
	st := testkit.NewMemStore()
	svc := NewCampaignService(st, lifecycle.TimelinePolicy{}, fixedClock)
	ctx := context.Background()

	created, err := svc.CreateCampaign(ctx, adminActor(), campaignRequest("Green Schools Hackathon"))
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if created.Status != models.CampaignDraft || created.Slug != "green-schools-hackathon" {
		t.Fatalf("created = %s %s", created.Status, created.Slug)
	}
	if created.CampaignType != models.CampaignTypeCustom {
		t.Fatalf("type = %s, want custom default", created.CampaignType)
	}
	if len(created.Warnings) != 0 {
		t.Fatalf("warnings = %+v", created.Warnings)
	}

	again, err := svc.CreateCampaign(ctx, adminActor(), campaignRequest("Green Schools Hackathon"))
	if err != nil {
		t.Fatalf("second CreateCampaign: %v", err)
	}
	if again.Slug == created.Slug {
		t.Fatalf("slug %q reused", again.Slug)
	}

	_, err = svc.CreateCampaign(ctx, reviewerActor(), campaignRequest("x"))
	assertCode(t, err, lifecycle.ErrForbidden)
}

func TestCreateCampaignTimeline(t *testing.T) {
	ctx := context.Background()

	overlapping := campaignRequest("Overlap")
	overlapping.SubmissionStartDate = at(5 * 24 * time.Hour)

	t.Run("overlap is a warning by default", func(t *testing.T) {
		svc := NewCampaignService(testkit.NewMemStore(), lifecycle.TimelinePolicy{}, fixedClock)
		created, err := svc.CreateCampaign(ctx, adminActor(), overlapping)
		if err != nil {
			t.Fatalf("CreateCampaign: %v", err)
		}
		if len(created.Warnings) != 1 || created.Warnings[0].Code != "SUBMISSION_BEFORE_REGISTRATION_END" {
			t.Fatalf("warnings = %+v", created.Warnings)
		}
	})

	t.Run("overlap blocks under strict ordering", func(t *testing.T) {
		svc := NewCampaignService(testkit.NewMemStore(), lifecycle.TimelinePolicy{StrictWindowOrdering: true}, fixedClock)
		_, err := svc.CreateCampaign(ctx, adminActor(), overlapping)
		assertCode(t, err, lifecycle.ErrValidation)
	})

	t.Run("end before start", func(t *testing.T) {
		bad := campaignRequest("Bad")
		bad.EndDate = bad.StartDate.Add(-time.Hour)
		svc := NewCampaignService(testkit.NewMemStore(), lifecycle.TimelinePolicy{}, fixedClock)
		_, err := svc.CreateCampaign(ctx, adminActor(), bad)
		assertCode(t, err, lifecycle.ErrValidation)

		issues := svc.ValidateTimeline(bad)
		if len(issues) == 0 || issues[0].Code != "END_NOT_AFTER_START" {
			t.Fatalf("issues = %+v", issues)
		}
	})
}

func TestCreateCampaignReturnsEveryBlockingIssue(t *testing.T) {
	ctx := context.Background()
	svc := NewCampaignService(testkit.NewMemStore(), lifecycle.TimelinePolicy{}, fixedClock)

	req := campaignRequest("Twice Broken")
	req.EndDate = base.Add(5 * 24 * time.Hour)
	req.RegistrationStartDate = at(20 * 24 * time.Hour)
	req.RegistrationEndDate = at(10 * 24 * time.Hour)

	var want []string
	for _, issue := range svc.ValidateTimeline(req) {
		if issue.Severity == lifecycle.SeverityError {
			want = append(want, issue.Code)
		}
	}
	if len(want) != 2 {
		t.Fatalf("expected two blocking issues from the validator, got %v", want)
	}

	check := func(t *testing.T, err error) {
		t.Helper()
		var le *lifecycle.Error
		if !errors.As(err, &le) || !errors.Is(err, lifecycle.ErrValidation) {
			t.Fatalf("error = %v, want validation error", err)
		}
		got := map[string]bool{}
		for _, issue := range le.Issues {
			got[issue.Code] = true
		}
		for _, code := range want {
			if !got[code] {
				t.Fatalf("issue %s missing from %+v", code, le.Issues)
			}
		}
		msg := le.Fields["registration_end_date"]
		if !strings.Contains(msg, "after registration start") || !strings.Contains(msg, "campaign end date") {
			t.Fatalf("registration_end_date details = %q, want both messages", msg)
		}
	}

	t.Run("create", func(t *testing.T) {
		_, err := svc.CreateCampaign(ctx, adminActor(), req)
		check(t, err)
	})

	t.Run("update", func(t *testing.T) {
		created, err := svc.CreateCampaign(ctx, adminActor(), campaignRequest("Fixable"))
		if err != nil {
			t.Fatalf("CreateCampaign: %v", err)
		}
		_, err = svc.UpdateCampaign(ctx, adminActor(), created.ID, req)
		check(t, err)
	})
}

func TestUpdateStatusTransitions(t *testing.T) {
	st := testkit.NewMemStore()
	svc := NewCampaignService(st, lifecycle.TimelinePolicy{}, fixedClock)
	ctx := context.Background()

	created, err := svc.CreateCampaign(ctx, adminActor(), campaignRequest("Flow"))
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}

	_, err = svc.UpdateStatus(ctx, adminActor(), created.ID, models.CampaignCompleted)
	assertCode(t, err, lifecycle.ErrValidation)

	for _, next := range []models.CampaignStatus{models.CampaignActive, models.CampaignCompleted} {
		updated, err := svc.UpdateStatus(ctx, adminActor(), created.ID, next)
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("status = %s, want %s", updated.Status, next)
		}
	}

	_, err = svc.UpdateCampaign(ctx, adminActor(), created.ID, campaignRequest("Renamed"))
	assertCode(t, err, lifecycle.ErrCampaignClosed)

	_, err = svc.UpdateStatus(ctx, adminActor(), "missing", models.CampaignActive)
	assertCode(t, err, lifecycle.ErrNotFound)
}

func TestCompleteEndedCampaignsCountsOnlyCommitted(t *testing.T) {
	st := testkit.NewMemStore()
	ended := openCampaign()
	ended.EndDate = base.Add(-time.Minute)
	st.PutCampaign(ended)

	svc := NewCampaignService(st, lifecycle.TimelinePolicy{}, fixedClock)
	st.FailCommits(errors.New("connection reset during commit"))

	n, err := svc.CompleteEndedCampaigns(context.Background())
	if err != nil {
		t.Fatalf("CompleteEndedCampaigns: %v", err)
	}
	if n != 0 {
		t.Fatalf("completed = %d, want 0 when the commit fails", n)
	}
	c, err := svc.GetCampaign(context.Background(), ended.ID)
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	if c.Status != models.CampaignActive {
		t.Fatalf("status = %s, want active", c.Status)
	}

	st.FailCommits(nil)
	if n, err = svc.CompleteEndedCampaigns(context.Background()); err != nil || n != 1 {
		t.Fatalf("retry: n = %d, err = %v", n, err)
	}
}

func TestCompleteEndedCampaigns(t *testing.T) {
	st := testkit.NewMemStore()

	ended := openCampaign()
	ended.ID = "ended"
	ended.Slug = "ended"
	ended.EndDate = base.Add(-time.Minute)
	st.PutCampaign(ended)

	running := openCampaign()
	st.PutCampaign(running)

	draft := openCampaign()
	draft.ID = "draft"
	draft.Slug = "draft"
	draft.Status = models.CampaignDraft
	draft.EndDate = base.Add(-time.Minute)
	st.PutCampaign(draft)

	svc := NewCampaignService(st, lifecycle.TimelinePolicy{}, fixedClock)
	n, err := svc.CompleteEndedCampaigns(context.Background())
	if err != nil {
		t.Fatalf("CompleteEndedCampaigns: %v", err)
	}
	if n != 1 {
		t.Fatalf("completed = %d, want 1", n)
	}

	want := map[string]models.CampaignStatus{
		"ended":      models.CampaignCompleted,
		"campaign-1": models.CampaignActive,
		"draft":      models.CampaignDraft,
	}
	for id, status := range want {
		c, err := svc.GetCampaign(context.Background(), id)
		if err != nil {
			t.Fatalf("GetCampaign(%s): %v", id, err)
		}
		if c.Status != status {
			t.Fatalf("%s status = %s, want %s", id, c.Status, status)
		}
	}
}

func TestListCampaigns(t *testing.T) {
	st := testkit.NewMemStore()
	svc := NewCampaignService(st, lifecycle.TimelinePolicy{}, fixedClock)
	ctx := context.Background()
	for _, title := range []string{"Solar Sprint", "Water Week", "Solar Summit"} {
		if _, err := svc.CreateCampaign(ctx, adminActor(), campaignRequest(title)); err != nil {
			t.Fatalf("CreateCampaign(%s): %v", title, err)
		}
	}

	list, page, err := svc.ListCampaigns(ctx, store.CampaignFilter{Search: "solar"})
	if err != nil {
		t.Fatalf("ListCampaigns: %v", err)
	}
	if len(list) != 2 || page.Total != 2 {
		t.Fatalf("list = %d total = %d", len(list), page.Total)
	}

	_, _, err = svc.ListCampaigns(ctx, store.CampaignFilter{Status: "archived"})
	assertCode(t, err, lifecycle.ErrValidation)
}
