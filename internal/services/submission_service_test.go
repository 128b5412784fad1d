package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"
)

func TestSubmitMirrorsStatusOntoParticipation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	sub := h.approvedSubmission(t, "student-1")
	if sub.Status != models.SubmissionSubmitted {
		t.Fatalf("status = %s, want submitted", sub.Status)
	}

	view, err := h.participation.GetMine(ctx, student("student-1"), "campaign-1")
	if err != nil {
		t.Fatalf("GetMine: %v", err)
	}
	if view.Participation.SubmissionStatus != models.SubmissionSubmitted {
		t.Fatalf("mirror = %s, want submitted", view.Participation.SubmissionStatus)
	}
	if view.Submission == nil || view.Submission.ID != sub.ID {
		t.Fatalf("view submission = %+v", view.Submission)
	}

	history, err := h.submission.History(ctx, reviewerActor(), sub.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].OldStatus != "not_submitted" || history[0].NewStatus != "submitted" {
		t.Fatalf("history = %+v", history)
	}

	want := []string{
		models.EventParticipationRegistered,
		models.EventParticipationReviewed,
		models.EventSubmissionCreated,
	}
	got := h.publisher.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestSubmitRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("no participation", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.submission.Submit(ctx, student("student-1"), "campaign-1", validProject("p"))
		assertCode(t, err, lifecycle.ErrNotApproved)
	})

	t.Run("pending participation", func(t *testing.T) {
		h := newHarness(t)
		if _, err := h.participation.Register(ctx, student("student-1"), "campaign-1", validForm()); err != nil {
			t.Fatalf("Register: %v", err)
		}
		_, err := h.submission.Submit(ctx, student("student-1"), "campaign-1", validProject("p"))
		assertCode(t, err, lifecycle.ErrNotApproved)
	})

	t.Run("second submission", func(t *testing.T) {
		h := newHarness(t)
		h.approvedSubmission(t, "student-1")
		_, err := h.submission.Submit(ctx, student("student-1"), "campaign-1", validProject("again"))
		assertCode(t, err, lifecycle.ErrAlreadySubmitted)
	})

	t.Run("window closed", func(t *testing.T) {
		h := newHarness(t)
		p, err := h.participation.Register(ctx, student("student-1"), "campaign-1", validForm())
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if _, err := h.participation.Review(ctx, reviewerActor(), p.ID, models.ReviewParticipationRequest{Status: models.ParticipationApproved}); err != nil {
			t.Fatalf("Review: %v", err)
		}
		late := NewSubmissionService(h.store, h.publisher, func() time.Time { return base.Add(21 * 24 * time.Hour) })
		_, err = late.Submit(ctx, student("student-1"), "campaign-1", validProject("p"))
		assertCode(t, err, lifecycle.ErrSubmissionWindowClosed)
	})

	t.Run("missing title", func(t *testing.T) {
		h := newHarness(t)
		p, err := h.participation.Register(ctx, student("student-1"), "campaign-1", validForm())
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if _, err := h.participation.Review(ctx, reviewerActor(), p.ID, models.ReviewParticipationRequest{Status: models.ParticipationApproved}); err != nil {
			t.Fatalf("Review: %v", err)
		}
		_, err = h.submission.Submit(ctx, student("student-1"), "campaign-1", models.SubmitProjectRequest{ProjectDescription: "d"})
		assertCode(t, err, lifecycle.ErrValidation)
	})
}

func TestStartReviewThenGrade(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.approvedSubmission(t, "student-1")

	reviewing, err := h.submission.StartReview(ctx, reviewerActor(), sub.ID)
	if err != nil {
		t.Fatalf("StartReview: %v", err)
	}
	if reviewing.Status != models.SubmissionUnderReview {
		t.Fatalf("status = %s", reviewing.Status)
	}

	graded, err := h.submission.Grade(ctx, reviewerActor(), sub.ID, models.GradeSubmissionRequest{Score: ptrFloat(91), Status: models.SubmissionWinner})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if graded.Grade != "A" || graded.Position == nil || *graded.Position != 1 {
		t.Fatalf("graded = %+v", graded)
	}
	if graded.PrizeAmount == nil || *graded.PrizeAmount != 1000 {
		t.Fatalf("prize = %v, want campaign first prize", graded.PrizeAmount)
	}

	view, err := h.participation.GetMine(ctx, student("student-1"), "campaign-1")
	if err != nil {
		t.Fatalf("GetMine: %v", err)
	}
	if view.Participation.SubmissionStatus != models.SubmissionWinner {
		t.Fatalf("mirror = %s, want winner", view.Participation.SubmissionStatus)
	}

	_, err = h.submission.Grade(ctx, reviewerActor(), sub.ID, models.GradeSubmissionRequest{Score: ptrFloat(50)})
	assertCode(t, err, lifecycle.ErrAlreadyFinalized)
}

func TestGradeInvalidScoreLeavesSubmissionUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.approvedSubmission(t, "student-1")

	_, err := h.submission.Grade(ctx, reviewerActor(), sub.ID, models.GradeSubmissionRequest{Score: ptrFloat(150)})
	assertCode(t, err, lifecycle.ErrInvalidScore)

	stored, err := h.submission.Get(ctx, reviewerActor(), sub.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != models.SubmissionSubmitted || stored.Score != nil {
		t.Fatalf("stored = %s score=%v", stored.Status, stored.Score)
	}
}

func TestGradePositionConflict(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := h.approvedSubmission(t, "student-1")
	second := h.approvedSubmission(t, "student-2")

	if _, err := h.submission.Grade(ctx, reviewerActor(), first.ID, models.GradeSubmissionRequest{Score: ptrFloat(95), Status: models.SubmissionWinner}); err != nil {
		t.Fatalf("grade first: %v", err)
	}
	_, err := h.submission.Grade(ctx, reviewerActor(), second.ID, models.GradeSubmissionRequest{Score: ptrFloat(93), Status: models.SubmissionWinner})
	assertCode(t, err, lifecycle.ErrPositionConflict)

	// A different slot is still available
	runner, err := h.submission.Grade(ctx, reviewerActor(), second.ID, models.GradeSubmissionRequest{Score: ptrFloat(93), Status: models.SubmissionRunnerUp})
	if err != nil {
		t.Fatalf("grade runner-up: %v", err)
	}
	if *runner.Position != 2 || *runner.PrizeAmount != 500 {
		t.Fatalf("runner-up = position %d prize %v", *runner.Position, *runner.PrizeAmount)
	}
}

func TestConcurrentGradingSamePosition(t *testing.T) {
	h := newHarness(t)
	ids := []string{
		h.approvedSubmission(t, "student-1").ID,
		h.approvedSubmission(t, "student-2").ID,
		h.approvedSubmission(t, "student-3").ID,
	}

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = h.submission.Grade(context.Background(), reviewerActor(), id,
				models.GradeSubmissionRequest{Score: ptrFloat(90), Status: models.SubmissionGraded, Position: ptrInt(3)})
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, lifecycle.ErrPositionConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want 1", succeeded)
	}

	board, err := h.submission.Leaderboard(context.Background(), "campaign-1")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(board) != 1 || *board[0].Position != 3 {
		t.Fatalf("leaderboard = %+v", board)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.approvedSubmission(t, "student-1")
	b := h.approvedSubmission(t, "student-2")
	c := h.approvedSubmission(t, "student-3")
	h.approvedSubmission(t, "student-4") // ungraded, left off the board

	grades := []struct {
		id  string
		req models.GradeSubmissionRequest
	}{
		{a.ID, models.GradeSubmissionRequest{Score: ptrFloat(70)}},
		{b.ID, models.GradeSubmissionRequest{Score: ptrFloat(88), Status: models.SubmissionRunnerUp}},
		{c.ID, models.GradeSubmissionRequest{Score: ptrFloat(80)}},
	}
	for _, g := range grades {
		if _, err := h.submission.Grade(ctx, reviewerActor(), g.id, g.req); err != nil {
			t.Fatalf("Grade %s: %v", g.id, err)
		}
	}

	board, err := h.submission.Leaderboard(ctx, "campaign-1")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	want := []string{b.ID, c.ID, a.ID}
	if len(board) != len(want) {
		t.Fatalf("board size = %d, want %d", len(board), len(want))
	}
	for i, id := range want {
		if board[i].SubmissionID != id {
			t.Fatalf("board[%d] = %s, want %s", i, board[i].SubmissionID, id)
		}
	}

	_, err = h.submission.Leaderboard(ctx, "missing")
	assertCode(t, err, lifecycle.ErrNotFound)
}

func TestSubmissionVisibility(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.approvedSubmission(t, "student-1")

	if _, err := h.submission.Get(ctx, student("student-1"), sub.ID); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
	_, err := h.submission.Get(ctx, student("student-2"), sub.ID)
	assertCode(t, err, lifecycle.ErrForbidden)

	list, page, err := h.submission.List(ctx, reviewerActor(), store.SubmissionFilter{CampaignID: "campaign-1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || page.Total != 1 {
		t.Fatalf("list = %d total = %d", len(list), page.Total)
	}
	_, _, err = h.submission.List(ctx, student("student-1"), store.SubmissionFilter{})
	assertCode(t, err, lifecycle.ErrForbidden)
}
