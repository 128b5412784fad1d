//go:build integration

package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/onegreenvn/student-campaigns-backend/internal/database"
	"github.com/onegreenvn/student-campaigns-backend/internal/database/repository"
	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/services"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"
)

// Run with: DATABASE_URL=postgres://... go test -tags integration ./internal/database/repository/
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		t.Fatalf("enable pgcrypto: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedCampaign stores an active campaign whose windows are open at now and
// removes everything written under it when the test ends.
func seedCampaign(t *testing.T, db *gorm.DB, now time.Time) models.Campaign {
	t.Helper()
	day := 24 * time.Hour
	regStart, regEnd := now.Add(-5*day), now.Add(5*day)
	subStart, subEnd := now.Add(-day), now.Add(20*day)
	first, second := 1000.0, 500.0
	id := uuid.NewString()
	c := models.Campaign{
		ID:                    id,
		CreatorID:             uuid.NewString(),
		Title:                 "Integration " + id,
		Slug:                  "integration-" + id,
		Status:                models.CampaignActive,
		CampaignType:          models.CampaignTypeCustom,
		StartDate:             now.Add(-10 * day),
		EndDate:               now.Add(30 * day),
		RegistrationStartDate: &regStart,
		RegistrationEndDate:   &regEnd,
		SubmissionStartDate:   &subStart,
		SubmissionEndDate:     &subEnd,
		FirstPrize:            &first,
		SecondPrize:           &second,
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	t.Cleanup(func() {
		for _, m := range []any{&models.StatusHistory{}, &models.Submission{}, &models.Participation{}} {
			db.Where("campaign_id = ?", id).Delete(m)
		}
		db.Delete(&models.Campaign{}, "id = ?", id)
	})
	return c
}

type pgHarness struct {
	store         *repository.LifecycleStore
	participation *services.ParticipationService
	submission    *services.SubmissionService
	reviewer      *lifecycle.Actor
	campaign      models.Campaign
}

func newPGHarness(t *testing.T) *pgHarness {
	db := openTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)
	clock := func() time.Time { return now }
	st := repository.NewLifecycleStore(db)
	return &pgHarness{
		store:         st,
		participation: services.NewParticipationService(st, services.NoopPublisher{}, clock),
		submission:    services.NewSubmissionService(st, services.NoopPublisher{}, clock),
		reviewer:      &lifecycle.Actor{ID: uuid.NewString(), Role: models.RoleReviewer},
		campaign:      seedCampaign(t, db, now),
	}
}

func pgStudent() *lifecycle.Actor {
	return &lifecycle.Actor{ID: uuid.NewString(), Role: models.RoleStudent, VerificationStatus: models.VerificationApproved}
}

func (h *pgHarness) approvedSubmission(t *testing.T) *models.Submission {
	t.Helper()
	ctx := context.Background()
	actor := pgStudent()
	p, err := h.participation.Register(ctx, actor, h.campaign.ID,
		models.RegisterParticipationRequest{Motivation: "greener campus", Experience: "two hackathons"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := h.participation.Review(ctx, h.reviewer, p.ID,
		models.ReviewParticipationRequest{Status: models.ParticipationApproved}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	sub, err := h.submission.Submit(ctx, actor, h.campaign.ID,
		models.SubmitProjectRequest{ProjectTitle: "Compost tracker", ProjectDescription: "tracks compost bins"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return sub
}

func TestPostgresConcurrentRegistration(t *testing.T) {
	h := newPGHarness(t)
	actor := pgStudent()
	form := models.RegisterParticipationRequest{Motivation: "greener campus", Experience: "two hackathons"}

	errs := make([]error, 6)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.participation.Register(context.Background(), actor, h.campaign.ID, form)
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
}

func TestPostgresConcurrentGradingSamePosition(t *testing.T) {
	h := newPGHarness(t)
	ids := []string{h.approvedSubmission(t).ID, h.approvedSubmission(t).ID, h.approvedSubmission(t).ID}

	score := 90.0
	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = h.submission.Grade(context.Background(), h.reviewer, id,
				models.GradeSubmissionRequest{Score: &score, Status: models.SubmissionWinner})
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

	board, err := h.submission.Leaderboard(context.Background(), h.campaign.ID)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].Position == nil || *board[0].Position != 1 {
		t.Fatalf("leaderboard = %+v", board)
	}
}

func TestPostgresPositionIndexRejectsDuplicates(t *testing.T) {
	h := newPGHarness(t)
	first, second := h.approvedSubmission(t), h.approvedSubmission(t)
	ctx := context.Background()

	setPosition := func(s *models.Submission, position *int) error {
		return h.store.Transaction(ctx, func(tx store.Tx) error {
			s.Position = position
			return tx.SaveSubmission(s)
		})
	}

	two := 2
	if err := setPosition(first, &two); err != nil {
		t.Fatalf("first position: %v", err)
	}
	if err := setPosition(second, &two); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate position error = %v, want gorm.ErrDuplicatedKey", err)
	}
	if err := setPosition(second, nil); err != nil {
		t.Fatalf("unranked submission: %v", err)
	}
}

func TestPostgresLockCampaignBlocksSecondTransaction(t *testing.T) {
	h := newPGHarness(t)
	ctx := context.Background()
	id := h.campaign.ID

	locked := make(chan struct{})
	var released time.Time
	done := make(chan error, 1)
	go func() {
		done <- h.store.Transaction(ctx, func(tx store.Tx) error {
			if _, err := tx.LockCampaign(id); err != nil {
				return err
			}
			close(locked)
			time.Sleep(300 * time.Millisecond)
			released = time.Now()
			return nil
		})
	}()

	<-locked
	var acquired time.Time
	err := h.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.LockCampaign(id); err != nil {
			return err
		}
		acquired = time.Now()
		return nil
	})
	if err != nil {
		t.Fatalf("second transaction: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("first transaction: %v", err)
	}
	if acquired.Before(released) {
		t.Fatalf("second lock acquired at %v before the first was released at %v", acquired, released)
	}
}
