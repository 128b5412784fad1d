package repository

import (
	"context"
	"errors"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"

	"gorm.io/gorm"
)

// LifecycleStore implements store.Store on top of the per-entity repositories
type LifecycleStore struct {
	db *gorm.DB
}

func NewLifecycleStore(db *gorm.DB) *LifecycleStore {
	return &LifecycleStore{db: db}
}

var _ store.Store = (*LifecycleStore)(nil)

func (s *LifecycleStore) campaigns(ctx context.Context) *CampaignRepository {
	return NewCampaignRepository(s.db.WithContext(ctx))
}

func (s *LifecycleStore) participations(ctx context.Context) *ParticipationRepository {
	return NewParticipationRepository(s.db.WithContext(ctx))
}

func (s *LifecycleStore) submissions(ctx context.Context) *SubmissionRepository {
	return NewSubmissionRepository(s.db.WithContext(ctx))
}

func (s *LifecycleStore) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	return s.campaigns(ctx).GetByID(id)
}

func (s *LifecycleStore) ListCampaigns(ctx context.Context, filter store.CampaignFilter) ([]models.Campaign, int64, error) {
	return s.campaigns(ctx).List(filter)
}

func (s *LifecycleStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.campaigns(ctx).SlugExists(slug)
}

func (s *LifecycleStore) ListEndedActiveCampaigns(ctx context.Context, now time.Time) ([]models.Campaign, error) {
	return s.campaigns(ctx).ListEndedActive(now)
}

func (s *LifecycleStore) GetParticipation(ctx context.Context, id string) (*models.Participation, error) {
	return s.participations(ctx).GetByID(id)
}

func (s *LifecycleStore) FindParticipation(ctx context.Context, campaignID, actorID string) (*models.Participation, error) {
	return notFoundAsNil(s.participations(ctx).GetByCampaignAndActor(campaignID, actorID))
}

func (s *LifecycleStore) ListParticipations(ctx context.Context, filter store.ParticipationFilter) ([]models.Participation, int64, error) {
	return s.participations(ctx).List(filter)
}

func (s *LifecycleStore) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	return s.submissions(ctx).GetByID(id)
}

func (s *LifecycleStore) FindSubmissionByParticipation(ctx context.Context, participationID string) (*models.Submission, error) {
	return notFoundAsNil(s.submissions(ctx).GetByParticipationID(participationID))
}

func (s *LifecycleStore) ListSubmissions(ctx context.Context, filter store.SubmissionFilter) ([]models.Submission, int64, error) {
	return s.submissions(ctx).List(filter)
}

func (s *LifecycleStore) ListRankedSubmissions(ctx context.Context, campaignID string) ([]models.Submission, error) {
	return s.submissions(ctx).ListRanked(campaignID)
}

func (s *LifecycleStore) ListStatusHistory(ctx context.Context, entityType, entityID string) ([]models.StatusHistory, error) {
	return NewStatusHistoryRepository(s.db.WithContext(ctx)).GetByEntity(entityType, entityID)
}

// Transaction runs fn inside a database transaction
func (s *LifecycleStore) Transaction(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&lifecycleTx{
			campaigns:      NewCampaignRepository(tx),
			participations: NewParticipationRepository(tx),
			submissions:    NewSubmissionRepository(tx),
			history:        NewStatusHistoryRepository(tx),
		})
	})
}

type lifecycleTx struct {
	campaigns      *CampaignRepository
	participations *ParticipationRepository
	submissions    *SubmissionRepository
	history        *StatusHistoryRepository
}

func (t *lifecycleTx) GetCampaign(id string) (*models.Campaign, error) {
	return t.campaigns.GetByID(id)
}

func (t *lifecycleTx) LockCampaign(id string) (*models.Campaign, error) {
	return t.campaigns.LockByID(id)
}

func (t *lifecycleTx) CreateCampaign(c *models.Campaign) error {
	return t.campaigns.Create(c)
}

func (t *lifecycleTx) SaveCampaign(c *models.Campaign) error {
	return t.campaigns.Update(c)
}

func (t *lifecycleTx) FindParticipation(campaignID, actorID string) (*models.Participation, error) {
	return notFoundAsNil(t.participations.GetByCampaignAndActor(campaignID, actorID))
}

func (t *lifecycleTx) LockParticipation(id string) (*models.Participation, error) {
	return t.participations.LockByID(id)
}

func (t *lifecycleTx) CreateParticipation(p *models.Participation) error {
	return t.participations.Create(p)
}

func (t *lifecycleTx) SaveParticipation(p *models.Participation) error {
	return t.participations.Update(p)
}

func (t *lifecycleTx) FindSubmissionByParticipation(participationID string) (*models.Submission, error) {
	return notFoundAsNil(t.submissions.GetByParticipationID(participationID))
}

func (t *lifecycleTx) FindSubmissionByPosition(campaignID string, position int) (*models.Submission, error) {
	return notFoundAsNil(t.submissions.GetByPosition(campaignID, position))
}

func (t *lifecycleTx) LockSubmission(id string) (*models.Submission, error) {
	return t.submissions.LockByID(id)
}

func (t *lifecycleTx) CreateSubmission(s *models.Submission) error {
	return t.submissions.Create(s)
}

func (t *lifecycleTx) SaveSubmission(s *models.Submission) error {
	return t.submissions.Update(s)
}

func (t *lifecycleTx) AppendStatusHistory(h *models.StatusHistory) error {
	return t.history.Create(h)
}

func notFoundAsNil[T any](record *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return record, err
}
