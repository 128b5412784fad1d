// Package testkit provides in-memory fakes for service and handler tests.
package testkit

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"
	"github.com/onegreenvn/student-campaigns-backend/internal/utils"

	"gorm.io/gorm"
)

// MemStore is an in-memory store.Store. Transactions run one at a time and
// work on a copy of the data that replaces the live data only on success, so
// a failed transaction leaves nothing behind. Unique constraints match the
// database schema.
type MemStore struct {
	txMu      sync.Mutex
	mu        sync.RWMutex
	data      *memData
	commitErr error
}

type memData struct {
	campaigns      map[string]models.Campaign
	participations map[string]models.Participation
	submissions    map[string]models.Submission
	history        []models.StatusHistory
}

func NewMemStore() *MemStore {
	return &MemStore{data: &memData{
		campaigns:      map[string]models.Campaign{},
		participations: map[string]models.Participation{},
		submissions:    map[string]models.Submission{},
	}}
}

var _ store.Store = (*MemStore)(nil)

func (d *memData) clone() *memData {
	c := &memData{
		campaigns:      make(map[string]models.Campaign, len(d.campaigns)),
		participations: make(map[string]models.Participation, len(d.participations)),
		submissions:    make(map[string]models.Submission, len(d.submissions)),
		history:        append([]models.StatusHistory(nil), d.history...),
	}
	for k, v := range d.campaigns {
		c.campaigns[k] = v
	}
	for k, v := range d.participations {
		c.participations[k] = v
	}
	for k, v := range d.submissions {
		c.submissions[k] = v
	}
	return c
}

// Transaction runs fn against a private copy and publishes it if fn succeeds
func (m *MemStore) Transaction(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	work := m.data.clone()
	m.mu.RUnlock()

	if err := fn(&memTx{data: work}); err != nil {
		return err
	}

	m.mu.Lock()
	if m.commitErr != nil {
		m.mu.Unlock()
		return m.commitErr
	}
	m.data = work
	m.mu.Unlock()
	return nil
}

func (m *MemStore) read() *memData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data
}

// FailCommits makes every later transaction run its callback and then fail
// at commit with err, discarding its writes. A nil err restores commits.
func (m *MemStore) FailCommits(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitErr = err
}

// PutCampaign seeds a campaign
func (m *MemStore) PutCampaign(c models.Campaign) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.campaigns[c.ID] = c
}

// PutParticipation seeds a participation
func (m *MemStore) PutParticipation(p models.Participation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.participations[p.ID] = p
}

// PutSubmission seeds a submission
func (m *MemStore) PutSubmission(s models.Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.submissions[s.ID] = s
}

// CountParticipations returns how many participations exist for a pair
func (m *MemStore) CountParticipations(campaignID, actorID string) int {
	n := 0
	for _, p := range m.read().participations {
		if p.CampaignID == campaignID && p.ActorID == actorID {
			n++
		}
	}
	return n
}

// History returns every recorded status change
func (m *MemStore) History() []models.StatusHistory {
	return append([]models.StatusHistory(nil), m.read().history...)
}

func (m *MemStore) GetCampaign(_ context.Context, id string) (*models.Campaign, error) {
	return getCampaign(m.read(), id)
}

func (m *MemStore) ListCampaigns(_ context.Context, filter store.CampaignFilter) ([]models.Campaign, int64, error) {
	var out []models.Campaign
	for _, c := range m.read().campaigns {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return paginate(out, filter.PageRequest), int64(len(out)), nil
}

func (m *MemStore) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, c := range m.read().campaigns {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) ListEndedActiveCampaigns(_ context.Context, now time.Time) ([]models.Campaign, error) {
	var out []models.Campaign
	for _, c := range m.read().campaigns {
		if c.Status == models.CampaignActive && c.EndDate.Before(now) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (m *MemStore) GetParticipation(_ context.Context, id string) (*models.Participation, error) {
	return getParticipation(m.read(), id)
}

func (m *MemStore) FindParticipation(_ context.Context, campaignID, actorID string) (*models.Participation, error) {
	return findParticipation(m.read(), campaignID, actorID), nil
}

func (m *MemStore) ListParticipations(_ context.Context, filter store.ParticipationFilter) ([]models.Participation, int64, error) {
	var out []models.Participation
	for _, p := range m.read().participations {
		if filter.CampaignID != "" && p.CampaignID != filter.CampaignID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return paginate(out, filter.PageRequest), int64(len(out)), nil
}

func (m *MemStore) GetSubmission(_ context.Context, id string) (*models.Submission, error) {
	return getSubmission(m.read(), id)
}

func (m *MemStore) FindSubmissionByParticipation(_ context.Context, participationID string) (*models.Submission, error) {
	return findSubmission(m.read(), func(s models.Submission) bool { return s.ParticipationID == participationID }), nil
}

func (m *MemStore) ListSubmissions(_ context.Context, filter store.SubmissionFilter) ([]models.Submission, int64, error) {
	var out []models.Submission
	for _, s := range m.read().submissions {
		if filter.CampaignID != "" && s.CampaignID != filter.CampaignID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmissionDate.Before(out[j].SubmissionDate) })
	return paginate(out, filter.PageRequest), int64(len(out)), nil
}

func (m *MemStore) ListRankedSubmissions(_ context.Context, campaignID string) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range m.read().submissions {
		if s.CampaignID != campaignID {
			continue
		}
		switch s.Status {
		case models.SubmissionGraded, models.SubmissionWinner, models.SubmissionRunnerUp, models.SubmissionNotSelected:
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Position == nil) != (b.Position == nil) {
			return a.Position != nil
		}
		if a.Position != nil && *a.Position != *b.Position {
			return *a.Position < *b.Position
		}
		if (a.Score == nil) != (b.Score == nil) {
			return a.Score != nil
		}
		if a.Score != nil && *a.Score != *b.Score {
			return *a.Score > *b.Score
		}
		return a.SubmissionDate.Before(b.SubmissionDate)
	})
	return out, nil
}

func (m *MemStore) ListStatusHistory(_ context.Context, entityType, entityID string) ([]models.StatusHistory, error) {
	var out []models.StatusHistory
	for _, h := range m.read().history {
		if h.EntityType == entityType && h.EntityID == entityID {
			out = append(out, h)
		}
	}
	return out, nil
}

type memTx struct {
	data *memData
}

func (t *memTx) GetCampaign(id string) (*models.Campaign, error) {
	return getCampaign(t.data, id)
}

func (t *memTx) LockCampaign(id string) (*models.Campaign, error) {
	return getCampaign(t.data, id)
}

func (t *memTx) CreateCampaign(c *models.Campaign) error {
	if _, ok := t.data.campaigns[c.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range t.data.campaigns {
		if existing.Slug == c.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	t.data.campaigns[c.ID] = *c
	return nil
}

func (t *memTx) SaveCampaign(c *models.Campaign) error {
	t.data.campaigns[c.ID] = *c
	return nil
}

func (t *memTx) FindParticipation(campaignID, actorID string) (*models.Participation, error) {
	return findParticipation(t.data, campaignID, actorID), nil
}

func (t *memTx) LockParticipation(id string) (*models.Participation, error) {
	return getParticipation(t.data, id)
}

func (t *memTx) CreateParticipation(p *models.Participation) error {
	if findParticipation(t.data, p.CampaignID, p.ActorID) != nil {
		return gorm.ErrDuplicatedKey
	}
	t.data.participations[p.ID] = *p
	return nil
}

func (t *memTx) SaveParticipation(p *models.Participation) error {
	t.data.participations[p.ID] = *p
	return nil
}

func (t *memTx) FindSubmissionByParticipation(participationID string) (*models.Submission, error) {
	return findSubmission(t.data, func(s models.Submission) bool { return s.ParticipationID == participationID }), nil
}

func (t *memTx) FindSubmissionByPosition(campaignID string, position int) (*models.Submission, error) {
	return findSubmission(t.data, func(s models.Submission) bool {
		return s.CampaignID == campaignID && s.Position != nil && *s.Position == position
	}), nil
}

func (t *memTx) LockSubmission(id string) (*models.Submission, error) {
	return getSubmission(t.data, id)
}

func (t *memTx) CreateSubmission(s *models.Submission) error {
	if t.conflicts(s) {
		return gorm.ErrDuplicatedKey
	}
	t.data.submissions[s.ID] = *s
	return nil
}

func (t *memTx) SaveSubmission(s *models.Submission) error {
	if t.conflicts(s) {
		return gorm.ErrDuplicatedKey
	}
	t.data.submissions[s.ID] = *s
	return nil
}

// conflicts mirrors the unique indexes on submissions
func (t *memTx) conflicts(s *models.Submission) bool {
	for id, other := range t.data.submissions {
		if id == s.ID {
			continue
		}
		if other.ParticipationID == s.ParticipationID {
			return true
		}
		if s.Position != nil && other.Position != nil && other.CampaignID == s.CampaignID && *other.Position == *s.Position {
			return true
		}
	}
	return false
}

func (t *memTx) AppendStatusHistory(h *models.StatusHistory) error {
	t.data.history = append(t.data.history, *h)
	return nil
}

func getCampaign(d *memData, id string) (*models.Campaign, error) {
	c, ok := d.campaigns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func getParticipation(d *memData, id string) (*models.Participation, error) {
	p, ok := d.participations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func getSubmission(d *memData, id string) (*models.Submission, error) {
	s, ok := d.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func findParticipation(d *memData, campaignID, actorID string) *models.Participation {
	for _, p := range d.participations {
		if p.CampaignID == campaignID && p.ActorID == actorID {
			return &p
		}
	}
	return nil
}

func findSubmission(d *memData, match func(models.Submission) bool) *models.Submission {
	for _, s := range d.submissions {
		if match(s) {
			return &s
		}
	}
	return nil
}

func paginate[T any](items []T, page utils.PageRequest) []T {
	if page.PageSize <= 0 {
		return items
	}
	start := page.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + page.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
