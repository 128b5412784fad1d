package repository

import (
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create creates a new submission. A second submission for the same
// participation fails with gorm.ErrDuplicatedKey.
func (r *SubmissionRepository) Create(submission *models.Submission) error {
	return r.db.Create(submission).Error
}

// GetByID retrieves a submission by ID
func (r *SubmissionRepository) GetByID(id string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.First(&submission, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// LockByID retrieves a submission by ID and holds a row lock until the transaction ends
func (r *SubmissionRepository) LockByID(id string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&submission, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetByParticipationID retrieves the submission of a participation
func (r *SubmissionRepository) GetByParticipationID(participationID string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.Where("participation_id = ?", participationID).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetByPosition retrieves the submission holding a ranked position in a campaign
func (r *SubmissionRepository) GetByPosition(campaignID string, position int) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.Where("campaign_id = ? AND position = ?", campaignID, position).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// Update updates a submission. Assigning a position already held in the
// campaign fails with gorm.ErrDuplicatedKey.
func (r *SubmissionRepository) Update(submission *models.Submission) error {
	return r.db.Save(submission).Error
}

// List returns submissions matching the filter, oldest first
func (r *SubmissionRepository) List(filter store.SubmissionFilter) ([]models.Submission, int64, error) {
	var submissions []models.Submission
	var total int64
	query := r.db.Model(&models.Submission{})
	if filter.CampaignID != "" {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("submission_date ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&submissions).Error
	if err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

// ListRanked returns graded and finalized submissions of a campaign, ranked
// positions first, then by score
func (r *SubmissionRepository) ListRanked(campaignID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.Where("campaign_id = ? AND status IN ?", campaignID, []models.SubmissionStatus{
		models.SubmissionGraded,
		models.SubmissionWinner,
		models.SubmissionRunnerUp,
		models.SubmissionNotSelected,
	}).
		Order("position ASC NULLS LAST").
		Order("score DESC NULLS LAST").
		Order("submission_date ASC").
		Find(&submissions).Error
	return submissions, err
}
