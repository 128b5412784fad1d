package repository

import (
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParticipationRepository struct {
	db *gorm.DB
}

func NewParticipationRepository(db *gorm.DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// Create creates a new participation. A second row for the same
// (campaign, actor) fails with gorm.ErrDuplicatedKey.
func (r *ParticipationRepository) Create(participation *models.Participation) error {
	return r.db.Create(participation).Error
}

// GetByID retrieves a participation by ID
func (r *ParticipationRepository) GetByID(id string) (*models.Participation, error) {
	var participation models.Participation
	err := r.db.First(&participation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &participation, nil
}

// LockByID retrieves a participation by ID and holds a row lock until the transaction ends
func (r *ParticipationRepository) LockByID(id string) (*models.Participation, error) {
	var participation models.Participation
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&participation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &participation, nil
}

// GetByCampaignAndActor retrieves the participation of an actor in a campaign
func (r *ParticipationRepository) GetByCampaignAndActor(campaignID, actorID string) (*models.Participation, error) {
	var participation models.Participation
	err := r.db.Where("campaign_id = ? AND actor_id = ?", campaignID, actorID).First(&participation).Error
	if err != nil {
		return nil, err
	}
	return &participation, nil
}

// Update updates a participation
func (r *ParticipationRepository) Update(participation *models.Participation) error {
	return r.db.Save(participation).Error
}

// List returns participations matching the filter, oldest request first
func (r *ParticipationRepository) List(filter store.ParticipationFilter) ([]models.Participation, int64, error) {
	var participations []models.Participation
	var total int64
	query := r.db.Model(&models.Participation{})
	if filter.CampaignID != "" {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("submitted_at ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&participations).Error
	if err != nil {
		return nil, 0, err
	}
	return participations, total, nil
}
