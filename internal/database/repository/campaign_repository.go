package repository

import (
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create creates a new campaign
func (r *CampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(id string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.First(&campaign, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// LockByID retrieves a campaign by ID and holds a row lock until the transaction ends
func (r *CampaignRepository) LockByID(id string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&campaign, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Update updates a campaign
func (r *CampaignRepository) Update(campaign *models.Campaign) error {
	return r.db.Save(campaign).Error
}

// SlugExists checks if a slug is already taken
func (r *CampaignRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Campaign{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// List returns campaigns matching the filter, newest start date first
func (r *CampaignRepository) List(filter store.CampaignFilter) ([]models.Campaign, int64, error) {
	var campaigns []models.Campaign
	var total int64
	query := r.db.Model(&models.Campaign{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("start_date DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&campaigns).Error
	if err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// ListEndedActive returns active campaigns whose end date has passed
func (r *CampaignRepository) ListEndedActive(now time.Time) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.Where("status = ? AND end_date < ?", models.CampaignActive, now).
		Order("end_date ASC").
		Find(&campaigns).Error
	return campaigns, err
}
