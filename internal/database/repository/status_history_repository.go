package repository

import (
	"github.com/onegreenvn/student-campaigns-backend/internal/models"

	"gorm.io/gorm"
)

type StatusHistoryRepository struct {
	db *gorm.DB
}

func NewStatusHistoryRepository(db *gorm.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

// Create appends a status change
func (r *StatusHistoryRepository) Create(entry *models.StatusHistory) error {
	return r.db.Create(entry).Error
}

// GetByEntity retrieves the status changes of one participation or submission, oldest first
func (r *StatusHistoryRepository) GetByEntity(entityType, entityID string) ([]models.StatusHistory, error) {
	var entries []models.StatusHistory
	err := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
