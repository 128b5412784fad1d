package models

import (
	"time"
)

// Entity types recorded in the status history
const (
	EntityParticipation = "participation"
	EntitySubmission    = "submission"
)

// StatusHistory is an audit row for every participation or submission status change
type StatusHistory struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EntityType string    `json:"entity_type" gorm:"type:varchar(20);not null;index:idx_status_history_entity"`
	EntityID   string    `json:"entity_id" gorm:"type:uuid;not null;index:idx_status_history_entity"`
	CampaignID string    `json:"campaign_id" gorm:"type:uuid;not null;index"`
	OldStatus  string    `json:"old_status,omitempty" gorm:"type:varchar(20)"`
	NewStatus  string    `json:"new_status" gorm:"type:varchar(20);not null"`
	ChangedBy  string    `json:"changed_by" gorm:"type:varchar(64);not null"`
	Notes      string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the StatusHistory model
func (StatusHistory) TableName() string {
	return "status_histories"
}
