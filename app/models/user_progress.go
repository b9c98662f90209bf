package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserProgress is one row per user and phase. Rows are only ever upserted
// with Completed=true; nothing un-completes a phase.
type UserProgress struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:varchar(36);not null;index:ux_user_progress_user_phase,unique,priority:1" json:"user_id"`
	Phase        string         `gorm:"type:varchar(100);not null;index:ux_user_progress_user_phase,unique,priority:2" json:"phase"`
	Completed    bool           `gorm:"not null;default:false" json:"completed"`
	CompletedAt  *time.Time     `gorm:"default:null" json:"completed_at,omitempty"`
	ProgressData datatypes.JSON `json:"progress_data,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
