package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

// UserRole grants a role to a user. Holding ROLE_ADMIN bypasses all phase gating.
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index:ux_user_roles_user_role,unique,priority:1" json:"user_id"`
	Role      string    `gorm:"type:varchar(50);not null;index:ux_user_roles_user_role,unique,priority:2" json:"role" validate:"oneof=user admin"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
