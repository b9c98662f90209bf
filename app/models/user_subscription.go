package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/entitlements"
)

// UserSubscription holds the single plan row of a user.
type UserSubscription struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Plan      string     `gorm:"type:varchar(20);not null;default:'free'" json:"plan" validate:"oneof=free pro premium gold"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	IsTrial   bool       `gorm:"not null;default:false" json:"is_trial"`
	StartedAt time.Time  `json:"started_at"`
	ExpiresAt *time.Time `gorm:"default:null" json:"expires_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

// NewUserSubscription builds an active subscription row for the given plan.
func NewUserSubscription(userID uuid.UUID, plan string, startedAt time.Time) (*UserSubscription, error) {
	sub := &UserSubscription{
		UserID:    userID,
		Plan:      plan,
		IsActive:  true,
		StartedAt: startedAt,
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *UserSubscription) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// Tier returns the ranked tier of the stored plan; nil rows rank as free.
func (s *UserSubscription) Tier() entitlements.Tier {
	if s == nil {
		return entitlements.TierFree
	}
	return entitlements.TierOf(s.Plan)
}
