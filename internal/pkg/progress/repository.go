package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/PhaseGate/app/models"
)

// Repository is the persistence gateway used by the service and resolver.
type Repository interface {
	GetProgressRows(ctx context.Context, userID uuid.UUID) ([]models.UserProgress, error)
	UpsertProgressRow(ctx context.Context, row *models.UserProgress) error
	// GetSubscription returns nil without error when the user has no row.
	GetSubscription(ctx context.Context, userID uuid.UUID) (*models.UserSubscription, error)
	// CreateSubscription inserts sub unless a row for the user already
	// exists, and returns whichever row is stored.
	CreateSubscription(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error)
	SaveSubscriptionPlan(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error)
	HasAdminRole(ctx context.Context, userID uuid.UUID) (bool, error)
	GrantRole(ctx context.Context, userID uuid.UUID, role string) error
	RevokeRole(ctx context.Context, userID uuid.UUID, role string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a progress repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetProgressRows(ctx context.Context, userID uuid.UUID) ([]models.UserProgress, error) {
	var rows []models.UserProgress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&rows).Error
	return rows, err
}

func (r *gormRepository) UpsertProgressRow(ctx context.Context, row *models.UserProgress) error {
	// The read-back shares the transaction so a failed read leaves the row untouched.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "phase"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"completed",
				"completed_at",
				"progress_data",
				"updated_at",
			}),
		}).Create(row).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND phase = ?", row.UserID, row.Phase).First(row).Error
	})
}

func (r *gormRepository) GetSubscription(ctx context.Context, userID uuid.UUID) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateSubscription(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error) {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(sub).Error; err != nil {
		return nil, err
	}

	var stored models.UserSubscription
	if err := db.Where("user_id = ?", sub.UserID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *gormRepository) SaveSubscriptionPlan(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error) {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan",
			"is_active",
			"is_trial",
			"started_at",
			"expires_at",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return nil, err
	}

	var stored models.UserSubscription
	if err := db.Where("user_id = ?", sub.UserID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *gormRepository) HasAdminRole(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, models.ROLE_ADMIN).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) GrantRole(ctx context.Context, userID uuid.UUID, role string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "role"},
		},
		DoNothing: true,
	}).Create(&models.UserRole{UserID: userID, Role: role}).Error
}

func (r *gormRepository) RevokeRole(ctx context.Context, userID uuid.UUID, role string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role).
		Delete(&models.UserRole{}).Error
}
