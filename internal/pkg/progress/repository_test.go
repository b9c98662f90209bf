package progress

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/PhaseGate/app/models"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/entitlements"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/phases"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserProgress{}, &models.UserSubscription{}, &models.UserRole{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestGormRepositoryUpsertProgressRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	first := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	row := &models.UserProgress{
		UserID:       userID,
		Phase:        phases.BuyerPersona,
		Completed:    true,
		CompletedAt:  &first,
		ProgressData: datatypes.JSON(`{"v":1}`),
	}
	require.NoError(t, repo.UpsertProgressRow(ctx, row))
	require.NotZero(t, row.ID)
	firstID := row.ID

	second := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpsertProgressRow(ctx, &models.UserProgress{
		UserID:       userID,
		Phase:        phases.BuyerPersona,
		Completed:    true,
		CompletedAt:  &second,
		ProgressData: datatypes.JSON(`{"v":2}`),
	}))

	rows, err := repo.GetProgressRows(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, firstID, rows[0].ID)
	assert.Equal(t, userID, rows[0].UserID)
	assert.True(t, rows[0].Completed)
	require.NotNil(t, rows[0].CompletedAt)
	assert.True(t, second.Equal(*rows[0].CompletedAt))
	assert.JSONEq(t, `{"v":2}`, string(rows[0].ProgressData))

	other, err := repo.GetProgressRows(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGormRepositoryUpsertRollsBackWhenReadBackFails(t *testing.T) {
	db := newTestDB(t)
	var failReads atomic.Bool
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:fail_progress_reads", func(tx *gorm.DB) {
		if failReads.Load() && tx.Statement.Table == "user_progress" {
			_ = tx.AddError(errBoom)
		}
	}))
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.UpsertProgressRow(ctx, &models.UserProgress{
		UserID:       userID,
		Phase:        phases.BuyerPersona,
		Completed:    true,
		ProgressData: datatypes.JSON(`{"v":1}`),
	}))

	failReads.Store(true)
	err := repo.UpsertProgressRow(ctx, &models.UserProgress{
		UserID:       userID,
		Phase:        phases.BuyerPersona,
		Completed:    true,
		ProgressData: datatypes.JSON(`{"v":2}`),
	})
	require.ErrorIs(t, err, errBoom)
	err = repo.UpsertProgressRow(ctx, &models.UserProgress{
		UserID:    userID,
		Phase:     phases.BusinessCanvas,
		Completed: true,
	})
	require.ErrorIs(t, err, errBoom)
	failReads.Store(false)

	rows, err := repo.GetProgressRows(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, phases.BuyerPersona, rows[0].Phase)
	assert.JSONEq(t, `{"v":1}`, string(rows[0].ProgressData))
}

func TestGormRepositorySubscriptionIsCreatedOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	sub, err := repo.GetSubscription(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, sub)

	a, err := models.NewUserSubscription(userID, entitlements.PlanFree, time.Now())
	require.NoError(t, err)
	created, err := repo.CreateSubscription(ctx, a)
	require.NoError(t, err)

	b, err := models.NewUserSubscription(userID, entitlements.PlanGold, time.Now())
	require.NoError(t, err)
	again, err := repo.CreateSubscription(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, entitlements.PlanFree, again.Plan)

	var count int64
	require.NoError(t, db.Model(&models.UserSubscription{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormRepositorySaveSubscriptionPlan(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	free, _ := models.NewUserSubscription(userID, entitlements.PlanFree, time.Now())
	created, err := repo.CreateSubscription(ctx, free)
	require.NoError(t, err)

	pro, _ := models.NewUserSubscription(userID, entitlements.PlanPro, time.Now())
	saved, err := repo.SaveSubscriptionPlan(ctx, pro)
	require.NoError(t, err)
	assert.Equal(t, created.ID, saved.ID)
	assert.Equal(t, entitlements.PlanPro, saved.Plan)

	stored, err := repo.GetSubscription(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, entitlements.PlanPro, stored.Plan)
}

func TestGormRepositoryRoles(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	ok, err := repo.HasAdminRole(ctx, userID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.GrantRole(ctx, userID, models.ROLE_USER))
	ok, _ = repo.HasAdminRole(ctx, userID)
	assert.False(t, ok)

	require.NoError(t, repo.GrantRole(ctx, userID, models.ROLE_ADMIN))
	require.NoError(t, repo.GrantRole(ctx, userID, models.ROLE_ADMIN))
	ok, err = repo.HasAdminRole(ctx, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.RevokeRole(ctx, userID, models.ROLE_ADMIN))
	ok, _ = repo.HasAdminRole(ctx, userID)
	assert.False(t, ok)
}

func TestServiceOverGormRepository(t *testing.T) {
	svc := NewServiceFromDB(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	snap, err := svc.Load(ctx, userID)
	require.NoError(t, err)
	again, err := svc.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, snap.Subscription().ID, again.Subscription().ID)

	snap, err = svc.MarkPhaseComplete(ctx, userID, phases.BuyerPersona, map[string]string{"name": "Dana"})
	require.NoError(t, err)
	assert.True(t, snap.IsPhaseCompleted(phases.BuyerPersona))
	assert.True(t, snap.IsPhaseUnlocked(phases.BusinessCanvas))
	assert.Equal(t, 8, snap.CompletionPercentage())
}
