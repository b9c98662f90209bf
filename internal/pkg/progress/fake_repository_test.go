package progress

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ManuelReschke/PhaseGate/app/models"
)

// memRepository is an in-memory Repository with switchable failures.
type memRepository struct {
	mu       sync.Mutex
	nextID   uint
	progress map[uuid.UUID]map[string]models.UserProgress
	subs     map[uuid.UUID]models.UserSubscription
	roles    map[uuid.UUID]map[string]bool

	subInserts int

	failProgressRead error
	failUpsert       error
	failSubRead      error
	failSubCreate    error
	failRoleRead     error
}

func newMemRepository() *memRepository {
	return &memRepository{
		progress: map[uuid.UUID]map[string]models.UserProgress{},
		subs:     map[uuid.UUID]models.UserSubscription{},
		roles:    map[uuid.UUID]map[string]bool{},
	}
}

func (r *memRepository) GetProgressRows(ctx context.Context, userID uuid.UUID) ([]models.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failProgressRead != nil {
		return nil, r.failProgressRead
	}
	rows := make([]models.UserProgress, 0, len(r.progress[userID]))
	for _, row := range r.progress[userID] {
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *memRepository) UpsertProgressRow(ctx context.Context, row *models.UserProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpsert != nil {
		return r.failUpsert
	}
	byPhase, ok := r.progress[row.UserID]
	if !ok {
		byPhase = map[string]models.UserProgress{}
		r.progress[row.UserID] = byPhase
	}
	if existing, ok := byPhase[row.Phase]; ok {
		row.ID = existing.ID
	} else {
		r.nextID++
		row.ID = r.nextID
	}
	byPhase[row.Phase] = *row
	return nil
}

func (r *memRepository) GetSubscription(ctx context.Context, userID uuid.UUID) (*models.UserSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSubRead != nil {
		return nil, r.failSubRead
	}
	sub, ok := r.subs[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (r *memRepository) CreateSubscription(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSubCreate != nil {
		return nil, r.failSubCreate
	}
	if existing, ok := r.subs[sub.UserID]; ok {
		return &existing, nil
	}
	r.nextID++
	stored := *sub
	stored.ID = r.nextID
	r.subs[sub.UserID] = stored
	r.subInserts++
	return &stored, nil
}

func (r *memRepository) SaveSubscriptionPlan(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *sub
	if existing, ok := r.subs[sub.UserID]; ok {
		stored.ID = existing.ID
	} else {
		r.nextID++
		stored.ID = r.nextID
		r.subInserts++
	}
	r.subs[sub.UserID] = stored
	return &stored, nil
}

func (r *memRepository) HasAdminRole(ctx context.Context, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRoleRead != nil {
		return false, r.failRoleRead
	}
	return r.roles[userID][models.ROLE_ADMIN], nil
}

func (r *memRepository) GrantRole(ctx context.Context, userID uuid.UUID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roles[userID] == nil {
		r.roles[userID] = map[string]bool{}
	}
	r.roles[userID][role] = true
	return nil
}

func (r *memRepository) RevokeRole(ctx context.Context, userID uuid.UUID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roles[userID], role)
	return nil
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
	err    error
}

func (c *countingRecorder) RecordCompletion(ctx context.Context, phaseID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[phaseID]++
	return c.err
}
