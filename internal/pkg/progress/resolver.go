package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ManuelReschke/PhaseGate/app/models"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/entitlements"
)

// Resolver answers which tier a user is on and whether they hold the admin
// role.
type Resolver struct {
	repo Repository
	now  func() time.Time
}

// NewResolver creates a resolver over the given repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo, now: time.Now}
}

// Subscription returns the user's subscription row, creating an active free
// row when none exists. Concurrent first calls converge on a single row.
func (r *Resolver) Subscription(ctx context.Context, userID uuid.UUID) (*models.UserSubscription, error) {
	sub, err := r.repo.GetSubscription(ctx, userID)
	if err != nil {
		return nil, persistenceErr("get subscription", err)
	}
	if sub != nil {
		return sub, nil
	}

	def, err := models.NewUserSubscription(userID, entitlements.PlanFree, r.now())
	if err != nil {
		return nil, err
	}
	sub, err = r.repo.CreateSubscription(ctx, def)
	if err != nil {
		return nil, persistenceErr("create subscription", err)
	}
	return sub, nil
}

// IsAdmin reports whether the user holds the admin role. A missing role row
// means non-admin.
func (r *Resolver) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	ok, err := r.repo.HasAdminRole(ctx, userID)
	if err != nil {
		return false, persistenceErr("lookup admin role", err)
	}
	return ok, nil
}

// ChangePlan moves the user to another tier, creating the row if needed.
func (r *Resolver) ChangePlan(ctx context.Context, userID uuid.UUID, plan string) (*models.UserSubscription, error) {
	if userID == uuid.Nil {
		return nil, ErrAuthRequired
	}
	tier, ok := entitlements.ParseTier(plan)
	if !ok {
		return nil, fmt.Errorf("unknown plan %q", plan)
	}

	sub, err := models.NewUserSubscription(userID, tier.String(), r.now())
	if err != nil {
		return nil, err
	}
	stored, err := r.repo.SaveSubscriptionPlan(ctx, sub)
	if err != nil {
		return nil, persistenceErr("save subscription", err)
	}
	return stored, nil
}

// GrantAdmin gives the user the admin role. Granting twice is a no-op.
func (r *Resolver) GrantAdmin(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrAuthRequired
	}
	return persistenceErr("grant admin role", r.repo.GrantRole(ctx, userID, models.ROLE_ADMIN))
}

// RevokeAdmin removes the admin role if present.
func (r *Resolver) RevokeAdmin(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrAuthRequired
	}
	return persistenceErr("revoke admin role", r.repo.RevokeRole(ctx, userID, models.ROLE_ADMIN))
}
