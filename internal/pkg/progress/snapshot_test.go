package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PhaseGate/app/models"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/entitlements"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/phases"
)

func completedRows(userID uuid.UUID, ids ...string) []models.UserProgress {
	now := time.Now()
	rows := make([]models.UserProgress, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.UserProgress{UserID: userID, Phase: id, Completed: true, CompletedAt: &now})
	}
	return rows
}

func subscription(userID uuid.UUID, tier entitlements.Tier) *models.UserSubscription {
	return &models.UserSubscription{UserID: userID, Plan: tier.String(), IsActive: true}
}

func snapshotFor(tier entitlements.Tier, admin bool, completed ...string) *Snapshot {
	userID := uuid.New()
	return NewSnapshot(phases.Default, userID, completedRows(userID, completed...), subscription(userID, tier), admin, time.Now())
}

func TestAnonymousSnapshotUnlocksNothing(t *testing.T) {
	snap := Anonymous(phases.Default)

	assert.False(t, snap.Authenticated())
	for _, p := range phases.Default.Ordered() {
		assert.False(t, snap.IsPhaseUnlocked(p.ID), p.ID)
	}
	_, ok := snap.NextPhase()
	assert.False(t, ok)

	st, ok := snap.Status(phases.BuyerPersona)
	require.True(t, ok)
	assert.Equal(t, LockReasonAuth, st.LockReason)
}

func TestAdminFlagIgnoredWithoutUser(t *testing.T) {
	snap := NewSnapshot(phases.Default, uuid.Nil, nil, nil, true, time.Now())
	assert.False(t, snap.IsAdmin())
	assert.False(t, snap.IsPhaseUnlocked(phases.BuyerPersona))
}

func TestAdminBypassesPlanAndDependencies(t *testing.T) {
	for _, tier := range entitlements.Tiers() {
		snap := snapshotFor(tier, true)
		for _, p := range phases.Default.Ordered() {
			assert.True(t, snap.IsPhaseUnlocked(p.ID), "%s on %s", p.ID, tier)
			assert.True(t, snap.HasRequiredPlan(p.ID), "%s on %s", p.ID, tier)
		}
	}
}

func TestUnknownPhaseIsLockedAndIncomplete(t *testing.T) {
	snap := snapshotFor(entitlements.TierGold, false, "ghost")

	assert.False(t, snap.IsPhaseUnlocked("ghost"))
	assert.False(t, snap.IsPhaseCompleted("ghost"))
	assert.False(t, snap.HasRequiredPlan("ghost"))
	_, ok := snap.Status("ghost")
	assert.False(t, ok)
	assert.Equal(t, 0, snap.CompletedCount(), "rows for phases outside the catalog are not counted")
}

func TestIncompleteRowDoesNotCount(t *testing.T) {
	userID := uuid.New()
	rows := []models.UserProgress{{UserID: userID, Phase: phases.BuyerPersona, Completed: false}}
	snap := NewSnapshot(phases.Default, userID, rows, subscription(userID, entitlements.TierFree), false, time.Now())

	assert.False(t, snap.IsPhaseCompleted(phases.BuyerPersona))
	assert.False(t, snap.IsPhaseUnlocked(phases.BusinessCanvas))
}

func TestDependencyRequiresEveryPrerequisite(t *testing.T) {
	// business-canvas requires buyer-persona, even on gold.
	snap := snapshotFor(entitlements.TierGold, false)
	assert.False(t, snap.IsPhaseUnlocked(phases.BusinessCanvas))

	snap = snapshotFor(entitlements.TierGold, false, phases.BuyerPersona)
	assert.True(t, snap.IsPhaseUnlocked(phases.BusinessCanvas))

	// intelligent-content-strategy requires brand-voice AND competitor-analysis.
	snap = snapshotFor(entitlements.TierFree, false, phases.BrandVoice)
	assert.False(t, snap.IsPhaseUnlocked(phases.IntelligentContentStrategy))
	assert.Equal(t, []string{phases.CompetitorAnalysis}, snap.MissingRequirements(phases.IntelligentContentStrategy))

	snap = snapshotFor(entitlements.TierFree, false, phases.CompetitorAnalysis)
	assert.False(t, snap.IsPhaseUnlocked(phases.IntelligentContentStrategy))

	snap = snapshotFor(entitlements.TierFree, false, phases.BrandVoice, phases.CompetitorAnalysis)
	assert.True(t, snap.IsPhaseUnlocked(phases.IntelligentContentStrategy))
	assert.Empty(t, snap.MissingRequirements(phases.IntelligentContentStrategy))
}

func TestPlanBlocksRegardlessOfDependencies(t *testing.T) {
	snap := snapshotFor(entitlements.TierFree, false, phases.IntelligentContentStrategy)

	assert.False(t, snap.HasRequiredPlan(phases.ContentGenerator))
	assert.False(t, snap.IsPhaseIncludedInPlan(phases.ContentGenerator))
	assert.False(t, snap.IsPhaseUnlocked(phases.ContentGenerator))

	st, _ := snap.Status(phases.ContentGenerator)
	assert.Equal(t, LockReasonPlan, st.LockReason)
	assert.Empty(t, st.MissingRequirements)
}

func TestHasRequiredPlanIgnoresDependencies(t *testing.T) {
	snap := snapshotFor(entitlements.TierPro, false)

	assert.True(t, snap.HasRequiredPlan(phases.ContentGenerator))
	assert.False(t, snap.IsPhaseUnlocked(phases.ContentGenerator))

	st, _ := snap.Status(phases.ContentGenerator)
	assert.Equal(t, LockReasonPrerequisites, st.LockReason)
	assert.Equal(t, []string{phases.IntelligentContentStrategy}, st.MissingRequirements)
}

func TestMissingSubscriptionRanksAsFree(t *testing.T) {
	userID := uuid.New()
	snap := NewSnapshot(phases.Default, userID, nil, nil, false, time.Now())

	assert.Nil(t, snap.Subscription())
	assert.Equal(t, entitlements.TierFree, snap.Tier())
	assert.True(t, snap.IsPhaseUnlocked(phases.BuyerPersona))
	assert.False(t, snap.HasRequiredPlan(phases.ContentGenerator))
}

func TestHigherTierUnlocksSuperset(t *testing.T) {
	completionStates := [][]string{
		nil,
		{phases.BuyerPersona},
		{phases.BuyerPersona, phases.BusinessCanvas, phases.BrandVoice, phases.CompetitorAnalysis, phases.IntelligentContentStrategy},
		{phases.IntelligentContentStrategy, phases.ContentGenerator, phases.ContentCalendar, phases.ViralityPredictor},
	}
	tiers := entitlements.Tiers()

	for _, done := range completionStates {
		for i, low := range tiers {
			for _, high := range tiers[i:] {
				lowSnap := snapshotFor(low, false, done...)
				highSnap := snapshotFor(high, false, done...)
				for _, p := range phases.Default.Ordered() {
					if lowSnap.IsPhaseUnlocked(p.ID) {
						assert.True(t, highSnap.IsPhaseUnlocked(p.ID), "%s unlocked on %s but not on %s", p.ID, low, high)
					}
				}
			}
		}
	}
}

func TestCompletionPercentage(t *testing.T) {
	all := make([]string, 0, phases.Default.Len())
	for _, p := range phases.Default.Ordered() {
		all = append(all, p.ID)
	}

	assert.Equal(t, 0, snapshotFor(entitlements.TierFree, false).CompletionPercentage())
	assert.Equal(t, 100, snapshotFor(entitlements.TierFree, false, all...).CompletionPercentage())
	// 5 of 12 is 41.67, whatever the tier.
	assert.Equal(t, 42, snapshotFor(entitlements.TierFree, false, all[:5]...).CompletionPercentage())

	catalog := phases.MustCatalog(
		phases.Phase{ID: "a", Order: 1}, phases.Phase{ID: "b", Order: 2},
		phases.Phase{ID: "c", Order: 3}, phases.Phase{ID: "d", Order: 4},
		phases.Phase{ID: "e", Order: 5}, phases.Phase{ID: "f", Order: 6},
		phases.Phase{ID: "g", Order: 7}, phases.Phase{ID: "h", Order: 8},
	)
	userID := uuid.New()
	tests := []struct {
		done []string
		want int
	}{
		{done: []string{"a"}, want: 13},           // 12.5 rounds up
		{done: []string{"a", "b", "c"}, want: 38}, // 37.5 rounds up
		{done: []string{"a", "b"}, want: 25},
	}
	for _, tt := range tests {
		snap := NewSnapshot(catalog, userID, completedRows(userID, tt.done...), nil, false, time.Now())
		got := snap.CompletionPercentage()
		assert.Equal(t, tt.want, got)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
	}

	empty := phases.MustCatalog()
	assert.Equal(t, 0, NewSnapshot(empty, userID, nil, nil, false, time.Now()).CompletionPercentage())
}

func TestNextPhaseSkipsPlanLockedPhases(t *testing.T) {
	catalog := phases.MustCatalog(
		phases.Phase{ID: "a", Order: 1, RequiredPlan: entitlements.TierPro},
		phases.Phase{ID: "b", Order: 2, RequiredPlan: entitlements.TierFree},
	)
	userID := uuid.New()
	snap := NewSnapshot(catalog, userID, nil, subscription(userID, entitlements.TierFree), false, time.Now())

	next, ok := snap.NextPhase()
	require.True(t, ok)
	assert.Equal(t, "b", next.ID)
}

func TestNextPhaseFollowsOrder(t *testing.T) {
	snap := snapshotFor(entitlements.TierFree, false)
	next, ok := snap.NextPhase()
	require.True(t, ok)
	assert.Equal(t, phases.BuyerPersona, next.ID)

	snap = snapshotFor(entitlements.TierFree, false, phases.BuyerPersona)
	next, ok = snap.NextPhase()
	require.True(t, ok)
	assert.Equal(t, phases.BusinessCanvas, next.ID)
}

func TestNextPhaseNoneWhenAllUnlockedAreDone(t *testing.T) {
	snap := snapshotFor(entitlements.TierFree, false,
		phases.BuyerPersona, phases.BusinessCanvas, phases.BrandVoice,
		phases.CompetitorAnalysis, phases.IntelligentContentStrategy,
	)
	_, ok := snap.NextPhase()
	assert.False(t, ok)
	assert.Equal(t, 42, snap.CompletionPercentage())
}

func TestStatusesCoverCatalogInOrder(t *testing.T) {
	snap := snapshotFor(entitlements.TierPro, false, phases.BuyerPersona)
	statuses := snap.Statuses()
	require.Len(t, statuses, phases.Default.Len())

	for i, p := range phases.Default.Ordered() {
		assert.Equal(t, p.ID, statuses[i].Phase.ID)
	}
	assert.True(t, statuses[0].Completed)
	assert.NotNil(t, statuses[0].CompletedAt)
	assert.True(t, statuses[1].Unlocked)
	assert.Equal(t, LockReasonNone, statuses[1].LockReason)
}

func TestSnapshotIsIsolatedFromInputs(t *testing.T) {
	userID := uuid.New()
	rows := completedRows(userID, phases.BuyerPersona)
	completedAt := *rows[0].CompletedAt
	rows[0].ProgressData = []byte(`{"step":1}`)
	sub := subscription(userID, entitlements.TierFree)
	expiresAt := time.Now().Add(24 * time.Hour)
	sub.ExpiresAt = &expiresAt
	snap := NewSnapshot(phases.Default, userID, rows, sub, false, time.Now())

	rows[0].Completed = false
	*rows[0].CompletedAt = time.Time{}
	rows[0].ProgressData[0] = 'X'
	sub.Plan = entitlements.PlanGold
	*sub.ExpiresAt = time.Time{}

	returnedSub := snap.Subscription()
	returnedSub.Plan = entitlements.PlanGold
	*returnedSub.ExpiresAt = time.Time{}

	row, ok := snap.Progress(phases.BuyerPersona)
	require.True(t, ok)
	*row.CompletedAt = time.Time{}
	row.ProgressData[0] = 'Y'

	status, ok := snap.Status(phases.BuyerPersona)
	require.True(t, ok)
	require.NotNil(t, status.CompletedAt)
	*status.CompletedAt = time.Time{}

	assert.True(t, snap.IsPhaseCompleted(phases.BuyerPersona))
	assert.Equal(t, entitlements.TierFree, snap.Tier())

	row, ok = snap.Progress(phases.BuyerPersona)
	require.True(t, ok)
	assert.True(t, row.CompletedAt.Equal(completedAt))
	assert.JSONEq(t, `{"step":1}`, string(row.ProgressData))
	status, _ = snap.Status(phases.BuyerPersona)
	assert.True(t, status.CompletedAt.Equal(completedAt))
	assert.True(t, snap.Subscription().ExpiresAt.Equal(expiresAt))
}
