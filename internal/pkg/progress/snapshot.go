package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ManuelReschke/PhaseGate/app/models"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/entitlements"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/phases"
)

// Why a phase is not unlocked.
const (
	LockReasonNone          = ""
	LockReasonAuth          = "auth"
	LockReasonPlan          = "plan"
	LockReasonPrerequisites = "prerequisites"
)

// Snapshot is a frozen view of one user's progress rows, subscription and
// admin flag. Every query is answered from the snapshot alone; call
// Service.Load again for fresh data.
type Snapshot struct {
	catalog      *phases.Catalog
	userID       uuid.UUID
	progress     map[string]models.UserProgress
	subscription *models.UserSubscription
	isAdmin      bool
	loadedAt     time.Time
}

// NewSnapshot freezes the given rows. A nil userID yields an anonymous
// snapshot for which nothing is unlocked.
func NewSnapshot(
	catalog *phases.Catalog,
	userID uuid.UUID,
	rows []models.UserProgress,
	sub *models.UserSubscription,
	isAdmin bool,
	loadedAt time.Time,
) *Snapshot {
	if catalog == nil {
		catalog = phases.Default
	}
	s := &Snapshot{
		catalog:  catalog,
		userID:   userID,
		progress: make(map[string]models.UserProgress, len(rows)),
		isAdmin:  isAdmin && userID != uuid.Nil,
		loadedAt: loadedAt,
	}
	for _, row := range rows {
		s.progress[row.Phase] = cloneProgress(row)
	}
	s.subscription = cloneSubscription(sub)
	return s
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneProgress(row models.UserProgress) models.UserProgress {
	row.CompletedAt = cloneTime(row.CompletedAt)
	if row.ProgressData != nil {
		row.ProgressData = append(datatypes.JSON(nil), row.ProgressData...)
	}
	return row
}

func cloneSubscription(sub *models.UserSubscription) *models.UserSubscription {
	if sub == nil {
		return nil
	}
	cp := *sub
	cp.ExpiresAt = cloneTime(sub.ExpiresAt)
	return &cp
}

// Anonymous returns the snapshot used when nobody is signed in.
func Anonymous(catalog *phases.Catalog) *Snapshot {
	return NewSnapshot(catalog, uuid.Nil, nil, nil, false, time.Now())
}

func (s *Snapshot) UserID() uuid.UUID { return s.userID }

func (s *Snapshot) Authenticated() bool { return s.userID != uuid.Nil }

func (s *Snapshot) IsAdmin() bool { return s.isAdmin }

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

func (s *Snapshot) Catalog() *phases.Catalog { return s.catalog }

// Subscription returns a copy of the subscription row, or nil if none was loaded.
func (s *Snapshot) Subscription() *models.UserSubscription {
	return cloneSubscription(s.subscription)
}

// Tier is the user's plan tier; no subscription means free.
func (s *Snapshot) Tier() entitlements.Tier {
	return s.subscription.Tier()
}

// Progress returns the stored row for a phase.
func (s *Snapshot) Progress(phaseID string) (models.UserProgress, bool) {
	row, ok := s.progress[phaseID]
	if !ok {
		return models.UserProgress{}, false
	}
	return cloneProgress(row), true
}

// IsPhaseCompleted reports whether a completed row exists for the phase.
// Phases unknown to the catalog are never completed.
func (s *Snapshot) IsPhaseCompleted(phaseID string) bool {
	if !s.catalog.Has(phaseID) {
		return false
	}
	row, ok := s.progress[phaseID]
	return ok && row.Completed
}

// IsPhaseUnlocked applies, in order: no user means locked, admin means
// unlocked, unknown phase means locked, insufficient tier means locked, and
// finally every required phase must be completed.
func (s *Snapshot) IsPhaseUnlocked(phaseID string) bool {
	if !s.Authenticated() {
		return false
	}
	if s.isAdmin {
		return true
	}
	phase, ok := s.catalog.Lookup(phaseID)
	if !ok {
		return false
	}
	if !s.Tier().AtLeast(phase.RequiredPlan) {
		return false
	}
	for _, dep := range phase.Requires {
		if !s.IsPhaseCompleted(dep) {
			return false
		}
	}
	return true
}

// HasRequiredPlan compares tiers only and ignores prerequisites. Admins
// always pass; unknown phases never do.
func (s *Snapshot) HasRequiredPlan(phaseID string) bool {
	if s.isAdmin {
		return true
	}
	phase, ok := s.catalog.Lookup(phaseID)
	if !ok {
		return false
	}
	return s.Tier().AtLeast(phase.RequiredPlan)
}

// IsPhaseIncludedInPlan is HasRequiredPlan under the name the upgrade CTA uses.
func (s *Snapshot) IsPhaseIncludedInPlan(phaseID string) bool {
	return s.HasRequiredPlan(phaseID)
}

// MissingRequirements lists the required phases that are not completed yet,
// in declaration order.
func (s *Snapshot) MissingRequirements(phaseID string) []string {
	phase, ok := s.catalog.Lookup(phaseID)
	if !ok {
		return nil
	}
	missing := make([]string, 0, len(phase.Requires))
	for _, dep := range phase.Requires {
		if !s.IsPhaseCompleted(dep) {
			missing = append(missing, dep)
		}
	}
	return missing
}

// CompletedCount counts completed phases that exist in the catalog.
func (s *Snapshot) CompletedCount() int {
	n := 0
	for _, p := range s.catalog.Ordered() {
		if s.IsPhaseCompleted(p.ID) {
			n++
		}
	}
	return n
}

// CompletionPercentage is round-half-up(100 * completed / catalog size).
// The whole catalog is the denominator, whatever the user's tier.
func (s *Snapshot) CompletionPercentage() int {
	total := s.catalog.Len()
	if total == 0 {
		return 0
	}
	return (200*s.CompletedCount() + total) / (2 * total)
}

// NextPhase returns the first phase by order that is unlocked and not yet
// completed. ok is false when no such phase exists.
func (s *Snapshot) NextPhase() (phases.Phase, bool) {
	for _, p := range s.catalog.Ordered() {
		if !s.IsPhaseCompleted(p.ID) && s.IsPhaseUnlocked(p.ID) {
			return p, true
		}
	}
	return phases.Phase{}, false
}

// PhaseStatus is the per-phase view handed to the presentation layer.
type PhaseStatus struct {
	Phase               phases.Phase `json:"phase"`
	Completed           bool         `json:"completed"`
	CompletedAt         *time.Time   `json:"completed_at,omitempty"`
	Unlocked            bool         `json:"unlocked"`
	HasRequiredPlan     bool         `json:"has_required_plan"`
	MissingRequirements []string     `json:"missing_requirements"`
	LockReason          string       `json:"lock_reason"`
}

// Status describes a single phase. ok is false for unknown phase ids.
func (s *Snapshot) Status(phaseID string) (PhaseStatus, bool) {
	phase, ok := s.catalog.Lookup(phaseID)
	if !ok {
		return PhaseStatus{}, false
	}

	st := PhaseStatus{
		Phase:               phase,
		Completed:           s.IsPhaseCompleted(phaseID),
		Unlocked:            s.IsPhaseUnlocked(phaseID),
		HasRequiredPlan:     s.HasRequiredPlan(phaseID),
		MissingRequirements: s.MissingRequirements(phaseID),
	}
	if row, ok := s.progress[phaseID]; ok && row.Completed {
		st.CompletedAt = cloneTime(row.CompletedAt)
	}

	switch {
	case st.Unlocked:
		st.LockReason = LockReasonNone
	case !s.Authenticated():
		st.LockReason = LockReasonAuth
	case !st.HasRequiredPlan:
		st.LockReason = LockReasonPlan
	default:
		st.LockReason = LockReasonPrerequisites
	}
	return st, true
}

// Statuses describes every catalog phase in order.
func (s *Snapshot) Statuses() []PhaseStatus {
	ordered := s.catalog.Ordered()
	out := make([]PhaseStatus, 0, len(ordered))
	for _, p := range ordered {
		st, _ := s.Status(p.ID)
		out = append(out, st)
	}
	return out
}
