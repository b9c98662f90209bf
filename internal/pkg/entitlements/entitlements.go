package entitlements

import (
	"strings"
)

// Tier is a subscription plan level. The numeric value is the rank, so
// "has at least tier X" is a single >= comparison.
type Tier int

const (
	TierFree    Tier = 1
	TierPro     Tier = 2
	TierPremium Tier = 3
	TierGold    Tier = 4
)

const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanPremium = "premium"
	PlanGold    = "gold"
)

var tierNames = map[Tier]string{
	TierFree:    PlanFree,
	TierPro:     PlanPro,
	TierPremium: PlanPremium,
	TierGold:    PlanGold,
}

// Tiers lists every tier in ascending rank.
func Tiers() []Tier {
	return []Tier{TierFree, TierPro, TierPremium, TierGold}
}

// ParseTier maps a stored plan name to its tier. ok is false for unknown names.
func ParseTier(plan string) (Tier, bool) {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case PlanFree:
		return TierFree, true
	case PlanPro:
		return TierPro, true
	case PlanPremium:
		return TierPremium, true
	case PlanGold:
		return TierGold, true
	default:
		return TierFree, false
	}
}

// TierOf is ParseTier without the ok flag: anything unknown ranks as free.
func TierOf(plan string) Tier {
	t, _ := ParseTier(plan)
	return t
}

// NormalizePlan returns the canonical plan name, falling back to free.
func NormalizePlan(plan string) string {
	return TierOf(plan).String()
}

// Rank returns the numeric rank of the tier (free=1 ... gold=4).
func (t Tier) Rank() int {
	if !t.Valid() {
		return int(TierFree)
	}
	return int(t)
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

// AtLeast reports whether t ranks at or above required.
func (t Tier) AtLeast(required Tier) bool {
	return t.Rank() >= required.Rank()
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return PlanFree
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	*t = TierOf(string(b))
	return nil
}
