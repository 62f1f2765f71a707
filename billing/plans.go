package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Current tier identifiers. Older factories may still carry the legacy
// names; NormalizeTier maps those forward.
const (
	TierTrial      = "trial"
	TierStarter    = "starter"
	TierGrowth     = "growth"
	TierEnterprise = "enterprise"
)

// Plan describes what a tier buys. LineLimit < 0 means unlimited.
type Plan struct {
	Tier         string          `json:"tier"`
	DisplayName  string          `json:"displayName"`
	MonthlyPrice decimal.Decimal `json:"monthlyPrice"`
	Currency     string          `json:"currency"`
	LineLimit    int             `json:"lineLimit"`
	Features     []string        `json:"features"`
}

var plans = map[string]Plan{
	TierTrial: {
		Tier:         TierTrial,
		DisplayName:  "Free Trial",
		MonthlyPrice: decimal.Zero,
		Currency:     "USD",
		LineLimit:    2,
		Features: []string{
			"daily_submissions",
			"dashboard",
		},
	},
	TierStarter: {
		Tier:         TierStarter,
		DisplayName:  "Starter",
		MonthlyPrice: decimal.NewFromInt(49),
		Currency:     "USD",
		LineLimit:    10,
		Features: []string{
			"daily_submissions",
			"dashboard",
			"csv_export",
			"bin_cards",
		},
	},
	TierGrowth: {
		Tier:         TierGrowth,
		DisplayName:  "Growth",
		MonthlyPrice: decimal.NewFromInt(149),
		Currency:     "USD",
		LineLimit:    30,
		Features: []string{
			"daily_submissions",
			"dashboard",
			"csv_export",
			"bin_cards",
			"pdf_reports",
			"user_management",
		},
	},
	TierEnterprise: {
		Tier:         TierEnterprise,
		DisplayName:  "Enterprise",
		MonthlyPrice: decimal.NewFromInt(399),
		Currency:     "USD",
		LineLimit:    -1,
		Features: []string{
			"daily_submissions",
			"dashboard",
			"csv_export",
			"bin_cards",
			"pdf_reports",
			"user_management",
			"priority_support",
		},
	},
}

// legacyTiers maps pre-rename tier strings to current identifiers.
var legacyTiers = map[string]string{
	"free":      TierTrial,
	"basic":     TierStarter,
	"standard":  TierStarter,
	"premium":   TierGrowth,
	"pro":       TierGrowth,
	"unlimited": TierEnterprise,
}

// NormalizeTier maps any stored tier string to a current identifier.
// Unknown strings fall back to trial rather than failing.
func NormalizeTier(tier string) string {
	tier = strings.ToLower(strings.TrimSpace(tier))
	if _, ok := plans[tier]; ok {
		return tier
	}
	if current, ok := legacyTiers[tier]; ok {
		return current
	}
	return TierTrial
}

// PlanFor returns the plan for a (possibly legacy) tier string.
func PlanFor(tier string) Plan {
	return plans[NormalizeTier(tier)]
}

// AllPlans returns the catalog in ascending price order.
func AllPlans() []Plan {
	return []Plan{plans[TierTrial], plans[TierStarter], plans[TierGrowth], plans[TierEnterprise]}
}

// CanActivateLine is the gate checked before switching a line on:
// activeCount is the factory's current number of active lines.
func CanActivateLine(tier string, activeCount int) bool {
	limit := PlanFor(tier).LineLimit
	if limit < 0 {
		return true
	}
	return activeCount < limit
}

// HasFeature reports whether a tier includes a named feature.
func HasFeature(tier, feature string) bool {
	for _, f := range PlanFor(tier).Features {
		if f == feature {
			return true
		}
	}
	return false
}
