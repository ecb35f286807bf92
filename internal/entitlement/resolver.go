// Package entitlement decides which premium capabilities a tenant currently
// has. Every call site, merchant-facing or public, must resolve through here
// instead of re-deriving trial expiry inline, so the two views cannot drift.
package entitlement

import (
	"time"

	"comanda/internal/domain"
)

type Entitlement struct {
	Plan               domain.Plan `json:"plan"`
	ProFeaturesEnabled bool        `json:"proFeaturesEnabled"`
}

// Resolve computes the effective capability set from a plan snapshot. A pro
// plan without a trial deadline is fully paid; with a deadline, entitlement
// holds up to and including the deadline instant and degrades to free after
// it, without the stored plan label ever changing. It never errors: anything
// unrecognized resolves to the most restrictive value.
func Resolve(plan domain.Plan, trialDeadline *time.Time, now time.Time) Entitlement {
	if plan != domain.PlanPro {
		return Entitlement{Plan: domain.PlanFree}
	}
	if trialDeadline != nil && now.After(*trialDeadline) {
		return Entitlement{Plan: domain.PlanPro}
	}
	return Entitlement{Plan: domain.PlanPro, ProFeaturesEnabled: true}
}

// TrialDaysLeft returns the remaining whole days of an active trial, rounded
// up; 0 once expired and nil when no trial deadline is set.
func TrialDaysLeft(trialDeadline *time.Time, now time.Time) *int {
	if trialDeadline == nil {
		return nil
	}
	days := 0
	if !now.After(*trialDeadline) {
		days = int((trialDeadline.Sub(now) + 24*time.Hour - 1) / (24 * time.Hour))
	}
	return &days
}
