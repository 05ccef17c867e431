package domain

import (
	"slices"
	"time"
)

// FindingKind classifies an audit finding.
type FindingKind string

const (
	FindingBudgetOverage   FindingKind = "budget_overage"
	FindingTimingConflict  FindingKind = "timing_conflict"
	FindingLodgingMismatch FindingKind = "lodging_mismatch"
	FindingUnverifiable    FindingKind = "unverifiable"
)

// Finding is a single audit observation, optionally tied to a line item.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	ItemID  string      `json:"item_id,omitempty"`
	Message string      `json:"message"`
}

// CheckStatus is the result of the budget check.
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckFail CheckStatus = "fail"
	// CheckUnverifiable means the verified cost is within the total but some items have no price.
	CheckUnverifiable CheckStatus = "unverifiable"
)

// BudgetCheck compares the verified cost against the trip total.
type BudgetCheck struct {
	Status CheckStatus `json:"status"`
	Total  Money       `json:"total"`
	Cost   Money       `json:"cost"`
	// Delta is cost minus total, set only when the check fails.
	Delta *Money `json:"delta,omitempty"`
}

// AuditReport is the outcome of a budget and feasibility audit.
type AuditReport struct {
	Passed    bool        `json:"passed"`
	Budget    BudgetCheck `json:"budget"`
	Findings  []Finding   `json:"findings,omitempty"`
	AuditedAt time.Time   `json:"audited_at,omitzero"`
}

// BudgetFailed reports whether the cost exceeded the total.
func (r AuditReport) BudgetFailed() bool {
	return r.Budget.Status == CheckFail
}

// FindingsOf returns the findings of a single kind.
func (r AuditReport) FindingsOf(kind FindingKind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns a deep copy.
func (r AuditReport) Clone() AuditReport {
	out := r
	out.Findings = slices.Clone(r.Findings)
	if r.Budget.Delta != nil {
		d := *r.Budget.Delta
		out.Budget.Delta = &d
	}
	return out
}
