// Package audit checks a logistics plan against the trip budget and calendar.
package audit

import (
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/voyage/pkg/budget"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/shopspring/decimal"
)

// Auditor produces AuditReports. It never treats missing data as zero cost.
type Auditor struct {
	rates budget.Converter
	now   func() time.Time
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithConverter sets the currency converter used for provider prices.
func WithConverter(c budget.Converter) Option {
	return func(a *Auditor) {
		a.rates = c
	}
}

// WithClock overrides the time source stamped on reports.
func WithClock(now func() time.Time) Option {
	return func(a *Auditor) {
		a.now = now
	}
}

// New creates an Auditor using the default rate table.
func New(opts ...Option) *Auditor {
	a := &Auditor{
		rates: budget.NewRateTable(budget.DefaultRates()),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Audit runs the budget, timing and lodging-night checks.
func (a *Auditor) Audit(req domain.TripRequest, plan domain.LogisticsPlan) domain.AuditReport {
	report := domain.AuditReport{AuditedAt: a.now()}

	check, unverifiable := a.checkBudget(req, plan)
	report.Budget = check
	report.Findings = append(report.Findings, unverifiable...)
	if check.Status == domain.CheckFail {
		report.Findings = append(report.Findings, domain.Finding{
			Kind:    domain.FindingBudgetOverage,
			Message: fmt.Sprintf("verified cost %s exceeds the budget of %s by %s", check.Cost, check.Total, check.Delta),
		})
	}

	report.Findings = append(report.Findings, checkTiming(req, plan)...)
	report.Findings = append(report.Findings, checkNights(req, plan)...)

	report.Passed = check.Status == domain.CheckPass &&
		len(report.FindingsOf(domain.FindingTimingConflict)) == 0 &&
		len(report.FindingsOf(domain.FindingUnverifiable)) == 0
	return report
}

func (a *Auditor) checkBudget(req domain.TripRequest, plan domain.LogisticsPlan) (domain.BudgetCheck, []domain.Finding) {
	total := budget.Total(req.Budget, req.Party())
	cost := domain.Money{Amount: decimal.Zero, Currency: total.Currency}

	var findings []domain.Finding
	for _, item := range plan.Items {
		if !item.Resolved() {
			detail := item.Detail
			if detail == "" {
				detail = "no provider data"
			}
			findings = append(findings, domain.Finding{
				Kind:    domain.FindingUnverifiable,
				ItemID:  item.ID,
				Message: fmt.Sprintf("%s: %s", item.Label, detail),
			})
			continue
		}
		price, ok := a.rates.Convert(*item.Price, total.Currency)
		if !ok {
			findings = append(findings, domain.Finding{
				Kind:    domain.FindingUnverifiable,
				ItemID:  item.ID,
				Message: fmt.Sprintf("%s: cannot convert %s to %s", item.Label, item.Price.Currency, total.Currency),
			})
			continue
		}
		cost.Amount = cost.Amount.Add(price.Amount)
	}

	check := domain.BudgetCheck{Status: domain.CheckPass, Total: total, Cost: cost}
	switch {
	case cost.Amount.GreaterThan(total.Amount):
		delta := domain.Money{Amount: cost.Amount.Sub(total.Amount), Currency: total.Currency}
		check.Status = domain.CheckFail
		check.Delta = &delta
	case len(findings) > 0:
		check.Status = domain.CheckUnverifiable
	}
	return check, findings
}

// checkTiming needs a start date; without one the calendar cannot be checked.
func checkTiming(req domain.TripRequest, plan domain.LogisticsPlan) []domain.Finding {
	days := req.Days()
	if req.StartDate.IsZero() || days == 0 {
		return nil
	}
	windowStart := dayOf(req.StartDate)
	windowEnd := windowStart.AddDate(0, 0, days)

	outside := func(t time.Time) bool {
		return !t.IsZero() && (t.Before(windowStart) || !t.Before(windowEnd))
	}

	var findings []domain.Finding
	conflict := func(item domain.LineItem, format string, args ...any) {
		findings = append(findings, domain.Finding{
			Kind:    domain.FindingTimingConflict,
			ItemID:  item.ID,
			Message: item.Label + ": " + fmt.Sprintf(format, args...),
		})
	}

	var flights []domain.LineItem
	for _, item := range plan.Items {
		if !item.Resolved() {
			continue
		}
		switch item.Kind {
		case domain.ItemFlight:
			if outside(item.Depart) {
				conflict(item, "departs %s, outside the trip dates", item.Depart.Format(domain.DateLayout))
			}
			if !item.Depart.IsZero() && !item.Arrive.IsZero() && item.Arrive.Before(item.Depart) {
				conflict(item, "arrives before it departs")
			}
			flights = append(flights, item)
		case domain.ItemLodging:
			if outside(item.CheckIn) {
				conflict(item, "check-in %s is outside the trip dates", item.CheckIn.Format(domain.DateLayout))
			}
			if outside(item.CheckOut) {
				conflict(item, "check-out %s is outside the trip dates", item.CheckOut.Format(domain.DateLayout))
			}
			if !item.CheckIn.IsZero() && !item.CheckOut.IsZero() && item.CheckOut.Before(item.CheckIn) {
				conflict(item, "check-out is before check-in")
			}
		}
	}

	slices.SortFunc(flights, func(a, b domain.LineItem) int { return a.Depart.Compare(b.Depart) })
	for i := 1; i < len(flights); i++ {
		prev, cur := flights[i-1], flights[i]
		prevEnd := prev.Arrive
		if prevEnd.IsZero() {
			prevEnd = prev.Depart
		}
		if !cur.Depart.IsZero() && cur.Depart.Before(prevEnd) {
			conflict(cur, "overlaps with %s", prev.Label)
		}
	}
	return findings
}

func checkNights(req domain.TripRequest, plan domain.LogisticsPlan) []domain.Finding {
	days := req.Days()
	if days == 0 {
		return nil
	}
	nights, resolved := 0, 0
	for _, item := range plan.OfKind(domain.ItemLodging) {
		if item.Resolved() {
			nights += item.Nights
			resolved++
		}
	}
	// Unresolved lodging is already reported as unverifiable.
	if resolved == 0 {
		return nil
	}
	if want := days - 1; nights != want {
		return []domain.Finding{{
			Kind:    domain.FindingLodgingMismatch,
			Message: fmt.Sprintf("lodging covers %d nights, the trip needs %d", nights, want),
		}}
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
