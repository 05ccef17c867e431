// Package report formats planning artifacts as markdown and export documents.
package report

import (
	"fmt"
	"strings"

	"github.com/aretw0/voyage/pkg/budget"
	"github.com/aretw0/voyage/pkg/domain"
)

// NotFoundPrefix starts every line that reports an unresolved logistics item.
const NotFoundPrefix = "Data not found, cannot proceed with this item: "

// Questions renders the follow-up questions for missing fields.
func Questions(questions []string) string {
	var sb strings.Builder
	sb.WriteString("To plan your trip I still need a few details:\n\n")
	for _, q := range questions {
		sb.WriteString("- " + q + "\n")
	}
	return sb.String()
}

// Shortlist renders the candidates submitted for approval.
func Shortlist(sl domain.Shortlist) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Shortlist (round %d)\n\n", sl.Round)
	for i, c := range sl.Candidates {
		fmt.Fprintf(&sb, "%d. **%s**", i+1, c.Name)
		if c.Description != "" {
			sb.WriteString(": " + c.Description)
		}
		if len(c.Tags) > 0 {
			fmt.Fprintf(&sb, " _(%s)_", strings.Join(c.Tags, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Logistics renders the plan as a table followed by one line per unresolved item.
func Logistics(plan domain.LogisticsPlan) string {
	var sb strings.Builder
	sb.WriteString("## Logistics\n\n")
	sb.WriteString("| Item | Kind | When | Price |\n|---|---|---|---|\n")
	for _, it := range plan.Items {
		price := "n/a"
		if it.Resolved() {
			price = it.Price.String()
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", it.Label, it.Kind, when(it), price)
	}
	if lines := NotFoundLines(plan); len(lines) > 0 {
		sb.WriteString("\n")
		for _, l := range lines {
			sb.WriteString(l + "\n")
		}
	}
	return sb.String()
}

// NotFoundLines returns the user-facing line for every unresolved item.
func NotFoundLines(plan domain.LogisticsPlan) []string {
	var out []string
	for _, it := range plan.Unresolved() {
		line := NotFoundPrefix + it.Label
		if it.Detail != "" {
			line += " (" + it.Detail + ")"
		}
		out = append(out, line)
	}
	return out
}

func when(it domain.LineItem) string {
	switch it.Kind {
	case domain.ItemFlight:
		if !it.Depart.IsZero() {
			return it.Depart.Format("2006-01-02 15:04")
		}
	case domain.ItemLodging:
		if !it.CheckIn.IsZero() {
			return fmt.Sprintf("%s, %d nights", it.CheckIn.Format(domain.DateLayout), it.Nights)
		}
	}
	return "-"
}

// Audit renders the audit outcome.
func Audit(r domain.AuditReport) string {
	var sb strings.Builder
	sb.WriteString("## Budget check\n\n")
	fmt.Fprintf(&sb, "- Budget: %s\n- Verified cost: %s\n", r.Budget.Total, r.Budget.Cost)
	if r.Budget.Delta != nil {
		fmt.Fprintf(&sb, "- Over budget by: %s\n", r.Budget.Delta)
	}
	for _, f := range r.Findings {
		if f.Kind == domain.FindingBudgetOverage {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s\n", strings.ReplaceAll(string(f.Kind), "_", " "), f.Message)
	}
	if r.Passed {
		sb.WriteString("\nAll checks passed.\n")
	}
	return sb.String()
}

// BudgetAlert is the one-line decision prompt shown when the cost exceeds the total.
func BudgetAlert(r domain.AuditReport) string {
	return fmt.Sprintf("Budget alert: the verified cost %s exceeds your budget of %s by %s.",
		r.Budget.Cost, r.Budget.Total, r.Budget.Delta)
}

// Itinerary renders the day-by-day plan.
func Itinerary(it domain.Itinerary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Itinerary (revision %d)\n", it.Revision)
	for _, d := range it.Days {
		fmt.Fprintf(&sb, "\n### Day %d", d.Number)
		if !d.Date.IsZero() {
			sb.WriteString(" - " + d.Date.Format("Mon 2 Jan"))
		}
		sb.WriteString("\n\n")
		for _, e := range d.Entries {
			sb.WriteString("- " + e.Title)
			if e.Details != "" {
				sb.WriteString(": " + e.Details)
			}
			if e.BookingURL != "" {
				sb.WriteString(" ([book](" + e.BookingURL + "))")
			}
			sb.WriteString("\n")
		}
	}
	if len(it.Notes) > 0 {
		sb.WriteString("\n**Notes**\n\n")
		for _, n := range it.Notes {
			sb.WriteString("- " + n + "\n")
		}
	}
	return sb.String()
}

// Markdown renders the whole session as a travel document.
func Markdown(s *domain.SessionState) string {
	var sb strings.Builder
	r := s.Request
	fmt.Fprintf(&sb, "# %s to %s\n\n", orDash(r.Origin), orDash(r.Destination))
	if days := r.Days(); days > 0 {
		fmt.Fprintf(&sb, "- Duration: %d days", days)
		if !r.StartDate.IsZero() {
			fmt.Fprintf(&sb, " from %s", r.StartDate.Format(domain.DateLayout))
		}
		sb.WriteString("\n")
	}
	if r.Budget.IsPositive() {
		fmt.Fprintf(&sb, "- Budget: %s per person, %s for %d\n", r.Budget, budget.Total(r.Budget, r.Party()), r.Party())
	}
	if r.Style != "" {
		fmt.Fprintf(&sb, "- Style: %s\n", r.Style)
	}
	if len(r.Interests) > 0 {
		fmt.Fprintf(&sb, "- Interests: %s\n", strings.Join(r.Interests, ", "))
	}
	if s.Shortlist != nil {
		sb.WriteString("\n" + Shortlist(*s.Shortlist))
	}
	if s.Logistics != nil {
		sb.WriteString("\n" + Logistics(*s.Logistics))
	}
	if s.Audit != nil {
		sb.WriteString("\n" + Audit(*s.Audit))
	}
	if s.Itinerary != nil {
		sb.WriteString("\n" + Itinerary(*s.Itinerary))
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
