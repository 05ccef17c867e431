package fixture

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/ports"
)

// Activities scheduled per day, by pace.
const (
	relaxedPace = 1
	normalPace  = 2
	packedPace  = 3
)

var (
	relaxWords = []string{"relax", "slower", "fewer", "less packed", "rest"}
	packWords  = []string{"packed", "more activities", "busier", "faster"}
)

// Composer lays the approved candidates out over the trip days, with travel on the
// first and last day. Refinement instructions change the pace.
type Composer struct{}

// NewComposer creates a composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Compose implements ports.Composer.
func (c *Composer) Compose(ctx context.Context, in ports.CompositionInput) (domain.Itinerary, error) {
	if err := ctx.Err(); err != nil {
		return domain.Itinerary{}, err
	}
	req := in.Request
	days := req.Days()
	if days < 1 {
		days = 1
	}
	perDay := pace(in.Refinements)

	it := domain.Itinerary{Days: make([]domain.Day, days)}
	for i := range it.Days {
		it.Days[i].Number = i + 1
		if !req.StartDate.IsZero() {
			it.Days[i].Date = req.StartDate.AddDate(0, 0, i)
		}
	}

	first, last := &it.Days[0], &it.Days[days-1]
	if f, ok := item(in.Logistics, domain.OutboundFlightID); ok {
		first.Entries = append(first.Entries, travelEntry("Travel", f))
	}
	if h, ok := item(in.Logistics, domain.LodgingID); ok {
		first.Entries = append(first.Entries, travelEntry("Check in", h))
	}

	next := 0
	for i := range it.Days {
		slots := perDay
		if days > 1 && (i == 0 || i == days-1) {
			slots = 1
		}
		for s := 0; s < slots && next < len(in.Shortlist.Candidates); s++ {
			cand := in.Shortlist.Candidates[next]
			it.Days[i].Entries = append(it.Days[i].Entries, domain.Entry{
				Kind:    "activity",
				Title:   cand.Name,
				Details: cand.Description,
			})
			next++
		}
		if len(it.Days[i].Entries) == 0 {
			it.Days[i].Entries = append(it.Days[i].Entries, domain.Entry{Kind: "free", Title: "Free time"})
		}
	}
	if f, ok := item(in.Logistics, domain.ReturnFlightID); ok && days > 1 {
		last.Entries = append(last.Entries, travelEntry("Travel", f))
	}

	if rest := len(in.Shortlist.Candidates) - next; rest > 0 {
		it.Notes = append(it.Notes, fmt.Sprintf("%d candidate(s) did not fit at this pace.", rest))
	}
	for _, u := range in.Logistics.Unresolved() {
		it.Notes = append(it.Notes, fmt.Sprintf("Book %s separately: %s.", u.Label, u.Detail))
	}
	if in.Audit.BudgetFailed() && in.Audit.Budget.Delta != nil {
		it.Notes = append(it.Notes, "Over budget by "+in.Audit.Budget.Delta.String()+".")
	}
	for _, r := range in.Refinements {
		it.Notes = append(it.Notes, "Applied: "+r)
	}
	return it, nil
}

func pace(refinements []string) int {
	p := normalPace
	for _, r := range refinements {
		r = strings.ToLower(r)
		switch {
		case containsAny(r, relaxWords):
			p = relaxedPace
		case containsAny(r, packWords):
			p = packedPace
		}
	}
	return p
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func item(plan domain.LogisticsPlan, id string) (domain.LineItem, bool) {
	for _, it := range plan.Items {
		if it.ID == id && it.Resolved() {
			return it, true
		}
	}
	return domain.LineItem{}, false
}

func travelEntry(title string, li domain.LineItem) domain.Entry {
	return domain.Entry{
		Kind:       string(li.Kind),
		Title:      title + ": " + li.Label,
		ItemID:     li.ID,
		BookingURL: li.BookingURL,
	}
}
