package fixture

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/places"
	"github.com/aretw0/voyage/pkg/ports"
	"github.com/shopspring/decimal"
)

// Logistics prices a round trip and one lodging stay from the catalog.
// Anything the catalog lacks comes back as a not_found item.
type Logistics struct {
	catalog *Catalog
	places  *places.Directory
}

// NewLogistics creates a logistics source.
func NewLogistics(c *Catalog, dir *places.Directory) *Logistics {
	return &Logistics{catalog: c, places: dir}
}

// Source implements ports.LogisticsSource. It fails as a whole only when the
// destination cannot be resolved to a location code.
func (l *Logistics) Source(ctx context.Context, q ports.LogisticsQuery) (domain.LogisticsPlan, error) {
	if err := ctx.Err(); err != nil {
		return domain.LogisticsPlan{}, err
	}
	req := q.Request
	to, ok := l.places.Code(req.Destination)
	if !ok {
		return domain.LogisticsPlan{}, &domain.DataNotFoundError{
			Detail: fmt.Sprintf("no location code for %q", req.Destination),
		}
	}
	from, fromOK := l.places.Code(req.Origin)

	var plan domain.LogisticsPlan
	if fromOK {
		plan.Items = append(plan.Items,
			l.flight(domain.OutboundFlightID, from, to, req.StartDate, req),
			l.flight(domain.ReturnFlightID, to, from, req.LastDay(), req),
		)
	} else {
		detail := fmt.Sprintf("no location code for %q", req.Origin)
		plan.Items = append(plan.Items,
			domain.NotFound(domain.OutboundFlightID, domain.ItemFlight, flightLabel(req.Origin, to), detail),
			domain.NotFound(domain.ReturnFlightID, domain.ItemFlight, flightLabel(to, req.Origin), detail),
		)
	}
	if nights := req.Days() - 1; nights > 0 {
		plan.Items = append(plan.Items, l.lodging(to, nights, req))
	}
	return plan, nil
}

func flightLabel(from, to string) string {
	return fmt.Sprintf("Flight %s → %s", from, to)
}

func (l *Logistics) flight(id, from, to string, day time.Time, req domain.TripRequest) domain.LineItem {
	label := flightLabel(from, to)
	f, ok := l.catalog.Flight(from, to)
	if !ok {
		return domain.NotFound(id, domain.ItemFlight, label, "no flight offers on this route")
	}

	price := domain.NewMoney(f.Fare.Mul(decimal.NewFromInt(int64(req.Party()))), f.Currency)
	item := domain.LineItem{
		ID:         id,
		Kind:       domain.ItemFlight,
		Label:      fmt.Sprintf("%s (%s)", label, f.Carrier),
		Resolution: domain.ResolutionFound,
		Price:      &price,
		From:       from,
		To:         to,
	}
	if !day.IsZero() {
		item.Depart = atClock(day, f.Depart)
		item.Arrive = item.Depart.Add(time.Duration(f.Hours * float64(time.Hour)))
	}
	item.BookingURL = flightURL(from, to, item.Depart)
	return item
}

func (l *Logistics) lodging(code string, nights int, req domain.TripRequest) domain.LineItem {
	dest, _ := l.catalog.Destination(code)
	label := "Lodging in " + req.Destination
	h, ok := pickLodging(dest.Lodging, req.Style)
	if !ok {
		return domain.NotFound(domain.LodgingID, domain.ItemLodging, label, "no hotels listed for "+code)
	}

	rooms := (req.Party() + 1) / 2
	total := h.Nightly.Mul(decimal.NewFromInt(int64(nights * rooms)))
	price := domain.NewMoney(total, h.Currency)
	item := domain.LineItem{
		ID:         domain.LodgingID,
		Kind:       domain.ItemLodging,
		Label:      fmt.Sprintf("%s (%d room(s), %d night(s))", h.Name, rooms, nights),
		Resolution: domain.ResolutionFound,
		Price:      &price,
		Nights:     nights,
		BookingURL: h.URL,
	}
	if !req.StartDate.IsZero() {
		item.CheckIn = atClock(req.StartDate, "15:00")
		item.CheckOut = atClock(req.StartDate.AddDate(0, 0, nights), "11:00")
	}
	if item.BookingURL == "" {
		item.BookingURL = "https://www.google.com/travel/hotels/" + url.PathEscape(dest.City)
	}
	return item
}

// pickLodging prefers a property listed for the travel style, then the first one.
func pickLodging(options []Lodging, style string) (Lodging, bool) {
	if len(options) == 0 {
		return Lodging{}, false
	}
	style = strings.ToLower(style)
	for _, h := range options {
		if slices.ContainsFunc(h.Styles, func(s string) bool { return strings.ToLower(s) == style }) {
			return h, true
		}
	}
	return options[0], true
}

func atClock(day time.Time, clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		t = time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func flightURL(from, to string, depart time.Time) string {
	q := fmt.Sprintf("Flights to %s from %s", to, from)
	if !depart.IsZero() {
		q += " on " + depart.Format(domain.DateLayout)
	}
	return "https://www.google.com/travel/flights?q=" + url.QueryEscape(q)
}
