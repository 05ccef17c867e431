package domain

import (
	"slices"
	"time"
)

// ItemKind is the category of a logistics line item.
type ItemKind string

const (
	ItemFlight  ItemKind = "flight"
	ItemLodging ItemKind = "lodging"
)

// Line item IDs of a round-trip plan. Audit findings and itinerary entries refer to them.
const (
	OutboundFlightID = "flight-out"
	ReturnFlightID   = "flight-return"
	LodgingID        = "lodging"
)

// Resolution tells whether a provider could supply data for an item.
type Resolution string

const (
	ResolutionFound Resolution = "found"
	// ResolutionNotFound marks missing provider data. Such items never carry a price.
	ResolutionNotFound Resolution = "not_found"
)

// LineItem is a single flight or lodging entry of a plan.
type LineItem struct {
	ID         string     `json:"id"`
	Kind       ItemKind   `json:"kind"`
	Label      string     `json:"label"`
	Resolution Resolution `json:"resolution"`
	// Detail explains why an item could not be resolved.
	Detail     string `json:"detail,omitempty"`
	Price      *Money `json:"price,omitempty"`
	BookingURL string `json:"booking_url,omitempty"`

	From   string    `json:"from,omitempty"`
	To     string    `json:"to,omitempty"`
	Depart time.Time `json:"depart,omitzero"`
	Arrive time.Time `json:"arrive,omitzero"`

	CheckIn  time.Time `json:"check_in,omitzero"`
	CheckOut time.Time `json:"check_out,omitzero"`
	Nights   int       `json:"nights,omitempty"`
}

// NotFound builds an unresolved line item.
func NotFound(id string, kind ItemKind, label, detail string) LineItem {
	return LineItem{
		ID:         id,
		Kind:       kind,
		Label:      label,
		Resolution: ResolutionNotFound,
		Detail:     detail,
	}
}

// Resolved reports whether the item has provider data and a price.
func (i LineItem) Resolved() bool {
	return i.Resolution == ResolutionFound && i.Price != nil
}

// LogisticsPlan is the sourced set of flights and lodging for a trip.
type LogisticsPlan struct {
	Items     []LineItem `json:"items"`
	SourcedAt time.Time  `json:"sourced_at,omitzero"`
}

// Unresolved returns the items that carry no provider data.
func (p LogisticsPlan) Unresolved() []LineItem {
	var out []LineItem
	for _, it := range p.Items {
		if !it.Resolved() {
			out = append(out, it)
		}
	}
	return out
}

// OfKind returns the items of a single kind, in plan order.
func (p LogisticsPlan) OfKind(kind ItemKind) []LineItem {
	var out []LineItem
	for _, it := range p.Items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// Clone returns a deep copy.
func (p LogisticsPlan) Clone() LogisticsPlan {
	out := p
	out.Items = slices.Clone(p.Items)
	for i := range out.Items {
		if price := out.Items[i].Price; price != nil {
			cp := *price
			out.Items[i].Price = &cp
		}
	}
	return out
}
