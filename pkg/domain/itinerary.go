package domain

import (
	"slices"
	"time"
)

// Entry is one scheduled element of an itinerary day.
type Entry struct {
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Details    string `json:"details,omitempty"`
	ItemID     string `json:"item_id,omitempty"`
	BookingURL string `json:"booking_url,omitempty"`
}

// Day groups the entries of a single trip day.
type Day struct {
	Number  int       `json:"number"`
	Date    time.Time `json:"date,omitzero"`
	Entries []Entry   `json:"entries"`
}

// Itinerary is the composed day-by-day plan.
type Itinerary struct {
	Days       []Day     `json:"days"`
	Notes      []string  `json:"notes,omitempty"`
	Revision   int       `json:"revision"`
	ComposedAt time.Time `json:"composed_at,omitzero"`
}

// Clone returns a deep copy.
func (it Itinerary) Clone() Itinerary {
	out := it
	out.Notes = slices.Clone(it.Notes)
	out.Days = slices.Clone(it.Days)
	for i := range out.Days {
		out.Days[i].Entries = slices.Clone(out.Days[i].Entries)
	}
	return out
}

// ChoiceKind is one of the options offered after an itinerary is composed.
type ChoiceKind string

const (
	ChoiceRefine ChoiceKind = "refine"
	ChoiceUpdate ChoiceKind = "update"
	ChoiceQuit   ChoiceKind = "quit"
)

// Choices lists the allowed post-result options.
var Choices = []ChoiceKind{ChoiceRefine, ChoiceUpdate, ChoiceQuit}

// Choice is the user's next step. For refine, Args carries the instructions.
// For update, Args carries the field edits in "field=value" form.
type Choice struct {
	Kind ChoiceKind `json:"kind"`
	Args string     `json:"args,omitempty"`
}
