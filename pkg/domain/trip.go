package domain

import (
	"slices"
	"strings"
	"time"
)

// Field names a required part of a TripRequest.
type Field string

const (
	FieldOrigin      Field = "origin"
	FieldDestination Field = "destination"
	FieldDates       Field = "dates"
	FieldBudget      Field = "budget"
	FieldStyle       Field = "style"
	FieldInterests   Field = "interests"
)

// RequiredFields lists the fields a request needs before discovery, in prompt order.
var RequiredFields = []Field{
	FieldOrigin,
	FieldDestination,
	FieldDates,
	FieldBudget,
	FieldStyle,
	FieldInterests,
}

// DateLayout is the calendar date format used across inputs and outputs.
const DateLayout = "2006-01-02"

// TripRequest is the structured representation of the user's travel intent.
type TripRequest struct {
	Origin       string    `json:"origin,omitempty"`
	Destination  string    `json:"destination,omitempty"`
	StartDate    time.Time `json:"start_date,omitzero"`
	EndDate      time.Time `json:"end_date,omitzero"`
	DurationDays int       `json:"duration_days,omitempty"`

	// Budget is per person, in the currency the user declared.
	Budget    Money    `json:"budget"`
	PartySize int      `json:"party_size,omitempty"`
	Style     string   `json:"style,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// Days returns the trip length in days, or 0 when it cannot be derived yet.
// A valid date range wins over an explicit duration.
func (r TripRequest) Days() int {
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && !r.EndDate.Before(r.StartDate) {
		return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
	}
	if r.DurationDays > 0 {
		return r.DurationDays
	}
	return 0
}

// Party returns the travel-party size, defaulting to a solo traveller.
func (r TripRequest) Party() int {
	if r.PartySize < 1 {
		return 1
	}
	return r.PartySize
}

// LastDay returns the date of the final trip day. It is zero when no start date is known.
func (r TripRequest) LastDay() time.Time {
	days := r.Days()
	if r.StartDate.IsZero() || days == 0 {
		return time.Time{}
	}
	return r.StartDate.AddDate(0, 0, days-1)
}

// Has reports whether the given required field is filled in.
func (r TripRequest) Has(f Field) bool {
	switch f {
	case FieldOrigin:
		return strings.TrimSpace(r.Origin) != ""
	case FieldDestination:
		return strings.TrimSpace(r.Destination) != ""
	case FieldDates:
		return r.Days() > 0
	case FieldBudget:
		return r.Budget.IsPositive() && r.Budget.Currency != ""
	case FieldStyle:
		return strings.TrimSpace(r.Style) != ""
	case FieldInterests:
		return len(r.Interests) > 0
	}
	return false
}

// Complete reports whether every required field is present.
func (r TripRequest) Complete() bool {
	for _, f := range RequiredFields {
		if !r.Has(f) {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no slices with r.
func (r TripRequest) Clone() TripRequest {
	r.Interests = slices.Clone(r.Interests)
	return r
}

// Extraction is the best-effort output of a text extractor. Fields uses the
// snake_case keys of TripRequest plus budget_amount and budget_currency.
// An empty Fields map is the "no extraction" signal.
type Extraction struct {
	Fields     map[string]any `json:"fields,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
}

// Empty reports whether the extractor found nothing.
func (e Extraction) Empty() bool {
	return len(e.Fields) == 0
}
