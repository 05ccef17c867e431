// Package validator merges untrusted extractions into a TripRequest and reports
// which required fields are still missing.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/voyage/pkg/budget"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// DefaultStyles is the travel-style vocabulary offered to users.
var DefaultStyles = []string{"Solo", "Family", "Couple", "Business", "Adventure", "Culture & Food", "Budget", "Luxury"}

// DefaultInterests is the interest vocabulary offered to users.
var DefaultInterests = []string{"Culture", "Food", "Adventure", "Nature", "Nightlife", "Shopping", "History", "Photography"}

// FieldStatus is the presence flag of a single required field.
type FieldStatus struct {
	Field   domain.Field `json:"field"`
	Present bool         `json:"present"`
}

// State is the ordered validation result of a request. It is derived, never stored.
type State []FieldStatus

// Missing returns the absent fields in prompt order.
func (s State) Missing() []domain.Field {
	var out []domain.Field
	for _, fs := range s {
		if !fs.Present {
			out = append(out, fs.Field)
		}
	}
	return out
}

// Complete reports whether no field is missing.
func (s State) Complete() bool {
	return len(s.Missing()) == 0
}

// Err returns a *domain.MissingFieldError, or nil when the request is complete.
func (s State) Err() error {
	if missing := s.Missing(); len(missing) > 0 {
		return &domain.MissingFieldError{Fields: missing}
	}
	return nil
}

// Validate derives the validation state of a request.
func Validate(req domain.TripRequest) State {
	st := make(State, 0, len(domain.RequiredFields))
	for _, f := range domain.RequiredFields {
		st = append(st, FieldStatus{Field: f, Present: req.Has(f)})
	}
	return st
}

// Validator merges extractions using a style and interest vocabulary.
type Validator struct {
	styles    []string
	interests []string
	currency  string
	rates     *budget.RateTable
}

// Option configures a Validator.
type Option func(*Validator)

// WithStyles replaces the style vocabulary.
func WithStyles(styles []string) Option {
	return func(v *Validator) {
		if len(styles) > 0 {
			v.styles = styles
		}
	}
}

// WithInterests replaces the interest vocabulary.
func WithInterests(interests []string) Option {
	return func(v *Validator) {
		if len(interests) > 0 {
			v.interests = interests
		}
	}
}

// WithDefaultCurrency sets the currency of budgets given without one.
func WithDefaultCurrency(code string) Option {
	return func(v *Validator) {
		v.currency = strings.ToUpper(strings.TrimSpace(code))
	}
}

// WithRates accepts every currency of the table in budget answers.
func WithRates(rates *budget.RateTable) Option {
	return func(v *Validator) {
		v.rates = rates
	}
}

// New creates a Validator with the default vocabularies.
func New(opts ...Option) *Validator {
	v := &Validator{
		styles:    DefaultStyles,
		interests: DefaultInterests,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Styles returns the style vocabulary.
func (v *Validator) Styles() []string { return slices.Clone(v.styles) }

// Interests returns the interest vocabulary.
func (v *Validator) Interests() []string { return slices.Clone(v.interests) }

// extracted mirrors the keys an extractor may fill in.
type extracted struct {
	Origin         string    `mapstructure:"origin"`
	Destination    string    `mapstructure:"destination"`
	StartDate      time.Time `mapstructure:"start_date"`
	EndDate        time.Time `mapstructure:"end_date"`
	DurationDays   int       `mapstructure:"duration_days"`
	Budget         string    `mapstructure:"budget"`
	BudgetAmount   string    `mapstructure:"budget_amount"`
	BudgetCurrency string    `mapstructure:"budget_currency"`
	PartySize      int       `mapstructure:"party_size"`
	Style          string    `mapstructure:"style"`
	Interests      []string  `mapstructure:"interests"`
}

// Merge applies an extraction to req. Non-empty extracted values win; absent keys keep
// the current value. Values that cannot be used are reported in the returned error while
// every usable value is still applied.
func (v *Validator) Merge(req domain.TripRequest, ex domain.Extraction) (domain.TripRequest, error) {
	out := req.Clone()
	if ex.Empty() {
		return out, nil
	}

	var (
		e    extracted
		errs []error
	)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &e,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			dateHook(&errs),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return out, fmt.Errorf("failed to build decoder: %w", err)
	}
	// mapstructure keeps decoding past bad keys, so the good ones are still applied.
	if err := dec.Decode(ex.Fields); err != nil {
		errs = append(errs, fmt.Errorf("failed to decode extraction: %w", err))
	}
	if s := strings.TrimSpace(e.Origin); s != "" {
		out.Origin = s
	}
	if s := strings.TrimSpace(e.Destination); s != "" {
		out.Destination = s
	}
	if !e.StartDate.IsZero() {
		out.StartDate = e.StartDate
	}
	if !e.EndDate.IsZero() {
		if !out.StartDate.IsZero() && e.EndDate.Before(out.StartDate) {
			errs = append(errs, fmt.Errorf("end date %s is before start date %s",
				e.EndDate.Format(domain.DateLayout), out.StartDate.Format(domain.DateLayout)))
		} else {
			out.EndDate = e.EndDate
		}
	}
	if e.DurationDays > 0 {
		out.DurationDays = e.DurationDays
		// A new duration replaces an older end date, which would otherwise win in Days().
		if e.EndDate.IsZero() {
			out.EndDate = time.Time{}
		}
	}
	if e.PartySize > 0 {
		out.PartySize = e.PartySize
	}

	if err := v.mergeBudget(&out, e); err != nil {
		errs = append(errs, err)
	}

	if s := strings.TrimSpace(e.Style); s != "" {
		out.Style = canonical(s, v.styles)
	}
	if interests := v.normalizeInterests(e.Interests); len(interests) > 0 {
		out.Interests = interests
	}

	return out, errors.Join(errs...)
}

var dateLayouts = []string{domain.DateLayout, "2006/01/02", "02 Jan 2006", "Jan 2 2006"}

// dateHook parses calendar dates leniently: blank or unreadable values decode to the
// zero time and are reported through errs.
func dateHook(errs *[]error) mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
			return data, nil
		}
		s := strings.TrimSpace(data.(string))
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		*errs = append(*errs, fmt.Errorf("unrecognized date %q, expected YYYY-MM-DD", s))
		return time.Time{}, nil
	}
}

func (v *Validator) mergeBudget(out *domain.TripRequest, e extracted) error {
	currency := out.Budget.Currency
	if c := strings.TrimSpace(e.BudgetCurrency); c != "" {
		currency = strings.ToUpper(c)
	}

	raw := strings.TrimSpace(e.BudgetAmount)
	if raw == "" {
		raw = strings.TrimSpace(e.Budget)
	}
	if raw == "" {
		if currency != out.Budget.Currency {
			out.Budget = domain.NewMoney(out.Budget.Amount, currency)
		}
		return nil
	}

	if currency == "" {
		currency = v.currency
	}
	parse := budget.Parse
	if v.rates != nil {
		parse = v.rates.Parse
	}
	m, err := parse(raw, currency)
	if err != nil {
		return fmt.Errorf("budget: %w", err)
	}
	out.Budget = m
	return nil
}

func (v *Validator) normalizeInterests(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			part = canonical(part, v.interests)
			if !slices.Contains(out, part) {
				out = append(out, part)
			}
		}
	}
	return out
}

// canonical returns the vocabulary spelling of s when it matches case-insensitively.
// Unknown values are kept as given.
func canonical(s string, vocabulary []string) string {
	for _, known := range vocabulary {
		if strings.EqualFold(known, s) {
			return known
		}
	}
	return s
}

// Questions returns one follow-up question per missing field, in prompt order.
func (v *Validator) Questions(st State) []string {
	var out []string
	for _, f := range st.Missing() {
		out = append(out, v.question(f))
	}
	return out
}

func (v *Validator) question(f domain.Field) string {
	switch f {
	case domain.FieldOrigin:
		return "Where will you be travelling from?"
	case domain.FieldDestination:
		return "Where would you like to go?"
	case domain.FieldDates:
		return "When does the trip start (YYYY-MM-DD), and for how many days?"
	case domain.FieldBudget:
		return "What is your budget per person, and in which currency?"
	case domain.FieldStyle:
		return "What kind of trip is it? (" + strings.Join(v.styles, ", ") + ")"
	case domain.FieldInterests:
		return "What are you interested in? (" + strings.Join(v.interests, ", ") + ")"
	}
	return "Please provide " + string(f) + "."
}
