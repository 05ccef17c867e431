package budget

import (
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/voyage/pkg/domain"
	"github.com/shopspring/decimal"
)

// Converter converts money into a target currency.
// ok is false when either currency is unknown.
type Converter interface {
	Convert(m domain.Money, to string) (converted domain.Money, ok bool)
}

// DefaultRates returns units of each currency per one US dollar.
func DefaultRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("0.92"),
		"INR": decimal.NewFromInt(83),
		"GBP": decimal.RequireFromString("0.79"),
		"JPY": decimal.NewFromInt(149),
	}
}

// RateTable is a static, USD-pivoted exchange table.
type RateTable struct {
	rates map[string]decimal.Decimal
}

// NewRateTable builds a table from units-per-USD rates. Non-positive rates are ignored.
func NewRateTable(rates map[string]decimal.Decimal) *RateTable {
	t := &RateTable{rates: make(map[string]decimal.Decimal, len(rates))}
	for code, r := range rates {
		if r.IsPositive() {
			t.rates[strings.ToUpper(code)] = r
		}
	}
	return t
}

// Supports reports whether the currency is in the table.
func (t *RateTable) Supports(currency string) bool {
	_, ok := t.rates[strings.ToUpper(currency)]
	return ok
}

// Currencies returns the known codes, sorted.
func (t *RateTable) Currencies() []string {
	return slices.Sorted(maps.Keys(t.rates))
}

// Convert pivots through USD and rounds to two decimals.
// Same-currency conversions return the input unchanged.
func (t *RateTable) Convert(m domain.Money, to string) (domain.Money, bool) {
	from := strings.ToUpper(m.Currency)
	to = strings.ToUpper(to)
	if from == to && from != "" {
		return m, true
	}
	fromRate, ok := t.rates[from]
	if !ok {
		return domain.Money{}, false
	}
	toRate, ok := t.rates[to]
	if !ok {
		return domain.Money{}, false
	}
	usd := m.Amount.Div(fromRate)
	return domain.Money{Amount: usd.Mul(toRate).Round(2), Currency: to}, true
}
