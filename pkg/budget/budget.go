// Package budget normalizes trip budgets and converts provider prices between currencies.
package budget

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/voyage/pkg/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a budget string has no usable amount.
var ErrInvalidAmount = errors.New("invalid budget amount")

// Total returns the whole-party budget: the per-person amount times the party size,
// in the same currency. A party below one counts as a single traveller.
func Total(perPerson domain.Money, party int) domain.Money {
	if party < 1 {
		party = 1
	}
	return domain.Money{
		Amount:   perPerson.Amount.Mul(decimal.NewFromInt(int64(party))),
		Currency: perPerson.Currency,
	}
}

var symbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
}

var amountPattern = regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]+)?)([A-Za-z]*)`)

var multipliers = map[string]int64{
	"k":        1_000,
	"thousand": 1_000,
	"lakh":     100_000,
	"lakhs":    100_000,
	"lac":      100_000,
	"cr":       10_000_000,
	"crore":    10_000_000,
	"crores":   10_000_000,
	"m":        1_000_000,
	"mn":       1_000_000,
	"million":  1_000_000,
}

// Parse reads amounts such as "100000 INR", "inr 1,500.50", "$2000" or "1.5 lakh INR".
// When no currency is present, fallback is used. Only codes of the default rate
// table count as currencies, and an unknown upper-case code is rejected. Use
// RateTable.Parse to accept a configured table.
func Parse(s, fallback string) (domain.Money, error) {
	return parse(s, fallback, knownCode)
}

// Parse is the package Parse that also accepts every currency in the table.
func (t *RateTable) Parse(s, fallback string) (domain.Money, error) {
	return parse(s, fallback, func(code string) bool {
		return t.Supports(code) || knownCode(code)
	})
}

func parse(s, fallback string, known func(string) bool) (domain.Money, error) {
	text := strings.TrimSpace(s)
	loc := amountPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return domain.Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if strings.Contains(text[:loc[0]], "-") {
		return domain.Money{}, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(text[loc[2]:loc[3]], ",", ""))
	if err != nil {
		return domain.Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	currency := fallback
	end := loc[1]
	if suffix := text[loc[4]:loc[5]]; suffix != "" {
		switch f, ok := multipliers[strings.ToLower(suffix)]; {
		case ok:
			amount = amount.Mul(decimal.NewFromInt(f))
		case known(suffix):
			currency = strings.ToUpper(suffix)
		default:
			return domain.Money{}, fmt.Errorf("%w: unknown suffix %q in %q", ErrInvalidAmount, suffix, s)
		}
	} else if next := strings.Fields(text[end:]); len(next) > 0 {
		if f, ok := multipliers[strings.ToLower(strings.Trim(next[0], ".,"))]; ok {
			amount = amount.Mul(decimal.NewFromInt(f))
			end += strings.Index(text[end:], next[0]) + len(next[0])
		}
	}
	if !amount.IsPositive() {
		return domain.Money{}, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}

	rest := text[:loc[0]] + " " + text[end:]
	for sym, code := range symbols {
		if strings.Contains(rest, sym) {
			currency = code
			rest = strings.ReplaceAll(rest, sym, "")
		}
	}
	for _, word := range strings.Fields(rest) {
		word = strings.Trim(word, "., ")
		if len(word) != 3 || !isLetters(word) {
			continue
		}
		if known(word) {
			currency = strings.ToUpper(word)
			break
		}
		if word == strings.ToUpper(word) {
			return domain.Money{}, fmt.Errorf("%w: unknown currency %q", ErrInvalidAmount, word)
		}
	}
	if strings.TrimSpace(currency) == "" {
		return domain.Money{}, fmt.Errorf("%w: no currency in %q", ErrInvalidAmount, s)
	}
	return domain.NewMoney(amount, currency), nil
}

func knownCode(s string) bool {
	_, ok := DefaultRates()[strings.ToUpper(s)]
	return ok
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
