package fixture

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/voyage/internal/validator"
	"github.com/aretw0/voyage/pkg/domain"
)

var (
	datePattern = regexp.MustCompile(`\d{4}[-/]\d{2}[-/]\d{2}`)
	daysPattern = regexp.MustCompile(`(?i)^\s*(\d+)\s*(?:days?|d)?\s*$|(\d+)\s*days?`)
)

// Extractor reads "key: value" pairs. A bare answer fills the first missing field,
// which is the one the engine just asked about.
type Extractor struct{}

// NewExtractor creates an extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract implements ports.Extractor.
func (x *Extractor) Extract(ctx context.Context, text string, current domain.TripRequest) (domain.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Extraction{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Extraction{}, nil
	}
	if fields := validator.ParseFields(text); len(fields) > 0 {
		return domain.Extraction{Fields: fields, Confidence: 1}, nil
	}

	missing := validator.Validate(current).Missing()
	if len(missing) == 0 {
		return domain.Extraction{}, nil
	}
	fields := bareAnswer(missing[0], text)
	if len(fields) == 0 {
		return domain.Extraction{}, nil
	}
	return domain.Extraction{Fields: fields, Confidence: 0.5}, nil
}

func bareAnswer(f domain.Field, text string) map[string]any {
	switch f {
	case domain.FieldOrigin:
		return map[string]any{"origin": text}
	case domain.FieldDestination:
		return map[string]any{"destination": text}
	case domain.FieldBudget:
		return map[string]any{"budget": text}
	case domain.FieldStyle:
		return map[string]any{"style": text}
	case domain.FieldInterests:
		return map[string]any{"interests": text}
	case domain.FieldDates:
		return dateAnswer(text)
	}
	return nil
}

// dateAnswer accepts "2026-03-01 to 2026-03-05", "2026-03-01, 5 days", or "5 days".
func dateAnswer(text string) map[string]any {
	out := map[string]any{}
	dates := datePattern.FindAllString(text, 2)
	if len(dates) > 0 {
		out["start_date"] = dates[0]
	}
	if len(dates) > 1 {
		out["end_date"] = dates[1]
	}
	rest := datePattern.ReplaceAllString(text, " ")
	if m := daysPattern.FindStringSubmatch(rest); m != nil {
		if m[1] != "" {
			out["duration_days"] = m[1]
		} else {
			out["duration_days"] = m[2]
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
