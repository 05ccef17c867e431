package validator

import (
	"regexp"
	"strings"

	"github.com/aretw0/voyage/pkg/domain"
)

var keyPattern = regexp.MustCompile(`(?i)\b(origin|from|destination|to|start_date|start|end_date|end|until|duration_days|duration|days|budget|party_size|party|travellers|travelers|people|style|interests)\s*[:=]`)

var keyAliases = map[string]string{
	"from":       "origin",
	"to":         "destination",
	"start":      "start_date",
	"end":        "end_date",
	"until":      "end_date",
	"duration":   "duration_days",
	"days":       "duration_days",
	"party":      "party_size",
	"travellers": "party_size",
	"travelers":  "party_size",
	"people":     "party_size",
}

// ParseFields reads "key: value" or "key=value" pairs out of free text. A value runs
// until the next recognized key. Keys are returned in their extraction form, e.g.
// "days=5" yields duration_days.
func ParseFields(text string) map[string]any {
	locs := keyPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make(map[string]any, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		key := strings.ToLower(text[loc[2]:loc[3]])
		if alias, ok := keyAliases[key]; ok {
			key = alias
		}
		value := strings.Trim(strings.TrimSpace(text[loc[1]:end]), ",;")
		if value == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}

// ParseEdits turns the arguments of an update choice into an extraction.
func ParseEdits(args string) domain.Extraction {
	return domain.Extraction{Fields: ParseFields(args), Confidence: 1}
}
