// Package places resolves city names to IATA location codes for logistics queries.
package places

import (
	"maps"
	"strings"
)

// DefaultCodes maps lower-case city names and common aliases to IATA codes.
func DefaultCodes() map[string]string {
	return map[string]string{
		"ahmedabad":   "AMD",
		"mumbai":      "BOM",
		"bombay":      "BOM",
		"delhi":       "DEL",
		"new delhi":   "DEL",
		"dehradun":    "DED",
		"bangalore":   "BLR",
		"bengaluru":   "BLR",
		"chennai":     "MAA",
		"madras":      "MAA",
		"hyderabad":   "HYD",
		"kolkata":     "CCU",
		"calcutta":    "CCU",
		"kochi":       "COK",
		"cochin":      "COK",
		"pune":        "PNQ",
		"goa":         "GOI",
		"jaipur":      "JAI",
		"lucknow":     "LKO",
		"chandigarh":  "IXC",
		"new york":    "NYC",
		"nyc":         "NYC",
		"los angeles": "LAX",
		"lax":         "LAX",
		"london":      "LON",
		"paris":       "PAR",
		"dubai":       "DXB",
		"singapore":   "SIN",
		"hong kong":   "HKG",
		"tokyo":       "TYO",
	}
}

// Directory is a city-to-code lookup table.
type Directory struct {
	codes map[string]string
}

// New builds a directory. Extra entries override the defaults.
func New(extra map[string]string) *Directory {
	codes := DefaultCodes()
	for city, code := range extra {
		codes[normalize(city)] = strings.ToUpper(strings.TrimSpace(code))
	}
	return &Directory{codes: codes}
}

// Code resolves a city name, or an IATA code given directly, to its code.
func (d *Directory) Code(city string) (string, bool) {
	key := normalize(city)
	if code, ok := d.codes[key]; ok {
		return code, true
	}
	if len(key) == 3 {
		upper := strings.ToUpper(key)
		for v := range maps.Values(d.codes) {
			if v == upper {
				return upper, true
			}
		}
	}
	return "", false
}

// Entries returns a copy of the table.
func (d *Directory) Entries() map[string]string {
	return maps.Clone(d.codes)
}

func normalize(city string) string {
	city = strings.ToLower(strings.TrimSpace(city))
	if i := strings.IndexByte(city, ','); i >= 0 {
		city = strings.TrimSpace(city[:i])
	}
	return strings.Join(strings.Fields(city), " ")
}
