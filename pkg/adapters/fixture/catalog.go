// Package fixture provides deterministic collaborators backed by a YAML catalog.
//
// They stand in for the natural-language extractor, the discovery service, the
// flight and hotel provider and the itinerary writer, so that a planning session
// can run end to end without live providers.
package fixture

import (
	_ "embed"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/aretw0/voyage/pkg/places"
	"github.com/aretw0/voyage/pkg/ports"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the fixture data set.
type Catalog struct {
	Currency     string        `mapstructure:"currency"`
	Destinations []Destination `mapstructure:"destinations"`
	Flights      []Flight      `mapstructure:"flights"`
}

// Destination holds the activities and lodging of a city.
type Destination struct {
	City       string     `mapstructure:"city"`
	Code       string     `mapstructure:"code"`
	Activities []Activity `mapstructure:"activities"`
	Lodging    []Lodging  `mapstructure:"lodging"`
}

// Activity is a discoverable candidate.
type Activity struct {
	Name        string   `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	Kind        string   `mapstructure:"kind"`
	Tags        []string `mapstructure:"tags"`
}

// Lodging is a bookable property. Nightly is the price of one room for one night.
type Lodging struct {
	Name     string          `mapstructure:"name"`
	Styles   []string        `mapstructure:"styles"`
	Nightly  decimal.Decimal `mapstructure:"nightly"`
	Currency string          `mapstructure:"currency"`
	URL      string          `mapstructure:"url"`
}

// Flight is a one-way route with a per-passenger fare.
type Flight struct {
	From     string          `mapstructure:"from"`
	To       string          `mapstructure:"to"`
	Carrier  string          `mapstructure:"carrier"`
	Fare     decimal.Decimal `mapstructure:"fare"`
	Currency string          `mapstructure:"currency"`
	Depart   string          `mapstructure:"depart"`
	Hours    float64         `mapstructure:"hours"`
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file. An empty path yields the embedded catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog. Prices may be written as numbers or strings.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	var c Catalog
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &c,
		DecodeHook:       decimalHook,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = "USD"
	}
	for i := range c.Flights {
		f := &c.Flights[i]
		f.From = strings.ToUpper(f.From)
		f.To = strings.ToUpper(f.To)
		f.Currency = c.currencyOr(f.Currency)
	}
	for i := range c.Destinations {
		d := &c.Destinations[i]
		d.Code = strings.ToUpper(d.Code)
		for j := range d.Lodging {
			d.Lodging[j].Currency = c.currencyOr(d.Lodging[j].Currency)
		}
	}
	return &c, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func decimalHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	}
	return data, nil
}

func (c *Catalog) currencyOr(cur string) string {
	if cur = strings.ToUpper(strings.TrimSpace(cur)); cur != "" {
		return cur
	}
	return c.Currency
}

// Codes returns the city-to-code pairs the catalog declares, for places.New.
func (c *Catalog) Codes() map[string]string {
	out := make(map[string]string, len(c.Destinations))
	for _, d := range c.Destinations {
		if d.City != "" && d.Code != "" {
			out[d.City] = d.Code
		}
	}
	return out
}

// Destination finds a destination by IATA code.
func (c *Catalog) Destination(code string) (Destination, bool) {
	for _, d := range c.Destinations {
		if d.Code == code {
			return d, true
		}
	}
	return Destination{}, false
}

// Flight finds the route from one code to another.
func (c *Catalog) Flight(from, to string) (Flight, bool) {
	for _, f := range c.Flights {
		if f.From == from && f.To == to {
			return f, true
		}
	}
	return Flight{}, false
}

// Collaborators bundles the fixture collaborators over one catalog and directory.
type Collaborators struct {
	Extractor *Extractor
	Discovery *Discoverer
	Logistics *Logistics
	Composer  *Composer
}

// New builds every fixture collaborator. A nil directory is derived from the catalog.
func New(c *Catalog, dir *places.Directory) Collaborators {
	if dir == nil {
		dir = places.New(c.Codes())
	}
	return Collaborators{
		Extractor: NewExtractor(),
		Discovery: NewDiscoverer(c, dir),
		Logistics: NewLogistics(c, dir),
		Composer:  NewComposer(),
	}
}

// Ports exposes the collaborators through the engine's interfaces.
func (c Collaborators) Ports() ports.Collaborators {
	return ports.Collaborators{
		Extractor: c.Extractor,
		Discovery: c.Discovery,
		Logistics: c.Logistics,
		Composer:  c.Composer,
	}
}
