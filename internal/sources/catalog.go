package sources

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed mockdata/catalog.yaml
var catalogYAML []byte

// CatalogEntry is one fallback offer template. Which fields matter
// depends on the list it sits in.
type CatalogEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Cost        float64  `yaml:"cost"`
	Rating      *float64 `yaml:"rating"`
	Duration    string   `yaml:"duration"`
	Airline     string   `yaml:"airline"`
	Amenities   []string `yaml:"amenities"`
	CarType     string   `yaml:"car_type"`
	Supplier    string   `yaml:"supplier"`
	Cuisine     string   `yaml:"cuisine"`
	PriceLevel  *int     `yaml:"price_level"`
}

type Catalog struct {
	Flights    []CatalogEntry `yaml:"flights"`
	Hotels     []CatalogEntry `yaml:"hotels"`
	CarRentals []CatalogEntry `yaml:"car_rentals"`
	Places     []CatalogEntry `yaml:"places"`
	Activities []CatalogEntry `yaml:"activities"`
	Food       []CatalogEntry `yaml:"food"`
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) { return ParseCatalog(catalogYAML) }

// ParseCatalog decodes and checks a catalog: every list needs 3 to 5
// entries with non-negative costs.
func ParseCatalog(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	lists := []struct {
		name    string
		entries []CatalogEntry
	}{
		{"flights", c.Flights},
		{"hotels", c.Hotels},
		{"car_rentals", c.CarRentals},
		{"places", c.Places},
		{"activities", c.Activities},
		{"food", c.Food},
	}
	for _, l := range lists {
		if n := len(l.entries); n < 3 || n > 5 {
			return nil, fmt.Errorf("catalog %s: want 3..5 entries, got %d", l.name, n)
		}
		for i, e := range l.entries {
			if e.Cost < 0 {
				return nil, fmt.Errorf("catalog %s[%d]: negative cost", l.name, i)
			}
		}
	}
	return &c, nil
}
