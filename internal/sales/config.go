package sales

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultMarginRate applies to categories missing from the margin table.
	DefaultMarginRate = 0.3
	// DefaultAdjustmentCategory receives the manual bill adjustments.
	DefaultAdjustmentCategory = "Cake"
)

// marginAliases lists category names that must always share a rate.
var marginAliases = map[string]string{
	"Other":  "Others",
	"Others": "Other",
}

// DefaultMarginTable returns the built-in category margins.
func DefaultMarginTable() MarginTable {
	return MarginTable{
		Rates: map[string]float64{
			"Cake":      0.45,
			"Pastry":    0.5,
			"Bread":     0.35,
			"Cookies":   0.4,
			"Snacks":    0.4,
			"Beverages": 0.55,
			"Other":     0.6,
			"Others":    0.6,
		},
		Default: DefaultMarginRate,
	}
}

// MarginTable maps item categories to a profit fraction of gross sales.
type MarginTable struct {
	Rates   map[string]float64 `validate:"dive,gte=0,lte=1"`
	Default float64            `validate:"gte=0,lte=1"`
}

// Rate returns the margin for category, falling back to its alias and then
// to the table default.
func (t MarginTable) Rate(category string) float64 {
	if rate, ok := t.Rates[category]; ok {
		return rate
	}
	if alias, ok := marginAliases[category]; ok {
		if rate, ok := t.Rates[alias]; ok {
			return rate
		}
	}
	return t.Default
}

// With returns a copy of the table with overrides applied.
func (t MarginTable) With(overrides map[string]float64) MarginTable {
	rates := make(map[string]float64, len(t.Rates)+len(overrides))
	for k, v := range t.Rates {
		rates[k] = v
	}
	for k, v := range overrides {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		rates[k] = v
		if alias, ok := marginAliases[k]; ok {
			rates[alias] = v
		}
	}
	return MarginTable{Rates: rates, Default: t.Default}
}

// SiteConfig carries the fixed business constants for one site.
type SiteConfig struct {
	Name         string  `validate:"required"`
	Target       float64 `validate:"gte=0"`
	FixedExpense float64 `validate:"gte=0"`
}

// BusinessConfig gathers the constants the aggregation engine is parameterised with.
type BusinessConfig struct {
	Sites              []SiteConfig `validate:"len=2,dive"`
	Margins            MarginTable
	AdjustmentCategory string `validate:"required"`
}

// DefaultBusinessConfig returns the configuration used when nothing is overridden.
func DefaultBusinessConfig() BusinessConfig {
	return BusinessConfig{
		Sites: []SiteConfig{
			{Name: "Bangur Nagar", Target: 600000, FixedExpense: 150000},
			{Name: "Vikhroli", Target: 400000, FixedExpense: 120000},
		},
		Margins:            DefaultMarginTable(),
		AdjustmentCategory: DefaultAdjustmentCategory,
	}
}

var configValidator = validator.New()

// Validate checks ranges and that site names are unique.
func (c BusinessConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("sales: invalid business config: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Sites))
	for _, site := range c.Sites {
		key := strings.ToLower(strings.TrimSpace(site.Name))
		if _, ok := seen[key]; ok {
			return fmt.Errorf("sales: duplicate site name %q", site.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
