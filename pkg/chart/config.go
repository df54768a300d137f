package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/tabpanel/pkg/errors"
)

// Legend positions.
const (
	LegendRight = "right"
	LegendNone  = "none"
)

// Config describes a pie chart.
type Config struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"` // hex, cycled when shorter than Values
	Legend string    `json:"legend"`
}

// DefaultConfig returns the panel's five-slice pie.
func DefaultConfig() Config {
	return Config{
		Labels: []string{"Red", "Blue", "Yellow", "Green", "Purple"},
		Values: []float64{12, 19, 3, 5, 2},
		Colors: []string{"#ff6384", "#36a2eb", "#ffcd56", "#4bc0c0", "#9966ff"},
		Legend: LegendRight,
	}
}

// Validate checks that the config describes a drawable pie.
func (c Config) Validate() error {
	if len(c.Values) == 0 {
		return errors.New(errors.ErrCodeChartFailed, "chart has no values")
	}
	if len(c.Labels) != len(c.Values) {
		return errors.New(errors.ErrCodeChartFailed, "chart has %d labels for %d values", len(c.Labels), len(c.Values))
	}
	if len(c.Colors) == 0 {
		return errors.New(errors.ErrCodeChartFailed, "chart has no colors")
	}
	for _, col := range c.Colors {
		if !isHexColor(col) {
			return errors.New(errors.ErrCodeChartFailed, "invalid color %q", col)
		}
	}
	var sum float64
	for i, v := range c.Values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeChartFailed, "value %d (%s) must be a non-negative number", i, c.Labels[i])
		}
		sum += v
	}
	if sum == 0 {
		return errors.New(errors.ErrCodeChartFailed, "chart values sum to zero")
	}
	switch c.Legend {
	case "", LegendRight, LegendNone:
	default:
		return errors.New(errors.ErrCodeChartFailed, "unsupported legend position %q", c.Legend)
	}
	return nil
}

func (c Config) color(i int) string {
	return c.Colors[i%len(c.Colors)]
}

func (c Config) String() string {
	return fmt.Sprintf("pie(%d slices)", len(c.Values))
}

func isHexColor(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
