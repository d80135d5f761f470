package component

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"gsa-map-porter/internal/gsa"
)

// parseFloat accepts finite numbers only. NaN and the infinities have no
// JSON encoding.
func parseFloat(text string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrAttributeParse, text)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrAttributeParse, text)
	}
	return f, nil
}

// parseFloats reads a comma (or whitespace) separated list of exactly want
// numbers. want <= 0 accepts any non-empty count.
func parseFloats(text string, want int) ([]float64, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrAttributeParse)
	}
	if want > 0 && len(fields) != want {
		return nil, fmt.Errorf("%w: want %d values, got %d in %q", ErrAttributeParse, want, len(fields), text)
	}

	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := parseFloat(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseMatrix3 reads a 3×3 matrix from ROW children, or from nine numbers
// in the property text when there are no rows. Empty rows are ignored.
func parseMatrix3(p *gsa.Property) ([][]float64, error) {
	var rows []string
	for _, r := range p.Rows {
		if t := strings.TrimSpace(r.Text); t != "" {
			rows = append(rows, t)
		}
	}

	if len(rows) == 0 {
		flat, err := parseFloats(p.Value(), 9)
		if err != nil {
			return nil, err
		}
		return [][]float64{flat[0:3], flat[3:6], flat[6:9]}, nil
	}

	if len(rows) != 3 {
		return nil, fmt.Errorf("%w: want 3 matrix rows, got %d", ErrAttributeParse, len(rows))
	}
	m := make([][]float64, 3)
	for i, r := range rows {
		row, err := parseFloats(r, 3)
		if err != nil {
			return nil, err
		}
		m[i] = row
	}
	return m, nil
}
