package csvimport

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayouts are the date formats accepted in import cells, tried in order
var DateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006", time.RFC3339}

// Row is one data row keyed by normalized header name
type Row struct {
	Index int
	Data  map[string]string
}

// Get returns the trimmed value of a column, empty if absent
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// Decimal parses a money cell. Thousands separators and a leading currency
// sign are tolerated. Blank cells yield nil.
func (r *Row) Decimal(column string) (*decimal.Decimal, error) {
	v := r.Get(column)
	if v == "" {
		return nil, nil
	}
	clean := strings.TrimLeft(strings.ReplaceAll(v, ",", ""), "$€£")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return nil, fmt.Errorf("%s: '%s' is not a number", column, v)
	}
	return &d, nil
}

// Int parses an integer cell. Blank cells yield nil.
func (r *Row) Int(column string) (*int, error) {
	v := r.Get(column)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s: '%s' is not a whole number", column, v)
	}
	return &n, nil
}

// Date parses a date cell using DateLayouts. Blank cells yield nil.
func (r *Row) Date(column string) (*time.Time, error) {
	v := r.Get(column)
	if v == "" {
		return nil, nil
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s: '%s' is not a date (expected YYYY-MM-DD)", column, v)
}
