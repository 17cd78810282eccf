package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the storage class inferred for a column.
type Kind int

// Column kinds, from most to least specific.
const (
	KindText Kind = iota
	KindInteger
	KindReal
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	default:
		return "text"
	}
}

// InferKind returns the narrowest kind that can hold every non-null cell.
// A column of only nulls is text.
func InferKind(cells []Cell) Kind {
	kind := KindInteger
	seen := false

	for _, c := range cells {
		if c.IsNull() {
			continue
		}
		seen = true
		s := strings.TrimSpace(c.Text)
		if kind == KindInteger {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			kind = KindReal
		}
		if !isReal(s) {
			return KindText
		}
	}

	if !seen {
		return KindText
	}
	return kind
}

func isReal(s string) bool {
	if strings.HasPrefix(strings.TrimLeft(s, "+-"), "0x") || strings.HasPrefix(strings.TrimLeft(s, "+-"), "0X") {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Kinds infers the kind of every column.
func (d *Dataset) Kinds() []Kind {
	kinds := make([]Kind, d.Width())
	col := make([]Cell, d.Len())
	for j := range d.Columns {
		for i, row := range d.Rows {
			col[i] = row[j]
		}
		kinds[j] = InferKind(col)
	}
	return kinds
}

// Typed converts the cell into a database/sql argument for a column of kind k:
// nil for null, int64 for integers, float64 for reals, string otherwise.
func (c Cell) Typed(k Kind) (any, error) {
	if c.IsNull() {
		return nil, nil
	}
	s := strings.TrimSpace(c.Text)
	switch k {
	case KindInteger:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not an integer: %w", c.Text, err)
		}
		return v, nil
	case KindReal:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a number: %w", c.Text, err)
		}
		return v, nil
	default:
		return c.Text, nil
	}
}
