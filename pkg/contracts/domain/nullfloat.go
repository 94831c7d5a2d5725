package domain

import (
	"math"
	"strconv"
)

// NullFloat is a float64 that may be absent. The zero value is null.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a valid NullFloat. NaN and ±Inf are stored as null so that
// every valid value is finite.
func Float(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{Float64: v, Valid: true}
}

// Null returns the null value.
func Null() NullFloat {
	return NullFloat{}
}

// Add returns n+o, or null if either operand is null.
func (n NullFloat) Add(o NullFloat) NullFloat {
	if !n.Valid || !o.Valid {
		return NullFloat{}
	}
	return Float(n.Float64 + o.Float64)
}

// Sub returns n-o, or null if either operand is null.
func (n NullFloat) Sub(o NullFloat) NullFloat {
	if !n.Valid || !o.Valid {
		return NullFloat{}
	}
	return Float(n.Float64 - o.Float64)
}

// Ptr returns a pointer to the value, or nil when null.
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// String formats the value in shortest round-trip decimal form; null is empty.
func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}
