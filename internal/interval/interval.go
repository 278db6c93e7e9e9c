// Package interval turns free-text specification limits and observed results into
// comparable numeric intervals.
package interval

import (
	"strconv"
	"strings"
)

// Interval is a numeric range. A nil bound is unbounded in that direction.
type Interval struct {
	Min          *float64 `json:"min"`
	MinInclusive bool     `json:"min_inclusive"`
	Max          *float64 `json:"max"`
	MaxInclusive bool     `json:"max_inclusive"`
}

func bound(v float64) *float64 { return &v }

// Point is [v, v].
func Point(v float64) Interval {
	return Interval{Min: bound(v), MinInclusive: true, Max: bound(v), MaxInclusive: true}
}

// Closed is [min(a,b), max(a,b)].
func Closed(a, b float64) Interval {
	if a > b {
		a, b = b, a
	}
	return Interval{Min: bound(a), MinInclusive: true, Max: bound(b), MaxInclusive: true}
}

// Zero is the exact-zero interval used for absence.
func Zero() Interval { return Point(0) }

// AtMost is [0, n].
func AtMost(n float64) Interval {
	return Interval{Min: bound(0), MinInclusive: true, Max: bound(n), MaxInclusive: true}
}

// Below is [0, n).
func Below(n float64) Interval {
	return Interval{Min: bound(0), MinInclusive: true, Max: bound(n)}
}

// AtLeast is [n, ∞).
func AtLeast(n float64) Interval {
	return Interval{Min: bound(n), MinInclusive: true}
}

// Above is (n, ∞).
func Above(n float64) Interval {
	return Interval{Min: bound(n)}
}

// IsExactZero reports [0, 0].
func (i Interval) IsExactZero() bool {
	return i.Min != nil && i.Max != nil && *i.Min == 0 && *i.Max == 0
}

// IsUpperQualified reports an exclusive positive upper bound, i.e. a "< n" reading.
func (i Interval) IsUpperQualified() bool {
	return i.Max != nil && !i.MaxInclusive && *i.Max > 0
}

func (i Interval) String() string {
	var b strings.Builder
	if i.Min == nil {
		b.WriteString("(-∞")
	} else {
		if i.MinInclusive {
			b.WriteByte('[')
		} else {
			b.WriteByte('(')
		}
		b.WriteString(strconv.FormatFloat(*i.Min, 'f', -1, 64))
	}
	b.WriteString(", ")
	if i.Max == nil {
		b.WriteString("∞)")
	} else {
		b.WriteString(strconv.FormatFloat(*i.Max, 'f', -1, 64))
		if i.MaxInclusive {
			b.WriteByte(']')
		} else {
			b.WriteByte(')')
		}
	}
	return b.String()
}

// Branch is one alternative of a specification.
type Branch struct {
	Text     string   `json:"text"`
	Interval Interval `json:"interval"`
}

// Expression is a parsed specification: one interval, or alternatives joined by OR.
type Expression struct {
	Branches    []Branch `json:"branches"`
	Alternation bool     `json:"alternation"`
}

// Single returns the only interval of a non-alternation expression.
func (e Expression) Single() (Interval, bool) {
	if e.Alternation || len(e.Branches) != 1 {
		return Interval{}, false
	}
	return e.Branches[0].Interval, true
}
