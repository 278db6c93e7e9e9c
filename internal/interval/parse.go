package interval

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/labcert/internal/record"
	"github.com/joseph-ayodele/labcert/internal/textnorm"
)

// Side selects how a bare number is read.
type Side int

const (
	// ResultSide reads a bare number as the observed point value.
	ResultSide Side = iota
	// SpecSide reads a bare number as an implicit maximum.
	SpecSide
)

var (
	reOr         = regexp.MustCompile(`(?i)\s+or\s+`)
	reDashSpaces = regexp.MustCompile(`\s*-\s*`)
	reOperator   = regexp.MustCompile(`^\s*(<=|>=|<|>)\s*([0-9,]*\.?[0-9]+)`)
	reNumber     = regexp.MustCompile(`[-+]?(?:\d+(?:\.\d+)?|\.\d+)(?:\s*[x×*]\s*10\s*\^\s*[-+]?\d+|[eE][-+]?\d+)?`)
	// a sign counts only after a separator, so the hyphen in "6.0-7.2" stays a range dash
	reRangeNum = regexp.MustCompile(`(?:^|[\s(:]|-|to)([-+]?(?:\d+(?:\.\d+)?|\.\d+)(?:\s*[x×*]\s*10\s*\^\s*[-+]?\d+|[eE][-+]?\d+)?)|((?:\d+(?:\.\d+)?|\.\d+)(?:\s*[x×*]\s*10\s*\^\s*[-+]?\d+|[eE][-+]?\d+)?)`)
	reTenPower = regexp.MustCompile(`^([-+]?(?:\d+(?:\.\d+)?|\.\d+))\s*[x×*]\s*10\s*\^\s*([-+]?\d+)$`)
)

var (
	absenceWords = []string{"absent", "not detect", "nd", "negative"}
	maxWords     = []string{"max", "nmt", "not more than", "up to"}
	minWords     = []string{"min", "nlt", "not less than", "at least"}
)

// Parse reads one value into an interval. Numbers delivered as numbers are points;
// text follows the rule order absence, operator, max, min, range, bare number.
func Parse(v record.Value, side Side) (Interval, bool) {
	if !v.Present() {
		return Interval{}, false
	}
	if n, ok := v.Number(); ok {
		return Point(n), true
	}
	s, ok := v.Text()
	if !ok {
		return Interval{}, false
	}
	return parseText(clean(s), side)
}

// ParseExpression reads a specification. On the spec side, text joined by the word
// OR becomes an alternation of independently parsed branches; branches that do not
// parse are dropped. An alternation with no parseable branch still reports ok and
// so satisfies nothing.
func ParseExpression(v record.Value, side Side) (Expression, bool) {
	if !v.Present() {
		return Expression{}, false
	}
	if s, ok := v.Text(); ok && side == SpecSide && !v.IsNumber() {
		parts := reOr.Split(strings.TrimSpace(s), -1)
		if len(parts) > 1 {
			expr := Expression{Alternation: true}
			for _, part := range parts {
				part = strings.TrimSpace(part)
				if iv, ok := parseText(clean(part), side); ok {
					expr.Branches = append(expr.Branches, Branch{Text: part, Interval: iv})
				}
			}
			return expr, true
		}
	}
	iv, ok := Parse(v, side)
	if !ok {
		return Expression{}, false
	}
	return Expression{Branches: []Branch{{Text: v.String(), Interval: iv}}}, true
}

func clean(s string) string {
	s = strings.ToLower(strings.TrimSpace(textnorm.Dashes.Replace(s)))
	return reDashSpaces.ReplaceAllString(s, "-")
}

func parseText(s string, side Side) (Interval, bool) {
	if s == "" {
		return Interval{}, false
	}
	if containsAny(s, absenceWords) {
		return Zero(), true
	}

	if m := reOperator.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
		if err == nil {
			switch m[1] {
			case "<":
				return Below(n), true
			case "<=":
				return AtMost(n), true
			case ">":
				return Above(n), true
			case ">=":
				return AtLeast(n), true
			}
		}
	}

	unsep := strings.ReplaceAll(s, ",", "")
	if containsAny(s, maxWords) {
		n, ok := firstNumber(unsep)
		if !ok {
			return Interval{}, false
		}
		return AtMost(n), true
	}
	if containsAny(s, minWords) {
		n, ok := firstNumber(unsep)
		if !ok {
			return Interval{}, false
		}
		return AtLeast(n), true
	}

	if strings.Contains(s, "-") || strings.Contains(s, " to ") {
		if nums := rangeNumbers(unsep); len(nums) >= 2 {
			a, errA := toFloat(nums[0])
			b, errB := toFloat(nums[1])
			if errA == nil && errB == nil {
				return Closed(a, b), true
			}
		}
	}

	n, ok := firstNumber(unsep)
	if !ok {
		return Interval{}, false
	}
	if side == SpecSide {
		return AtMost(n), true
	}
	return Point(n), true
}

// rangeNumbers returns up to two signed range endpoints.
func rangeNumbers(s string) []string {
	var nums []string
	for _, m := range reRangeNum.FindAllStringSubmatch(s, 2) {
		if m[1] != "" {
			nums = append(nums, m[1])
		} else {
			nums = append(nums, m[2])
		}
	}
	return nums
}

// FirstNumber extracts the first number in s, tolerating thousands separators.
func FirstNumber(s string) (float64, bool) {
	return firstNumber(strings.ReplaceAll(clean(s), ",", ""))
}

func firstNumber(s string) (float64, bool) {
	m := reNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := toFloat(m)
	return f, err == nil
}

// toFloat converts a matched number, expanding "a x 10^b" notation.
func toFloat(s string) (float64, error) {
	if m := reTenPower.FindStringSubmatch(s); m != nil {
		mant, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, err
		}
		exp, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, err
		}
		return mant * math.Pow(10, float64(exp)), nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
