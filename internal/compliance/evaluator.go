package compliance

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/catalog"
	"github.com/joseph-ayodele/labcert/internal/interval"
	"github.com/joseph-ayodele/labcert/internal/record"
)

const (
	reasonWithin      = "Within Spec"
	reasonUnparseable = "non-numeric result or missing spec"
	reasonNoBranch    = "no branch satisfied"
)

// Evaluator is stateless per call and safe for concurrent use.
type Evaluator struct {
	detectionLimit float64
	logger         *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithDetectionLimit sets the largest "< n" result accepted against a zero-tolerance
// spec. Zero accepts any "< n" reading.
func WithDetectionLimit(n float64) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.detectionLimit = n
		}
	}
}

// WithLogger sets the logger used for unparseable-value warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEvaluator returns an evaluator with the given options applied.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// DetectionLimit returns the configured limit (0 = unlimited).
func (e *Evaluator) DetectionLimit() float64 { return e.detectionLimit }

// Evaluate compares result against spec under def's policy. It never fails; malformed
// input degrades to a Missing or Unparseable verdict.
func (e *Evaluator) Evaluate(def catalog.Parameter, result, spec record.Value) Verdict {
	switch hasResult, hasSpec := result.Present(), spec.Present(); {
	case !hasResult && !hasSpec:
		return verdict(constants.StatusMissing, "result and spec not found")
	case !hasResult:
		return verdict(constants.StatusMissing, "result not found")
	case !hasSpec:
		return verdict(constants.StatusMissing, "spec not found")
	}

	if def.Policy == constants.PolicyCategorical {
		return e.categorical(def, result, spec)
	}

	res, resOK := interval.Parse(result, interval.ResultSide)
	expr, specOK := interval.ParseExpression(spec, interval.SpecSide)
	if resOK && !specOK && def.Policy == constants.PolicyZeroTolerance {
		// free-text absence requirement the parser has no vocabulary for
		expr, specOK = interval.Expression{Branches: []interval.Branch{{Text: spec.String(), Interval: interval.Zero()}}}, true
	}
	if !resOK || !specOK {
		e.logger.Warn("compliance.unparseable",
			"param", def.Key,
			"result", result.String(),
			"spec", spec.String(),
			"result_ok", resOK,
			"spec_ok", specOK,
		)
		return verdict(constants.StatusUnparseable, reasonUnparseable)
	}

	if iv, ok := expr.Single(); ok {
		return e.compare(res, iv)
	}
	for _, b := range expr.Branches {
		if v := e.compare(res, b.Interval); v.Compliant() {
			v.MatchedBranch = b.Text
			return v
		}
	}
	return verdict(constants.StatusExceedsUpperBound, reasonNoBranch)
}

func (e *Evaluator) compare(res, spec interval.Interval) Verdict {
	if spec.IsExactZero() {
		return e.zeroTolerance(res)
	}

	if spec.Max != nil {
		s := round2(*spec.Max)
		if res.Max == nil {
			return verdict(constants.StatusExceedsUpperBound, fmt.Sprintf("result unbounded above, limit %s", num(s)))
		}
		r := round2(*res.Max)
		if r > s {
			return verdict(constants.StatusExceedsUpperBound, fmt.Sprintf("Exceeds upper bound: %s > %s", num(r), limitText(s, spec.MaxInclusive, "<")))
		}
	}
	if spec.Min != nil {
		s := round2(*spec.Min)
		if res.Min == nil {
			return verdict(constants.StatusBelowLowerBound, fmt.Sprintf("result unbounded below, limit %s", num(s)))
		}
		r := round2(*res.Min)
		if r < s {
			return verdict(constants.StatusBelowLowerBound, fmt.Sprintf("Below lower bound: %s < %s", num(r), limitText(s, spec.MinInclusive, ">")))
		}
	}
	return within(reasonWithin)
}

// zeroTolerance passes true absence and "< n" detection-limit readings.
func (e *Evaluator) zeroTolerance(res interval.Interval) Verdict {
	if res.Max != nil && round2(*res.Max) == 0 {
		return within(reasonWithin)
	}
	if res.IsUpperQualified() {
		n := round2(*res.Max)
		if e.detectionLimit == 0 || n <= e.detectionLimit {
			return within(fmt.Sprintf("below detection limit (<%s)", num(n)))
		}
		return verdict(constants.StatusExceedsUpperBound,
			fmt.Sprintf("detection limit <%s above accepted %s", num(n), num(e.detectionLimit)))
	}
	if res.Max == nil {
		return verdict(constants.StatusExceedsUpperBound, "detected, zero tolerance")
	}
	return verdict(constants.StatusExceedsUpperBound, fmt.Sprintf("detected %s, zero tolerance", num(round2(*res.Max))))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func limitText(v float64, inclusive bool, op string) string {
	if inclusive {
		return num(v)
	}
	return op + num(v)
}
