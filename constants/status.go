package constants

// Status is the canonical outcome of a single parameter check.
type Status string

// Stable values (stored verbatim in the report store).
const (
	StatusWithinSpec        Status = "WITHIN_SPEC"
	StatusExceedsUpperBound Status = "EXCEEDS_UPPER_BOUND"
	StatusBelowLowerBound   Status = "BELOW_LOWER_BOUND"
	StatusTextualMismatch   Status = "TEXTUAL_MISMATCH"
	StatusMissing           Status = "MISSING"     // result or spec absent
	StatusUnparseable       Status = "UNPARSEABLE" // present but no interval derivable
)

// Label is the human wording used in rendered reports.
func (s Status) Label() string {
	switch s {
	case StatusWithinSpec:
		return "Within Spec"
	case StatusExceedsUpperBound:
		return "Exceeds upper bound"
	case StatusBelowLowerBound:
		return "Below lower bound"
	case StatusTextualMismatch:
		return "Textual mismatch"
	case StatusMissing:
		return "Missing"
	case StatusUnparseable:
		return "Cannot compare"
	default:
		return string(s)
	}
}

// Compliant reports whether the status counts as passing.
func (s Status) Compliant() bool { return s == StatusWithinSpec }
