// Package compliance judges a resolved result against its specification.
package compliance

import "github.com/joseph-ayodele/labcert/constants"

// Verdict is the outcome for one parameter.
type Verdict struct {
	Status        constants.Status `json:"status"`
	Reason        string           `json:"reason"`
	MatchedBranch string           `json:"matched_branch,omitempty"`
}

// Compliant reports whether the verdict is WithinSpec.
func (v Verdict) Compliant() bool { return v.Status.Compliant() }

func within(reason string) Verdict {
	return Verdict{Status: constants.StatusWithinSpec, Reason: reason}
}

func verdict(status constants.Status, reason string) Verdict {
	return Verdict{Status: status, Reason: reason}
}
