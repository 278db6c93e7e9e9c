package constants

import "strings"

// Policy tags how a parameter is compared.
type Policy string

const (
	PolicyNumeric       Policy = "numeric"
	PolicyCategorical   Policy = "categorical"
	PolicyZeroTolerance Policy = "zero_tolerance"
)

var allPolicies = []Policy{
	PolicyNumeric,
	PolicyCategorical,
	PolicyZeroTolerance,
}

func PoliciesAsStringSlice() []string {
	result := make([]string, len(allPolicies))
	for i, p := range allPolicies {
		result[i] = string(p)
	}
	return result
}

// CanonicalizePolicy maps a configured policy label to a Policy. Empty input is numeric.
func CanonicalizePolicy(input string) (Policy, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return PolicyNumeric, true
	}

	synonyms := map[string]Policy{
		"textual":        PolicyCategorical,
		"text":           PolicyCategorical,
		"visual":         PolicyCategorical,
		"zero":           PolicyZeroTolerance,
		"zerotolerance":  PolicyZeroTolerance,
		"zero-tolerance": PolicyZeroTolerance,
		"absence":        PolicyZeroTolerance,
	}
	if p, ok := synonyms[normalized]; ok {
		return p, true
	}

	for _, p := range allPolicies {
		if normalized == string(p) {
			return p, true
		}
	}
	return PolicyNumeric, false
}
