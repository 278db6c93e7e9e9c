package compliance

import (
	"strings"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/catalog"
	"github.com/joseph-ayodele/labcert/internal/record"
	"github.com/joseph-ayodele/labcert/internal/textnorm"
)

var acceptanceWords = map[string]struct{}{
	"complies":   {},
	"conforms":   {},
	"ok":         {},
	"fine":       {},
	"acceptable": {},
}

func (e *Evaluator) categorical(def catalog.Parameter, result, spec record.Value) Verdict {
	rawResult, rawSpec := result.String(), spec.String()

	if def.Rule != nil {
		ok, err := def.Rule.Match(strings.ToLower(rawResult), strings.ToLower(rawSpec))
		switch {
		case err != nil:
			e.logger.Warn("compliance.rule.failed", "param", def.Key, "rule", def.Rule.String(), "error", err)
		case ok:
			return within("rule matched")
		}
	}

	r, s := textnorm.Key(rawResult), textnorm.Key(rawSpec)
	if accepted(r) {
		return within(reasonWithin)
	}
	if r != "" && s != "" && (r == s || strings.Contains(s, r) || strings.Contains(r, s)) {
		return within(reasonWithin)
	}
	if s != "" {
		for _, tok := range strings.Fields(rawResult) {
			if t := textnorm.Key(tok); t != "" && strings.Contains(s, t) {
				return within(reasonWithin)
			}
		}
	}
	return verdict(constants.StatusTextualMismatch, "result text does not match spec")
}

func accepted(r string) bool {
	if _, ok := acceptanceWords[r]; ok {
		return true
	}
	return strings.HasPrefix(r, "complies") || strings.HasPrefix(r, "conforms")
}
