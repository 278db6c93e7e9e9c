package catalog

import (
	"strings"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/rules"
	"github.com/joseph-ayodele/labcert/internal/textnorm"
)

// Parameter is the canonical definition of one lab test attribute.
type Parameter struct {
	Key      string
	Label    string
	Policy   constants.Policy
	Rule     *rules.Rule
	aliases  []string
	exclude  []string
	annotate []string
}

// NewParameter builds a definition. Aliases and exclusions are normalized once.
func NewParameter(key string, policy constants.Policy, aliases ...string) Parameter {
	p := Parameter{Key: key, Label: key, Policy: policy}
	for _, a := range aliases {
		if n := textnorm.Key(a); n != "" {
			p.aliases = append(p.aliases, n)
		}
	}
	return p
}

// WithExclude returns a copy that skips candidates containing any of the fragments.
func (p Parameter) WithExclude(fragments ...string) Parameter {
	p.exclude = nil
	for _, f := range fragments {
		if n := textnorm.Key(f); n != "" {
			p.exclude = append(p.exclude, n)
		}
	}
	return p
}

// WithAnnotate returns a copy carrying note patterns.
func (p Parameter) WithAnnotate(patterns ...string) Parameter {
	p.annotate = append([]string(nil), patterns...)
	return p
}

// AliasKeys returns normalized aliases, defaulting to the normalized canonical key.
func (p Parameter) AliasKeys() []string {
	if len(p.aliases) > 0 {
		out := make([]string, len(p.aliases))
		copy(out, p.aliases)
		return out
	}
	if k := textnorm.Key(p.Key); k != "" {
		return []string{k}
	}
	return nil
}

// Matches applies bidirectional containment of a normalized label against every alias.
func (p Parameter) Matches(label string) bool {
	if label == "" || p.Excluded(label) {
		return false
	}
	for _, a := range p.AliasKeys() {
		if textnorm.Contains(a, label) {
			return true
		}
	}
	return false
}

// Mentioned reports whether a normalized field key contains any alias.
func (p Parameter) Mentioned(key string) bool {
	if key == "" || p.Excluded(key) {
		return false
	}
	for _, a := range p.AliasKeys() {
		if strings.Contains(key, a) {
			return true
		}
	}
	return false
}

// Excluded reports whether a normalized label hits an exclusion fragment.
func (p Parameter) Excluded(label string) bool {
	for _, f := range p.exclude {
		if strings.Contains(label, f) {
			return true
		}
	}
	return false
}

// Annotations returns the configured note patterns.
func (p Parameter) Annotations() []string {
	return append([]string(nil), p.annotate...)
}
