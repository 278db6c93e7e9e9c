package catalog

import (
	"strings"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/textnorm"
)

// Product is the evaluation plan for one product/supplier document type.
type Product struct {
	name       string
	required   []string
	critical   map[string]struct{}
	parameters map[string]Parameter
	sheet      SpecSheet
}

// Name returns the product key, e.g. "lecithin_adm".
func (p *Product) Name() string { return p.name }

// Required returns the ordered required parameter keys.
func (p *Product) Required() []string {
	return append([]string(nil), p.required...)
}

// IsCritical reports whether key affects the aggregate compliance flag.
func (p *Product) IsCritical(key string) bool {
	_, ok := p.critical[textnorm.Key(key)]
	return ok
}

// Parameter returns the definition for key, or a numeric default aliased to the key itself.
func (p *Product) Parameter(key string) Parameter {
	if def, ok := p.parameters[textnorm.Key(key)]; ok {
		return def
	}
	return NewParameter(key, constants.PolicyNumeric)
}

// SpecSheet returns the product's fallback specification table.
func (p *Product) SpecSheet() SpecSheet { return p.sheet }

// SpecSheet maps normalized parameter keys to specification text, in file order.
type SpecSheet struct {
	entries []SpecLine
}

// SpecLine is one "key | spec" row.
type SpecLine struct {
	Key  string
	Spec string
}

// NewSpecSheet normalizes keys and drops blank rows.
func NewSpecSheet(lines []SpecLine) SpecSheet {
	var s SpecSheet
	for _, l := range lines {
		k := textnorm.Key(l.Key)
		spec := strings.TrimSpace(l.Spec)
		if k == "" || spec == "" {
			continue
		}
		s.entries = append(s.entries, SpecLine{Key: k, Spec: spec})
	}
	return s
}

// Len returns the number of rows.
func (s SpecSheet) Len() int { return len(s.entries) }

// Lookup finds a spec by canonical key, then by alias, then by bidirectional containment.
func (s SpecSheet) Lookup(def Parameter) (string, bool) {
	if len(s.entries) == 0 {
		return "", false
	}
	key := textnorm.Key(def.Key)
	if spec, ok := s.exact(key); ok {
		return spec, true
	}
	for _, a := range def.AliasKeys() {
		if spec, ok := s.exact(a); ok {
			return spec, true
		}
	}
	for _, e := range s.entries {
		if textnorm.Contains(key, e.Key) && !def.Excluded(e.Key) {
			return e.Spec, true
		}
	}
	return "", false
}

func (s SpecSheet) exact(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	for _, e := range s.entries {
		if e.Key == key {
			return e.Spec, true
		}
	}
	return "", false
}
