package catalog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/labcert/internal/textnorm"
)

const mandatoryMarker = "- Mandatory Values -"

// KeysEntry is one line of a legacy required-keys file.
type KeysEntry struct {
	Product string
	Keys    []string
}

var reBraces = regexp.MustCompile(`\{(.*?)\}`)

// ParseKeysFile reads lines of the form `"Lecithin_ADM" - Mandatory Values - {"Moisture", "Acetone Insoluble"}`.
// Lines without the marker are skipped.
func ParseKeysFile(r io.Reader) ([]KeysEntry, error) {
	var out []KeysEntry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		product, keysPart, ok := strings.Cut(line, mandatoryMarker)
		if !ok {
			continue
		}
		product = strings.Trim(strings.TrimSpace(product), `"'`)
		if product == "" {
			continue
		}
		entry := KeysEntry{Product: product}
		if m := reBraces.FindStringSubmatch(keysPart); m != nil {
			for _, k := range strings.Split(m[1], ",") {
				k = strings.Trim(strings.TrimSpace(k), `"'`)
				if k != "" {
					entry.Keys = append(entry.Keys, k)
				}
			}
		}
		out = append(out, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}
	return out, nil
}

// ParseSpecSheet reads `key | spec` lines. Blank lines and lines starting with '#' are ignored.
func ParseSpecSheet(r io.Reader) ([]SpecLine, error) {
	var out []SpecLine
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, spec, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		key, spec = strings.TrimSpace(key), strings.TrimSpace(spec)
		if key == "" || spec == "" {
			continue
		}
		out = append(out, SpecLine{Key: key, Spec: spec})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read spec sheet: %w", err)
	}
	return out, nil
}

// WithLegacy returns a new catalog with legacy key lists and spec sheets layered on top.
// Products named only in the legacy inputs are added; existing ones get their required
// list replaced by the legacy entry and their spec sheet extended.
func (c *Catalog) WithLegacy(entries []KeysEntry, sheets map[string][]SpecLine) (*Catalog, error) {
	opts := Options{ProductKeywords: c.keywords, DetectionLimit: c.detectionLimit}
	for _, p := range c.parameters {
		opts.Parameters = append(opts.Parameters, p)
	}

	specs := make([]ProductSpec, 0, len(c.order)+len(entries))
	index := make(map[string]int)
	for _, name := range c.order {
		p, _ := c.Product(name)
		ps := ProductSpec{Name: p.name, Required: p.Required(), Specs: append([]SpecLine(nil), p.sheet.entries...)}
		for _, r := range p.required {
			if p.IsCritical(r) {
				ps.Critical = append(ps.Critical, r)
			}
		}
		if ps.Critical == nil {
			ps.Critical = []string{}
		}
		for k, def := range p.parameters {
			if global, ok := c.parameters[k]; !ok || !sameParameter(global, def) {
				ps.Parameters = append(ps.Parameters, def)
			}
		}
		index[textnorm.Key(name)] = len(specs)
		specs = append(specs, ps)
	}

	for _, e := range entries {
		key := textnorm.Key(e.Product)
		if i, ok := index[key]; ok {
			specs[i].Required = e.Keys
			specs[i].Critical = nil
			continue
		}
		index[key] = len(specs)
		specs = append(specs, ProductSpec{Name: e.Product, Required: e.Keys})
	}
	for product, lines := range sheets {
		key := textnorm.Key(product)
		i, ok := index[key]
		if !ok {
			continue
		}
		specs[i].Specs = append(specs[i].Specs, lines...)
	}
	return New(opts, specs...)
}

func sameParameter(a, b Parameter) bool {
	return a.Key == b.Key && a.Policy == b.Policy && a.Label == b.Label && a.Rule == b.Rule &&
		strings.Join(a.aliases, ",") == strings.Join(b.aliases, ",") &&
		strings.Join(a.exclude, ",") == strings.Join(b.exclude, ",")
}
