// Package resolve locates the observed-result and specification fields for a
// canonical parameter inside an arbitrarily keyed extraction record.
//
// Naming schemes are tried in a fixed order (numbered, named, flat) and the first
// candidate whose declared label matches the parameter wins. There is no ranking
// between candidates.
package resolve

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/labcert/internal/catalog"
	"github.com/joseph-ayodele/labcert/internal/record"
	"github.com/joseph-ayodele/labcert/internal/textnorm"
)

// Scheme names the field-naming convention a resolution came from.
type Scheme string

const (
	SchemeNone     Scheme = ""
	SchemeNumbered Scheme = "numbered"
	SchemeNamed    Scheme = "named"
	SchemeFlat     Scheme = "flat"
)

// Source tells where the specification text was found.
type Source string

const (
	SourceNone   Source = ""
	SourceRecord Source = "record"
	SourceSheet  Source = "sheet"
)

// Resolution is what the resolver found for one parameter. Either side may be absent.
type Resolution struct {
	Result      record.Value
	Spec        record.Value
	Label       string
	ResultField string
	SpecField   string
	Scheme      Scheme
	SpecSource  Source
	Note        string
}

// Found reports whether at least one side was located.
func (r Resolution) Found() bool { return r.Result.Present() || r.Spec.Present() }

// Complete reports whether both sides were located.
func (r Resolution) Complete() bool { return r.Result.Present() && r.Spec.Present() }

// Resolver is stateless apart from its logger and safe for concurrent use.
type Resolver struct {
	logger *slog.Logger
}

// New returns a resolver. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

var reNumbered = regexp.MustCompile(`^(test_parameter|parameter|quality_standard|test)_(\d+)(_name)?$`)

type candidate struct {
	field  string
	label  string
	prefix string
	index  string
}

// Resolve finds the result and spec for def in rec, falling back to sheet for the spec.
func (r *Resolver) Resolve(rec *record.Record, def catalog.Parameter, sheet catalog.SpecSheet) Resolution {
	var res Resolution

	if c, ok := firstMatch(numbered(rec), def); ok {
		res = r.companions(rec, c, SchemeNumbered, numberedResultKeys(c), numberedSpecKeys(c))
	} else if c, ok := firstMatch(named(rec), def); ok {
		res = r.companions(rec, c, SchemeNamed, namedResultKeys(c), namedSpecKeys(c))
	}

	if !res.Result.Present() || !res.Spec.Present() {
		r.flat(rec, def, &res)
	}
	if res.Spec.Present() {
		res.SpecSource = SourceRecord
	} else if spec, ok := sheet.Lookup(def); ok {
		res.Spec = record.Of(spec)
		res.SpecSource = SourceSheet
	}
	res.Note = annotate(rec, def, res)

	r.logger.Debug("resolve.done",
		"param", def.Key,
		"scheme", string(res.Scheme),
		"result_field", res.ResultField,
		"spec_field", res.SpecField,
		"spec_source", string(res.SpecSource),
	)
	return res
}

func (r *Resolver) companions(rec *record.Record, c candidate, scheme Scheme, resultKeys, specKeys []string) Resolution {
	res := Resolution{Label: c.label, Scheme: scheme}
	res.ResultField, res.Result = firstPresent(rec, resultKeys)
	res.SpecField, res.Spec = firstPresent(rec, specKeys)
	r.logger.Debug("resolve.match", "scheme", string(scheme), "field", c.field, "label", c.label)
	return res
}

// flat fills missing sides from fields whose key mentions an alias plus a side marker word.
func (r *Resolver) flat(rec *record.Record, def catalog.Parameter, res *Resolution) {
	needResult, needSpec := !res.Result.Present(), !res.Spec.Present()
	rec.Each(func(key string, v record.Value) bool {
		if !v.Present() {
			return true
		}
		nk := textnorm.Key(key)
		if !def.Mentioned(nk) {
			return true
		}
		switch {
		case needResult && (strings.Contains(nk, "result") || strings.Contains(nk, "observed")):
			res.Result, res.ResultField = v, key
			needResult = false
		case needSpec && (strings.Contains(nk, "spec") || strings.Contains(nk, "limit")):
			res.Spec, res.SpecField = v, key
			needSpec = false
		default:
			return true
		}
		if res.Scheme == SchemeNone {
			res.Scheme = SchemeFlat
		}
		return needResult || needSpec
	})
}

func firstMatch(cands []candidate, def catalog.Parameter) (candidate, bool) {
	for _, c := range cands {
		if def.Matches(textnorm.Key(c.label)) {
			return c, true
		}
	}
	return candidate{}, false
}

// numbered collects `test_parameter_<i>[_name]` style label fields ordered by index.
func numbered(rec *record.Record) []candidate {
	var out []candidate
	rec.Each(func(key string, v record.Value) bool {
		m := reNumbered.FindStringSubmatch(strings.ToLower(key))
		if m == nil {
			return true
		}
		label := v.String()
		if label == "" {
			return true
		}
		out = append(out, candidate{field: key, label: label, prefix: m[1], index: m[2]})
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].index)
		b, _ := strconv.Atoi(out[j].index)
		return a < b
	})
	return out
}

// named collects `<stem>_name` label fields in document order.
func named(rec *record.Record) []candidate {
	var out []candidate
	rec.Each(func(key string, v record.Value) bool {
		lower := strings.ToLower(key)
		if !strings.HasSuffix(lower, "_name") || reNumbered.MatchString(lower) {
			return true
		}
		stem := key[:len(key)-len("_name")]
		switch strings.ToLower(stem) {
		case "", "product", "company", "manufacturing_vendor_site", "customer", "supplier":
			return true
		}
		label := v.String()
		if label == "" {
			return true
		}
		out = append(out, candidate{field: key, label: label, prefix: stem})
		return true
	})
	return out
}

func numberedResultKeys(c candidate) []string {
	i, p := c.index, c.prefix
	return []string{
		"observed_result_" + i, "observed_results_" + i, "result_" + i, "results_" + i,
		p + "_" + i + "_observed_result", p + "_" + i + "_observed_results",
		p + "_" + i + "_result", p + "_" + i + "_results",
	}
}

func numberedSpecKeys(c candidate) []string {
	i, p := c.index, c.prefix
	return []string{
		"specification_" + i, "specifications_" + i, "spec_" + i, "limit_" + i,
		p + "_" + i + "_specification", p + "_" + i + "_specifications",
		p + "_" + i + "_spec", p + "_" + i + "_limit",
	}
}

func namedResultKeys(c candidate) []string {
	s := c.prefix
	return []string{s + "_result", s + "_results", s + "_observed_result", s + "_observed_results"}
}

func namedSpecKeys(c candidate) []string {
	s := c.prefix
	return []string{s + "_limit", s + "_spec", s + "_specification", s + "_specifications"}
}

func firstPresent(rec *record.Record, keys []string) (string, record.Value) {
	for _, k := range keys {
		if v, ok := rec.Lookup(k); ok && v.Present() {
			return k, v
		}
	}
	return "", record.Absent
}
