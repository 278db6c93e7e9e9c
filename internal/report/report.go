// Package report drives a product's required parameters through resolution and
// evaluation and collects the ordered verdict rows.
package report

import (
	"log/slog"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/catalog"
	"github.com/joseph-ayodele/labcert/internal/compliance"
	"github.com/joseph-ayodele/labcert/internal/record"
	"github.com/joseph-ayodele/labcert/internal/resolve"
)

// Row is the outcome for one required parameter.
type Row struct {
	Parameter  string             `json:"parameter"`
	Label      string             `json:"label"`
	RawResult  string             `json:"raw_result"`
	RawSpec    string             `json:"raw_spec"`
	Verdict    compliance.Verdict `json:"verdict"`
	Critical   bool               `json:"critical"`
	Note       string             `json:"note,omitempty"`
	SpecSource resolve.Source     `json:"spec_source,omitempty"`
	Scheme     resolve.Scheme     `json:"scheme,omitempty"`
}

// Report is the ordered verdict list for one document.
type Report struct {
	Product      string `json:"product"`
	Rows         []Row  `json:"rows"`
	NonCompliant bool   `json:"non_compliant"`
}

// Counts tallies rows by status.
func (r Report) Counts() map[constants.Status]int {
	out := make(map[constants.Status]int)
	for _, row := range r.Rows {
		out[row.Verdict.Status]++
	}
	return out
}

// Failures returns the rows that are not WithinSpec, critical or not.
func (r Report) Failures() []Row {
	var out []Row
	for _, row := range r.Rows {
		if !row.Verdict.Compliant() {
			out = append(out, row)
		}
	}
	return out
}

// Assembler owns no domain logic; it orchestrates resolver and evaluator.
type Assembler struct {
	resolver  *resolve.Resolver
	evaluator *compliance.Evaluator
	logger    *slog.Logger
}

// NewAssembler wires a resolver and evaluator. Nil arguments get defaults.
func NewAssembler(resolver *resolve.Resolver, evaluator *compliance.Evaluator, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = resolve.New(logger)
	}
	if evaluator == nil {
		evaluator = compliance.NewEvaluator(compliance.WithLogger(logger))
	}
	return &Assembler{resolver: resolver, evaluator: evaluator, logger: logger}
}

// Assemble evaluates every required parameter of p in declared order. The aggregate
// flag only considers critical parameters.
func (a *Assembler) Assemble(rec *record.Record, p *catalog.Product) Report {
	rep := Report{Product: p.Name(), Rows: make([]Row, 0, len(p.Required()))}
	sheet := p.SpecSheet()
	for _, key := range p.Required() {
		def := p.Parameter(key)
		res := a.resolver.Resolve(rec, def, sheet)
		v := a.evaluator.Evaluate(def, res.Result, res.Spec)
		row := Row{
			Parameter:  key,
			Label:      def.Label,
			RawResult:  res.Result.String(),
			RawSpec:    res.Spec.String(),
			Verdict:    v,
			Critical:   p.IsCritical(key),
			Note:       res.Note,
			SpecSource: res.SpecSource,
			Scheme:     res.Scheme,
		}
		if row.Critical && !v.Compliant() {
			rep.NonCompliant = true
		}
		rep.Rows = append(rep.Rows, row)
	}
	a.logger.Info("report.assemble.ok",
		"product", rep.Product,
		"rows", len(rep.Rows),
		"non_compliant", rep.NonCompliant,
	)
	return rep
}
