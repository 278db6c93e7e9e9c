package utils

import (
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/entity"
	"github.com/joseph-ayodele/labcert/internal/report"
)

// ToEntityReport flattens an assembled report for persistence.
func ToEntityReport(id uuid.UUID, source, sha string, createdAt time.Time, rep report.Report) *entity.Report {
	out := &entity.Report{
		ID:           id,
		Product:      rep.Product,
		Source:       source,
		SourceSHA256: sha,
		NonCompliant: rep.NonCompliant,
		CreatedAt:    createdAt.UTC(),
		Verdicts:     make([]entity.Verdict, len(rep.Rows)),
	}
	for i, row := range rep.Rows {
		out.Verdicts[i] = entity.Verdict{
			Position:      i + 1,
			Parameter:     row.Parameter,
			Label:         row.Label,
			RawResult:     row.RawResult,
			RawSpec:       row.RawSpec,
			Status:        string(row.Verdict.Status),
			Reason:        row.Verdict.Reason,
			MatchedBranch: row.Verdict.MatchedBranch,
			Critical:      row.Critical,
			Note:          row.Note,
			SpecSource:    string(row.SpecSource),
		}
	}
	return out
}

// ToPBReport renders a report as a protobuf Struct for the gRPC surface.
func ToPBReport(r *entity.Report) (*structpb.Struct, error) {
	rows := make([]any, len(r.Verdicts))
	for i, v := range r.Verdicts {
		rows[i] = map[string]any{
			"position":       v.Position,
			"parameter":      v.Parameter,
			"label":          v.Label,
			"raw_result":     v.RawResult,
			"raw_spec":       v.RawSpec,
			"status":         v.Status,
			"status_label":   constants.Status(v.Status).Label(),
			"reason":         v.Reason,
			"matched_branch": v.MatchedBranch,
			"critical":       v.Critical,
			"note":           v.Note,
			"spec_source":    v.SpecSource,
		}
	}
	return structpb.NewStruct(map[string]any{
		"report_id":     r.ID.String(),
		"product":       r.Product,
		"source":        r.Source,
		"non_compliant": r.NonCompliant,
		"created_at":    r.CreatedAt.UTC().Format(time.RFC3339),
		"rows":          rows,
	})
}
