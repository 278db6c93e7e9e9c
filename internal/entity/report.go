package entity

import (
	"time"

	"github.com/google/uuid"
)

// Report is a persisted compliance report for data transfer between layers.
type Report struct {
	ID           uuid.UUID `json:"id"`
	Product      string    `json:"product"`
	Source       string    `json:"source"`
	SourceSHA256 string    `json:"source_sha256,omitempty"`
	NonCompliant bool      `json:"non_compliant"`
	CreatedAt    time.Time `json:"created_at"`
	Verdicts     []Verdict `json:"verdicts"`
}

// Verdict is one persisted report row.
type Verdict struct {
	Position      int    `json:"position"`
	Parameter     string `json:"parameter"`
	Label         string `json:"label"`
	RawResult     string `json:"raw_result"`
	RawSpec       string `json:"raw_spec"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
	MatchedBranch string `json:"matched_branch,omitempty"`
	Critical      bool   `json:"critical"`
	Note          string `json:"note,omitempty"`
	SpecSource    string `json:"spec_source,omitempty"`
}
