package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/fourfold/internal/synthesis"
)

// Report is the top-level JSON export structure.
type Report struct {
	ProblemID  string           `json:"problemId,omitempty"`
	ExportedAt string           `json:"exportedAt"`
	Result     synthesis.Result `json:"result"`
}

// NewReport wraps a synthesis result for export.
func NewReport(r synthesis.Result) Report {
	return Report{
		ProblemID:  r.Metadata.ProblemID,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Result:     r,
	}
}

// JSON writes r to w as indented JSON.
func JSON(w io.Writer, r synthesis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewReport(r)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
