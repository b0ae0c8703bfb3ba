package batch

import (
	"github.com/google/uuid"
)

// ItemStatus describes the outcome of processing one input in a batch.
type ItemStatus string

const (
	// ItemOK means the input was recognized and its outputs written.
	ItemOK ItemStatus = "ok"
	// ItemFailed means recognition or export failed for the input.
	ItemFailed ItemStatus = "failed"
	// ItemSkipped means the input was not processed, either because its
	// outputs already existed or because the batch was cancelled or aborted.
	ItemSkipped ItemStatus = "skipped"
)

// ItemResult records the outcome of one input.
type ItemResult struct {
	SourcePath  string     `json:"source_path"`
	Status      ItemStatus `json:"status"`
	OutputPaths []string   `json:"output_paths,omitempty"`
	Err         string     `json:"error,omitempty"`
}

// Report is the terminal result of one batch run. Items appear in the same
// order as the sorted input enumeration regardless of worker count. It is
// built incrementally by the orchestrator and immutable once the batch
// finishes.
type Report struct {
	RunID     string       `json:"run_id"`
	Items     []ItemResult `json:"items"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Skipped   int          `json:"skipped"`
}

// newReport creates a Report with a fresh run ID.
func newReport() *Report {
	return &Report{RunID: uuid.NewString()}
}

// append records one item outcome and updates the aggregate counts.
func (r *Report) append(item ItemResult) {
	r.Items = append(r.Items, item)
	switch item.Status {
	case ItemOK:
		r.Succeeded++
	case ItemFailed:
		r.Failed++
	case ItemSkipped:
		r.Skipped++
	}
}
