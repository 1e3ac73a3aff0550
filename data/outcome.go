package data

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Status is the terminal state of an export run.
type Status int

const (
	StatusCompleted Status = iota // Every plan entry was processed
	StatusAborted                 // Cancelled by the user between two entries
	StatusFailed                  // Stopped by an error
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome reports what an export run did to its target.
type Outcome struct {
	RunID  string `json:"run_id"`
	Status Status `json:"status"`

	// Number of plan entries the run had to process
	Total int `json:"total"`

	// Number of plan entries handled before the run ended
	Done int `json:"done"`

	// Entries created on the target, including overwritten ones
	Written int `json:"written"`

	// Existing file targets that were removed and recreated
	Overwritten int `json:"overwritten"`

	// Existing targets left untouched
	Preserved int `json:"preserved"`

	// Entries removed from the plan by exclusion filters
	Filtered int `json:"filtered"`

	// Bytes copied or compressed from sources (hardlinks count 0)
	Bytes uint64 `json:"bytes"`

	// Targets skipped because they already existed
	PreservedPaths []string `json:"preserved_paths,omitempty"`

	// Paths removed by exclusion filters
	FilteredPaths []string `json:"filtered_paths,omitempty"`
}

// NewOutcome creates an outcome with a fresh run id for the given plan.
func NewOutcome(plan *Plan) *Outcome {
	outcome := &Outcome{
		RunID:  NewRunID(),
		Status: StatusCompleted,
		Total:  plan.Len(),
	}
	if plan != nil {
		outcome.Filtered = len(plan.Filtered)
		outcome.FilteredPaths = slices.Clone(plan.Filtered)
	}

	return outcome
}

// NewRunID returns a time ordered identifier for one export run.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Skipped returns the number of entries that were filtered or preserved.
func (o *Outcome) Skipped() int {
	return o.Preserved + o.Filtered
}

// Remaining returns the number of plan entries never reached.
func (o *Outcome) Remaining() int {
	return o.Total - o.Done
}

func (o *Outcome) String() string {
	parts := []string{
		fmt.Sprintf("%s: %d of %d entries written (%s)", o.Status, o.Written, o.Total, humanize.Bytes(o.Bytes)),
	}

	if o.Overwritten > 0 {
		parts = append(parts, fmt.Sprintf("%d existing files overwritten", o.Overwritten))
	}
	if o.Preserved > 0 {
		parts = append(parts, fmt.Sprintf("%d existing entries preserved", o.Preserved))
	}
	if o.Filtered > 0 {
		parts = append(parts, fmt.Sprintf("%d entries filtered", o.Filtered))
	}
	if o.Status != StatusCompleted && o.Remaining() > 0 {
		parts = append(parts, fmt.Sprintf("%d entries remaining", o.Remaining()))
	}

	return strings.Join(parts, ", ")
}
