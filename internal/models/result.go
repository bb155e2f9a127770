package models

import "time"

// Status is the terminal state of one record after a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// ProcessingResult is the outcome of running one CompanyRecord through the
// pipeline. One result is produced per input record, in input order, and is
// never mutated after creation.
type ProcessingResult struct {
	Record   CompanyRecord `json:"record"`
	Status   Status        `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Insight  *Insight      `json:"insight,omitempty"`
	Draft    *EmailDraft   `json:"draft,omitempty"`
	DraftID  string        `json:"draft_id,omitempty"`
	Finished time.Time     `json:"finished"`
}
