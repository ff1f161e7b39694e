package models

import "time"

// JobStatus is the lifecycle state of an upload job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// IsTerminal reports whether processing has finished.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// UploadJob tracks one uploaded statement from receipt to confirmation.
type UploadJob struct {
	ID                    string              `json:"id"`
	Filename              string              `json:"filename"`
	Status                JobStatus           `json:"status"`
	TotalTransactions     int                 `json:"total_transactions"`
	ProcessedTransactions int                 `json:"processed_transactions"`
	BankFormat            string              `json:"bank_format,omitempty"`
	ErrorMessage          string              `json:"error_message,omitempty"`
	Transactions          []StagedTransaction `json:"transactions,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	CompletedAt           *time.Time          `json:"completed_at,omitempty"`
}

// Clone returns a deep copy so callers never share state with the job store.
func (j *UploadJob) Clone() *UploadJob {
	if j == nil {
		return nil
	}
	c := *j
	if j.Transactions != nil {
		c.Transactions = make([]StagedTransaction, len(j.Transactions))
		for i, tx := range j.Transactions {
			if tx.CategoryID != nil {
				id := *tx.CategoryID
				tx.CategoryID = &id
			}
			if tx.ConfidenceScore != nil {
				score := *tx.ConfidenceScore
				tx.ConfidenceScore = &score
			}
			c.Transactions[i] = tx
		}
	}
	if j.CompletedAt != nil {
		at := *j.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// ConfirmResult is returned once staged transactions are saved.
type ConfirmResult struct {
	Success    bool `json:"success"`
	SavedCount int  `json:"savedCount"`
}
