package batchfile

import "time"

// ExecutionResult records one run of a batch file.
type ExecutionResult struct {
	BatchFilename         string     `json:"batch_filename" yaml:"batch_filename"`
	ExecutedAt            time.Time  `json:"executed_at" yaml:"executed_at"`
	ProcessedFilesCount   int        `json:"processed_files_count" yaml:"processed_files_count"`
	SuccessCount          int        `json:"success_count" yaml:"success_count"`
	ErrorCount            int        `json:"error_count" yaml:"error_count"`
	ProcessingTimeSeconds float64    `json:"processing_time_seconds" yaml:"processing_time_seconds"`
	StartedAt             *time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt           *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// SuccessRate is SuccessCount/ProcessedFilesCount, 0 when nothing was processed.
func (r ExecutionResult) SuccessRate() float64 {
	if r.ProcessedFilesCount == 0 {
		return 0
	}
	return float64(r.SuccessCount) / float64(r.ProcessedFilesCount)
}

// Duration prefers the started/completed span and falls back to the stored
// processing time.
func (r ExecutionResult) Duration() time.Duration {
	if r.StartedAt != nil && r.CompletedAt != nil {
		return r.CompletedAt.Sub(*r.StartedAt)
	}
	return time.Duration(r.ProcessingTimeSeconds * float64(time.Second))
}
