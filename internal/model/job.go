package model

import "time"

// Job represents one end-to-end strategy request. The record is owned by the
// pipeline worker; everything else only reads it.
type Job struct {
	ID        string            `json:"id"`
	Status    JobStatus         `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Error     *string           `json:"error,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// StrategyJobPayload is the asynq task payload for a pipeline run. The
// questionnaire travels in the task so the worker does not depend on the
// artifact store to start.
type StrategyJobPayload struct {
	JobID         string        `json:"jobId"`
	Questionnaire Questionnaire `json:"questionnaire"`
}
