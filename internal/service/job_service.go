package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
	"github.com/brandforge/api/internal/store"
)

const (
	TaskTypeStrategy = "strategy:process"
	QueueStrategy    = "strategy"
)

// TaskEnqueuer is the slice of asynq.Client the job service needs; tests
// substitute a fake.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JobService creates job records and hands them to the pipeline queue.
type JobService struct {
	jobs    store.JobStore
	storage client.StorageClient
	queue   TaskEnqueuer
}

// NewJobService creates a new job service.
func NewJobService(jobs store.JobStore, storage client.StorageClient, queue TaskEnqueuer) *JobService {
	return &JobService{
		jobs:    jobs,
		storage: storage,
		queue:   queue,
	}
}

// CreateJob records an approved job, persists the questionnaire artifact,
// and enqueues the pipeline task. The questionnaire has already passed the
// validation gate by the time this is called.
func (s *JobService) CreateJob(ctx context.Context, q *model.Questionnaire) (*model.Job, error) {
	now := time.Now().UTC()
	job := &model.Job{
		ID:     uuid.New().String(),
		Status: model.JobStatusApproved,
		Metadata: map[string]string{
			"brand_name": q.ProjectMetadata.BrandName,
			"industry":   q.ProjectMetadata.Industry,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	// The worker carries the questionnaire in the task payload, so a failed
	// upload here costs auditability, not the pipeline.
	if err := s.storage.PutJSON(ctx, model.ArtifactKey(job.ID, model.ArtifactQuestionnaire), q); err != nil {
		log.Printf("[Job %s] Failed to persist questionnaire artifact: %v", job.ID, err)
	}

	task, err := NewStrategyTask(job.ID, q)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	_, err = s.queue.Enqueue(task,
		asynq.Queue(QueueStrategy),
		asynq.MaxRetry(2),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return job, nil
}

// GetJob returns the job record.
func (s *JobService) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	return s.jobs.Get(ctx, jobID)
}

// NewStrategyTask builds the asynq task carrying one pipeline run.
func NewStrategyTask(jobID string, q *model.Questionnaire) (*asynq.Task, error) {
	payload := model.StrategyJobPayload{
		JobID:         jobID,
		Questionnaire: *q,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeStrategy, data), nil
}
