package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brandforge/api/internal/model"
)

// ErrJobNotFound is returned when a job record does not exist.
var ErrJobNotFound = errors.New("job not found")

// ErrInvalidTransition is returned when a status change is not a legal edge
// of the job state machine.
var ErrInvalidTransition = errors.New("invalid status transition")

// JobStore persists job records. Implementations must provide
// read-after-write consistency for a single job within one process.
type JobStore interface {
	Create(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, jobID string) (*model.Job, error)
	SetStatus(ctx context.Context, jobID string, status model.JobStatus) error
	SetFailed(ctx context.Context, jobID string, errMsg string) error
}

// RedisJobStore keeps each job as a JSON blob under job:{id}.
type RedisJobStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisJobStore creates a job store backed by Redis. Records expire after
// seven days; artifacts outlive the record in object storage.
func NewRedisJobStore(redisClient *redis.Client) *RedisJobStore {
	return &RedisJobStore{
		redis: redisClient,
		ttl:   7 * 24 * time.Hour,
	}
}

// Create persists a new job record.
func (s *RedisJobStore) Create(ctx context.Context, job *model.Job) error {
	return s.save(ctx, job)
}

// Get loads a job record.
func (s *RedisJobStore) Get(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.redis.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// SetStatus advances the job along one edge of the state machine. Illegal
// edges are rejected so a buggy caller cannot skip a stage or resurrect a
// terminal job.
func (s *RedisJobStore) SetStatus(ctx context.Context, jobID string, status model.JobStatus) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}

	if !job.Status.CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, status)
	}

	job.Status = status
	return s.save(ctx, job)
}

// SetFailed moves the job to the failure sink and records the cause.
func (s *RedisJobStore) SetFailed(ctx context.Context, jobID string, errMsg string) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}

	if job.Status.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, model.JobStatusFailed)
	}

	job.Status = model.JobStatusFailed
	job.Error = &errMsg
	return s.save(ctx, job)
}

func (s *RedisJobStore) save(ctx context.Context, job *model.Job) error {
	job.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, jobKey(job.ID), data, s.ttl).Err()
}

func jobKey(jobID string) string {
	return fmt.Sprintf("job:%s", jobID)
}
