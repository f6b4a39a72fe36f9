package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
	"github.com/brandforge/api/internal/store"
)

// fakeProvider is a scriptable TextProvider. completeFn/jsonFn override the
// canned responses; delay simulates network latency for parallelism checks.
type fakeProvider struct {
	name       string
	configured bool
	delay      time.Duration

	completeFn func(user string) (string, error)
	jsonFn     func(system, user string, out interface{}) error

	mu    sync.Mutex
	calls []string
}

func (f *fakeProvider) Name() string       { return f.name }
func (f *fakeProvider) IsConfigured() bool { return f.configured }

func (f *fakeProvider) Complete(ctx context.Context, system, user string) (string, error) {
	f.record(user)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.completeFn != nil {
		return f.completeFn(user)
	}
	return "canned response", nil
}

func (f *fakeProvider) CompleteJSON(ctx context.Context, system, user string, out interface{}) error {
	f.record(user)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.jsonFn != nil {
		return f.jsonFn(system, user, out)
	}
	return &client.ProviderError{Provider: f.name, Message: "no jsonFn scripted"}
}

func (f *fakeProvider) record(user string) {
	f.mu.Lock()
	f.calls = append(f.calls, user)
	f.mu.Unlock()
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// jsonReply returns a jsonFn that always decodes the given payload into out.
func jsonReply(payload string) func(string, string, interface{}) error {
	return func(_, _ string, out interface{}) error {
		return json.Unmarshal([]byte(payload), out)
	}
}

// fakeJobStore is an in-memory JobStore enforcing the same transition rules
// as the Redis-backed one. It records every status the job passes through.
type fakeJobStore struct {
	mu      sync.Mutex
	jobs    map[string]*model.Job
	history map[string][]model.JobStatus
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		jobs:    make(map[string]*model.Job),
		history: make(map[string][]model.JobStatus),
	}
}

func (s *fakeJobStore) Create(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *fakeJobStore) Get(ctx context.Context, jobID string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *fakeJobStore) SetStatus(ctx context.Context, jobID string, status model.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return store.ErrJobNotFound
	}
	if !job.Status.CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", store.ErrInvalidTransition, job.Status, status)
	}
	job.Status = status
	job.UpdatedAt = time.Now().UTC()
	s.history[jobID] = append(s.history[jobID], status)
	return nil
}

func (s *fakeJobStore) SetFailed(ctx context.Context, jobID string, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return store.ErrJobNotFound
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", store.ErrInvalidTransition, job.Status, model.JobStatusFailed)
	}
	job.Status = model.JobStatusFailed
	job.Error = &errMsg
	s.history[jobID] = append(s.history[jobID], model.JobStatusFailed)
	return nil
}

func (s *fakeJobStore) statusHistory(jobID string) []model.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.JobStatus(nil), s.history[jobID]...)
}

// fakeEnqueuer captures enqueued tasks instead of talking to Redis.
type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(f.tasks)), Queue: QueueStrategy}, nil
}

func testQuestionnaire() *model.Questionnaire {
	return &model.Questionnaire{
		ProjectMetadata: model.ProjectMetadata{
			BrandName:     "Peak Hydration",
			WebsiteURL:    "https://peakhydration.example.com",
			TargetCountry: "Germany",
			Industry:      "functional beverages",
		},
		ProductDefinition: model.ProductDefinition{
			ProductDescription:       "Electrolyte powder sticks with zero sugar",
			CoreProblemSolved:        "Sugary sports drinks that spike and crash",
			UniqueSellingProposition: "Clinical-grade electrolyte ratio without sweeteners",
		},
		TargetAudience: model.TargetAudience{
			Demographics:   "25-40 urban professionals who train 3+ times a week",
			Psychographics: "Optimizers who read ingredient labels",
		},
		MarketContext: model.MarketContext{
			MainCompetitors: []string{"HydraFuel", "Electrolyt GmbH"},
		},
		CreativeGoal: model.CreativeGoal{
			PrimaryObjective:   "Launch awareness in the German market",
			DesiredToneOfVoice: "Confident, scientific, a little dry-humored",
			SpecificChannels:   []string{"instagram", "youtube"},
		},
	}
}
