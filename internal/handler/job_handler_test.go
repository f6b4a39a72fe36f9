package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
	"github.com/brandforge/api/internal/service"
	"github.com/brandforge/api/internal/store"
)

type memJobStore struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: make(map[string]*model.Job)}
}

func (s *memJobStore) Create(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *memJobStore) Get(ctx context.Context, jobID string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *memJobStore) SetStatus(ctx context.Context, jobID string, status model.JobStatus) error {
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
	return nil
}

func (s *memJobStore) SetFailed(ctx context.Context, jobID string, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return store.ErrJobNotFound
	}
	job.Status = model.JobStatusFailed
	job.Error = &errMsg
	return nil
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t1"}, nil
}

type testEnv struct {
	app     *fiber.App
	jobs    *memJobStore
	storage *client.MemoryStorage
	queue   *fakeEnqueuer
}

// setupApp builds the HTTP surface on fakes: in-memory job store and
// artifact storage, a captured queue, and an unconfigured validation
// provider that waves questionnaires through.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	jobs := newMemJobStore()
	storage := client.NewMemoryStorage()
	queue := &fakeEnqueuer{}

	jobService := service.NewJobService(jobs, storage, queue)
	validationService := service.NewValidationService(nil)
	h := NewJobHandler(jobService, validationService, storage, validator.New())

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/validate", h.Validate)
	api.Post("/jobs", h.Submit)
	api.Get("/jobs/:jobId", h.Status)
	api.Get("/jobs/:jobId/analysis", h.Analysis)
	api.Get("/jobs/:jobId/research", h.Research)
	api.Get("/jobs/:jobId/download", h.Download)

	return &testEnv{app: app, jobs: jobs, storage: storage, queue: queue}
}

const questionnaireJSON = `{
	"project_metadata": {
		"brand_name": "Peak Hydration",
		"website_url": "https://peakhydration.example.com",
		"target_country": "Germany",
		"industry": "functional beverages"
	},
	"product_definition": {
		"product_description": "Electrolyte powder sticks with zero sugar",
		"core_problem_solved": "Sugary sports drinks that spike and crash",
		"unique_selling_proposition": "Clinical-grade electrolyte ratio"
	},
	"target_audience": {
		"demographics": "25-40 urban professionals",
		"psychographics": "Optimizers who read ingredient labels"
	},
	"market_context": {
		"main_competitors": ["HydraFuel"]
	},
	"the_creative_goal": {
		"primary_objective": "Launch awareness in Germany",
		"desired_tone_of_voice": "Confident and scientific",
		"specific_channels": ["instagram"]
	}
}`

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func parseBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestValidate_Accepts(t *testing.T) {
	env := setupApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/validate", questionnaireJSON)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := parseBody(t, resp)
	assert.Equal(t, true, body["valid"])
}

func TestValidate_RejectsMissingFields(t *testing.T) {
	env := setupApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/validate", `{"project_metadata": {"brand_name": "X"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := parseBody(t, resp)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
}

func TestValidate_RejectsMalformedBody(t *testing.T) {
	env := setupApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/validate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmit_CreatesJobAndEnqueues(t *testing.T) {
	env := setupApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/jobs", questionnaireJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := parseBody(t, resp)
	jobID, _ := body["job_id"].(string)
	require.NotEmpty(t, jobID)
	assert.Equal(t, string(model.JobStatusApproved), body["status"])
	assert.Equal(t, true, body["validation_passed"])

	require.Len(t, env.queue.tasks, 1)
	assert.Equal(t, service.TaskTypeStrategy, env.queue.tasks[0].Type())

	// The job is immediately visible through the status endpoint.
	statusResp := doJSON(t, env.app, http.MethodGet, "/api/jobs/"+jobID, "")
	assert.Equal(t, http.StatusOK, statusResp.StatusCode)
	statusBody := parseBody(t, statusResp)
	assert.Equal(t, string(model.JobStatusApproved), statusBody["status"])
}

func TestStatus_UnknownJob(t *testing.T) {
	env := setupApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/api/jobs/no-such-job", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := parseBody(t, resp)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errObj["code"])
}

// completeJob walks the job through its remaining legal transitions so the
// store considers it terminal.
func (e *testEnv) completeJob(t *testing.T, jobID string) {
	t.Helper()
	ctx := context.Background()
	for _, status := range []model.JobStatus{
		model.JobStatusResearching,
		model.JobStatusAnalyzing,
		model.JobStatusConsensus,
		model.JobStatusCompleted,
	} {
		require.NoError(t, e.jobs.SetStatus(ctx, jobID, status))
	}
}

func TestAnalysis_NotReadyThenReady(t *testing.T) {
	env := setupApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/jobs", questionnaireJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	jobID := parseBody(t, resp)["job_id"].(string)

	// No artifact yet and the job is still in flight, so the client is
	// told to come back later rather than that the resource is gone.
	notReady := doJSON(t, env.app, http.MethodGet, "/api/jobs/"+jobID+"/analysis", "")
	assert.Equal(t, http.StatusConflict, notReady.StatusCode)
	errObj := parseBody(t, notReady)["error"].(map[string]interface{})
	assert.Equal(t, "JOB_NOT_READY", errObj["code"])

	// Simulate the pipeline persisting the final strategy.
	strategy := model.ConsensusStrategy{CreativePivot: "Final pivot."}
	require.NoError(t, env.storage.PutJSON(context.Background(),
		model.ArtifactKey(jobID, model.ArtifactAnalysis), strategy))

	ready := doJSON(t, env.app, http.MethodGet, "/api/jobs/"+jobID+"/analysis", "")
	require.Equal(t, http.StatusOK, ready.StatusCode)
	body := parseBody(t, ready)
	assert.Equal(t, "Final pivot.", body["creative_pivot"])
}

func TestResearch_ServesConsolidatedDocument(t *testing.T) {
	env := setupApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/jobs", questionnaireJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	jobID := parseBody(t, resp)["job_id"].(string)

	doc := model.ConsolidatedResearch{MarketReality: "m", Confidence: model.ConfidenceHigh}
	require.NoError(t, env.storage.PutJSON(context.Background(),
		model.ArtifactKey(jobID, model.ArtifactConsolidated), doc))

	ready := doJSON(t, env.app, http.MethodGet, "/api/jobs/"+jobID+"/research", "")
	require.Equal(t, http.StatusOK, ready.StatusCode)
	body := parseBody(t, ready)
	assert.Equal(t, "m", body["market_reality"])
}

func TestAnalysis_MissingOnTerminalJobIs404(t *testing.T) {
	env := setupApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/jobs", questionnaireJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	jobID := parseBody(t, resp)["job_id"].(string)
	env.completeJob(t, jobID)

	missing := doJSON(t, env.app, http.MethodGet, "/api/jobs/"+jobID+"/analysis", "")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	errObj := parseBody(t, missing)["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errObj["code"])
}

func TestDownload_MissingPresentation(t *testing.T) {
	env := setupApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/jobs", questionnaireJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	jobID := parseBody(t, resp)["job_id"].(string)

	// In flight: not ready yet.
	missing := doJSON(t, env.app, http.MethodGet, "/api/jobs/"+jobID+"/download", "")
	assert.Equal(t, http.StatusConflict, missing.StatusCode)

	// Terminal without a deck (render failures do not fail the job): gone.
	env.completeJob(t, jobID)
	gone := doJSON(t, env.app, http.MethodGet, "/api/jobs/"+jobID+"/download", "")
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestDownload_ServesBinary(t *testing.T) {
	env := setupApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/jobs", questionnaireJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	jobID := parseBody(t, resp)["job_id"].(string)

	require.NoError(t, env.storage.Put(context.Background(),
		model.ArtifactKey(jobID, model.ArtifactPresentation), []byte("PPTX-BYTES"),
		"application/vnd.openxmlformats-officedocument.presentationml.presentation"))

	dl := doJSON(t, env.app, http.MethodGet, "/api/jobs/"+jobID+"/download", "")
	require.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Contains(t, dl.Header.Get("Content-Disposition"), jobID)

	data, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("PPTX-BYTES"), data)
}
