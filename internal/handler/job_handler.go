package handler

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
	"github.com/brandforge/api/internal/service"
	"github.com/brandforge/api/internal/store"
	"github.com/brandforge/api/pkg/response"
)

type JobHandler struct {
	jobs       *service.JobService
	validation *service.ValidationService
	storage    client.StorageClient
	validator  *validator.Validate
}

func NewJobHandler(jobs *service.JobService, validation *service.ValidationService, storage client.StorageClient, v *validator.Validate) *JobHandler {
	return &JobHandler{
		jobs:       jobs,
		validation: validation,
		storage:    storage,
		validator:  v,
	}
}

// SubmitResponse is returned from POST /api/jobs.
type SubmitResponse struct {
	JobID            string          `json:"job_id"`
	Status           model.JobStatus `json:"status"`
	ValidationPassed bool            `json:"validation_passed"`
}

// Validate handles POST /api/validate
// @Summary      Validate a questionnaire
// @Description  Run the AI validation gate without creating a job
// @Tags         Jobs
// @Accept       json
// @Produce      json
// @Param        request body model.Questionnaire true "Questionnaire"
// @Success      200 {object} model.ValidationResult
// @Failure      400 {object} response.ErrorResponse
// @Router       /api/validate [post]
func (h *JobHandler) Validate(c *fiber.Ctx) error {
	var q model.Questionnaire
	if err := c.BodyParser(&q); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&q); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result := h.validation.Validate(c.Context(), &q)
	if !result.Valid {
		return response.ValidationError(c, "Questionnaire rejected", result.Feedback)
	}
	return response.OK(c, result)
}

// Submit handles POST /api/jobs
// @Summary      Submit a new strategy job
// @Description  Validate the questionnaire, create a job, and start the pipeline
// @Tags         Jobs
// @Accept       json
// @Produce      json
// @Param        request body model.Questionnaire true "Questionnaire"
// @Success      201 {object} SubmitResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/jobs [post]
func (h *JobHandler) Submit(c *fiber.Ctx) error {
	var q model.Questionnaire
	if err := c.BodyParser(&q); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&q); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result := h.validation.Validate(c.Context(), &q)
	if !result.Valid {
		return response.ValidationError(c, "Questionnaire rejected", result.Feedback)
	}

	job, err := h.jobs.CreateJob(c.Context(), &q)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, SubmitResponse{
		JobID:            job.ID,
		Status:           job.Status,
		ValidationPassed: true,
	})
}

// Status handles GET /api/jobs/:jobId
// @Summary      Get job status
// @Tags         Jobs
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.Job
// @Failure      404 {object} response.ErrorResponse
// @Router       /api/jobs/{jobId} [get]
func (h *JobHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.jobs.GetJob(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, job)
}

// Analysis handles GET /api/jobs/:jobId/analysis
// @Summary      Get the final consensus strategy
// @Tags         Jobs
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.ConsensusStrategy
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Router       /api/jobs/{jobId}/analysis [get]
func (h *JobHandler) Analysis(c *fiber.Ctx) error {
	return h.jsonArtifact(c, model.ArtifactAnalysis, "Analysis not available yet")
}

// Research handles GET /api/jobs/:jobId/research
// @Summary      Get the consolidated research document
// @Tags         Jobs
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.ConsolidatedResearch
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Router       /api/jobs/{jobId}/research [get]
func (h *JobHandler) Research(c *fiber.Ctx) error {
	return h.jsonArtifact(c, model.ArtifactConsolidated, "Research not available yet")
}

// Download handles GET /api/jobs/:jobId/download
// @Summary      Download the generated presentation
// @Tags         Jobs
// @Produce      application/octet-stream
// @Param        jobId path string true "Job ID"
// @Success      200 {file} binary
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Router       /api/jobs/{jobId}/download [get]
func (h *JobHandler) Download(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.jobs.GetJob(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	data, err := h.storage.Get(c.Context(), model.ArtifactKey(jobID, model.ArtifactPresentation))
	if err != nil {
		if errors.Is(err, client.ErrObjectNotFound) {
			if !job.Status.IsTerminal() {
				return response.JobNotReady(c, "Presentation not ready yet")
			}
			return response.NotFound(c, "Presentation not found")
		}
		return response.ServiceError(c, err.Error())
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.presentationml.presentation")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="marketing_strategy_%s.pptx"`, jobID))
	return c.Send(data)
}

// jsonArtifact serves a JSON artifact from the store. While the job is
// still in progress a missing artifact is 409 (come back later); once the
// job is terminal it is 404.
func (h *JobHandler) jsonArtifact(c *fiber.Ctx, name, missingMsg string) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.jobs.GetJob(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	var artifact json.RawMessage
	if err := h.storage.GetJSON(c.Context(), model.ArtifactKey(jobID, name), &artifact); err != nil {
		if errors.Is(err, client.ErrObjectNotFound) {
			if !job.Status.IsTerminal() {
				return response.JobNotReady(c, missingMsg)
			}
			return response.NotFound(c, missingMsg)
		}
		return response.ServiceError(c, err.Error())
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(artifact)
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
