package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
)

const validationSystemPrompt = `You are an expert Marketing Strategy Validator. Your role is to gatekeep the quality of input data.
Marketing strategies require specific, actionable details.

Analyze the provided Questionnaire JSON.

Pass Criteria:
1. Clarity: Can a stranger understand what the product is?
2. Specificity: Are the goals and audience defined? (e.g., "Everyone" is a bad audience).
3. Depth: Are the answers more than 1-2 words where detail is needed?

Fail Criteria:
- Gibberish or placeholder text (e.g., "asdf", "test").
- Extremely generic answers (e.g., Target Audience: "People").
- Contradictions (e.g., Product is "Luxury Cars" but Target Audience is "Toddlers").

Return ONLY a raw JSON object (no markdown formatting) with this exact structure:
{"valid": boolean, "feedback": ["Specific, constructive feedback items. Can be empty when valid."]}`

// ValidationService is the AI gate in front of job creation: only
// questionnaires it approves become jobs.
type ValidationService struct {
	provider client.TextProvider
}

// NewValidationService creates the validation gate.
func NewValidationService(provider client.TextProvider) *ValidationService {
	return &ValidationService{provider: provider}
}

// Validate judges questionnaire quality. It never returns an error: a
// provider failure yields an invalid result with system feedback, and an
// unconfigured provider waves the questionnaire through so development
// setups can run end to end.
func (s *ValidationService) Validate(ctx context.Context, q *model.Questionnaire) *model.ValidationResult {
	if s.provider == nil || !s.provider.IsConfigured() {
		return &model.ValidationResult{
			Valid:    true,
			Feedback: []string{"Validation provider not configured; questionnaire accepted without review."},
		}
	}

	data, err := json.Marshal(q)
	if err != nil {
		return &model.ValidationResult{
			Valid:    false,
			Feedback: []string{"Could not process questionnaire input."},
		}
	}

	var result model.ValidationResult
	if err := s.provider.CompleteJSON(ctx, validationSystemPrompt, fmt.Sprintf("Input Data:\n%s", data), &result); err != nil {
		log.Printf("Questionnaire validation failed: %v", err)
		return &model.ValidationResult{
			Valid:    false,
			Feedback: []string{"System error during validation. Please try again later."},
		}
	}

	if result.Feedback == nil {
		result.Feedback = []string{}
	}
	return &result
}
