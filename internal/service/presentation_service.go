package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
)

const deckSystemPrompt = "You are an expert Presentation Designer and Copywriter. " +
	"Your task is to take a raw marketing strategy and structure it into a compelling 7-slide pitch deck.\n" +
	"Output must be valid JSON matching the specified structure."

// PresentationService structures the consensus strategy into a slide deck
// and hands it to the document renderer. Both steps are best-effort from the
// pipeline's point of view; a job can complete without a rendered document.
type PresentationService struct {
	provider client.TextProvider
	renderer client.DocumentRenderer
}

// NewPresentationService creates the presentation service.
func NewPresentationService(provider client.TextProvider, renderer client.DocumentRenderer) *PresentationService {
	return &PresentationService{
		provider: provider,
		renderer: renderer,
	}
}

// StructureDeck turns the questionnaire and final strategy into the 7-slide
// deck structure.
func (s *PresentationService) StructureDeck(ctx context.Context, q *model.Questionnaire, strategy *model.ConsensusStrategy) (*model.SlideDeck, error) {
	if s.provider == nil || !s.provider.IsConfigured() {
		return mockDeck(q, strategy), nil
	}

	strategyJSON, err := json.Marshal(strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal strategy: %w", err)
	}

	userPrompt := fmt.Sprintf(`# Context
Brand: %s
Strategy Analysis: %s

# Task
Create content for exactly these 7 slides:
1. Title Slide (Catchy Title, Subtitle)
2. The Problem (3 bullet points on customer pain points)
3. The Solution (3 bullet points on how the product solves it)
4. Market Context (Competitor weakness vs Our Strength)
5. The Strategy (The 'Creative Pivot' and approach)
6. Marketing Hooks (Display the generated hooks)
7. Next Steps (3 actionable recommendations)

# JSON Structure
Return a JSON object with a "slides" key, containing a list of objects.
Each slide object must have:
- "type": One of ["title", "content"]
- "title": string
- "subtitle": string (optional, for title slide)
- "content": list of strings (bullet points)

Ensure the copy is punchy, professional, and persuasive.`,
		q.ProjectMetadata.BrandName, string(strategyJSON))

	var deck model.SlideDeck
	if err := s.provider.CompleteJSON(ctx, deckSystemPrompt, userPrompt, &deck); err != nil {
		return nil, err
	}
	if len(deck.Slides) == 0 {
		return nil, fmt.Errorf("deck structuring returned no slides")
	}
	return &deck, nil
}

// RenderDeck hands the deck to the document renderer and returns the binary
// document.
func (s *PresentationService) RenderDeck(ctx context.Context, deck *model.SlideDeck) ([]byte, error) {
	if s.renderer == nil || !s.renderer.IsConfigured() {
		return nil, fmt.Errorf("document renderer not configured")
	}
	return s.renderer.Render(ctx, deck)
}

// mockDeck builds a deterministic deck from the strategy when no provider is
// configured, so the pipeline produces a complete artifact set in
// development.
func mockDeck(q *model.Questionnaire, strategy *model.ConsensusStrategy) *model.SlideDeck {
	hooks := make([]string, 0, len(strategy.Hooks))
	for _, h := range strategy.Hooks {
		hooks = append(hooks, h.Hook)
	}
	if len(hooks) == 0 {
		hooks = []string{"(no hooks available)"}
	}

	brand := q.ProjectMetadata.BrandName
	return &model.SlideDeck{
		Slides: []model.Slide{
			{Type: model.SlideTypeTitle, Title: brand + " Strategy", Subtitle: "Creative marketing strategy"},
			{Type: model.SlideTypeContent, Title: "The Problem", Content: []string{q.ProductDefinition.CoreProblemSolved}},
			{Type: model.SlideTypeContent, Title: "The Solution", Content: []string{q.ProductDefinition.ProductDescription}},
			{Type: model.SlideTypeContent, Title: "Market Context", Content: q.MarketContext.MainCompetitors},
			{Type: model.SlideTypeContent, Title: "The Strategy", Content: []string{strategy.CreativePivot}},
			{Type: model.SlideTypeContent, Title: "Marketing Hooks", Content: hooks},
			{Type: model.SlideTypeContent, Title: "Next Steps", Content: []string{"Validate hooks with audience panels", "Brief creative production", "Plan channel rollout"}},
		},
	}
}
