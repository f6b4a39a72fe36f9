package service

import (
	"context"
	"fmt"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
)

const creativeResearchSystemPrompt = "You are a creative research specialist. " +
	"Surface visual trends, cultural context, and campaign craft with concrete, recent examples."

// CreativeResearchService runs the visual/cultural research pass. It
// complements the market pass with creative insight; the two run
// concurrently and are consolidated afterwards.
type CreativeResearchService struct {
	provider client.TextProvider
}

// NewCreativeResearchService creates the creative research service.
func NewCreativeResearchService(provider client.TextProvider) *CreativeResearchService {
	return &CreativeResearchService{provider: provider}
}

// Queries generates the fixed set of creative research queries from the
// questionnaire.
func (s *CreativeResearchService) Queries(q *model.Questionnaire) map[string]string {
	industry := q.ProjectMetadata.Industry
	country := q.ProjectMetadata.TargetCountry

	return map[string]string{
		"visual_trends":     fmt.Sprintf("Search for current visual marketing trends in the %s industry in %s. Describe color palettes, photography styles, and graphic design elements that are popular right now. Look for specific examples from top brands.", industry, country),
		"cultural_insights": fmt.Sprintf("What are the current cultural conversations or shifts in %s that are relevant to %s? Identify slang, memes, or social movements that brands are tapping into.", country, industry),
		"campaign_examples": fmt.Sprintf("Find 3 examples of recent, successful creative marketing campaigns in the %s sector (globally or in %s). Describe the core creative concept and why it worked.", industry, country),
		"brand_archetypes":  fmt.Sprintf("Analyze the common brand archetypes used in the %s market. Are they mostly 'Ruler', 'Caregiver', 'Outlaw'? Where is the whitespace?", industry),
	}
}

// Conduct issues every query concurrently and returns one finding per
// category once all of them have resolved.
func (s *CreativeResearchService) Conduct(ctx context.Context, q *model.Questionnaire) model.ResearchResult {
	queries := s.Queries(q)

	if s.provider == nil || !s.provider.IsConfigured() {
		return mockResearchResult(queries)
	}

	return fanOutQueries(ctx, s.provider, creativeResearchSystemPrompt, queries)
}
