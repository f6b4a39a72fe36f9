package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
)

const marketResearchSystemPrompt = "You are a professional market researcher and creative strategist. " +
	"Provide detailed, factual, and cited summaries based on the search query. " +
	"Focus on recent data (last 6 months), visual trends, and cultural nuances."

// ResearchService runs the competitive/social research pass. Each topic
// query is an independent informational probe; a failed query degrades
// richness, it never aborts the job.
type ResearchService struct {
	provider client.TextProvider
}

// NewResearchService creates the market research service.
func NewResearchService(provider client.TextProvider) *ResearchService {
	return &ResearchService{provider: provider}
}

// Queries generates the fixed set of market research queries from the
// questionnaire.
func (s *ResearchService) Queries(q *model.Questionnaire) map[string]string {
	brand := q.ProjectMetadata.BrandName
	industry := q.ProjectMetadata.Industry
	country := q.ProjectMetadata.TargetCountry
	competitors := strings.Join(q.MarketContext.MainCompetitors, ", ")
	usp := q.ProductDefinition.UniqueSellingProposition

	return map[string]string{
		"competitor_analysis": fmt.Sprintf("Analyze the current pricing, marketing messaging, and customer sentiment for these competitors in the %s space: %s. Highlight their weaknesses.", industry, competitors),
		"usp_validation":      fmt.Sprintf("Search for consumer discussions and reviews regarding %s to interpret if this value proposition is truly unique or desired: '%s'. Are customers asking for this?", industry, usp),
		"social_sentiment":    fmt.Sprintf("Search Reddit and social threads for recent 'talk' or honest opinions about '%s' (if existing) or general frustrations with current solutions in the %s market.", brand, industry),
		"visual_trends":       fmt.Sprintf("What are the dominant visual styles, color palettes, and imagery trends used by top competitors in the %s industry in %s? Describe specific ad creatives.", industry, country),
		"emotional_triggers":  fmt.Sprintf("What emotional triggers and psychological hooks are most effective in recent successful marketing campaigns for %s products in %s?", industry, country),
		"creative_formats":    fmt.Sprintf("What creative formats (e.g., UGC, short-form video, static carousels) are trending and performing best for %s marketing on social media in %s?", industry, country),
		"brand_voice":         fmt.Sprintf("Analyze the tone of voice and brand personality of the top %s brands (%s). How do they speak to their audience?", industry, competitors),
		"cultural_trends":     fmt.Sprintf("What are the emerging cultural trends or consumer behaviors in %s that are impacting the %s market right now?", country, industry),
	}
}

// Conduct issues every query concurrently and returns one finding per
// category once all of them have resolved.
func (s *ResearchService) Conduct(ctx context.Context, q *model.Questionnaire) model.ResearchResult {
	queries := s.Queries(q)

	if s.provider == nil || !s.provider.IsConfigured() {
		return mockResearchResult(queries)
	}

	return fanOutQueries(ctx, s.provider, marketResearchSystemPrompt, queries)
}

// fanOutQueries launches all queries in parallel and joins on the full set.
// This is a join barrier, not a race: the map is returned only after every
// launched query has completed, successfully or with its failure recorded
// inline. Siblings are never cancelled by one query's failure.
func fanOutQueries(ctx context.Context, provider client.TextProvider, system string, queries map[string]string) model.ResearchResult {
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	results := make(model.ResearchResult, len(queries))

	for category, query := range queries {
		wg.Add(1)
		go func(category, query string) {
			defer wg.Done()

			finding := model.ResearchFinding{Query: query}
			content, err := provider.Complete(ctx, system, query)
			if err != nil {
				log.Printf("Research query failed (%s/%s): %v", provider.Name(), category, err)
				finding.Content = fmt.Sprintf("Error executing search: %v", err)
				finding.Errored = true
			} else {
				finding.Content = content
			}

			mu.Lock()
			results[category] = finding
			mu.Unlock()
		}(category, query)
	}

	wg.Wait()
	return results
}

// mockResearchResult returns canned findings for development without
// provider credentials.
func mockResearchResult(queries map[string]string) model.ResearchResult {
	results := make(model.ResearchResult, len(queries))
	for category, query := range queries {
		results[category] = model.ResearchFinding{
			Query:   query,
			Content: fmt.Sprintf("[mock] No research provider configured. Placeholder findings for %s.", category),
		}
	}
	return results
}
