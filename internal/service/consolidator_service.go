package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
)

const consolidatorSystemPrompt = "You are a senior research analyst. You receive raw findings from two " +
	"independent research passes: one data-focused (competitors, sentiment, pricing) and one " +
	"creative-focused (visual trends, culture, campaigns). Synthesize them into one canonical " +
	"research document, deduplicating overlapping findings and calling out contradictions " +
	"between the two sources explicitly. Output must be valid JSON."

// ConsolidatorService merges the two research passes into one canonical
// document via a single synthesis call. The pipeline must never stall here:
// on provider failure the raw findings are carried verbatim into a degraded
// document instead.
type ConsolidatorService struct {
	provider client.TextProvider
}

// NewConsolidatorService creates the research consolidator.
func NewConsolidatorService(provider client.TextProvider) *ConsolidatorService {
	return &ConsolidatorService{provider: provider}
}

// Consolidate synthesizes the two result sets. It always returns a document
// with the four canonical sections.
func (s *ConsolidatorService) Consolidate(ctx context.Context, market, creative model.ResearchResult) *model.ConsolidatedResearch {
	if s.provider == nil || !s.provider.IsConfigured() {
		return degradedConsolidation(market, creative)
	}

	userPrompt := fmt.Sprintf(`# Data-focused research findings
%s

# Creative-focused research findings
%s

# Task
Produce a consolidated research document as JSON with exactly these keys:
{
  "market_reality": "Competitive landscape, pricing, positioning facts.",
  "consumer_voice": "What customers actually say, want, and object to.",
  "creative_landscape": "Visual trends, formats, campaign craft, archetypes.",
  "strategic_opportunities": "Whitespace and openings the findings point to.",
  "contradictions": ["Each place where the two sources disagree."],
  "confidence": "high | medium | low"
}
Return ONLY valid JSON.`, flattenFindings(market), flattenFindings(creative))

	var consolidated model.ConsolidatedResearch
	if err := s.provider.CompleteJSON(ctx, consolidatorSystemPrompt, userPrompt, &consolidated); err != nil {
		log.Printf("Research consolidation failed, falling back to raw merge: %v", err)
		return degradedConsolidation(market, creative)
	}

	if consolidated.Confidence == "" {
		consolidated.Confidence = model.ConfidenceMedium
	}
	return &consolidated
}

// degradedConsolidation carries the raw findings verbatim under the
// canonical sections: data-focused findings feed the market sections,
// creative findings the creative sections. Confidence is marked
// unavailable because no synthesis judged the material.
func degradedConsolidation(market, creative model.ResearchResult) *model.ConsolidatedResearch {
	return &model.ConsolidatedResearch{
		MarketReality:          flattenFindings(market),
		ConsumerVoice:          flattenFindings(market),
		CreativeLandscape:      flattenFindings(creative),
		StrategicOpportunities: flattenFindings(creative),
		Confidence:             model.ConfidenceUnavailable,
	}
}

// flattenFindings renders a result set as markdown sections in stable
// category order.
func flattenFindings(results model.ResearchResult) string {
	categories := make([]string, 0, len(results))
	for category := range results {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var b strings.Builder
	for _, category := range categories {
		finding := results[category]
		fmt.Fprintf(&b, "### %s\n", category)
		if finding.Errored {
			fmt.Fprintf(&b, "(query failed) %s\n\n", finding.Content)
			continue
		}
		fmt.Fprintf(&b, "%s\n\n", finding.Content)
	}
	return strings.TrimSpace(b.String())
}
