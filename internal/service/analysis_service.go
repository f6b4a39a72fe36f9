package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
)

// AnalysisService runs the three-analyst fan-out. Each analyst has its own
// persona and provider but a common requested output shape; they run and
// fail independently, and the stage returns only after all three have
// resolved.
type AnalysisService struct {
	creative client.TextProvider
	brand    client.TextProvider
	market   client.TextProvider
}

// NewAnalysisService creates the analysis fan-out with one provider per
// analyst persona.
func NewAnalysisService(creative, brand, market client.TextProvider) *AnalysisService {
	return &AnalysisService{
		creative: creative,
		brand:    brand,
		market:   market,
	}
}

// RunTripleAnalysis generates three independent proposals concurrently. A
// failed analyst yields an error-tagged proposal; the other two are not
// cancelled.
func (s *AnalysisService) RunTripleAnalysis(ctx context.Context, q *model.Questionnaire, research *model.ConsolidatedResearch) *model.AnalysisTriple {
	log.Printf("Starting triple analysis for %s", q.ProjectMetadata.BrandName)

	triple := &model.AnalysisTriple{}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		triple.Creative = s.runAnalyst(ctx, s.creative, model.AnalystCreative, creativeAnalystPrompt(q, research))
	}()
	go func() {
		defer wg.Done()
		triple.Brand = s.runAnalyst(ctx, s.brand, model.AnalystBrand, brandAnalystPrompt(q, research))
	}()
	go func() {
		defer wg.Done()
		triple.Market = s.runAnalyst(ctx, s.market, model.AnalystMarket, marketAnalystPrompt(q, research))
	}()

	wg.Wait()
	return triple
}

func (s *AnalysisService) runAnalyst(ctx context.Context, provider client.TextProvider, source, userPrompt string) model.AnalysisProposal {
	if provider == nil || !provider.IsConfigured() {
		return mockProposal(source)
	}

	system := "You are a world-class Marketing Strategist. " +
		"Analyze the research data and propose a creative marketing strategy. " +
		"Output must be valid JSON."

	var proposal model.AnalysisProposal
	if err := provider.CompleteJSON(ctx, system, userPrompt, &proposal); err != nil {
		log.Printf("Analyst %s failed: %v", source, err)
		return model.AnalysisProposal{Source: source, Error: err.Error()}
	}

	proposal.Source = source
	proposal.Error = ""
	return proposal
}

func creativeAnalystPrompt(q *model.Questionnaire, research *model.ConsolidatedResearch) string {
	return fmt.Sprintf(`You are acting as a Creative Director. Find the 'Creative Pivot': the bold move that
breaks the pattern of the current market. Focus on emotional triggers, visual
storytelling, and distinct brand voice.

# Client Profile
Brand: %s
Product: %s
Audience: %s
Goal: %s

# Consolidated Research
%s

# Task
Generate a strategy as JSON with:
1. "hooks": 5 distinct creative hooks (1 sentence each).
2. "angles": 3 unique angles, each {"title", "description", "visual_idea"}.
3. "creative_pivot": A bold recommendation on how to stand out.
4. "visual_concepts": 3 directions, each {"concept_name", "description", "style_reference"}.
5. "brand_voice": {"tone", "keywords", "guidelines"}.
6. "campaign_concepts": 2 concepts, each {"name", "tagline", "narrative"}.
Return ONLY valid JSON.`,
		q.ProjectMetadata.BrandName,
		q.ProductDefinition.ProductDescription,
		q.TargetAudience.Demographics,
		q.CreativeGoal.PrimaryObjective,
		researchDigest(research))
}

func brandAnalystPrompt(q *model.Questionnaire, research *model.ConsolidatedResearch) string {
	return fmt.Sprintf(`You are acting as a Brand Strategist. Focus on positioning: where this brand can
own territory the competitors have left open, and how its story should be told.

# Client Profile
Brand: %s
USP: %s
Tone of voice requested: %s

# Consolidated Research
%s

# Task
Generate a strategy as JSON with:
1. "hooks": 3 powerful positioning hooks (1 sentence each).
2. "angles": 2 angles, each {"title", "description"}.
3. "creative_pivot": A strategic recommendation on differentiation.
Return ONLY valid JSON, no markdown formatting.`,
		q.ProjectMetadata.BrandName,
		q.ProductDefinition.UniqueSellingProposition,
		q.CreativeGoal.DesiredToneOfVoice,
		researchDigest(research))
}

func marketAnalystPrompt(q *model.Questionnaire, research *model.ConsolidatedResearch) string {
	return fmt.Sprintf(`You are acting as a Market Intelligence analyst. Ground every recommendation in
the competitive and consumer evidence; prefer claims the research supports.

# Client Profile
Brand: %s (%s industry, %s)

# Consolidated Research
%s

# Task
Generate a strategy as JSON with:
1. "hooks": 3 evidence-backed marketing hooks (1 sentence each).
2. "angles": 2 angles, each {"title", "description"}.
3. "creative_pivot": A differentiation recommendation grounded in the data.
Return ONLY valid JSON.`,
		q.ProjectMetadata.BrandName,
		q.ProjectMetadata.Industry,
		q.ProjectMetadata.TargetCountry,
		researchDigest(research))
}

// researchDigest renders the consolidated document for embedding in analyst
// prompts.
func researchDigest(research *model.ConsolidatedResearch) string {
	data, err := json.MarshalIndent(research, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

func mockProposal(source string) model.AnalysisProposal {
	return model.AnalysisProposal{
		Source:        source,
		Hooks:         []string{fmt.Sprintf("[mock] %s hook one", source), fmt.Sprintf("[mock] %s hook two", source)},
		Angles:        []model.Angle{{Title: "Mock angle", Description: "No analysis provider configured."}},
		CreativePivot: fmt.Sprintf("[mock] %s pivot recommendation", source),
	}
}
