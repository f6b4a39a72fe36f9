package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
)

const arbiterSystemPrompt = "You are the Chief Strategy Officer. You have received three strategic proposals " +
	"from your team.\nYour job is to synthesize these into a single, FINAL strategy.\n" +
	"Identify where they agree (High Confidence) and where they disagree.\n" +
	"Pick the best ideas from each source."

// ConsensusService merges the three proposals into one final strategy using
// one arbiter call. It returns a value of the correct shape on every code
// path; an arbiter failure produces a degraded strategy, never an error.
type ConsensusService struct {
	arbiter client.TextProvider
}

// NewConsensusService creates the consensus synthesizer.
func NewConsensusService(arbiter client.TextProvider) *ConsensusService {
	return &ConsensusService{arbiter: arbiter}
}

// Generate produces the final consensus strategy from the triple.
func (s *ConsensusService) Generate(ctx context.Context, triple *model.AnalysisTriple) *model.ConsensusStrategy {
	log.Println("Starting consensus generation")

	if s.arbiter == nil || !s.arbiter.IsConfigured() {
		return mechanicalConsensus(triple)
	}

	userPrompt := fmt.Sprintf(`# Proposal 1 (creative):
%s

# Proposal 2 (brand):
%s

# Proposal 3 (market_intelligence):
%s

# Task
Create a Final Consensus Strategy JSON with:
1. "hooks": Select the top 5 hooks from ALL sources, each {"hook", "source"} where source is the proposal it came from ("creative", "brand", or "market_intelligence").
2. "angles": Select the top 3 distinct angles, each {"title", "description"}. Prioritize angles that appear in multiple proposals.
3. "creative_pivot": Synthesize a single powerful pivot statement that captures the best insights.
4. "consensus_notes": A brief text explaining where the proposals agreed vs. disagreed.
Return ONLY valid JSON.`,
		proposalDigest(triple.Creative),
		proposalDigest(triple.Brand),
		proposalDigest(triple.Market))

	var strategy model.ConsensusStrategy
	if err := s.arbiter.CompleteJSON(ctx, arbiterSystemPrompt, userPrompt, &strategy); err != nil {
		log.Printf("Consensus generation failed: %v", err)
		return &model.ConsensusStrategy{
			Hooks:          []model.SourcedHook{},
			Angles:         []model.Angle{},
			CreativePivot:  "Error generating consensus.",
			ConsensusNotes: fmt.Sprintf("Arbiter call failed: %v", err),
			Degraded:       true,
		}
	}

	strategy.Degraded = false
	return &strategy
}

func proposalDigest(p model.AnalysisProposal) string {
	if p.Failed() {
		return fmt.Sprintf("(this analyst failed: %s)", p.Error)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// mechanicalConsensus merges the triple deterministically when no arbiter is
// configured: hooks and angles are taken from each surviving proposal in
// persona order.
func mechanicalConsensus(triple *model.AnalysisTriple) *model.ConsensusStrategy {
	strategy := &model.ConsensusStrategy{
		Hooks:  []model.SourcedHook{},
		Angles: []model.Angle{},
	}

	failed := 0
	for _, p := range triple.Proposals() {
		if p.Failed() {
			failed++
			continue
		}
		for _, hook := range p.Hooks {
			if len(strategy.Hooks) >= 5 {
				break
			}
			strategy.Hooks = append(strategy.Hooks, model.SourcedHook{Hook: hook, Source: p.Source})
		}
		for _, angle := range p.Angles {
			if len(strategy.Angles) >= 3 {
				break
			}
			strategy.Angles = append(strategy.Angles, angle)
		}
		if strategy.CreativePivot == "" {
			strategy.CreativePivot = p.CreativePivot
		}
	}

	switch failed {
	case 0:
		strategy.ConsensusNotes = "Mechanical merge (no arbiter configured): all three proposals contributed."
	case 3:
		strategy.CreativePivot = "Error generating consensus."
		strategy.ConsensusNotes = "All three analysts failed; no material to merge."
		strategy.Degraded = true
	default:
		strategy.ConsensusNotes = fmt.Sprintf("Mechanical merge (no arbiter configured): %d of 3 proposals contributed.", 3-failed)
		strategy.Degraded = true
	}

	return strategy
}
