package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
)

func sampleTriple() *model.AnalysisTriple {
	return &model.AnalysisTriple{
		Creative: model.AnalysisProposal{
			Source:        model.AnalystCreative,
			Hooks:         []string{"Creative hook 1", "Creative hook 2"},
			Angles:        []model.Angle{{Title: "Creative angle", Description: "d"}},
			CreativePivot: "Creative pivot",
		},
		Brand: model.AnalysisProposal{
			Source:        model.AnalystBrand,
			Hooks:         []string{"Brand hook 1", "Brand hook 2"},
			Angles:        []model.Angle{{Title: "Brand angle", Description: "d"}},
			CreativePivot: "Brand pivot",
		},
		Market: model.AnalysisProposal{
			Source:        model.AnalystMarket,
			Hooks:         []string{"Market hook 1", "Market hook 2"},
			Angles:        []model.Angle{{Title: "Market angle", Description: "d"}},
			CreativePivot: "Market pivot",
		},
	}
}

func TestConsensusService_ArbiterSynthesis(t *testing.T) {
	arbiter := &fakeProvider{
		name:       "openai",
		configured: true,
		jsonFn: jsonReply(`{
			"hooks": [
				{"hook": "Winner 1", "source": "creative"},
				{"hook": "Winner 2", "source": "market_intelligence"}
			],
			"angles": [{"title": "Final angle", "description": "d"}],
			"creative_pivot": "The synthesized pivot.",
			"consensus_notes": "Creative and brand agreed on tone."
		}`),
	}

	svc := NewConsensusService(arbiter)
	strategy := svc.Generate(context.Background(), sampleTriple())

	require.NotNil(t, strategy)
	assert.False(t, strategy.Degraded)
	require.Len(t, strategy.Hooks, 2)
	assert.Equal(t, "creative", strategy.Hooks[0].Source)
	assert.Equal(t, "The synthesized pivot.", strategy.CreativePivot)
}

func TestConsensusService_ArbiterFailureDegrades(t *testing.T) {
	arbiter := &fakeProvider{
		name:       "openai",
		configured: true,
		jsonFn: func(_, _ string, _ interface{}) error {
			return &client.ProviderError{Provider: "openai", Status: 500, Message: "arbiter down"}
		},
	}

	svc := NewConsensusService(arbiter)
	strategy := svc.Generate(context.Background(), sampleTriple())

	require.NotNil(t, strategy)
	assert.True(t, strategy.Degraded)
	assert.Equal(t, "Error generating consensus.", strategy.CreativePivot)
	assert.Contains(t, strategy.ConsensusNotes, "arbiter down")
	// Shape holds even when empty: slices, not nils.
	assert.NotNil(t, strategy.Hooks)
	assert.NotNil(t, strategy.Angles)
}

func TestConsensusService_FailedProposalsFlaggedInPrompt(t *testing.T) {
	var captured string
	arbiter := &fakeProvider{
		name:       "openai",
		configured: true,
		jsonFn: func(_, user string, out interface{}) error {
			captured = user
			return jsonReply(`{"hooks": [], "angles": [], "creative_pivot": "p", "consensus_notes": "n"}`)("", "", out)
		},
	}

	triple := sampleTriple()
	triple.Brand = model.AnalysisProposal{Source: model.AnalystBrand, Error: "timeout"}

	svc := NewConsensusService(arbiter)
	svc.Generate(context.Background(), triple)

	assert.Contains(t, captured, "this analyst failed: timeout")
	assert.Contains(t, captured, "Creative hook 1")
}

func TestMechanicalConsensus_AllProposalsContribute(t *testing.T) {
	svc := NewConsensusService(nil)
	strategy := svc.Generate(context.Background(), sampleTriple())

	assert.False(t, strategy.Degraded)
	assert.Len(t, strategy.Hooks, 5)
	assert.Len(t, strategy.Angles, 3)
	assert.Equal(t, "Creative pivot", strategy.CreativePivot)
	assert.Contains(t, strategy.ConsensusNotes, "all three proposals contributed")

	// Hooks keep their provenance.
	assert.Equal(t, model.AnalystCreative, strategy.Hooks[0].Source)
}

func TestMechanicalConsensus_PartialFailure(t *testing.T) {
	triple := sampleTriple()
	triple.Creative = model.AnalysisProposal{Source: model.AnalystCreative, Error: "boom"}

	svc := NewConsensusService(&fakeProvider{name: "openai", configured: false})
	strategy := svc.Generate(context.Background(), triple)

	assert.True(t, strategy.Degraded)
	assert.Contains(t, strategy.ConsensusNotes, "2 of 3")
	assert.Equal(t, "Brand pivot", strategy.CreativePivot)
	for _, hook := range strategy.Hooks {
		assert.NotEqual(t, model.AnalystCreative, hook.Source)
	}
}

func TestMechanicalConsensus_AllFailed(t *testing.T) {
	triple := &model.AnalysisTriple{
		Creative: model.AnalysisProposal{Source: model.AnalystCreative, Error: "a"},
		Brand:    model.AnalysisProposal{Source: model.AnalystBrand, Error: "b"},
		Market:   model.AnalysisProposal{Source: model.AnalystMarket, Error: "c"},
	}

	svc := NewConsensusService(nil)
	strategy := svc.Generate(context.Background(), triple)

	assert.True(t, strategy.Degraded)
	assert.Empty(t, strategy.Hooks)
	assert.Empty(t, strategy.Angles)
	assert.Equal(t, "Error generating consensus.", strategy.CreativePivot)
	assert.Contains(t, strategy.ConsensusNotes, "All three analysts failed")
}
