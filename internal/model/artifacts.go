package model

import "fmt"

// Artifact names. Each stage overwrites its own key; there is never more than
// one artifact of a given name per job.
const (
	ArtifactQuestionnaire    = "questionnaire.json"
	ArtifactMarketResearch   = "research_market.json"
	ArtifactCreativeResearch = "research_creative.json"
	ArtifactConsolidated     = "research_consolidated.json"
	ArtifactAnalysisTriple   = "analysis_raw_triple.json"
	ArtifactAnalysis         = "analysis.json"
	ArtifactSlides           = "slides.json"
	ArtifactPresentation     = "presentation.pptx"
)

// ArtifactKey returns the storage key for a job artifact. Jobs get disjoint
// key namespaces, so concurrent jobs never contend on a key.
func ArtifactKey(jobID, name string) string {
	return fmt.Sprintf("jobs/%s/%s", jobID, name)
}
