package model

// Angle is one creative direction within a proposal.
type Angle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VisualIdea  string `json:"visual_idea,omitempty"`
}

// VisualConcept is a visual direction requested from the creative analyst.
type VisualConcept struct {
	ConceptName    string `json:"concept_name"`
	Description    string `json:"description"`
	StyleReference string `json:"style_reference"`
}

// BrandVoice defines the recommended tone for the brand.
type BrandVoice struct {
	Tone       string   `json:"tone"`
	Keywords   []string `json:"keywords"`
	Guidelines []string `json:"guidelines"`
}

// CampaignConcept is a high-level campaign idea.
type CampaignConcept struct {
	Name      string `json:"name"`
	Tagline   string `json:"tagline"`
	Narrative string `json:"narrative"`
}

// AnalysisProposal is one analyst's independent strategy. Source identifies
// the persona. A failed analyst still yields a proposal, with Error set and
// the creative fields empty.
type AnalysisProposal struct {
	Source        string  `json:"source"`
	Hooks         []string `json:"hooks"`
	Angles        []Angle  `json:"angles"`
	CreativePivot string   `json:"creative_pivot"`

	// Full-depth fields, requested from the creative analyst only.
	VisualConcepts   []VisualConcept   `json:"visual_concepts,omitempty"`
	BrandVoice       *BrandVoice       `json:"brand_voice,omitempty"`
	CampaignConcepts []CampaignConcept `json:"campaign_concepts,omitempty"`

	Error string `json:"error,omitempty"`
}

// Failed reports whether the analyst call behind this proposal errored.
func (p AnalysisProposal) Failed() bool { return p.Error != "" }

// AnalysisTriple holds the three independent proposals, one fixed slot per
// analyst persona.
type AnalysisTriple struct {
	Creative AnalysisProposal `json:"creative_analysis"`
	Brand    AnalysisProposal `json:"brand_analysis"`
	Market   AnalysisProposal `json:"market_analysis"`
}

// Proposals returns the triple in stable persona order.
func (t AnalysisTriple) Proposals() []AnalysisProposal {
	return []AnalysisProposal{t.Creative, t.Brand, t.Market}
}

// SourcedHook is a hook labeled with the proposal it came from.
type SourcedHook struct {
	Hook   string `json:"hook"`
	Source string `json:"source"`
}

// ConsensusStrategy is the final merged strategy. Degraded marks a strategy
// produced on the arbiter-failure path; the shape is identical either way.
type ConsensusStrategy struct {
	Hooks          []SourcedHook `json:"hooks"`
	Angles         []Angle       `json:"angles"`
	CreativePivot  string        `json:"creative_pivot"`
	ConsensusNotes string        `json:"consensus_notes"`
	Degraded       bool          `json:"degraded,omitempty"`
}
