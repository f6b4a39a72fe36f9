package model

// ResearchFinding is the outcome of a single topic query. Failed queries are
// recorded in place with Errored set; they never abort the surrounding stage.
type ResearchFinding struct {
	Query   string `json:"query"`
	Content string `json:"content"`
	Errored bool   `json:"errored,omitempty"`
}

// ResearchResult maps topic categories to their findings for one research
// source.
type ResearchResult map[string]ResearchFinding

// ConsolidatedResearch is the canonical merged research document. The four
// sections are fixed; only their content varies.
type ConsolidatedResearch struct {
	MarketReality          string     `json:"market_reality"`
	ConsumerVoice          string     `json:"consumer_voice"`
	CreativeLandscape      string     `json:"creative_landscape"`
	StrategicOpportunities string     `json:"strategic_opportunities"`
	Contradictions         []string   `json:"contradictions,omitempty"`
	Confidence             Confidence `json:"confidence"`
}
