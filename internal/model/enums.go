package model

// Job status
type JobStatus string

const (
	JobStatusPending     JobStatus = "pending"
	JobStatusApproved    JobStatus = "approved"
	JobStatusResearching JobStatus = "researching"
	JobStatusAnalyzing   JobStatus = "analyzing"
	JobStatusConsensus   JobStatus = "consensus"
	JobStatusCompleted   JobStatus = "completed"
	JobStatusFailed      JobStatus = "failed"
)

// validTransitions is the complete edge set of the job state machine.
// The success path is linear; failed is reachable from every non-terminal
// state and, like completed, has no outgoing edges.
var validTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:     {JobStatusApproved, JobStatusFailed},
	JobStatusApproved:    {JobStatusResearching, JobStatusFailed},
	JobStatusResearching: {JobStatusAnalyzing, JobStatusFailed},
	JobStatusAnalyzing:   {JobStatusConsensus, JobStatusFailed},
	JobStatusConsensus:   {JobStatusCompleted, JobStatusFailed},
	JobStatusCompleted:   {},
	JobStatusFailed:      {},
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s JobStatus) CanTransition(next JobStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing edges.
func (s JobStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Research confidence labels
type Confidence string

const (
	ConfidenceHigh        Confidence = "high"
	ConfidenceMedium      Confidence = "medium"
	ConfidenceLow         Confidence = "low"
	ConfidenceUnavailable Confidence = "unavailable"
)

// Analyst sources. Each analysis proposal is tagged with the persona that
// produced it so consensus output can cite provenance.
const (
	AnalystCreative = "creative"
	AnalystBrand    = "brand"
	AnalystMarket   = "market_intelligence"
)

// Research sources
const (
	ResearchSourceMarket   = "market"
	ResearchSourceCreative = "creative"
)
