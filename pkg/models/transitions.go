package models

// allowedEdges is the candidate status transition table. Forward edges follow
// the single directed path; the marketplace fork is only reachable through an
// explicit reject decision, never a plain status set.
var allowedEdges = map[CandidateStatus][]CandidateStatus{
	StatusScored:        {StatusInvited},
	StatusInvited:       {StatusScheduled},
	StatusScheduled:     {StatusInterviewDone},
	StatusInterviewDone: {StatusEvaluated, StatusMarketplace},
	StatusEvaluated:     {StatusDecided, StatusMarketplace},
}

// CanTransition reports whether the edge from -> to is in the transition table
func CanTransition(from, to CandidateStatus) bool {
	for _, next := range allowedEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given status
func NextStatuses(from CandidateStatus) []CandidateStatus {
	return allowedEdges[from]
}
