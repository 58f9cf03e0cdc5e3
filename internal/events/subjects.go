package events

const (
	StreamName   = "FITSCORE_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectScoreComputed(scoreID string) string { return "ma.score." + scoreID + ".computed" }

func SubjectDecisionRecorded(decisionID string) string {
	return "ma.decision." + decisionID + ".recorded"
}

func SubjectAdjustmentsRecalculated(dealID string) string {
	return "ma.adjustments." + dealID + ".recalculated"
}
