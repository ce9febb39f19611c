package domain

import "time"

// QualityRuleColumnCount is the single configured data-quality rule:
// the transformed schema must have at least one column.
const QualityRuleColumnCount = "ColumnCount > 0"

// QualityResult is the observable outcome of evaluating the quality rule
// for one run. It is metadata attached to the run, not a record filter:
// delivery proceeds whether or not the rule passed.
type QualityResult struct {
	Rule        string    `json:"rule"`
	Context     string    `json:"context"`
	Passed      bool      `json:"passed"`
	ColumnCount int       `json:"column_count"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// EvaluateColumnCount applies the column-count rule to the output schema.
// The rule can only fail for an empty mapping, which Validate rejects
// before any record is read, so a failure here signals misconfiguration
// rather than bad data.
func EvaluateColumnCount(schema Schema, context string) QualityResult {
	n := schema.ColumnCount()
	return QualityResult{
		Rule:        QualityRuleColumnCount,
		Context:     context,
		Passed:      n > 0,
		ColumnCount: n,
		EvaluatedAt: clock.Now(),
	}
}
