package model

import "time"

// AnalysisSummary holds the analyzer's risk assessment for a case.
// At most one exists per case (unique on CaseID); ingestion replaces it
// wholesale on re-delivery.
type AnalysisSummary struct {
	ID             string    `json:"id"`
	RiskScore      int       `json:"riskScore"`
	Summary        string    `json:"summary"`
	RedFlags       []string  `json:"redFlags"`
	MissingInfo    []string  `json:"missingInfo"`
	Recommendation string    `json:"recommendation"`
	ProcessingTime *int      `json:"processingTime,omitempty"`
	ModelUsed      string    `json:"modelUsed,omitempty"`
	ProcessedAt    time.Time `json:"processedAt"`
	CaseID         string    `json:"caseId"`
}
