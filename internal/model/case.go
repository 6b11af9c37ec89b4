package model

import "time"

// Case is the central aggregate: one KYC onboarding review for a client.
// It owns its Documents and its AnalysisSummary (cascade on delete);
// rmId and the approval stamps reference Users without owning them.
type Case struct {
	ID                  string     `json:"id"`
	CaseNumber          string     `json:"caseNumber"`
	ClientType          ClientType `json:"clientType"`
	ClientName          string     `json:"clientName"`
	DateOfBirth         *time.Time `json:"dateOfBirth,omitempty"`
	DateOfIncorporation *time.Time `json:"dateOfIncorporation,omitempty"`
	Country             string     `json:"country"`
	Nationality         string     `json:"nationality,omitempty"`
	BusinessType        string     `json:"businessType,omitempty"`
	Industry            string     `json:"industry,omitempty"`
	SourceOfWealth      string     `json:"sourceOfWealth,omitempty"`
	Status              CaseStatus `json:"status"`
	RiskScore           *int       `json:"riskScore"`
	RMID                string     `json:"rmId"`
	ApprovedAt          *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy          *string    `json:"approvedBy,omitempty"`
	RejectedAt          *time.Time `json:"rejectedAt,omitempty"`
	RejectedBy          *string    `json:"rejectedBy,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}
