package model

// Package model contains domain models/data structures.
// Pure data types shared across layers; no business logic here.

// CaseStatus is the lifecycle status of a Case.
type CaseStatus string

const (
	StatusPending  CaseStatus = "pending"
	StatusAIReady  CaseStatus = "ai_ready"
	StatusInReview CaseStatus = "in_review"
	StatusApproved CaseStatus = "approved"
	StatusRejected CaseStatus = "rejected"
)

// CaseStatuses lists every valid case status.
var CaseStatuses = []CaseStatus{
	StatusPending,
	StatusAIReady,
	StatusInReview,
	StatusApproved,
	StatusRejected,
}

// ValidStatus reports whether s is one of the enumerated case statuses.
func ValidStatus(s CaseStatus) bool {
	for _, v := range CaseStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// DocumentType classifies uploaded evidence files.
type DocumentType string

const (
	DocTypePassport        DocumentType = "passport"
	DocTypeBRCert          DocumentType = "br_cert"
	DocTypeAddressProof    DocumentType = "address_proof"
	DocTypeScreeningReport DocumentType = "screening_report"
	DocTypeOther           DocumentType = "other"
)

// DocumentTypes lists every valid document type.
var DocumentTypes = []DocumentType{
	DocTypePassport,
	DocTypeBRCert,
	DocTypeAddressProof,
	DocTypeScreeningReport,
	DocTypeOther,
}

// ValidDocumentType reports whether t is one of the enumerated document types.
func ValidDocumentType(t DocumentType) bool {
	for _, v := range DocumentTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ClientType distinguishes individual from corporate clients.
type ClientType string

const (
	ClientIndividual ClientType = "individual"
	ClientCorporate  ClientType = "corporate"
)

// ValidClientType reports whether t is a known client type.
func ValidClientType(t ClientType) bool {
	return t == ClientIndividual || t == ClientCorporate
}
