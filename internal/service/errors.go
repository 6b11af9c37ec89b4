package service

import "errors"

// Sentinel errors returned by the service layer. The HTTP boundary maps
// these onto status codes; nothing below this layer leaks upward.
var (
	ErrIDRequired = errors.New("id is required")
	ErrReaderNil  = errors.New("reader is nil")

	ErrCaseNotFound     = errors.New("case not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrSummaryNotFound  = errors.New("analysis summary not found")
	ErrUserNotFound     = errors.New("user not found")

	ErrMissingFields      = errors.New("missing required fields: clientType, clientName, country")
	ErrInvalidClientType  = errors.New("clientType must be individual or corporate")
	ErrClientDateConflict = errors.New("dateOfBirth applies to individuals, dateOfIncorporation to corporates")

	// Status transition failures. ErrInvalidStatus means the value is not in
	// the enumerated set; ErrInvalidTransition means the value is known but
	// not reachable from the current state; ErrStatusAnalyzerOnly guards
	// ai_ready, which only analysis ingestion may produce.
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidTransition  = errors.New("status not reachable from current state")
	ErrStatusAnalyzerOnly = errors.New("ai_ready is set by analysis ingestion only")

	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrNoScreeningReport   = errors.New("no screening report uploaded for this case")

	ErrMissingResultFields = errors.New("missing required fields: caseId, riskScore, summary, recommendation")
	ErrInvalidRiskScore    = errors.New("riskScore must be between 1 and 5")
	ErrAnalysisTrigger     = errors.New("failed to trigger analysis")

	ErrUserExists         = errors.New("user with this email or username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
