package repository

import (
	"context"

	"kyccase/internal/model"
)

// SummaryRepository defines data access for analysis summaries.
type SummaryRepository interface {
	// FindByCaseID returns the case's summary, or sql.ErrNoRows.
	FindByCaseID(ctx context.Context, caseID string) (*model.AnalysisSummary, error)

	// ReplaceForCase upserts the summary for its case (unique on case_id)
	// and, in the same transaction, sets the owning case's status to
	// ai_ready and mirrors the risk score onto it. A reader never observes
	// one write without the other. Returns sql.ErrNoRows if the case is
	// absent; re-delivery updates the existing row in place.
	ReplaceForCase(ctx context.Context, s *model.AnalysisSummary) (*model.AnalysisSummary, error)
}
