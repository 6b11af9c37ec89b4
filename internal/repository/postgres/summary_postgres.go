package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"kyccase/internal/model"
	"kyccase/internal/repository"
)

// SummaryPostgres is a PostgreSQL implementation of repository.SummaryRepository.
type SummaryPostgres struct {
	db *sql.DB
}

// NewSummaryPostgres creates a new SummaryPostgres repository.
func NewSummaryPostgres(db *sql.DB) *SummaryPostgres {
	return &SummaryPostgres{db: db}
}

var _ repository.SummaryRepository = (*SummaryPostgres)(nil)

const summaryColumns = `id, risk_score, summary, red_flags, missing_info, recommendation, processing_time, model_used, processed_at, case_id`

func scanSummary(row rowScanner) (*model.AnalysisSummary, error) {
	var (
		s           model.AnalysisSummary
		redFlags    []byte
		missingInfo []byte
		modelUsed   sql.NullString
	)
	if err := row.Scan(
		&s.ID,
		&s.RiskScore,
		&s.Summary,
		&redFlags,
		&missingInfo,
		&s.Recommendation,
		&s.ProcessingTime,
		&modelUsed,
		&s.ProcessedAt,
		&s.CaseID,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(redFlags, &s.RedFlags); err != nil {
		return nil, fmt.Errorf("decode red_flags: %w", err)
	}
	if err := json.Unmarshal(missingInfo, &s.MissingInfo); err != nil {
		return nil, fmt.Errorf("decode missing_info: %w", err)
	}
	s.ModelUsed = modelUsed.String
	return &s, nil
}

// FindByCaseID fetches the summary for a case.
func (r *SummaryPostgres) FindByCaseID(ctx context.Context, caseID string) (*model.AnalysisSummary, error) {
	q := `SELECT ` + summaryColumns + ` FROM ai_summaries WHERE case_id = $1`
	return scanSummary(r.db.QueryRowContext(ctx, q, caseID))
}

// ReplaceForCase upserts the summary and advances the owning case to
// ai_ready in a single transaction. Either both writes commit or neither.
func (r *SummaryPostgres) ReplaceForCase(ctx context.Context, s *model.AnalysisSummary) (*model.AnalysisSummary, error) {
	redFlags, err := json.Marshal(sliceOrEmpty(s.RedFlags))
	if err != nil {
		return nil, fmt.Errorf("encode red_flags: %w", err)
	}
	missingInfo, err := json.Marshal(sliceOrEmpty(s.MissingInfo))
	if err != nil {
		return nil, fmt.Errorf("encode missing_info: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE cases SET status = $1, risk_score = $2, updated_at = now() WHERE id = $3`,
		model.StatusAIReady, s.RiskScore, s.CaseID,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, sql.ErrNoRows
	}

	q := `
		INSERT INTO ai_summaries (id, risk_score, summary, red_flags, missing_info, recommendation,
			processing_time, model_used, processed_at, case_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (case_id) DO UPDATE SET
			risk_score = EXCLUDED.risk_score,
			summary = EXCLUDED.summary,
			red_flags = EXCLUDED.red_flags,
			missing_info = EXCLUDED.missing_info,
			recommendation = EXCLUDED.recommendation,
			processing_time = EXCLUDED.processing_time,
			model_used = EXCLUDED.model_used,
			processed_at = EXCLUDED.processed_at
		RETURNING ` + summaryColumns
	row := tx.QueryRowContext(ctx, q,
		s.ID,
		s.RiskScore,
		s.Summary,
		redFlags,
		missingInfo,
		s.Recommendation,
		s.ProcessingTime,
		nullIfEmpty(s.ModelUsed),
		s.ProcessedAt,
		s.CaseID,
	)
	out, err := scanSummary(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
