package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kyccase/internal/analyzer"
	"kyccase/internal/model"
	"kyccase/internal/repository"
)

// IngestInput is the analyzer webhook body: a finished analysis result.
type IngestInput struct {
	CaseID         string   `json:"caseId"`
	RiskScore      int      `json:"riskScore"`
	Summary        string   `json:"summary"`
	RedFlags       []string `json:"redFlags"`
	MissingInfo    []string `json:"missingInfo"`
	Recommendation string   `json:"recommendation"`
	ProcessingTime *int     `json:"processingTime"`
	ModelUsed      string   `json:"modelUsed"`
}

// AnalysisService drives the external screening analyzer: outbound triggers
// and inbound result ingestion.
type AnalysisService interface {
	Trigger(ctx context.Context, caseID string) error
	Ingest(ctx context.Context, in IngestInput) (*model.AnalysisSummary, error)
	Summary(ctx context.Context, caseID string) (*model.AnalysisSummary, error)
}

type analysisService struct {
	cases     repository.CaseRepository
	documents repository.DocumentRepository
	summaries repository.SummaryRepository
	client    analyzer.Client
}

// NewAnalysisService constructs an AnalysisService.
func NewAnalysisService(
	cases repository.CaseRepository,
	documents repository.DocumentRepository,
	summaries repository.SummaryRepository,
	client analyzer.Client,
) AnalysisService {
	return &analysisService{
		cases:     cases,
		documents: documents,
		summaries: summaries,
		client:    client,
	}
}

func (s *analysisService) Trigger(ctx context.Context, caseID string) error {
	if caseID == "" {
		return ErrIDRequired
	}
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCaseNotFound
		}
		return err
	}

	reports, err := s.documents.FindByCaseAndType(ctx, caseID, model.DocTypeScreeningReport)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return ErrNoScreeningReport
	}
	// Newest report first, same ordering the repository lists by.
	report := reports[0]

	payload := analyzer.TriggerPayload{
		CaseID:         c.ID,
		CaseNumber:     c.CaseNumber,
		ClientName:     c.ClientName,
		ClientType:     string(c.ClientType),
		Country:        c.Country,
		BusinessType:   c.BusinessType,
		Industry:       c.Industry,
		SourceOfWealth: c.SourceOfWealth,
		ScreeningReport: analyzer.ScreeningReportRef{
			ID:          report.ID,
			FileName:    report.FileName,
			StoragePath: report.StoragePath,
			MimeType:    report.MimeType,
		},
	}
	if err := s.client.Trigger(ctx, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrAnalysisTrigger, err)
	}
	return nil
}

func (s *analysisService) Ingest(ctx context.Context, in IngestInput) (*model.AnalysisSummary, error) {
	if in.CaseID == "" || in.Summary == "" || in.Recommendation == "" {
		return nil, ErrMissingResultFields
	}
	if in.RiskScore < 1 || in.RiskScore > 5 {
		return nil, ErrInvalidRiskScore
	}

	sum := &model.AnalysisSummary{
		ID:             uuid.NewString(),
		RiskScore:      in.RiskScore,
		Summary:        in.Summary,
		RedFlags:       in.RedFlags,
		MissingInfo:    in.MissingInfo,
		Recommendation: in.Recommendation,
		ProcessingTime: in.ProcessingTime,
		ModelUsed:      in.ModelUsed,
		ProcessedAt:    time.Now().UTC(),
		CaseID:         in.CaseID,
	}
	out, err := s.summaries.ReplaceForCase(ctx, sum)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return out, nil
}

func (s *analysisService) Summary(ctx context.Context, caseID string) (*model.AnalysisSummary, error) {
	if caseID == "" {
		return nil, ErrIDRequired
	}
	sum, err := s.summaries.FindByCaseID(ctx, caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSummaryNotFound
		}
		return nil, err
	}
	return sum, nil
}
