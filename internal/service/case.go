package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kyccase/internal/model"
	"kyccase/internal/repository"
	"kyccase/internal/storage"
)

// CreateCaseInput carries the externally settable fields of a new case.
type CreateCaseInput struct {
	ClientType          model.ClientType `json:"clientType"`
	ClientName          string           `json:"clientName"`
	DateOfBirth         *time.Time       `json:"dateOfBirth"`
	DateOfIncorporation *time.Time       `json:"dateOfIncorporation"`
	Country             string           `json:"country"`
	Nationality         string           `json:"nationality"`
	BusinessType        string           `json:"businessType"`
	Industry            string           `json:"industry"`
	SourceOfWealth      string           `json:"sourceOfWealth"`
}

// UpdateCaseInput is the PUT /cases/:id body. Only fields listed here are
// editable; id, caseNumber, createdAt and rmId are absent on purpose, so
// attempts to edit them are dropped during decoding rather than erroring.
type UpdateCaseInput struct {
	ClientType          *model.ClientType `json:"clientType"`
	ClientName          *string           `json:"clientName"`
	DateOfBirth         *time.Time        `json:"dateOfBirth"`
	DateOfIncorporation *time.Time        `json:"dateOfIncorporation"`
	Country             *string           `json:"country"`
	Nationality         *string           `json:"nationality"`
	BusinessType        *string           `json:"businessType"`
	Industry            *string           `json:"industry"`
	SourceOfWealth      *string           `json:"sourceOfWealth"`
}

// CaseListQuery carries the list filters exactly as the HTTP layer parses them.
type CaseListQuery struct {
	Search    string
	Status    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// CaseWithRM is a case plus the owning relationship manager reference,
// returned from create.
type CaseWithRM struct {
	model.Case
	RelationshipManager *model.UserRef `json:"relationshipManager,omitempty"`
}

// AISummaryRef is the slim analysis projection carried on list rows.
type AISummaryRef struct {
	RiskScore      int    `json:"riskScore"`
	Recommendation string `json:"recommendation"`
}

// CaseListItem is one list row: the case with its RM reference, the slim
// analysis projection and the number of uploaded documents.
type CaseListItem struct {
	model.Case
	RelationshipManager *model.UserRef `json:"relationshipManager,omitempty"`
	AISummary           *AISummaryRef  `json:"aiSummary,omitempty"`
	DocumentCount       int            `json:"documentCount"`
}

// CaseListResult is the service-level DTO for paginated cases.
type CaseListResult struct {
	Cases      []CaseListItem `json:"cases"`
	Pagination Pagination     `json:"pagination"`
}

// CaseDetail is a case with its owning user, documents and analysis summary.
type CaseDetail struct {
	model.Case
	RelationshipManager *model.UserRef         `json:"relationshipManager,omitempty"`
	Documents           []model.Document       `json:"documents"`
	AISummary           *model.AnalysisSummary `json:"aiSummary,omitempty"`
}

// CaseService owns the case lifecycle: creation, edits, the status state
// machine with approval/rejection stamping, and cascade deletion.
type CaseService interface {
	Create(ctx context.Context, in CreateCaseInput, rmID string) (*CaseWithRM, error)
	List(ctx context.Context, q CaseListQuery) (*CaseListResult, error)
	Get(ctx context.Context, id string) (*CaseDetail, error)
	Update(ctx context.Context, id string, in UpdateCaseInput) (*model.Case, error)
	UpdateStatus(ctx context.Context, id string, status model.CaseStatus, actorID string) (*model.Case, error)
	Delete(ctx context.Context, id string) error
}

type caseService struct {
	cases     repository.CaseRepository
	documents repository.DocumentRepository
	summaries repository.SummaryRepository
	users     repository.UserRepository
	store     storage.Storage
	now       func() time.Time
}

// NewCaseService constructs a CaseService.
func NewCaseService(
	cases repository.CaseRepository,
	documents repository.DocumentRepository,
	summaries repository.SummaryRepository,
	users repository.UserRepository,
	store storage.Storage,
) CaseService {
	return &caseService{
		cases:     cases,
		documents: documents,
		summaries: summaries,
		users:     users,
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// caseNumberPrefix + year + zero-padded sequence value, e.g. KYC-2026-00042.
const caseNumberPrefix = "KYC"

func (s *caseService) Create(ctx context.Context, in CreateCaseInput, rmID string) (*CaseWithRM, error) {
	if in.ClientType == "" || in.ClientName == "" || in.Country == "" {
		return nil, ErrMissingFields
	}
	if !model.ValidClientType(in.ClientType) {
		return nil, ErrInvalidClientType
	}
	if in.ClientType == model.ClientIndividual && in.DateOfIncorporation != nil {
		return nil, ErrClientDateConflict
	}
	if in.ClientType == model.ClientCorporate && in.DateOfBirth != nil {
		return nil, ErrClientDateConflict
	}

	seq, err := s.cases.NextCaseNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate case number: %w", err)
	}
	now := s.now()

	c := &model.Case{
		ID:                  uuid.NewString(),
		CaseNumber:          fmt.Sprintf("%s-%d-%05d", caseNumberPrefix, now.Year(), seq),
		ClientType:          in.ClientType,
		ClientName:          in.ClientName,
		DateOfBirth:         in.DateOfBirth,
		DateOfIncorporation: in.DateOfIncorporation,
		Country:             in.Country,
		Nationality:         in.Nationality,
		BusinessType:        in.BusinessType,
		Industry:            in.Industry,
		SourceOfWealth:      in.SourceOfWealth,
		Status:              model.StatusPending,
		RMID:                rmID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	created, err := s.cases.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	out := &CaseWithRM{Case: *created}
	if rm, err := s.users.FindByID(ctx, created.RMID); err == nil {
		ref := rm.Ref()
		out.RelationshipManager = &ref
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return out, nil
}

func (s *caseService) List(ctx context.Context, q CaseListQuery) (*CaseListResult, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}

	res, err := s.cases.List(ctx, repository.CaseQuery{
		Search:    q.Search,
		Status:    model.CaseStatus(q.Status),
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Limit:     q.Limit,
		Offset:    (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]CaseListItem, 0, len(res.Items))
	for _, row := range res.Items {
		it := CaseListItem{Case: row.Case, DocumentCount: row.DocumentCount}
		if row.Case.RMID != "" {
			it.RelationshipManager = &model.UserRef{ID: row.Case.RMID, Name: row.RMName, Email: row.RMEmail}
		}
		if row.SummaryRiskScore != nil && row.SummaryRecommendation != nil {
			it.AISummary = &AISummaryRef{
				RiskScore:      *row.SummaryRiskScore,
				Recommendation: *row.SummaryRecommendation,
			}
		}
		items = append(items, it)
	}

	totalPages := res.Total / q.Limit
	if res.Total%q.Limit != 0 {
		totalPages++
	}
	return &CaseListResult{
		Cases: items,
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      res.Total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *caseService) Get(ctx context.Context, id string) (*CaseDetail, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	c, err := s.cases.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	detail := &CaseDetail{Case: *c}

	if rm, err := s.users.FindByID(ctx, c.RMID); err == nil {
		ref := rm.Ref()
		detail.RelationshipManager = &ref
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	docs, err := s.documents.ListByCase(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Documents = docs

	if sum, err := s.summaries.FindByCaseID(ctx, id); err == nil {
		detail.AISummary = sum
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return detail, nil
}

func (s *caseService) Update(ctx context.Context, id string, in UpdateCaseInput) (*model.Case, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if in.ClientType != nil && !model.ValidClientType(*in.ClientType) {
		return nil, ErrInvalidClientType
	}

	out, err := s.cases.Update(ctx, id, repository.CasePatch{
		ClientType:          in.ClientType,
		ClientName:          in.ClientName,
		DateOfBirth:         in.DateOfBirth,
		DateOfIncorporation: in.DateOfIncorporation,
		Country:             in.Country,
		Nationality:         in.Nationality,
		BusinessType:        in.BusinessType,
		Industry:            in.Industry,
		SourceOfWealth:      in.SourceOfWealth,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return out, nil
}

func (s *caseService) UpdateStatus(ctx context.Context, id string, status model.CaseStatus, actorID string) (*model.Case, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if !model.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if status == model.StatusAIReady {
		return nil, ErrStatusAnalyzerOnly
	}

	current, err := s.cases.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	switch status {
	case model.StatusPending:
		// pending is the initial state only, never a transition target.
		return nil, ErrInvalidTransition
	case model.StatusInReview:
		if current.Status != model.StatusPending && current.Status != model.StatusAIReady {
			return nil, ErrInvalidTransition
		}
	case model.StatusApproved, model.StatusRejected:
		// Reachable from anywhere, including re-review of a decided case;
		// the new decision stamps its own pair and leaves the other as-is.
	}

	return s.cases.UpdateStatus(ctx, id, repository.StatusChange{
		Status:  status,
		ActorID: actorID,
		At:      s.now(),
	})
}

func (s *caseService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}

	// Remove stored objects first, best effort: the DB cascade drops the
	// document rows, so a failed object delete only leaves unreferenced
	// bytes, which we log rather than escalate.
	docs, err := s.documents.ListByCase(ctx, id)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := s.store.Delete(ctx, d.StoragePath); err != nil {
			logEvent(map[string]any{
				"level":     "error",
				"component": "case_service",
				"event":     "orphan_object_cleanup_failed",
				"case_id":   id,
				"key":       d.StoragePath,
				"error":     err.Error(),
			})
		}
	}

	if err := s.cases.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCaseNotFound
		}
		return err
	}
	return nil
}
