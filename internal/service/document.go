package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"kyccase/internal/model"
	"kyccase/internal/repository"
	"kyccase/internal/storage"
)

// UploadDocumentInput carries one uploaded file and its declared type.
type UploadDocumentInput struct {
	CaseID       string
	DocumentType model.DocumentType
	FileName     string
	MimeType     string
	Size         int64
	Reader       io.Reader
}

// DocumentService stores uploaded evidence files and their metadata rows,
// keeping the two in step.
type DocumentService interface {
	Upload(ctx context.Context, in UploadDocumentInput) (*model.Document, error)
	Get(ctx context.Context, id string) (*model.Document, error)
	Open(ctx context.Context, id string) (*model.Document, io.ReadCloser, error)
	ListByCase(ctx context.Context, caseID string) ([]model.Document, error)
	Delete(ctx context.Context, id string) error
}

type documentService struct {
	documents repository.DocumentRepository
	cases     repository.CaseRepository
	store     storage.Storage
	analysis  AnalysisService
}

// NewDocumentService constructs a DocumentService. analysis may be nil; then
// screening report uploads do not auto-trigger analysis.
func NewDocumentService(
	documents repository.DocumentRepository,
	cases repository.CaseRepository,
	store storage.Storage,
	analysis AnalysisService,
) DocumentService {
	return &documentService{
		documents: documents,
		cases:     cases,
		store:     store,
		analysis:  analysis,
	}
}

func (s *documentService) Upload(ctx context.Context, in UploadDocumentInput) (*model.Document, error) {
	// Validate everything before touching the object store so a rejected
	// request never leaves bytes behind.
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if in.CaseID == "" {
		return nil, ErrIDRequired
	}
	if !model.ValidDocumentType(in.DocumentType) {
		return nil, ErrInvalidDocumentType
	}

	if _, err := s.cases.FindByID(ctx, in.CaseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("cases/%s/%s%s", in.CaseID, uuid.NewString(), filepath.Ext(in.FileName))
	if _, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.MimeType,
		Metadata:    map[string]string{"original-filename": in.FileName},
	}); err != nil {
		return nil, fmt.Errorf("store object: %w", err)
	}

	doc := &model.Document{
		ID:           uuid.NewString(),
		DocumentType: in.DocumentType,
		FileName:     in.FileName,
		StoragePath:  key,
		FileSize:     in.Size,
		MimeType:     in.MimeType,
		UploadedAt:   time.Now().UTC(),
		CaseID:       in.CaseID,
	}
	created, err := s.documents.Create(ctx, doc)
	if err != nil {
		// Compensate: the object exists but the row does not, remove it so
		// the store holds no unreferenced keys.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logEvent(map[string]any{
				"level":     "error",
				"component": "document_service",
				"event":     "compensating_delete_failed",
				"key":       key,
				"error":     delErr.Error(),
			})
		}
		return nil, err
	}

	if in.DocumentType == model.DocTypeScreeningReport && s.analysis != nil {
		if err := s.analysis.Trigger(ctx, in.CaseID); err != nil {
			// Auto-trigger is best effort; the upload already succeeded and
			// the analyzer can be retried explicitly.
			logEvent(map[string]any{
				"level":     "warn",
				"component": "document_service",
				"event":     "analysis_trigger_failed",
				"case_id":   in.CaseID,
				"error":     err.Error(),
			})
		}
	}

	return created, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Open(ctx context.Context, id string) (*model.Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open object: %w", err)
	}
	return doc, rc, nil
}

func (s *documentService) ListByCase(ctx context.Context, caseID string) ([]model.Document, error) {
	if caseID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return s.documents.ListByCase(ctx, caseID)
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDocumentNotFound
		}
		return err
	}
	return nil
}
