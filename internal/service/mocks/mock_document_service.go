package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"kyccase/internal/model"
	"kyccase/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadDocumentInput) (*model.Document, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Open(ctx context.Context, id string) (*model.Document, io.ReadCloser, error) {
	args := m.Called(ctx, id)
	var doc *model.Document
	if args.Get(0) != nil {
		doc = args.Get(0).(*model.Document)
	}
	var rc io.ReadCloser
	if args.Get(1) != nil {
		rc = args.Get(1).(io.ReadCloser)
	}
	return doc, rc, args.Error(2)
}

func (m *MockDocumentService) ListByCase(ctx context.Context, caseID string) ([]model.Document, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
