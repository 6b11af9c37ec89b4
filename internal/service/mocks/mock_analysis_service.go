package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kyccase/internal/model"
	"kyccase/internal/service"
)

type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Trigger(ctx context.Context, caseID string) error {
	args := m.Called(ctx, caseID)
	return args.Error(0)
}

func (m *MockAnalysisService) Ingest(ctx context.Context, in service.IngestInput) (*model.AnalysisSummary, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisSummary), args.Error(1)
}

func (m *MockAnalysisService) Summary(ctx context.Context, caseID string) (*model.AnalysisSummary, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisSummary), args.Error(1)
}
