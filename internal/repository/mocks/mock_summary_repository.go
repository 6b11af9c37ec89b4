package mocks

import (
	"context"

	"kyccase/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockSummaryRepository struct {
	mock.Mock
}

func (m *MockSummaryRepository) FindByCaseID(ctx context.Context, caseID string) (*model.AnalysisSummary, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisSummary), args.Error(1)
}

func (m *MockSummaryRepository) ReplaceForCase(ctx context.Context, s *model.AnalysisSummary) (*model.AnalysisSummary, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisSummary), args.Error(1)
}
