package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kyccase/internal/model"
	"kyccase/internal/service"
)

type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) Create(ctx context.Context, in service.CreateCaseInput, rmID string) (*service.CaseWithRM, error) {
	args := m.Called(ctx, in, rmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CaseWithRM), args.Error(1)
}

func (m *MockCaseService) List(ctx context.Context, q service.CaseListQuery) (*service.CaseListResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CaseListResult), args.Error(1)
}

func (m *MockCaseService) Get(ctx context.Context, id string) (*service.CaseDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CaseDetail), args.Error(1)
}

func (m *MockCaseService) Update(ctx context.Context, id string, in service.UpdateCaseInput) (*model.Case, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseService) UpdateStatus(ctx context.Context, id string, status model.CaseStatus, actorID string) (*model.Case, error) {
	args := m.Called(ctx, id, status, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
