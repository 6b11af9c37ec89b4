package mocks

import (
	"context"

	"kyccase/internal/model"
	"kyccase/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockCaseRepository struct {
	mock.Mock
}

func (m *MockCaseRepository) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	args := m.Called(ctx, c)
	if f, ok := args.Get(0).(func(context.Context, *model.Case) *model.Case); ok {
		return f(ctx, c), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseRepository) NextCaseNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCaseRepository) FindByID(ctx context.Context, id string) (*model.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseRepository) List(ctx context.Context, q repository.CaseQuery) (*repository.PageResult[repository.CaseListRow], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[repository.CaseListRow]), args.Error(1)
}

func (m *MockCaseRepository) Update(ctx context.Context, id string, p repository.CasePatch) (*model.Case, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseRepository) UpdateStatus(ctx context.Context, id string, ch repository.StatusChange) (*model.Case, error) {
	args := m.Called(ctx, id, ch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
