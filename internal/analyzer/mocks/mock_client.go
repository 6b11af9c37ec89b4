package mocks

import (
	"context"

	"kyccase/internal/analyzer"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Trigger(ctx context.Context, p analyzer.TriggerPayload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
