package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medreport/internal/domain"
	"medreport/internal/port"
)

// MockDiagnosticCoder is a mock implementation of port.DiagnosticCoder.
type MockDiagnosticCoder struct {
	mock.Mock
}

func (m *MockDiagnosticCoder) PredictCodes(ctx context.Context, req port.CodeRequest) (*domain.DiagnosticCodes, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiagnosticCodes), args.Error(1)
}

func (m *MockDiagnosticCoder) GetFallbackCodes(ctx context.Context, req port.CodeRequest) (*domain.DiagnosticCodes, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiagnosticCodes), args.Error(1)
}
