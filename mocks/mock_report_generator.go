package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medreport/internal/port"
)

// MockReportGenerator is a mock implementation of port.ReportGenerator.
type MockReportGenerator struct {
	mock.Mock
}

func (m *MockReportGenerator) GenerateReport(ctx context.Context, input port.GenerateReportInput) (*port.GeneratedReport, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GeneratedReport), args.Error(1)
}

func (m *MockReportGenerator) GenerateResponse(ctx context.Context, prompt string, opts port.GenerationOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}
