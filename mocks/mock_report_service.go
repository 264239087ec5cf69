package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medreport/internal/domain"
	"medreport/internal/service"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Structure(ctx context.Context, input service.StructureInput) (*domain.StructuredReport, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StructuredReport), args.Error(1)
}

func (m *MockReportService) Extract(ctx context.Context, input service.ExtractInput) (*domain.ExtractionAnalysis, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionAnalysis), args.Error(1)
}

func (m *MockReportService) ReportTypes() []domain.ReportType {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.ReportType)
}
