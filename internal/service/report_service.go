package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
	"medreport/internal/specialization"
)

// DefaultMaxTextBytes bounds report text when no limit is configured.
const DefaultMaxTextBytes = 200000

// StructureInput is the DTO for structuring one report.
type StructureInput struct {
	Text       string
	ReportType domain.ReportType
	Language   string
	Metadata   map[string]any
}

// ExtractInput is the DTO for a deterministic span analysis.
type ExtractInput struct {
	Text string
}

// ReportService structures report texts and exposes the deterministic span analysis.
type ReportService interface {
	Structure(ctx context.Context, input StructureInput) (*domain.StructuredReport, error)
	Extract(ctx context.Context, input ExtractInput) (*domain.ExtractionAnalysis, error)
	ReportTypes() []domain.ReportType
}

type reportService struct {
	registry     *specialization.Registry
	maxTextBytes int
	logger       zerolog.Logger
}

// NewReportService creates a ReportService dispatching to the parsers in registry.
func NewReportService(registry *specialization.Registry, maxTextBytes int, logger zerolog.Logger) ReportService {
	if maxTextBytes <= 0 {
		maxTextBytes = DefaultMaxTextBytes
	}
	return &reportService{
		registry:     registry,
		maxTextBytes: maxTextBytes,
		logger:       logger.With().Str("component", "report_service").Logger(),
	}
}

func (s *reportService) Structure(ctx context.Context, input StructureInput) (*domain.StructuredReport, error) {
	if err := s.validateText(input.Text); err != nil {
		return nil, err
	}
	reportType := input.ReportType
	if reportType == "" {
		reportType = domain.ReportTypeGeneral
	}
	parser, err := s.registry.Get(reportType)
	if err != nil {
		return nil, err
	}

	report := parser.Parse(ctx, input.Text, input.Language, input.Metadata)
	s.logger.Info().
		Str("report_id", report.Metadata.ReportID).
		Str("report_type", string(reportType)).
		Bool("generated_by_model", report.Metadata.GeneratedByModel).
		Int("fallbacks", len(report.Metadata.Fallbacks)).
		Msg("report structured")
	return report, nil
}

func (s *reportService) Extract(_ context.Context, input ExtractInput) (*domain.ExtractionAnalysis, error) {
	if err := s.validateText(input.Text); err != nil {
		return nil, err
	}
	analysis := &domain.ExtractionAnalysis{
		Sections:           spanextract.ExtractSections(input.Text),
		Measurements:       spanextract.FindMeasurements(input.Text),
		PathologySentences: spanextract.FindPathologySentences(input.Text),
		TrainingPairs:      spanextract.TrainingPairsForSections(input.Text),
	}
	if analysis.Sections == nil {
		analysis.Sections = []domain.ExtractedSection{}
	}
	if analysis.Measurements == nil {
		analysis.Measurements = []domain.Span{}
	}
	if analysis.PathologySentences == nil {
		analysis.PathologySentences = []domain.Span{}
	}
	if analysis.TrainingPairs == nil {
		analysis.TrainingPairs = []domain.TrainingPair{}
	}
	return analysis, nil
}

func (s *reportService) ReportTypes() []domain.ReportType {
	return s.registry.Types()
}

func (s *reportService) validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyText
	}
	if len(text) > s.maxTextBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", domain.ErrTextTooLong, len(text), s.maxTextBytes)
	}
	if !utf8.ValidString(text) {
		return domain.ErrInvalidEncoding
	}
	return nil
}
