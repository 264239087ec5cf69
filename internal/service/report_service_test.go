package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medreport/internal/domain"
	"medreport/internal/icd"
	"medreport/internal/port"
	"medreport/internal/service"
	"medreport/internal/specialization"
	"medreport/internal/structurer"
	"medreport/mocks"
)

const spineReport = "Klinische Angaben: Lumbago.\nBefund: LWK 4/5 mit mittelgradiger Spinalkanalstenose, Prolaps 4 mm.\nBeurteilung: Mittelgradige Spinalkanalstenose L4/5."

func newService(gen port.ReportGenerator, coder port.DiagnosticCoder, maxBytes int) service.ReportService {
	reg := specialization.NewDefaultRegistry(specialization.Dependencies{
		Generator: gen,
		Coder:     coder,
		Logger:    zerolog.Nop(),
		Options: structurer.Options{
			Now:   func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
			NewID: func() string { return "report-1" },
		},
	})
	return service.NewReportService(reg, maxBytes, zerolog.Nop())
}

func TestStructure_Validation(t *testing.T) {
	svc := newService(nil, nil, 64)

	tests := []struct {
		name    string
		input   service.StructureInput
		wantErr error
	}{
		{name: "empty", input: service.StructureInput{Text: "   \n"}, wantErr: domain.ErrEmptyText},
		{name: "too long", input: service.StructureInput{Text: strings.Repeat("a", 65)}, wantErr: domain.ErrTextTooLong},
		{name: "invalid utf8", input: service.StructureInput{Text: "Befund: \xff"}, wantErr: domain.ErrInvalidEncoding},
		{name: "unknown type", input: service.StructureInput{Text: "Befund: ok.", ReportType: "xray"}, wantErr: domain.ErrUnknownReportType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := svc.Structure(context.Background(), tt.input)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStructure_DispatchesByType(t *testing.T) {
	coder := icd.NewService(nil, nil, 0, zerolog.Nop())
	svc := newService(nil, coder, 0)

	report, err := svc.Structure(context.Background(), service.StructureInput{
		Text:       spineReport,
		ReportType: domain.ReportTypeSpineMRI,
		Metadata:   map[string]any{"patient": "anon"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReportTypeSpineMRI, report.Type)
	assert.Equal(t, "de", report.Metadata.Language)
	assert.Equal(t, "anon", report.Metadata.Request["patient"])
	assert.Equal(t, "LWK 4/5 mit mittelgradiger Spinalkanalstenose, Prolaps 4 mm.", report.Findings)
	require.NotNil(t, report.Sections.Spine)
	assert.Contains(t, report.Sections.Spine.Segments, "L4/5")
	require.NotNil(t, report.DiagnosticCodes)
	assert.Equal(t, domain.CodeSourceFallback, report.DiagnosticCodes.Source)
	require.NotEmpty(t, report.DiagnosticCodes.Codes)
	assert.Equal(t, "M48.06", report.DiagnosticCodes.Codes[0].Code)
}

func TestStructure_DefaultsToGeneral(t *testing.T) {
	report, err := newService(nil, nil, 0).Structure(context.Background(), service.StructureInput{Text: spineReport})

	require.NoError(t, err)
	assert.Equal(t, domain.ReportTypeGeneral, report.Type)
	assert.NotNil(t, report.Sections.General)
}

func TestStructure_GeneratorFailureStillSucceeds(t *testing.T) {
	gen := new(mocks.MockReportGenerator)
	gen.On("GenerateReport", mock.Anything, mock.Anything).Return(nil, errors.New("provider down"))
	gen.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("provider down"))

	report, err := newService(gen, nil, 0).Structure(context.Background(), service.StructureInput{
		Text:       spineReport,
		ReportType: domain.ReportTypeCT,
		Language:   "de",
	})

	require.NoError(t, err)
	assert.False(t, report.Metadata.GeneratedByModel)
	assert.Equal(t, domain.FallbackFailed, report.Metadata.Fallbacks[structurer.StageGenerative])
	assert.True(t, report.Metadata.HasEnhancedFindings)
}

func TestExtract(t *testing.T) {
	analysis, err := newService(nil, nil, 0).Extract(context.Background(), service.ExtractInput{Text: spineReport})

	require.NoError(t, err)
	require.Len(t, analysis.Sections, 3)
	assert.Equal(t, domain.FamilyFindings, analysis.Sections[1].Family)
	require.NotEmpty(t, analysis.Measurements)
	assert.Contains(t, analysis.Measurements[0].Text, "4 mm")
	assert.NotEmpty(t, analysis.PathologySentences)
	require.Len(t, analysis.TrainingPairs, 3)
	for _, p := range analysis.TrainingPairs {
		assert.True(t, p.Validation.OutputInInput)
		assert.Contains(t, p.Input, p.Output)
	}
}

func TestExtract_NoHeaders(t *testing.T) {
	analysis, err := newService(nil, nil, 0).Extract(context.Background(), service.ExtractInput{Text: "Unauffälliger Befund ohne Überschriften"})

	require.NoError(t, err)
	assert.NotNil(t, analysis.Sections)
	assert.Empty(t, analysis.Sections)
	assert.NotNil(t, analysis.TrainingPairs)

	_, err = newService(nil, nil, 0).Extract(context.Background(), service.ExtractInput{})
	assert.ErrorIs(t, err, domain.ErrEmptyText)
}

func TestReportTypes(t *testing.T) {
	assert.Equal(t, domain.AllReportTypes, newService(nil, nil, 0).ReportTypes())
}
