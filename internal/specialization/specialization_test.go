package specialization_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medreport/internal/domain"
	"medreport/internal/port"
	"medreport/internal/specialization"
	"medreport/internal/structurer"
	"medreport/mocks"
)

const sampleText = "Befund: Leber mit 3,5 cm großer Zyste. LWK 4/5 mit mittelgradiger Stenose. " +
	"BI-RADS 3. pT2 N0 M0. G2, R0. LVEF 55 %. Beurteilung: Zyste."

func testDeps(gen port.ReportGenerator) specialization.Dependencies {
	return specialization.Dependencies{
		Generator: gen,
		Logger:    zerolog.Nop(),
		Options: structurer.Options{
			Now:   func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
			NewID: func() string { return "fixed-id" },
		},
	}
}

func TestNew_UnknownType(t *testing.T) {
	p, err := specialization.New("xray", testDeps(nil))

	assert.Nil(t, p)
	assert.ErrorIs(t, err, domain.ErrUnknownReportType)
}

func TestRegistry_DefaultCoversAllTypes(t *testing.T) {
	reg := specialization.NewDefaultRegistry(testDeps(nil))

	assert.Equal(t, domain.AllReportTypes, reg.Types())
	for _, rt := range domain.AllReportTypes {
		p, err := reg.Get(rt)
		require.NoError(t, err)
		assert.Equal(t, rt, p.Type())
	}

	_, err := reg.Get("xray")
	assert.ErrorIs(t, err, domain.ErrUnknownReportType)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	reg := specialization.NewRegistry()
	first := specialization.NewCTParser(testDeps(nil))
	second := specialization.NewCTParser(testDeps(nil))

	reg.Register(first)
	reg.Register(second)

	p, err := reg.Get(domain.ReportTypeCT)
	require.NoError(t, err)
	assert.Same(t, second, p)
	assert.Equal(t, []domain.ReportType{domain.ReportTypeCT}, reg.Types())
}

func TestParsers_AnnotateOnDeterministicPath(t *testing.T) {
	annotated := map[domain.ReportType]func(*domain.Sections) bool{
		domain.ReportTypeCT:          func(s *domain.Sections) bool { return s.CT != nil },
		domain.ReportTypeSpineMRI:    func(s *domain.Sections) bool { return s.Spine != nil },
		domain.ReportTypeMammography: func(s *domain.Sections) bool { return s.Mammography != nil },
		domain.ReportTypeOncology:    func(s *domain.Sections) bool { return s.Oncology != nil },
		domain.ReportTypePathology:   func(s *domain.Sections) bool { return s.Pathology != nil },
		domain.ReportTypeCardiac:     func(s *domain.Sections) bool { return s.Cardiac != nil },
		domain.ReportTypeUltrasound:  func(s *domain.Sections) bool { return s.Ultrasound != nil },
		domain.ReportTypeGeneral:     func(s *domain.Sections) bool { return s.General != nil },
	}

	for _, rt := range domain.AllReportTypes {
		t.Run(string(rt), func(t *testing.T) {
			p, err := specialization.New(rt, testDeps(nil))
			require.NoError(t, err)

			report := p.Parse(context.Background(), sampleText, "de", map[string]any{"source": "test"})

			require.NotNil(t, report)
			assert.Equal(t, rt, report.Type)
			assert.Equal(t, string(rt)+"-structurer", report.Metadata.Agent)
			assert.False(t, report.Metadata.GeneratedByModel)
			assert.Equal(t, "Leber mit 3,5 cm großer Zyste. LWK 4/5 mit mittelgradiger Stenose. BI-RADS 3. pT2 N0 M0. G2, R0. LVEF 55 %.", report.Findings)
			assert.Equal(t, "Zyste.", report.Impression)
			assert.NotEmpty(t, report.Sections.Measurements)
			assert.True(t, annotated[rt](&report.Sections))
		})
	}
}

func TestParsers_DoNotOverwriteGeneratedFields(t *testing.T) {
	gen := new(mocks.MockReportGenerator)
	gen.On("GenerateReport", mock.Anything, mock.Anything).Return(&port.GeneratedReport{
		Findings:   "Mittelgradige Stenose in Höhe L4/5.",
		Impression: "Degenerative Veränderungen.",
		Provider:   "claude:test",
	}, nil)

	deps := testDeps(gen)
	deps.Options.DisableModelFindings = true
	p := specialization.NewSpineParser(deps)

	report := p.Parse(context.Background(), sampleText, "de", nil)

	assert.True(t, report.Metadata.GeneratedByModel)
	assert.Equal(t, "Mittelgradige Stenose in Höhe L4/5.", report.Findings)
	assert.Equal(t, "Degenerative Veränderungen.", report.Impression)
	require.NotNil(t, report.Sections.Spine)
	assert.Contains(t, report.Sections.Spine.Segments, "L4/5")
	gen.AssertExpectations(t)
}

func TestParsers_AnnotateWhenGeneratorFails(t *testing.T) {
	gen := new(mocks.MockReportGenerator)
	gen.On("GenerateReport", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	gen.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("timeout"))

	report := specialization.NewMammographyParser(testDeps(gen)).Parse(context.Background(), sampleText, "de", nil)

	assert.False(t, report.Metadata.GeneratedByModel)
	require.NotNil(t, report.Sections.Mammography)
	assert.Equal(t, "3", report.Sections.Mammography.BIRADS.Overall)
}

func TestParsers_MeasurementsKeyAlwaysPresent(t *testing.T) {
	registry := specialization.NewDefaultRegistry(testDeps(nil))
	for _, rt := range domain.AllReportTypes {
		t.Run(string(rt), func(t *testing.T) {
			p, err := registry.Get(rt)
			require.NoError(t, err)

			report := p.Parse(context.Background(), "Befund: Unauffälliger Befund. Beurteilung: Kein Nachweis.", "de", nil)

			require.NotNil(t, report.Sections.Measurements)
			assert.Empty(t, report.Sections.Measurements)

			data, err := json.Marshal(report.Sections)
			require.NoError(t, err)
			assert.Contains(t, string(data), `"measurements":[]`)
		})
	}
}
