package structurer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"medreport/internal/domain"
	"medreport/internal/port"
	"medreport/internal/spanextract"
)

// Stage names used in logs and Metadata.Fallbacks.
const (
	StageGenerative       = "generative"
	StageEnhancedFindings = "enhancedFindings"
	StageDiagnosticCodes  = "diagnosticCodes"
)

// Options configure a Structurer. Zero timeouts leave the stage bounded only by the caller's context.
type Options struct {
	Agent      string
	ReportType domain.ReportType
	// DefaultLanguage applies when Parse receives no language; empty means German.
	DefaultLanguage      string
	GenerativeTimeout    time.Duration
	EnhancedTimeout      time.Duration
	CodingTimeout        time.Duration
	DisableModelFindings bool

	Now   func() time.Time
	NewID func() string
}

// Structurer turns free report text into a StructuredReport. It is safe for concurrent use.
type Structurer struct {
	generator port.ReportGenerator
	coder     port.DiagnosticCoder
	logger    zerolog.Logger
	opts      Options
}

// New creates a Structurer. generator and coder may be nil; the corresponding stages then
// take their deterministic paths.
func New(generator port.ReportGenerator, coder port.DiagnosticCoder, logger zerolog.Logger, opts Options) *Structurer {
	if opts.ReportType == "" {
		opts.ReportType = domain.ReportTypeGeneral
	}
	if opts.Agent == "" {
		opts.Agent = string(opts.ReportType) + "-structurer"
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = domain.LanguageGerman
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Structurer{
		generator: generator,
		coder:     coder,
		logger:    logger.With().Str("component", "structurer").Str("agent", opts.Agent).Logger(),
		opts:      opts,
	}
}

// Agent returns the identity recorded in Metadata.Agent.
func (s *Structurer) Agent() string {
	return s.opts.Agent
}

// ReportType returns the report type this structurer produces.
func (s *Structurer) ReportType() domain.ReportType {
	return s.opts.ReportType
}

// Parse structures text. It never fails: every stage that cannot take its primary path
// falls back to a deterministic one, and the reason is recorded in Metadata.Fallbacks.
func (s *Structurer) Parse(ctx context.Context, text, language string, meta map[string]any) *domain.StructuredReport {
	lang := s.language(language)
	report := &domain.StructuredReport{
		Type: s.opts.ReportType,
		Metadata: domain.Metadata{
			Agent:      s.opts.Agent,
			Language:   lang,
			ReportID:   s.opts.NewID(),
			ReportType: s.opts.ReportType,
			CreatedAt:  s.opts.Now().UTC(),
			Request:    meta,
		},
	}
	report.Sections.Extracted = spanextract.ExtractSections(text)

	if gen := s.generate(ctx, text, lang); gen.ok() {
		report.Findings = gen.value.Findings
		report.Impression = gen.value.Impression
		report.Recommendations = gen.value.Recommendations
		report.TechnicalDetails = gen.value.TechnicalDetails
		report.Metadata.GeneratedByModel = true
		provider := gen.value.Provider
		report.Metadata.ModelProvider = &provider
	} else {
		s.fallback(report, StageGenerative, gen.reason, gen.err)
		applySections(report, report.Sections.Extracted)
	}

	if report.Findings != "" {
		enhanced := s.enhanceWithModel(ctx, report.Findings, lang)
		if enhanced.ok() {
			report.EnhancedFindings = enhanced.value
		} else {
			s.fallback(report, StageEnhancedFindings, enhanced.reason, enhanced.err)
			report.EnhancedFindings = HeuristicFindings(report.Findings, lang)
		}
		report.Metadata.HasEnhancedFindings = true
	}

	if report.Findings != "" || report.Impression != "" {
		codes := s.diagnosticCodes(ctx, report, lang)
		if !codes.ok() {
			s.fallback(report, StageDiagnosticCodes, codes.reason, codes.err)
		}
		report.DiagnosticCodes = codes.value
	}

	return report
}

func (s *Structurer) language(language string) string {
	if strings.TrimSpace(language) == "" {
		language = s.opts.DefaultLanguage
	}
	return domain.NormalizeLanguage(language)
}

func (s *Structurer) generate(ctx context.Context, text, lang string) outcome[*port.GeneratedReport] {
	if s.generator == nil {
		return fellBack[*port.GeneratedReport](domain.FallbackUnavailable, domain.ErrNoGenerator)
	}

	ctx, cancel := withTimeout(ctx, s.opts.GenerativeTimeout)
	defer cancel()

	out, err := guard(func() (*port.GeneratedReport, error) {
		return s.generator.GenerateReport(ctx, port.GenerateReportInput{
			Text:     text,
			Language: lang,
			Hint:     string(s.opts.ReportType),
		})
	})
	if err != nil {
		return fellBack[*port.GeneratedReport](reasonFor(err), err)
	}
	if out == nil {
		return fellBack[*port.GeneratedReport](domain.FallbackEmpty, domain.ErrMalformedOutput)
	}

	trimmed := *out
	trimmed.Findings = strings.TrimSpace(out.Findings)
	trimmed.Impression = strings.TrimSpace(out.Impression)
	trimmed.Recommendations = strings.TrimSpace(out.Recommendations)
	trimmed.TechnicalDetails = strings.TrimSpace(out.TechnicalDetails)
	if trimmed.Findings == "" && trimmed.Impression == "" {
		return fellBack[*port.GeneratedReport](domain.FallbackEmpty, domain.ErrMalformedOutput)
	}
	return succeeded(&trimmed)
}

// applySections fills the canonical fields from header sections by family. Several
// sections of one family are joined by a blank line; clinical sections stay in
// Sections.Extracted only.
func applySections(report *domain.StructuredReport, sections []domain.ExtractedSection) {
	parts := make(map[domain.SectionFamily][]string)
	for _, sec := range sections {
		parts[sec.Family] = append(parts[sec.Family], sec.Content)
	}
	join := func(f domain.SectionFamily) string {
		return strings.Join(parts[f], "\n\n")
	}
	report.Findings = join(domain.FamilyFindings)
	report.Impression = join(domain.FamilyImpression)
	report.Recommendations = join(domain.FamilyRecommendation)
	report.TechnicalDetails = join(domain.FamilyTechnique)
}

func (s *Structurer) diagnosticCodes(ctx context.Context, report *domain.StructuredReport, lang string) outcome[*domain.DiagnosticCodes] {
	if s.coder == nil {
		return fellBack[*domain.DiagnosticCodes](domain.FallbackUnavailable, nil)
	}
	req := port.CodeRequest{
		Findings:   report.Findings,
		Impression: report.Impression,
		ReportType: s.opts.ReportType,
		Language:   lang,
	}

	predictCtx, cancel := withTimeout(ctx, s.opts.CodingTimeout)
	codes, err := guard(func() (*domain.DiagnosticCodes, error) {
		return s.coder.PredictCodes(predictCtx, req)
	})
	cancel()
	if err == nil && codes != nil {
		if codes.Source == "" {
			codes.Source = domain.CodeSourceModel
		}
		return succeeded(codes)
	}
	if err == nil {
		err = domain.ErrNoCodesSuggested
	}
	reason := reasonFor(err)

	fallbackCtx, cancel := withTimeout(ctx, s.opts.CodingTimeout)
	defer cancel()
	codes, ferr := guard(func() (*domain.DiagnosticCodes, error) {
		return s.coder.GetFallbackCodes(fallbackCtx, req)
	})
	if ferr != nil || codes == nil {
		if ferr == nil {
			ferr = domain.ErrNoCodesSuggested
		}
		return outcome[*domain.DiagnosticCodes]{reason: reason, err: fmt.Errorf("%w; fallback codes: %v", err, ferr)}
	}
	if codes.Source == "" {
		codes.Source = domain.CodeSourceFallback
	}
	return outcome[*domain.DiagnosticCodes]{value: codes, reason: reason, err: err}
}

// fallback records that stage did not take its primary path.
func (s *Structurer) fallback(report *domain.StructuredReport, stage string, reason domain.FallbackReason, err error) {
	if report.Metadata.Fallbacks == nil {
		report.Metadata.Fallbacks = make(map[string]domain.FallbackReason)
	}
	report.Metadata.Fallbacks[stage] = reason

	if reason == domain.FallbackUnavailable {
		s.logger.Debug().Str("stage", stage).Msg("collaborator not configured")
		return
	}
	s.logger.Warn().Err(err).Str("stage", stage).Str("reason", string(reason)).Msg("stage fell back")
}
