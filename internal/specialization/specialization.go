package specialization

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"medreport/internal/domain"
	"medreport/internal/port"
	"medreport/internal/spanextract"
	"medreport/internal/structurer"
)

// Parser structures a report of one clinical domain. Implementations delegate to a
// shared Structurer and then add their own annotations under Sections without
// touching the four canonical text fields.
type Parser interface {
	Type() domain.ReportType
	Parse(ctx context.Context, text, language string, meta map[string]any) *domain.StructuredReport
}

// Dependencies are the collaborators handed to every specialization.
type Dependencies struct {
	Generator port.ReportGenerator
	Coder     port.DiagnosticCoder
	Logger    zerolog.Logger
	// Options is copied per report type; Agent and ReportType are filled in by New.
	Options structurer.Options
}

// base is composed into every specialization.
type base struct {
	structurer *structurer.Structurer
}

func newBase(t domain.ReportType, deps Dependencies) base {
	opts := deps.Options
	opts.ReportType = t
	opts.Agent = string(t) + "-structurer"
	return base{structurer: structurer.New(deps.Generator, deps.Coder, deps.Logger, opts)}
}

func (b base) Type() domain.ReportType {
	return b.structurer.ReportType()
}

// parse runs the shared pipeline and attaches measurements found in the raw text.
func (b base) parse(ctx context.Context, text, language string, meta map[string]any) *domain.StructuredReport {
	report := b.structurer.Parse(ctx, text, language, meta)
	report.Sections.Measurements = spanextract.FindMeasurements(text)
	if report.Sections.Measurements == nil {
		report.Sections.Measurements = []domain.Span{}
	}
	return report
}

var constructors = map[domain.ReportType]func(Dependencies) Parser{
	domain.ReportTypeCT:          func(d Dependencies) Parser { return NewCTParser(d) },
	domain.ReportTypeSpineMRI:    func(d Dependencies) Parser { return NewSpineParser(d) },
	domain.ReportTypeMammography: func(d Dependencies) Parser { return NewMammographyParser(d) },
	domain.ReportTypeOncology:    func(d Dependencies) Parser { return NewOncologyParser(d) },
	domain.ReportTypePathology:   func(d Dependencies) Parser { return NewPathologyParser(d) },
	domain.ReportTypeCardiac:     func(d Dependencies) Parser { return NewCardiacParser(d) },
	domain.ReportTypeUltrasound:  func(d Dependencies) Parser { return NewUltrasoundParser(d) },
	domain.ReportTypeGeneral:     func(d Dependencies) Parser { return NewGeneralParser(d) },
}

// New returns the specialization for t.
func New(t domain.ReportType, deps Dependencies) (Parser, error) {
	ctor, ok := constructors[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownReportType, t)
	}
	return ctor(deps), nil
}

// Registry holds one Parser per report type.
type Registry struct {
	parsers map[domain.ReportType]Parser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[domain.ReportType]Parser)}
}

// NewDefaultRegistry creates a registry with a Parser for every supported report type.
func NewDefaultRegistry(deps Dependencies) *Registry {
	r := NewRegistry()
	for _, t := range domain.AllReportTypes {
		p, _ := New(t, deps)
		r.Register(p)
	}
	return r
}

// Register adds a parser to the registry, replacing any parser of the same type.
func (r *Registry) Register(p Parser) {
	r.parsers[p.Type()] = p
}

// Get returns the parser for t, or ErrUnknownReportType.
func (r *Registry) Get(t domain.ReportType) (Parser, error) {
	p, ok := r.parsers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownReportType, t)
	}
	return p, nil
}

// Types returns the registered report types in display order.
func (r *Registry) Types() []domain.ReportType {
	order := make(map[domain.ReportType]int, len(domain.AllReportTypes))
	for i, t := range domain.AllReportTypes {
		order[t] = i
	}
	types := make([]domain.ReportType, 0, len(r.parsers))
	for t := range r.parsers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		oi, iok := order[types[i]]
		oj, jok := order[types[j]]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return types[i] < types[j]
	})
	return types
}
