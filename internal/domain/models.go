package domain

import "time"

// Span is a located slice of a source text. Text always equals source[Start:End].
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// SourceSpan locates a finding inside the text it was derived from.
type SourceSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ExtractedSection is a header-delimited section of a report.
// Content equals strings.TrimSpace(source[StartPos:EndPos]).
type ExtractedSection struct {
	Name     string        `json:"name"`
	Header   string        `json:"header"`
	Family   SectionFamily `json:"family"`
	StartPos int           `json:"startPos"`
	EndPos   int           `json:"endPos"`
	Content  string        `json:"content"`
}

// TrainingPair is an input window together with an output span it literally contains.
type TrainingPair struct {
	Input      string             `json:"input"`
	Output     string             `json:"output"`
	Validation TrainingValidation `json:"validation"`
}

// TrainingValidation records where the output sits inside the input.
type TrainingValidation struct {
	OutputPosition int  `json:"outputPosition"`
	OutputInInput  bool `json:"outputInInput"`
}

// StructuredFinding is a significance-tagged sub-finding grounded in the findings text.
type StructuredFinding struct {
	Text         string       `json:"text"`
	Significance Significance `json:"significance"`
	Category     string       `json:"category"`
	SourceSpan   SourceSpan   `json:"sourceSpan"`
}

// EnhancedFindings holds the structured breakdown of one findings section.
type EnhancedFindings struct {
	Content            string              `json:"content"`
	StructuredFindings []StructuredFinding `json:"structuredFindings"`
	OriginalText       string              `json:"originalText"`
}

// DiagnosticCode is a single code suggestion.
type DiagnosticCode struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Priority    int     `json:"priority"`
	Category    string  `json:"category"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// DiagnosticCodes is the result of a diagnostic-code prediction.
type DiagnosticCodes struct {
	Codes   []DiagnosticCode `json:"codes"`
	Summary string           `json:"summary"`
	Source  string           `json:"source,omitempty"`
}

// Diagnostic code sources.
const (
	CodeSourceModel    = "model"
	CodeSourceFallback = "fallback"
)

// Metadata describes how a StructuredReport was produced.
type Metadata struct {
	Agent               string                    `json:"agent"`
	Language            string                    `json:"language"`
	GeneratedByModel    bool                      `json:"generatedByModel"`
	ModelProvider       *string                   `json:"modelProvider"`
	HasEnhancedFindings bool                      `json:"hasEnhancedFindings"`
	ReportID            string                    `json:"reportId"`
	ReportType          ReportType                `json:"reportType"`
	CreatedAt           time.Time                 `json:"createdAt"`
	Fallbacks           map[string]FallbackReason `json:"fallbacks,omitempty"`
	Request             map[string]any            `json:"request,omitempty"`
}

// StructuredReport is the canonical output of the structuring engine.
type StructuredReport struct {
	Type             ReportType        `json:"type"`
	Findings         string            `json:"findings"`
	Impression       string            `json:"impression"`
	Recommendations  string            `json:"recommendations"`
	TechnicalDetails string            `json:"technicalDetails"`
	Sections         Sections          `json:"sections"`
	EnhancedFindings *EnhancedFindings `json:"enhancedFindings"`
	DiagnosticCodes  *DiagnosticCodes  `json:"diagnosticCodes"`
	Metadata         Metadata          `json:"metadata"`
}

// Sections carries the extracted header sections and the domain annotations
// appended by specializations.
type Sections struct {
	Extracted    []ExtractedSection `json:"extracted"`
	Measurements []Span             `json:"measurements"`

	CT          *CTAnnotations          `json:"ct,omitempty"`
	Spine       *SpineAnnotations       `json:"spine,omitempty"`
	Mammography *MammographyAnnotations `json:"mammography,omitempty"`
	Oncology    *OncologyAnnotations    `json:"oncology,omitempty"`
	Pathology   *PathologyAnnotations   `json:"pathology,omitempty"`
	Cardiac     *CardiacAnnotations     `json:"cardiac,omitempty"`
	Ultrasound  *UltrasoundAnnotations  `json:"ultrasound,omitempty"`
	General     *GeneralAnnotations     `json:"general,omitempty"`
}

// ExtractionAnalysis is the deterministic span analysis of a report text, used for
// inspection and for building training datasets.
type ExtractionAnalysis struct {
	Sections           []ExtractedSection `json:"sections"`
	Measurements       []Span             `json:"measurements"`
	PathologySentences []Span             `json:"pathologySentences"`
	TrainingPairs      []TrainingPair     `json:"trainingPairs"`
}
