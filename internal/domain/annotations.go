package domain

// RegionFinding groups the sentences of a report that mention one anatomical region.
type RegionFinding struct {
	Region      string   `json:"region"`
	Sentences   []string `json:"sentences"`
	Pathologies []string `json:"pathologies"`
}

// SeverityTier grades how pronounced a pathology is described.
type SeverityTier string

const (
	SeverityUnspecified SeverityTier = "unspecified"
	SeverityNormal      SeverityTier = "normal"
	SeverityMild        SeverityTier = "mild"
	SeverityModerate    SeverityTier = "moderate"
	SeveritySevere      SeverityTier = "severe"
	SeverityCritical    SeverityTier = "critical"
)

// SeverityRank orders tiers from least to most severe.
func SeverityRank(t SeverityTier) int {
	switch t {
	case SeverityNormal:
		return 1
	case SeverityMild:
		return 2
	case SeverityModerate:
		return 3
	case SeveritySevere:
		return 4
	case SeverityCritical:
		return 5
	default:
		return 0
	}
}

// ContrastProtocol describes contrast administration found in a CT report.
type ContrastProtocol struct {
	Administered bool     `json:"administered"`
	Agent        string   `json:"agent,omitempty"`
	Phases       []string `json:"phases"`
	Evidence     string   `json:"evidence,omitempty"`
}

// DensityMeasurement is an attenuation value with the structure it most likely refers to.
type DensityMeasurement struct {
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Structure string  `json:"structure"`
	Span      Span    `json:"span"`
}

// CTAnnotations are appended by the CT specialization.
type CTAnnotations struct {
	Contrast  ContrastProtocol     `json:"contrast"`
	Regions   []RegionFinding      `json:"regions"`
	Densities []DensityMeasurement `json:"densities"`
}

// SegmentFinding maps one spinal segment to the pathology described for it.
type SegmentFinding struct {
	Segment     string       `json:"segment"`
	Pathologies []string     `json:"pathologies"`
	Severity    SeverityTier `json:"severity"`
	Sentence    string       `json:"sentence"`
}

// SpineAnnotations are appended by the spine MRI specialization.
type SpineAnnotations struct {
	Segments      map[string]SegmentFinding `json:"segments"`
	FieldStrength string                    `json:"fieldStrength,omitempty"`
	MaxSeverity   SeverityTier              `json:"maxSeverity"`
}

// BIRADSAssessment holds BI-RADS categories and ACR breast density.
type BIRADSAssessment struct {
	Left    string `json:"left,omitempty"`
	Right   string `json:"right,omitempty"`
	Overall string `json:"overall,omitempty"`
	Density string `json:"density,omitempty"`
}

// MammographyAnnotations are appended by the mammography specialization.
type MammographyAnnotations struct {
	BIRADS  BIRADSAssessment `json:"birads"`
	Lesions []string         `json:"lesions"`
	Regions []RegionFinding  `json:"regions"`
}

// TNMStage holds TNM staging components as written in the report.
type TNMStage struct {
	T string `json:"t,omitempty"`
	N string `json:"n,omitempty"`
	M string `json:"m,omitempty"`
}

// OncologyAnnotations are appended by the oncology specialization.
type OncologyAnnotations struct {
	TNM              TNMStage `json:"tnm"`
	Response         string   `json:"response,omitempty"`
	MetastasisSites  []string `json:"metastasisSites"`
	TargetLesions    []Span   `json:"targetLesions"`
	SeverityEvidence []string `json:"severityEvidence,omitempty"`
}

// ReceptorStatus holds hormone and HER2 receptor results.
type ReceptorStatus struct {
	ER   string `json:"er,omitempty"`
	PR   string `json:"pr,omitempty"`
	HER2 string `json:"her2,omitempty"`
}

// PathologyAnnotations are appended by the pathology specialization.
type PathologyAnnotations struct {
	Grading         string         `json:"grading,omitempty"`
	Margin          string         `json:"margin,omitempty"`
	Receptors       ReceptorStatus `json:"receptors"`
	Ki67            *float64       `json:"ki67,omitempty"`
	HistologicTypes []string       `json:"histologicTypes"`
}

// CardiacAnnotations are appended by the cardiac specialization.
type CardiacAnnotations struct {
	EjectionFraction *float64        `json:"ejectionFraction,omitempty"`
	EjectionTier     SeverityTier    `json:"ejectionTier"`
	Valves           []RegionFinding `json:"valves"`
	WallMotion       []string        `json:"wallMotion"`
	CalciumScore     *float64        `json:"calciumScore,omitempty"`
}

// UltrasoundAnnotations are appended by the ultrasound specialization.
type UltrasoundAnnotations struct {
	Organs       []RegionFinding   `json:"organs"`
	OrganMeasure map[string][]Span `json:"organMeasurements"`
}

// GeneralAnnotations are appended by the general specialization.
type GeneralAnnotations struct {
	Severity           SeverityTier    `json:"severity"`
	SeverityEvidence   []string        `json:"severityEvidence"`
	PathologySentences []Span          `json:"pathologySentences"`
	Regions            []RegionFinding `json:"regions"`
}
