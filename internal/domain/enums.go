package domain

// ReportType identifies the clinical domain a report belongs to.
type ReportType string

const (
	ReportTypeCT          ReportType = "ct"
	ReportTypeSpineMRI    ReportType = "spine_mri"
	ReportTypeMammography ReportType = "mammography"
	ReportTypeOncology    ReportType = "oncology"
	ReportTypePathology   ReportType = "pathology"
	ReportTypeCardiac     ReportType = "cardiac"
	ReportTypeUltrasound  ReportType = "ultrasound"
	ReportTypeGeneral     ReportType = "general"
)

// AllReportTypes lists every supported report type in display order.
var AllReportTypes = []ReportType{
	ReportTypeCT,
	ReportTypeSpineMRI,
	ReportTypeMammography,
	ReportTypeOncology,
	ReportTypePathology,
	ReportTypeCardiac,
	ReportTypeUltrasound,
	ReportTypeGeneral,
}

// ValidReportType reports whether t is a known report type.
func ValidReportType(t ReportType) bool {
	for _, rt := range AllReportTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// Significance tiers a structured finding.
type Significance string

const (
	SignificanceGeneral     Significance = "general"
	SignificanceSignificant Significance = "significant"
	SignificanceCritical    Significance = "critical"
)

// ParseSignificance normalizes a free-form significance value; unknown values map to general.
func ParseSignificance(s string) Significance {
	switch Significance(s) {
	case SignificanceSignificant, SignificanceCritical:
		return Significance(s)
	default:
		return SignificanceGeneral
	}
}

// SectionFamily groups header synonyms that map onto the same canonical field.
type SectionFamily string

const (
	FamilyClinical       SectionFamily = "clinical"
	FamilyTechnique      SectionFamily = "technique"
	FamilyFindings       SectionFamily = "findings"
	FamilyImpression     SectionFamily = "impression"
	FamilyRecommendation SectionFamily = "recommendation"
)

// FallbackReason records why a pipeline stage did not take its primary path.
type FallbackReason string

const (
	FallbackNone        FallbackReason = ""
	FallbackUnavailable FallbackReason = "unavailable"
	FallbackFailed      FallbackReason = "failed"
	FallbackMalformed   FallbackReason = "malformed"
	FallbackEmpty       FallbackReason = "empty"
)

// Language codes understood by the structurer.
const (
	LanguageGerman  = "de"
	LanguageEnglish = "en"
)

// NormalizeLanguage maps any language tag onto de or en; everything that is not English is treated as German.
func NormalizeLanguage(lang string) string {
	if len(lang) >= 2 && (lang[:2] == "en" || lang[:2] == "EN" || lang[:2] == "En") {
		return LanguageEnglish
	}
	return LanguageGerman
}
