package structurer

import (
	"strings"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

// Significance ladder. Critical terms win over significant ones.
var (
	criticalTerms = []string{
		"dringend", "notfall", "sofort", "urgent", "emergency", "malign", "hochgradig", "high-grade",
	}
	significantTerms = []string{
		"pathologisch", "suspekt", "verdächtig", "verdacht", "mittelgradig", "moderat", "auffällig",
		"abnormal", "suspicious",
	}
)

// ClassifySignificance grades a finding sentence by keyword priority.
func ClassifySignificance(text string) domain.Significance {
	lowered := spanextract.Lower(text)
	for _, set := range []struct {
		terms []string
		sig   domain.Significance
	}{
		{criticalTerms, domain.SignificanceCritical},
		{significantTerms, domain.SignificanceSignificant},
	} {
		for _, t := range set.terms {
			if containsTerm(lowered, t) {
				return set.sig
			}
		}
	}
	return domain.SignificanceGeneral
}

// containsTerm reports whether term occurs in lowered. An occurrence directly preceded by
// the negating prefix "un" ("unauffällig", "unverdächtig") does not count.
func containsTerm(lowered, term string) bool {
	for from := 0; ; {
		idx := strings.Index(lowered[from:], term)
		if idx < 0 {
			return false
		}
		idx += from
		if !strings.HasSuffix(lowered[:idx], "un") {
			return true
		}
		from = idx + len(term)
	}
}

// category is one entry of the finding taxonomy; terms are matched against the lowercased text.
type category struct {
	german  string
	english string
	terms   []string
}

// findingCategories is checked in order; foraminal stenosis precedes the generic
// stenosis terms of spinal stenosis.
var findingCategories = []category{
	{"Bandscheibe", "Disc disease", []string{
		"bandscheib", "protrusion", "prolaps", "vorfall", "hernia", "herniation", "extrusion",
		"sequester", "bulging", "osteochondrose", "diskopath", "discopath", "intervertebral",
		"disc bulg", "disc herni", "disc degener",
	}},
	{"Neuroforamenstenose", "Foraminal stenosis", []string{
		"neuroforam", "foramin", "foraminal",
	}},
	{"Spinalkanalstenose", "Spinal stenosis", []string{
		"spinalkanal", "spinal canal", "spinal stenosis", "stenose", "stenosis",
	}},
	{"Spondylose", "Spondylosis", []string{
		"spondylos", "spondylarthros", "facettengelenk", "facet", "osteophyt", "spondylophyt",
	}},
	{"Bandpathologie", "Ligament pathology", []string{
		"ligament", "ligamentum", "lig.", "flavum", "bandhypertroph",
	}},
}

// Generic category labels.
const (
	generalCategoryGerman  = "Allgemein"
	generalCategoryEnglish = "General"
	fallbackItemGerman     = "Befund"
	fallbackItemEnglish    = "Findings"
)

// Categorize assigns a taxonomy category to a finding sentence in the given language.
func Categorize(text, language string) string {
	english := domain.NormalizeLanguage(language) == domain.LanguageEnglish
	lowered := spanextract.Lower(text)
	for _, c := range findingCategories {
		for _, t := range c.terms {
			if containsTerm(lowered, t) {
				if english {
					return c.english
				}
				return c.german
			}
		}
	}
	if english {
		return generalCategoryEnglish
	}
	return generalCategoryGerman
}

// FallbackCategory is the category of the single item emitted when no finding sentence is found.
func FallbackCategory(language string) string {
	if domain.NormalizeLanguage(language) == domain.LanguageEnglish {
		return fallbackItemEnglish
	}
	return fallbackItemGerman
}
