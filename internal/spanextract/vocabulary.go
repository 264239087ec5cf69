package spanextract

import "medreport/internal/domain"

// headerTerm is one header synonym and the family it belongs to.
type headerTerm struct {
	term   string
	family domain.SectionFamily
}

// headerVocabulary is the bilingual (German/English) header vocabulary. A header is
// recognized only when the term is immediately followed by a colon.
var headerVocabulary = []headerTerm{
	{"Klinische Angaben", domain.FamilyClinical},
	{"Klinische Fragestellung", domain.FamilyClinical},
	{"Fragestellung", domain.FamilyClinical},
	{"Indikation", domain.FamilyClinical},
	{"Anamnese", domain.FamilyClinical},
	{"Clinical Information", domain.FamilyClinical},
	{"Clinical History", domain.FamilyClinical},
	{"Indication", domain.FamilyClinical},
	{"History", domain.FamilyClinical},

	{"Technik", domain.FamilyTechnique},
	{"Untersuchungstechnik", domain.FamilyTechnique},
	{"Methodik", domain.FamilyTechnique},
	{"Technique", domain.FamilyTechnique},
	{"Protocol", domain.FamilyTechnique},

	{"Befund", domain.FamilyFindings},
	{"Befunde", domain.FamilyFindings},
	{"Findings", domain.FamilyFindings},

	{"Beurteilung", domain.FamilyImpression},
	{"Zusammenfassung", domain.FamilyImpression},
	{"Impression", domain.FamilyImpression},
	{"Conclusion", domain.FamilyImpression},
	{"Assessment", domain.FamilyImpression},

	{"Empfehlung", domain.FamilyRecommendation},
	{"Empfehlungen", domain.FamilyRecommendation},
	{"Recommendation", domain.FamilyRecommendation},
	{"Recommendations", domain.FamilyRecommendation},
}

// endMarkers close the last section: signature blocks and closing salutations.
var endMarkers = []string{
	"Mit freundlichen Grüßen",
	"Mit freundlichen Gruessen",
	"Mit freundlichem Gruß",
	"Mit kollegialen Grüßen",
	"Mit kollegialem Gruß",
	"Elektronisch signiert",
	"Electronically signed",
	"Kind regards",
	"Best regards",
	"Sincerely",
}

// pathologyKeywords flag sentences that carry a normal, abnormal or pathological statement.
// All entries are lowercase and matched as substrings of the lowercased sentence.
var pathologyKeywords = []string{
	// normal statements
	"unauffällig", "regelrecht", "normal", "physiologisch", "altersentsprechend", "unremarkable",
	// degenerative spine
	"stenose", "stenosis", "einengung", "narrowing", "protrusion", "prolaps", "vorfall",
	"hernie", "herniation", "extrusion", "sequester", "bulging", "osteochondrose",
	"spondylos", "spondylarthros", "arthrose", "degenerat", "bandscheib", "kompression",
	"compression", "myelopath",
	// lesions and masses
	"läsion", "lesion", "raumforderung", "tumor", "karzinom", "carcinoma", "malign",
	"metasta", "rundherd", "nodul", "knoten", "zyste", "cyst", "mass",
	// fluid, inflammation, vascular
	"erguss", "effusion", "ödem", "edema", "oedema", "entzünd", "inflamm", "infiltrat",
	"pneumon", "thromb", "embol", "blutung", "hemorrhage", "hämatom", "ischäm", "infarkt",
	"aneurysm", "dilatat", "verkalk", "calcif",
	// general qualifiers
	"pathologisch", "abnormal", "verdacht", "suspekt", "suspicious", "fraktur", "fracture",
	"hypertroph", "atroph",
}

// sentenceAbbreviations end with a period that does not close a sentence.
var sentenceAbbreviations = map[string]bool{
	"ca.": true, "z.b.": true, "dr.": true, "bzw.": true, "v.a.": true, "z.n.": true,
	"ggf.": true, "evtl.": true, "i.v.": true, "lig.": true, "ligg.": true, "abb.": true,
	"vs.": true, "pat.": true, "med.": true, "prof.": true, "u.a.": true, "e.g.": true,
	"i.e.": true, "approx.": true, "st.": true, "n.": true, "a.": true, "v.": true, "m.": true,
}

// measurementUnits are scanned case-sensitively as standalone tokens.
var measurementUnits = []string{
	"mm", "cm", "cm²", "cm³", "cm2", "cm3", "ml", "mL", "ccm",
	"mg", "kg", "g", "mGy", "mSv", "T", "HE", "HU", "%",
}
