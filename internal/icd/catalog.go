package icd

import (
	"regexp"
	"sort"
	"strings"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

// codePattern is the ICD-10 code shape, e.g. "M48.06" or "R91".
var codePattern = regexp.MustCompile(`^[A-Z][0-9]{2}(\.[0-9A-Z]{1,4})?$`)

// ValidCode reports whether code has the ICD-10 shape.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Entry is one keyword-triggered catalog code.
type Entry struct {
	Code          string
	Description   string
	DescriptionEN string
	Category      string
	// Keywords are lowercase substrings matched against report text.
	Keywords []string
	// ReportTypes restricts the entry; empty means every report type.
	ReportTypes []domain.ReportType
}

func (e Entry) appliesTo(t domain.ReportType) bool {
	if len(e.ReportTypes) == 0 || t == domain.ReportTypeGeneral || t == "" {
		return true
	}
	for _, rt := range e.ReportTypes {
		if rt == t {
			return true
		}
	}
	return false
}

func (e Entry) description(language string) string {
	if domain.NormalizeLanguage(language) == domain.LanguageEnglish && e.DescriptionEN != "" {
		return e.DescriptionEN
	}
	return e.Description
}

// Match is a catalog entry found in a text, with the keyword and position that triggered it.
type Match struct {
	Entry   Entry
	Keyword string
	Pos     int
}

// Catalog is an ordered, code-unique list of entries.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog builds a catalog. Later entries with an already known code replace earlier ones.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{index: make(map[string]int)}
	c.Add(entries...)
	return c
}

// Add inserts or replaces entries by code. Entries with an invalid code or no keywords are skipped.
func (c *Catalog) Add(entries ...Entry) {
	for _, e := range entries {
		e.Code = strings.ToUpper(strings.TrimSpace(e.Code))
		keywords := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			if kw = spanextract.Lower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		e.Keywords = keywords
		if !ValidCode(e.Code) || len(e.Keywords) == 0 {
			continue
		}
		if i, ok := c.index[e.Code]; ok {
			c.entries[i] = e
			continue
		}
		c.index[e.Code] = len(c.entries)
		c.entries = append(c.entries, e)
	}
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup returns the entry for code.
func (c *Catalog) Lookup(code string) (Entry, bool) {
	i, ok := c.index[strings.ToUpper(code)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Match finds every entry for reportType whose keyword occurs in text without a negation
// word earlier in the same sentence. Matches are ordered by the position of their first mention.
func (c *Catalog) Match(text string, reportType domain.ReportType) []Match {
	var matches []Match
	for _, s := range spanextract.SplitSentences(text) {
		lowered := spanextract.Lower(s.Text)
		for _, e := range c.entries {
			if !e.appliesTo(reportType) || containsCode(matches, e.Code) {
				continue
			}
			for _, kw := range e.Keywords {
				if i := strings.Index(lowered, kw); i >= 0 && !spanextract.Negated(lowered[:i]) {
					matches = append(matches, Match{Entry: e, Keyword: kw, Pos: s.Start + i})
					break
				}
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Pos < matches[j].Pos })
	return matches
}

func containsCode(matches []Match, code string) bool {
	for _, m := range matches {
		if m.Entry.Code == code {
			return true
		}
	}
	return false
}

var (
	spineTypes    = []domain.ReportType{domain.ReportTypeSpineMRI, domain.ReportTypeCT}
	abdomenTypes  = []domain.ReportType{domain.ReportTypeCT, domain.ReportTypeUltrasound}
	thoraxTypes   = []domain.ReportType{domain.ReportTypeCT, domain.ReportTypeOncology}
	breastTypes   = []domain.ReportType{domain.ReportTypeMammography, domain.ReportTypePathology, domain.ReportTypeOncology, domain.ReportTypeUltrasound}
	oncologyTypes = []domain.ReportType{domain.ReportTypeOncology, domain.ReportTypeCT, domain.ReportTypePathology}
	cardiacTypes  = []domain.ReportType{domain.ReportTypeCardiac, domain.ReportTypeCT, domain.ReportTypeUltrasound}
)

// DefaultEntries returns the built-in ICD-10-GM keyword catalog.
func DefaultEntries() []Entry {
	return []Entry{
		// Spine
		{Code: "M48.06", Description: "Spinal(kanal)stenose, Lumbalbereich", DescriptionEN: "Spinal stenosis, lumbar region", Category: "Wirbelsäule",
			Keywords: []string{"spinalkanalstenose", "spinalkanaleinengung", "spinal stenosis", "spinal canal stenosis"}, ReportTypes: spineTypes},
		{Code: "M51.2", Description: "Sonstige näher bezeichnete Bandscheibenverlagerung", DescriptionEN: "Other specified intervertebral disc displacement", Category: "Wirbelsäule",
			Keywords: []string{"bandscheibenvorfall", "bandscheibenprolaps", "protrusion", "prolaps", "extrusion", "herniation", "disc bulging"}, ReportTypes: spineTypes},
		{Code: "M47.8", Description: "Sonstige Spondylose", DescriptionEN: "Other spondylosis", Category: "Wirbelsäule",
			Keywords: []string{"spondylarthrose", "spondylose", "facettengelenksarthrose", "spondylosis", "facet arthrosis"}, ReportTypes: spineTypes},
		{Code: "M42.1", Description: "Osteochondrose der Wirbelsäule beim Erwachsenen", DescriptionEN: "Adult osteochondrosis of spine", Category: "Wirbelsäule",
			Keywords: []string{"osteochondrose", "osteochondrosis"}, ReportTypes: spineTypes},
		{Code: "M54.1", Description: "Radikulopathie", DescriptionEN: "Radiculopathy", Category: "Wirbelsäule",
			Keywords: []string{"wurzelkompression", "radikulopath", "radiculopath", "nerve root compression"}, ReportTypes: spineTypes},
		{Code: "M43.1", Description: "Spondylolisthesis", DescriptionEN: "Spondylolisthesis", Category: "Wirbelsäule",
			Keywords: []string{"spondylolisthesis", "listhese", "wirbelgleiten"}, ReportTypes: spineTypes},

		// Abdomen
		{Code: "K76.0", Description: "Fettleber", DescriptionEN: "Fatty liver", Category: "Abdomen",
			Keywords: []string{"steatosis hepatis", "fettleber", "leberverfettung", "hepatic steatosis", "fatty liver"}, ReportTypes: abdomenTypes},
		{Code: "K80.2", Description: "Gallenblasenstein ohne Cholezystitis", DescriptionEN: "Calculus of gallbladder without cholecystitis", Category: "Abdomen",
			Keywords: []string{"cholezystolith", "cholecystolith", "gallenstein", "gallenblasenstein", "cholelithiasis", "gallstone"}, ReportTypes: abdomenTypes},
		{Code: "K76.8", Description: "Sonstige näher bezeichnete Krankheiten der Leber", DescriptionEN: "Other specified diseases of liver", Category: "Abdomen",
			Keywords: []string{"leberzyste", "hepatic cyst", "liver cyst"}, ReportTypes: abdomenTypes},
		{Code: "N28.1", Description: "Zyste der Niere", DescriptionEN: "Cyst of kidney", Category: "Abdomen",
			Keywords: []string{"nierenzyste", "renal cyst", "kidney cyst"}, ReportTypes: abdomenTypes},
		{Code: "N20.0", Description: "Nierenstein", DescriptionEN: "Calculus of kidney", Category: "Abdomen",
			Keywords: []string{"nephrolith", "nierenstein", "kidney stone", "renal calculus"}, ReportTypes: abdomenTypes},
		{Code: "R16.1", Description: "Splenomegalie", DescriptionEN: "Splenomegaly", Category: "Abdomen",
			Keywords: []string{"splenomegal"}, ReportTypes: abdomenTypes},
		{Code: "R16.0", Description: "Hepatomegalie", DescriptionEN: "Hepatomegaly", Category: "Abdomen",
			Keywords: []string{"hepatomegal"}, ReportTypes: abdomenTypes},
		{Code: "I71.4", Description: "Aneurysma der Aorta abdominalis, ohne Angabe einer Ruptur", DescriptionEN: "Abdominal aortic aneurysm, without rupture", Category: "Gefäße",
			Keywords: []string{"bauchaortenaneurysma", "aortenaneurysma", "abdominal aortic aneurysm"}, ReportTypes: abdomenTypes},

		// Thorax
		{Code: "J18.9", Description: "Pneumonie, nicht näher bezeichnet", DescriptionEN: "Pneumonia, unspecified", Category: "Thorax",
			Keywords: []string{"pneumonie", "pneumonia", "pneumonisches infiltrat"}, ReportTypes: thoraxTypes},
		{Code: "J90", Description: "Pleuraerguss, andernorts nicht klassifiziert", DescriptionEN: "Pleural effusion, not elsewhere classified", Category: "Thorax",
			Keywords: []string{"pleuraerguss", "pleural effusion"}, ReportTypes: thoraxTypes},
		{Code: "I26.9", Description: "Lungenembolie ohne Angabe eines akuten Cor pulmonale", DescriptionEN: "Pulmonary embolism without acute cor pulmonale", Category: "Thorax",
			Keywords: []string{"lungenembolie", "lungenarterienembolie", "pulmonary embolism"}, ReportTypes: thoraxTypes},
		{Code: "R91", Description: "Abnorme Befunde bei der bildgebenden Diagnostik der Lunge", DescriptionEN: "Abnormal findings on diagnostic imaging of lung", Category: "Thorax",
			Keywords: []string{"lungenrundherd", "rundherd", "lungenknoten", "pulmonary nodule"}, ReportTypes: thoraxTypes},

		// Neuro
		{Code: "I63.9", Description: "Hirninfarkt, nicht näher bezeichnet", DescriptionEN: "Cerebral infarction, unspecified", Category: "Neuro",
			Keywords: []string{"hirninfarkt", "territorialinfarkt", "cerebral infarction", "stroke"}, ReportTypes: []domain.ReportType{domain.ReportTypeCT}},
		{Code: "I62.9", Description: "Intrakranielle Blutung (nichttraumatisch), nicht näher bezeichnet", DescriptionEN: "Nontraumatic intracranial haemorrhage, unspecified", Category: "Neuro",
			Keywords: []string{"intrakranielle blutung", "hirnblutung", "intracranial hemorrhage"}, ReportTypes: []domain.ReportType{domain.ReportTypeCT}},

		// Trauma
		{Code: "T14.2", Description: "Fraktur an einer nicht näher bezeichneten Körperregion", DescriptionEN: "Fracture of unspecified body region", Category: "Trauma",
			Keywords: []string{"fraktur", "fracture"}, ReportTypes: []domain.ReportType{domain.ReportTypeCT, domain.ReportTypeSpineMRI}},

		// Thyroid
		{Code: "E04.1", Description: "Nichttoxischer solitärer Schilddrüsenknoten", DescriptionEN: "Nontoxic single thyroid nodule", Category: "Hals",
			Keywords: []string{"schilddrüsenknoten", "thyroid nodule"}, ReportTypes: []domain.ReportType{domain.ReportTypeUltrasound, domain.ReportTypeCT}},

		// Breast
		{Code: "R92", Description: "Abnorme Befunde bei der bildgebenden Diagnostik der Mamma", DescriptionEN: "Abnormal findings on diagnostic imaging of breast", Category: "Mamma",
			Keywords: []string{"mikrokalk", "architekturstörung", "microcalcification", "architectural distortion"}, ReportTypes: breastTypes},
		{Code: "N60.0", Description: "Solitärzyste der Mamma", DescriptionEN: "Solitary cyst of breast", Category: "Mamma",
			Keywords: []string{"mammazyste", "zyste", "breast cyst"}, ReportTypes: []domain.ReportType{domain.ReportTypeMammography}},
		{Code: "D24", Description: "Gutartige Neubildung der Brustdrüse", DescriptionEN: "Benign neoplasm of breast", Category: "Mamma",
			Keywords: []string{"fibroadenom"}, ReportTypes: breastTypes},
		{Code: "D05.1", Description: "Carcinoma in situ der Milchgänge", DescriptionEN: "Intraductal carcinoma in situ", Category: "Mamma",
			Keywords: []string{"dcis", "duktales carcinoma in situ", "ductal carcinoma in situ"}, ReportTypes: breastTypes},
		{Code: "C50.9", Description: "Bösartige Neubildung der Brustdrüse, nicht näher bezeichnet", DescriptionEN: "Malignant neoplasm of breast, unspecified", Category: "Mamma",
			Keywords: []string{"mammakarzinom", "invasiv duktal", "invasives karzinom", "breast cancer", "invasive ductal"}, ReportTypes: breastTypes},

		// Oncology
		{Code: "C78.7", Description: "Sekundäre bösartige Neubildung der Leber", DescriptionEN: "Secondary malignant neoplasm of liver", Category: "Onkologie",
			Keywords: []string{"lebermetast", "hepatische metast", "liver metast"}, ReportTypes: oncologyTypes},
		{Code: "C78.0", Description: "Sekundäre bösartige Neubildung der Lunge", DescriptionEN: "Secondary malignant neoplasm of lung", Category: "Onkologie",
			Keywords: []string{"lungenmetast", "pulmonale metast", "lung metast", "pulmonary metast"}, ReportTypes: oncologyTypes},
		{Code: "C79.5", Description: "Sekundäre bösartige Neubildung des Knochens und des Knochenmarkes", DescriptionEN: "Secondary malignant neoplasm of bone and bone marrow", Category: "Onkologie",
			Keywords: []string{"knochenmetast", "ossäre metast", "bone metast", "osseous metast"}, ReportTypes: oncologyTypes},
		{Code: "C79.3", Description: "Sekundäre bösartige Neubildung des Gehirns und der Hirnhäute", DescriptionEN: "Secondary malignant neoplasm of brain and cerebral meninges", Category: "Onkologie",
			Keywords: []string{"hirnmetast", "zerebrale metast", "brain metast"}, ReportTypes: oncologyTypes},
		{Code: "C77.9", Description: "Sekundäre bösartige Neubildung der Lymphknoten, nicht näher bezeichnet", DescriptionEN: "Secondary malignant neoplasm of lymph node, unspecified", Category: "Onkologie",
			Keywords: []string{"lymphknotenmetast", "nodale metast", "lymph node metast"}, ReportTypes: oncologyTypes},
		{Code: "C34.9", Description: "Bösartige Neubildung der Bronchien und der Lunge, nicht näher bezeichnet", DescriptionEN: "Malignant neoplasm of bronchus or lung, unspecified", Category: "Onkologie",
			Keywords: []string{"bronchialkarzinom", "lungenkarzinom", "lung cancer"}, ReportTypes: oncologyTypes},
		{Code: "C18.9", Description: "Bösartige Neubildung des Kolons, nicht näher bezeichnet", DescriptionEN: "Malignant neoplasm of colon, unspecified", Category: "Onkologie",
			Keywords: []string{"kolonkarzinom", "kolorektales karzinom", "colon cancer", "colorectal cancer"}, ReportTypes: oncologyTypes},
		{Code: "C61", Description: "Bösartige Neubildung der Prostata", DescriptionEN: "Malignant neoplasm of prostate", Category: "Onkologie",
			Keywords: []string{"prostatakarzinom", "prostate cancer"}, ReportTypes: oncologyTypes},

		// Cardiac
		{Code: "I50.9", Description: "Herzinsuffizienz, nicht näher bezeichnet", DescriptionEN: "Heart failure, unspecified", Category: "Kardiologie",
			Keywords: []string{"herzinsuffizienz", "eingeschränkte pumpfunktion", "reduzierte ejektionsfraktion", "heart failure"}, ReportTypes: cardiacTypes},
		{Code: "I34.0", Description: "Mitralklappeninsuffizienz", DescriptionEN: "Mitral (valve) insufficiency", Category: "Kardiologie",
			Keywords: []string{"mitralklappeninsuffizienz", "mitralinsuffizienz", "mitral regurgitation"}, ReportTypes: cardiacTypes},
		{Code: "I35.0", Description: "Aortenklappenstenose", DescriptionEN: "Aortic (valve) stenosis", Category: "Kardiologie",
			Keywords: []string{"aortenklappenstenose", "aortenstenose", "aortic stenosis"}, ReportTypes: cardiacTypes},
		{Code: "I25.1", Description: "Atherosklerotische Herzkrankheit", DescriptionEN: "Atherosclerotic heart disease", Category: "Kardiologie",
			Keywords: []string{"koronarsklerose", "koronare herzkrankheit", "coronary artery disease", "agatston"}, ReportTypes: cardiacTypes},
		{Code: "I31.3", Description: "Perikarderguss (nichtentzündlich)", DescriptionEN: "Pericardial effusion (noninflammatory)", Category: "Kardiologie",
			Keywords: []string{"perikarderguss", "pericardial effusion"}, ReportTypes: cardiacTypes},
	}
}

// DefaultCatalog returns a catalog of the built-in entries.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultEntries())
}
