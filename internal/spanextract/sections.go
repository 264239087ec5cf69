package spanextract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"medreport/internal/domain"
)

// headerPattern pairs a vocabulary term with its compiled "term:" matcher.
type headerPattern struct {
	headerTerm
	re *regexp.Regexp
}

var (
	headerPatterns = compileHeaderPatterns()
	endMarkerRe    = compileEndMarkers()
)

func compileHeaderPatterns() []headerPattern {
	out := make([]headerPattern, 0, len(headerVocabulary))
	for _, h := range headerVocabulary {
		out = append(out, headerPattern{
			headerTerm: h,
			re:         regexp.MustCompile(`(?i)` + regexp.QuoteMeta(h.term) + `:`),
		})
	}
	return out
}

func compileEndMarkers() *regexp.Regexp {
	quoted := make([]string, len(endMarkers))
	for i, m := range endMarkers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

// headerCandidate is one occurrence of "term:" in the source.
type headerCandidate struct {
	term   headerTerm
	start  int // first byte of the header term
	end    int // first byte after the colon
	header string
}

// ExtractSections segments text at known section headers. Sections are returned in
// ascending StartPos order, never overlap, and each Content equals
// strings.TrimSpace(text[StartPos:EndPos]). Sections with empty content are skipped.
func ExtractSections(text string) []domain.ExtractedSection {
	candidates := findHeaderCandidates(text)
	if len(candidates) == 0 {
		return nil
	}

	sections := make([]domain.ExtractedSection, 0, len(candidates))
	for i, c := range candidates {
		contentStart := c.end
		var contentEnd int
		if i+1 < len(candidates) {
			contentEnd = candidates[i+1].start
		} else {
			contentEnd = lastSectionEnd(text, contentStart)
		}

		content := strings.TrimSpace(text[contentStart:contentEnd])
		if content == "" {
			continue
		}
		sections = append(sections, domain.ExtractedSection{
			Name:     c.term.term,
			Header:   c.header,
			Family:   c.term.family,
			StartPos: contentStart,
			EndPos:   contentEnd,
			Content:  content,
		})
	}
	return sections
}

// findHeaderCandidates collects every header occurrence, sorted by position. When two
// terms overlap (e.g. "Klinische Fragestellung:" and "Fragestellung:") the earlier,
// longer occurrence wins.
func findHeaderCandidates(text string) []headerCandidate {
	var all []headerCandidate
	for _, p := range headerPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if !atWordStart(text, loc[0]) {
				continue
			}
			all = append(all, headerCandidate{
				term:   p.headerTerm,
				start:  loc[0],
				end:    loc[1],
				header: text[loc[0]:loc[1]],
			})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end > all[j].end
	})

	kept := all[:0]
	lastEnd := -1
	for _, c := range all {
		if c.start < lastEnd {
			continue
		}
		kept = append(kept, c)
		lastEnd = c.end
	}
	return kept
}

// atWordStart reports whether pos is at the start of text, a line, or a word.
func atWordStart(text string, pos int) bool {
	if pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// lastSectionEnd is the first end marker after from, or len(text).
func lastSectionEnd(text string, from int) int {
	if loc := endMarkerRe.FindStringIndex(text[from:]); loc != nil {
		return from + loc[0]
	}
	return len(text)
}

// SectionContentSpan returns the byte span of a section's trimmed content inside text.
func SectionContentSpan(text string, s domain.ExtractedSection) (domain.Span, bool) {
	if s.StartPos < 0 || s.EndPos > len(text) || s.StartPos >= s.EndPos {
		return domain.Span{}, false
	}
	return trimmedSpan(text, s.StartPos, s.EndPos)
}
