// Package textfilter cleans raw narrator output: stripping markdown fences
// and stray markers before JSON parsing, and filtering profanity from the
// prose when the content rating requires it.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	fenceRe  = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	markerRe = regexp.MustCompile(`(?m)^\s*(?:NARRATIVE|RESPONSE|OUTPUT)\s*:\s*`)
)

// StripFences removes a surrounding markdown code fence, returning the inner
// content. Text without a fence is returned trimmed.
func StripFences(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// ExtractJSON returns the first balanced top-level JSON object in the text,
// tolerating prose before and after it. Returns "" when no object is found.
// Brace counting ignores braces inside JSON strings.
func ExtractJSON(s string) string {
	s = StripFences(s)
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// StripMarkers removes leading section markers some models prepend to prose.
func StripMarkers(s string) string {
	return strings.TrimSpace(markerRe.ReplaceAllString(s, ""))
}

// Words filtered at PG-13 and below, with family-friendly replacements.
var profanity = map[string]string{
	"fuck":     "fudge",
	"shit":     "shoot",
	"damn":     "dang",
	"hell":     "heck",
	"ass":      "butt",
	"bitch":    "jerk",
	"bastard":  "scoundrel",
	"asshole":  "jerk",
	"goddamn":  "gosh-dang",
	"bullshit": "baloney",
	"prick":    "jerk",
}

// ProfanityFilter replaces profanity in narrator prose with tamer words.
type ProfanityFilter struct {
	regexes map[string]*regexp.Regexp
}

// NewProfanityFilter compiles the word-boundary patterns once.
func NewProfanityFilter() *ProfanityFilter {
	pf := &ProfanityFilter{regexes: make(map[string]*regexp.Regexp, len(profanity))}
	for word := range profanity {
		pf.regexes[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return pf
}

// FilterText replaces each filtered word, preserving the case of the match.
func (pf *ProfanityFilter) FilterText(text string) string {
	result := text
	for word, replacement := range profanity {
		result = pf.regexes[word].ReplaceAllStringFunc(result, func(match string) string {
			return preserveCase(match, replacement)
		})
	}
	return result
}

// ContainsProfanity reports whether the text matches any filtered word.
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	for _, re := range pf.regexes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ShouldFilterContent determines if prose should be filtered for the rating.
func ShouldFilterContent(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}

// preserveCase applies the case pattern of the original word to the
// replacement: all-upper, all-lower or title case.
func preserveCase(original, replacement string) string {
	if original == strings.ToUpper(original) {
		return strings.ToUpper(replacement)
	}
	if original == strings.ToLower(original) {
		return replacement
	}
	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}
	// Mixed case: mirror per-character case where the lengths overlap.
	out := make([]rune, 0, len(replacement))
	origRunes := []rune(original)
	for i, r := range replacement {
		if i < len(origRunes) && unicode.IsUpper(origRunes[i]) {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
