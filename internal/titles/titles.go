// Package titles provides the text canonicalization used to compare movie
// titles from different sources. Chart feeds, library entries, and search
// results disagree on punctuation, casing, articles, and numbering; every
// comparison in the matcher goes through these helpers first.
package titles

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9\s]+`)
	reMultiSpace = regexp.MustCompile(`\s+`)
	reYearParen  = regexp.MustCompile(`\((\d{4})\)`)
)

// articles are leading words ignored when comparing titles. The Romance
// language entries cover common release titles distributed untranslated.
var articles = []string{"the", "a", "an", "le", "la", "les", "el", "los", "las"}

// Normalize lowers a title into its canonical comparison form: compatibility
// normalized, diacritics stripped, lowercased, punctuation removed, and
// whitespace collapsed.
func Normalize(title string) string {
	s := strings.TrimSpace(title)
	if s == "" {
		return ""
	}

	s = norm.NFKC.String(s)
	s = stripDiacritics(s)
	s = strings.ToLower(s)
	s = reNonAlnum.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripDiacritics removes combining marks after NFD decomposition.
func stripDiacritics(s string) string {
	decomp := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomp))
	for _, r := range decomp {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StripArticles removes a single leading article from an already normalized
// title. It returns the input unchanged when no article leads it or when
// the article is the entire title.
func StripArticles(normalized string) string {
	for _, article := range articles {
		prefix := article + " "
		if strings.HasPrefix(normalized, prefix) {
			rest := strings.TrimSpace(normalized[len(prefix):])
			if rest != "" {
				return rest
			}
		}
	}
	return normalized
}

// BaseTitle reduces a raw title to its franchise stem: everything after the
// first colon, dash separator, parenthesis, or bracket is dropped, then
// trailing sequel numbers and Roman numerals are trimmed.
func BaseTitle(title string) string {
	base := title
	for _, sep := range []string{":", " - ", "(", "["} {
		if idx := strings.Index(base, sep); idx >= 0 {
			base = base[:idx]
		}
	}
	base = strings.TrimSpace(base)

	for {
		fields := strings.Fields(base)
		if len(fields) < 2 {
			break
		}
		last := fields[len(fields)-1]
		if !isSequelToken(last) {
			break
		}
		base = strings.TrimSpace(strings.Join(fields[:len(fields)-1], " "))
	}
	return base
}

// ExtractYear returns the four digit year embedded in a "(YYYY)" suffix,
// or 0 when the title carries none.
func ExtractYear(title string) int {
	m := reYearParen.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return year
}

// LooksLikeSequel reports whether a title's final token is a sequel marker,
// either a bare number or a Roman numeral.
func LooksLikeSequel(title string) bool {
	fields := strings.Fields(strings.TrimSpace(title))
	if len(fields) < 2 {
		return false
	}
	return isSequelToken(fields[len(fields)-1])
}

func isSequelToken(token string) bool {
	trimmed := strings.TrimRight(token, ".,")
	if trimmed == "" {
		return false
	}
	if _, err := strconv.Atoi(trimmed); err == nil {
		return true
	}
	_, ok := romanValue(strings.ToUpper(trimmed))
	return ok
}
