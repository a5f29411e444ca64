// Package names normalizes Czech personal names for comparison: academic
// titles and diacritics are dropped so that "Ing. Jan Novák, MBA" and
// "jan novak" compare equal.
package names

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var titlesPrefix = []string{
	"Ing. arch.", "Ing arch", "Ing.arch.",
	"Ing.", "Ing",
	"Mgr.", "Mgr",
	"Bc.", "Bc",
	"JUDr.", "JUDr",
	"MUDr.", "MUDr",
	"PhDr.", "PhDr",
	"RNDr.", "RNDr",
	"doc.", "doc",
	"prof.", "prof",
	"PhMr.", "PhMr",
	"MDDr.", "MDDr",
	"MVDr.", "MVDr",
	"ThDr.", "ThDr",
	"ThLic.", "ThLic",
}

var titlesSuffix = []string{
	"MBA", "LL.M.", "LL.M", "Ph.D.", "Ph.D", "PhD", "DiS.", "DiS",
	"CSc.", "CSc", "DBA", "MSc.", "MSc", "BA", "BBA",
	"LLB", "MA", "ACCA", "CFA",
}

var (
	accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	spaceRe        = regexp.MustCompile(`\s+`)

	suffixAfterCommaRe *regexp.Regexp
	suffixRes          []*regexp.Regexp
	prefixRes          []*regexp.Regexp
)

func init() {
	quoted := make([]string, len(titlesSuffix))
	for i, t := range titlesSuffix {
		quoted[i] = regexp.QuoteMeta(t)
	}
	suffixAfterCommaRe = regexp.MustCompile(`(?i),\s*(` + strings.Join(quoted, "|") + `)\b\.?`)
	for _, t := range titlesSuffix {
		suffixRes = append(suffixRes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(t)+`\b\.?`))
	}
	for _, t := range titlesPrefix {
		// a trailing dot already delimits the title; bare forms need a
		// following space (or end) so "Ing" cannot eat into "Ingrid"
		p := `(?i)^\s*` + regexp.QuoteMeta(t)
		if strings.HasSuffix(t, ".") {
			p += `\s*`
		} else {
			p += `\.?(?:\s+|$)`
		}
		prefixRes = append(prefixRes, regexp.MustCompile(p))
	}
}

// StripAccents removes combining marks after canonical decomposition.
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lower-cases and strips accents; used for accent-insensitive matching
// of registry headers.
func Fold(s string) string {
	return strings.ToLower(StripAccents(s))
}

// RemoveTitles drops academic titles (prefix and suffix, with or without the
// trailing period) from a personal name.
func RemoveTitles(name string) string {
	s := strings.TrimSpace(name)
	s = suffixAfterCommaRe.ReplaceAllString(s, "")
	for _, re := range suffixRes {
		s = re.ReplaceAllString(s, "")
	}
	// stacked prefixes ("doc. MUDr. …") may appear in any order
	for changed := true; changed; {
		changed = false
		for _, re := range prefixRes {
			if next := re.ReplaceAllString(s, ""); next != s {
				s = next
				changed = true
			}
		}
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Normalize produces the comparison key for a personal name: titles removed,
// accents stripped, lower-cased, whitespace collapsed.
func Normalize(name string) string {
	s := RemoveTitles(strings.TrimSpace(name))
	s = Fold(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Diff is the result of comparing our evaluated owners with an externally
// supplied list, by normalized names. Values are original display names.
type Diff struct {
	MissingInExternal []string
	ExtraInExternal   []string
}

// Equal reports whether both sides matched exactly.
func (d Diff) Equal() bool {
	return len(d.MissingInExternal) == 0 && len(d.ExtraInExternal) == 0
}

// Compare diffs two name lists under Normalize. Output slices are sorted for
// deterministic reporting.
func Compare(ours, external []string) Diff {
	ourKeys := keyed(ours)
	extKeys := keyed(external)

	var d Diff
	for k, orig := range ourKeys {
		if _, ok := extKeys[k]; !ok {
			d.MissingInExternal = append(d.MissingInExternal, orig)
		}
	}
	for k, orig := range extKeys {
		if _, ok := ourKeys[k]; !ok {
			d.ExtraInExternal = append(d.ExtraInExternal, orig)
		}
	}
	sort.Strings(d.MissingInExternal)
	sort.Strings(d.ExtraInExternal)
	return d
}

func keyed(list []string) map[string]string {
	m := make(map[string]string, len(list))
	for _, n := range list {
		if k := Normalize(n); k != "" {
			m[k] = n
		}
	}
	return m
}
