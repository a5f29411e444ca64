package resolve

import (
	"regexp"
	"strings"
)

// Line is one entry of the depth-tagged ownership trace. A company header
// sits at depth d, its label groups at d+1, each owner at d+2 and a child
// company's header at d+3. EffectivePct is the cumulative percentage along
// the path (0..100) or nil when unknown.
type Line struct {
	Depth        int
	Label        string
	Text         string
	EffectivePct *float64
}

// Warning kinds surfaced alongside the trace.
const (
	WarnError      = "error"
	WarnUnresolved = "unresolved"
)

// Warning is a structured notice emitted in walk order.
type Warning struct {
	Kind string
	ICO  string
	Name string
	Text string
}

var (
	companyHeaderRe = regexp.MustCompile(`^(.+)\s+\(IČO\s+(\d{8})\)\s*$`)
	icoInLineRe     = regexp.MustCompile(`\(IČO\s+(\d{7,8})\)`)
	dashSplitRe     = regexp.MustCompile(`\s+[—–-]\s+`)
)

// ParseCompanyHeader matches a company header line "Name (IČO 12345678)".
// Owner lines ("Name — 50.00% (IČO 12345678)") end in the same marker; the
// spaced dash separating name from share text disqualifies them.
func ParseCompanyHeader(text string) (name, ico string, ok bool) {
	m := companyHeaderRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", "", false
	}
	if dashSplitRe.MatchString(m[1]) {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}

// CompanyICOInLine finds a "(IČO …)" marker anywhere in an owner line.
func CompanyICOInLine(text string) (ico string, ok bool) {
	m := icoInLineRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	ico = m[1]
	if len(ico) == 7 {
		ico = "0" + ico
	}
	return ico, true
}

// SplitNameShare splits an owner line "Name — share…" on the first dash.
func SplitNameShare(text string) (name, shareText string, ok bool) {
	parts := dashSplitRe.Split(strings.TrimSpace(text), 2)
	if len(parts) != 2 {
		return strings.TrimSpace(text), "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// IsLabelLine reports whether a trace line is a label group ("Společníci:").
func IsLabelLine(text string) bool {
	return strings.HasSuffix(strings.TrimSpace(text), ":")
}

// IsNoticeLine reports whether a trace line is a warning/truncation notice
// rather than structure.
func IsNoticeLine(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "⚠️")
}
