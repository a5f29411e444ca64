// Package share parses ownership-share expressions found in Czech business
// registry (obchodní rejstřík) records. The values are free-form text mixing
// percentages ("50 %", "2;25 PROCENTA"), fractions ("1/3", "1;3") and labeled
// clauses ("obchodni_podil: 1/2", "hlasovaci_prava: 30 %", "splaceno: 100
// PROCENTA"). The registry uses ';' both as a decimal separator and as a
// fraction separator; layer precedence disambiguates.
package share

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnparseable is returned by Require when no layer yields a value.
var ErrUnparseable = errors.New("share text unparseable")

var (
	pctRe      = regexp.MustCompile(`(\d+(?:[.,;]\d+)?)\s*%`)
	procentaRe = regexp.MustCompile(`(?i)(\d+(?:[.,;]\d+)?)\s*PROCENTA`)

	fracSlashRe = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
	fracSemiRe  = regexp.MustCompile(`(?i)(\d+)\s*;\s*(\d+)\s*(ZLOMEK|TEXT)?`)

	obchodniPodilFracRe = regexp.MustCompile(`(?i)obchodn[íi][_ ]?pod[íi]l\s*:\s*(\d+)\s*[/;]\s*(\d+)`)
	obchodniPodilPctRe  = regexp.MustCompile(`(?i)obchodn[íi][_ ]?pod[íi]l\s*:\s*(\d+(?:[.,;]\d+)?)\s*(?:%|PROCENTA)`)

	hlasovaciPravaPctRe = regexp.MustCompile(`(?i)hlasovac[íi][_ ]?pr[áa]va\s*:\s*(\d+(?:[.,;]\d+)?)\s*(?:%|PROCENTA)`)
	splacenoFieldRe     = regexp.MustCompile(`(?i)splaceno\s*:\s*\d+(?:[.,;]\d+)?\s*PROCENTA`)

	efektivneRe = regexp.MustCompile(`(?i)efektivn[ěe]\s+(\d+(?:[.,;]\d+)?)\s*%`)

	pctTailRe = regexp.MustCompile(`(?i)^\s*(?:%|PROCENTA)`)
)

// Decimal converts a registry numeral to a float. ',', '.' and ';' are all
// accepted as the decimal separator ("2;25" means 2.25).
func Decimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, ";", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Parse converts share text to a fraction in [0,1]. The first matching layer
// wins; within a layer all matches are summed:
//
//  1. "obchodni_podil" clauses (fractions and percentages),
//  2. "hlasovaci_prava" clauses (percentages),
//  3. generic fractions a/b and a;b,
//  4. generic percentages X% / X PROCENTA.
//
// "splaceno: … PROCENTA" (paid-in percentage) is stripped before matching and
// never counted. Returns false when nothing matches.
func Parse(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	s = splacenoFieldRe.ReplaceAllString(s, "")

	// 1) obchodni_podil clauses
	total, found := 0.0, false
	for _, m := range obchodniPodilFracRe.FindAllStringSubmatch(s, -1) {
		if v, ok := fracValue(m[1], m[2]); ok {
			total += v
			found = true
		}
	}
	for _, m := range obchodniPodilPctRe.FindAllStringSubmatch(s, -1) {
		if v, ok := Decimal(m[1]); ok {
			total += v / 100.0
			found = true
		}
	}
	if found {
		return clamp01(total), true
	}

	// 2) hlasovaci_prava clauses
	for _, m := range hlasovaciPravaPctRe.FindAllStringSubmatch(s, -1) {
		if v, ok := Decimal(m[1]); ok {
			total += v / 100.0
			found = true
		}
	}
	if found {
		return clamp01(total), true
	}

	// 3) generic fractions
	for _, m := range fracSlashRe.FindAllStringSubmatch(s, -1) {
		if v, ok := fracValue(m[1], m[2]); ok {
			total += v
			found = true
		}
	}
	for _, idx := range fracSemiRe.FindAllStringSubmatchIndex(s, -1) {
		// "2;25 PROCENTA" is a decimal percentage, not the fraction 2/25.
		if pctTailRe.MatchString(s[idx[1]:]) {
			continue
		}
		if v, ok := fracValue(s[idx[2]:idx[3]], s[idx[4]:idx[5]]); ok {
			total += v
			found = true
		}
	}
	if found {
		return clamp01(total), true
	}

	// 4) generic percentages
	for _, m := range pctRe.FindAllStringSubmatch(s, -1) {
		if v, ok := Decimal(m[1]); ok {
			total += v / 100.0
			found = true
		}
	}
	for _, m := range procentaRe.FindAllStringSubmatch(s, -1) {
		if v, ok := Decimal(m[1]); ok {
			total += v / 100.0
			found = true
		}
	}
	if found {
		return clamp01(total), true
	}

	return 0, false
}

// ParsePercent is Parse scaled to percent (0..100), the form the extractor
// stores on owner records.
func ParsePercent(text string) (float64, bool) {
	v, ok := Parse(text)
	if !ok {
		return 0, false
	}
	return v * 100.0, true
}

// ParseEffective finds an "efektivně X %" marker and returns X/100 in [0,1].
// The marker denotes an already parent-multiplied value and short-circuits
// the effective-share computation on the line that carries it.
func ParseEffective(text string) (float64, bool) {
	m := efektivneRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	v, ok := Decimal(m[1])
	if !ok {
		return 0, false
	}
	return clamp01(v / 100.0), true
}

// Require is Parse for callers that need a value; it fails with
// ErrUnparseable when no layer matched.
func Require(text string) (float64, error) {
	v, ok := Parse(text)
	if !ok {
		return 0, ErrUnparseable
	}
	return v, nil
}

func fracValue(num, den string) (float64, bool) {
	a, okA := Decimal(num)
	b, okB := Decimal(den)
	if !okA || !okB || b == 0 {
		// division by zero yields no value for this term
		return 0, false
	}
	return a / b, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
