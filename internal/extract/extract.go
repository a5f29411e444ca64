// Package extract selects the currently valid owners from a registry
// payload: it picks the primary record, drops deleted history, deduplicates
// by identity keeping the newest registration and parses share values.
package extract

import (
	"fmt"
	"strings"
	"time"

	"ares-ubo/internal/ares"
	"ares-ubo/internal/names"
	"ares-ubo/internal/share"
)

// Kind distinguishes natural and legal persons.
type Kind string

const (
	KindPerson  Kind = "PERSON"
	KindCompany Kind = "COMPANY"
)

// Default label groups; the registry may carry its own organ names.
const (
	LabelMembers      = "Společníci"
	LabelShareholders = "Akcionáři"
	LabelManual       = "Manuálně doplněno"
)

// Owner is one current owner of an entity. SharePct is in percent (0..100)
// when parseable; ShareRaw retains the compound text for display and
// fallback parsing.
type Owner struct {
	Kind     Kind
	Name     string
	ICO      string // companies only, 8 digits
	SharePct *float64
	ShareRaw string
	Label    string
}

const (
	unknownEntityName = "Neznámý subjekt"
	unknownPersonName = "Fyzická osoba (neznámá)"
)

// ExtractCurrentOwners returns the entity's registry ID, display name and
// current owners. Historical (deleted) entries are skipped; duplicates within
// the same (label, kind, identity) key keep the newest registration date.
func ExtractCurrentOwners(p *ares.VRPayload) (ico, name string, owners []Owner) {
	ico = ares.NormalizeICO(p.ICOID)
	name = unknownEntityName

	rec := pickPrimaryRecord(p.Zaznamy)
	if rec == nil {
		return ico, name, nil
	}

	if n := displayName(rec.ObchodniJmeno); n != "" {
		name = n
	}

	dedup := newOwnerDedup()

	for _, blok := range rec.Spolecnici {
		if blok.DatumVymazu != "" {
			continue
		}
		label := blok.NazevOrganu
		if label == "" {
			label = LabelMembers
		}
		for _, sp := range blok.Spolecnik {
			if sp.DatumVymazu != "" || sp.Osoba == nil {
				continue
			}
			kind, oName, oICO, ok := identify(sp.Osoba.FyzickaOsoba, sp.Osoba.PravnickaOsoba)
			if !ok {
				continue
			}
			pct, raw := parsePodilList(sp.Podil)
			dedup.add(ownerCandidate{
				owner: Owner{
					Kind:     kind,
					Name:     oName,
					ICO:      oICO,
					SharePct: pct,
					ShareRaw: raw,
					Label:    label,
				},
				registered: sp.DatumZapisu,
			})
		}
	}

	for _, org := range rec.Akcionari {
		if org.DatumVymazu != "" {
			continue
		}
		label := org.NazevOrganu
		if label == "" {
			label = LabelShareholders
		}
		sole := isSoleShareholderHeader(org.NazevOrganu)
		for _, m := range org.ClenoveOrganu {
			if m.DatumVymazu != "" {
				continue
			}
			kind, oName, oICO, ok := identify(m.FyzickaOsoba, m.PravnickaOsoba)
			if !ok {
				continue
			}
			pct, raw := parsePodilList(m.Podil)
			if pct == nil && raw == "" && sole {
				// "jediný akcionář" without explicit share holds everything
				hundred := 100.0
				pct = &hundred
			}
			dedup.add(ownerCandidate{
				owner: Owner{
					Kind:     kind,
					Name:     oName,
					ICO:      oICO,
					SharePct: pct,
					ShareRaw: raw,
					Label:    label,
				},
				registered: m.DatumZapisu,
			})
		}
	}

	return ico, name, dedup.owners()
}

func pickPrimaryRecord(zaznamy []ares.Zaznam) *ares.Zaznam {
	if len(zaznamy) == 0 {
		return nil
	}
	for i := range zaznamy {
		if zaznamy[i].PrimarniZaznam {
			return &zaznamy[i]
		}
	}
	return &zaznamy[0]
}

// displayName picks the most recent active name, else the most recent entry
// overall.
func displayName(oj []ares.HistoricValue) string {
	for i := len(oj) - 1; i >= 0; i-- {
		if oj[i].Active() && oj[i].Hodnota != "" {
			return oj[i].Hodnota
		}
	}
	if len(oj) > 0 {
		return oj[len(oj)-1].Hodnota
	}
	return ""
}

func identify(fos *ares.FyzickaOsoba, pos *ares.PravnickaOsoba) (Kind, string, string, bool) {
	switch {
	case pos != nil:
		ico := ares.NormalizeICO(pos.ICO)
		name := strings.TrimSpace(pos.ObchodniJmeno)
		if name == "" {
			name = strings.TrimSpace(pos.Nazev)
		}
		if name == "" {
			id := ico
			if id == "" {
				id = "?"
			}
			name = fmt.Sprintf("Společnost (IČO %s)", id)
		}
		return KindCompany, name, ico, true
	case fos != nil:
		return KindPerson, personName(fos), "", true
	default:
		return "", "", "", false
	}
}

func personName(fos *ares.FyzickaOsoba) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{fos.TitulPredJmenem, fos.Jmeno, fos.Prijmeni} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return unknownPersonName
	}
	return strings.Join(parts, " ")
}

// parsePodilList sums the active share entries of one member. Percent-typed
// values are converted directly; everything else goes through the text
// parser. Returns nil when no entry yields a number.
func parsePodilList(podily []ares.Podil) (*float64, string) {
	sum := 0.0
	found := false
	var rawParts []string

	for _, p := range podily {
		if !p.Active() {
			continue
		}
		if raw := composeShareRaw(p); raw != "" {
			rawParts = append(rawParts, raw)
		}
		vp := p.VelikostPodilu
		if vp == nil || vp.Hodnota == "" {
			continue
		}
		text := vp.Hodnota.String()
		if strings.EqualFold(vp.TypObnos, "PROCENTA") {
			if v, ok := share.Decimal(text); ok {
				sum += v
				found = true
				continue
			}
		}
		if v, ok := share.ParsePercent(text); ok {
			sum += v
			found = true
		}
	}

	raw := strings.Join(rawParts, "; ")
	if len(raw) > 1000 {
		raw = raw[:1000]
	}
	if !found {
		return nil, raw
	}
	if sum < 0 {
		sum = 0
	}
	if sum > 100 {
		sum = 100
	}
	return &sum, raw
}

// composeShareRaw builds the compound "vklad/velikost/splaceno" text kept for
// display and fallback parsing.
func composeShareRaw(p ares.Podil) string {
	var parts []string
	add := func(field string, o *ares.Obnos) {
		if o == nil || o.Hodnota == "" {
			return
		}
		s := fmt.Sprintf("%s:%s %s", field, o.Hodnota, o.TypObnos)
		parts = append(parts, strings.TrimSpace(s))
	}
	add("vklad", p.Vklad)
	add("velikost", p.VelikostPodilu)
	add("splaceno", p.Splaceni)
	return strings.Join(parts, "; ")
}

func isSoleShareholderHeader(header string) bool {
	return strings.Contains(names.Fold(header), "jediny akcionar")
}

// ownerCandidate pairs an owner with its registration date for dedup.
type ownerCandidate struct {
	owner      Owner
	registered string
}

type ownerDedup struct {
	order  []string
	latest map[string]ownerCandidate
}

func newOwnerDedup() *ownerDedup {
	return &ownerDedup{latest: make(map[string]ownerCandidate)}
}

func (d *ownerDedup) add(c ownerCandidate) {
	ident := c.owner.ICO
	if c.owner.Kind == KindPerson || ident == "" {
		ident = c.owner.Name
	}
	key := c.owner.Label + "\x00" + string(c.owner.Kind) + "\x00" + ident

	prev, seen := d.latest[key]
	if !seen {
		d.order = append(d.order, key)
		d.latest[key] = c
		return
	}
	if parseDate(prev.registered).Before(parseDate(c.registered)) {
		d.latest[key] = c
	}
}

func (d *ownerDedup) owners() []Owner {
	if len(d.order) == 0 {
		return nil
	}
	out := make([]Owner, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.latest[key].owner)
	}
	return out
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
