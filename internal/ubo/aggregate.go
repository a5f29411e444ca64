// Package ubo reconstructs per-person effective shares from an ownership
// trace and evaluates which natural persons qualify as ultimate beneficial
// owners under the statutory criteria.
package ubo

import (
	"sort"

	"ares-ubo/internal/resolve"
	"ares-ubo/internal/share"
)

// PathContribution records one path by which a person receives an effective
// share, kept for auditability.
type PathContribution struct {
	ParentDepth int
	ParentMult  float64
	LocalShare  *float64
	Effective   *float64
	Source      string
	Text        string
}

// PersonAggregate sums a person's effective capital and voting shares across
// all paths, clamped to [0,1].
type PersonAggregate struct {
	Name      string
	Ownership float64
	Voting    float64
	Paths     []PathContribution
}

// ComputeEffectivePersons scans the trace in order and aggregates effective
// shares per natural person. Multiplication across levels is reconstructed
// with a stack of company headers plus a pending multiplier set by the owner
// line immediately preceding a child header. Voting defaults to capital.
func ComputeEffectivePersons(lines []resolve.Line) map[string]*PersonAggregate {
	persons := make(map[string]*PersonAggregate)

	type header struct {
		depth int
		mult  float64
	}
	var stack []header
	var pendingMult *float64

	for _, ln := range lines {
		t := ln.Text
		if t == "" || resolve.IsNoticeLine(t) {
			continue
		}

		if _, _, ok := resolve.ParseCompanyHeader(t); ok {
			for len(stack) > 0 && stack[len(stack)-1].depth >= ln.Depth {
				stack = stack[:len(stack)-1]
			}
			mult := 1.0
			if len(stack) > 0 {
				mult = stack[len(stack)-1].mult
			}
			if pendingMult != nil {
				mult = *pendingMult
				pendingMult = nil
			}
			stack = append(stack, header{depth: ln.Depth, mult: mult})
			continue
		}

		if resolve.IsLabelLine(t) {
			continue
		}

		// owner line: its parent header sits two levels up
		expectedParent := ln.Depth - 2
		if expectedParent < 0 {
			expectedParent = 0
		}
		for len(stack) > 0 && stack[len(stack)-1].depth > expectedParent {
			stack = stack[:len(stack)-1]
		}
		parentMult := 1.0
		parentDepth := 0
		if len(stack) > 0 {
			parentMult = stack[len(stack)-1].mult
			parentDepth = stack[len(stack)-1].depth
		}

		var nodeEff *float64
		if ln.EffectivePct != nil {
			v := *ln.EffectivePct / 100.0
			nodeEff = &v
		}

		if _, isCompany := resolve.CompanyICOInLine(t); isCompany {
			local := companyLocalShare(t, nodeEff, parentMult)
			if local != nil {
				v := parentMult * *local
				pendingMult = &v
			} else {
				pendingMult = nil
			}
			continue
		}

		name, _, _ := resolve.SplitNameShare(t)
		entry := persons[name]
		if entry == nil {
			entry = &PersonAggregate{Name: name}
			persons[name] = entry
		}

		var local, eff *float64
		source := "unknown"
		switch {
		case nodeEff != nil:
			eff = nodeEff
			source = "node_eff"
		default:
			if v, ok := share.Parse(t); ok {
				local = &v
				e := parentMult * v
				eff = &e
				source = "text"
			} else if v, ok := share.ParseEffective(t); ok {
				eff = &v
				source = "efektivne_text"
			}
		}

		if eff != nil {
			entry.Ownership += *eff
			entry.Voting += *eff
		}
		entry.Paths = append(entry.Paths, PathContribution{
			ParentDepth: parentDepth,
			ParentMult:  parentMult,
			LocalShare:  local,
			Effective:   eff,
			Source:      source,
			Text:        t,
		})
	}

	for _, p := range persons {
		p.Ownership = clamp01(p.Ownership)
		p.Voting = clamp01(p.Voting)
	}
	return persons
}

// companyLocalShare derives a company owner's local share, preferring the
// already parent-multiplied EffectivePct from the line.
func companyLocalShare(text string, nodeEff *float64, parentMult float64) *float64 {
	if nodeEff != nil && parentMult > 0 {
		v := *nodeEff / parentMult
		return &v
	}
	if v, ok := share.Parse(text); ok {
		return &v
	}
	if v, ok := share.ParseEffective(text); ok && parentMult > 0 {
		local := v / parentMult
		return &local
	}
	return nil
}

// SortedNames returns person names in lexical order for deterministic output.
func SortedNames[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
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
