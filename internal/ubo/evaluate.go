package ubo

import (
	"fmt"
)

// DefaultThreshold is the statutory 25% threshold, as a fraction.
const DefaultThreshold = 0.25

// SumTolerance is how far Σcap/Σvote may deviate from 1.0 and still count
// as complete.
const SumTolerance = 0.001

// ManualPerson is a caller-added person with explicit shares and flags.
type ManualPerson struct {
	Name          string
	Cap           float64
	Vote          float64
	Veto          bool
	OrgMajority   bool
	SubstituteUBO bool
}

// EvalOptions carry the legal parameters and the caller's adjustments.
type EvalOptions struct {
	// Threshold is strict: a share equal to it does not qualify.
	Threshold float64

	CapOverrides  map[string]float64
	VoteOverrides map[string]float64

	VetoFlags        map[string]bool
	OrgMajorityFlags map[string]bool
	SubstituteFlags  map[string]bool

	ManualPersons []ManualPerson

	VotingBlockName    string
	VotingBlockMembers []string
}

// FinalPerson is the merged view of one person entering the UBO test.
type FinalPerson struct {
	Name          string
	Cap           float64
	Vote          float64
	Veto          bool
	OrgMajority   bool
	SubstituteUBO bool
}

// Finding is one identified UBO with the human-readable reasons.
type Finding struct {
	FinalPerson
	Reasons []string
}

// SumReport states whether the per-person shares add up to 100%.
type SumReport struct {
	TotalCap  float64
	TotalVote float64
	CapOK     bool
	VoteOK    bool
	// signed deltas against 1.0; negative means shares are missing
	CapDelta  float64
	VoteDelta float64
}

// Evaluation is the full result of the UBO determination.
type Evaluation struct {
	Persons map[string]*FinalPerson
	UBOs    []Finding
	Sums    SumReport
}

// Evaluate merges registry-derived aggregates with overrides and manual
// persons, then applies the UBO criteria: capital or voting strictly above
// the threshold, veto right, power to appoint a majority of the governing
// body, the statutory-substitute rule, and voting-block participation.
func Evaluate(persons map[string]*PersonAggregate, opts EvalOptions) *Evaluation {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}

	final := make(map[string]*FinalPerson, len(persons)+len(opts.ManualPersons))
	for name, agg := range persons {
		fp := &FinalPerson{
			Name:          name,
			Cap:           agg.Ownership,
			Vote:          agg.Voting,
			Veto:          opts.VetoFlags[name],
			OrgMajority:   opts.OrgMajorityFlags[name],
			SubstituteUBO: opts.SubstituteFlags[name],
		}
		if v, ok := opts.CapOverrides[name]; ok {
			fp.Cap = clamp01(v)
		}
		if v, ok := opts.VoteOverrides[name]; ok {
			fp.Vote = clamp01(v)
		}
		final[name] = fp
	}
	for _, m := range opts.ManualPersons {
		final[m.Name] = &FinalPerson{
			Name:          m.Name,
			Cap:           clamp01(m.Cap),
			Vote:          clamp01(m.Vote),
			Veto:          m.Veto,
			OrgMajority:   m.OrgMajority,
			SubstituteUBO: m.SubstituteUBO,
		}
	}

	ev := &Evaluation{Persons: final}
	ev.Sums = sumReport(final)

	thr := opts.Threshold
	reasons := make(map[string][]string)
	isUBO := make(map[string]bool)
	addReason := func(name, r string) {
		reasons[name] = append(reasons[name], r)
	}

	for _, name := range SortedNames(final) {
		p := final[name]
		if p.Cap > thr {
			isUBO[name] = true
			addReason(name, fmt.Sprintf("podíl na kapitálu %s > %.2f%%", FormatPct(p.Cap), thr*100.0))
		}
		if p.Vote > thr {
			isUBO[name] = true
			addReason(name, fmt.Sprintf("hlasovací práva %s > %.2f%%", FormatPct(p.Vote), thr*100.0))
		}
		if p.Veto {
			isUBO[name] = true
			addReason(name, "právo veta → rozhodující vliv")
		}
		if p.OrgMajority {
			isUBO[name] = true
			addReason(name, "jmenuje/odvolává většinu orgánu → rozhodující vliv")
		}
		if p.SubstituteUBO {
			isUBO[name] = true
			addReason(name, "náhradní skutečný majitel (§ 5 ZESM)")
		}
	}

	if len(opts.VotingBlockMembers) > 0 {
		blockTotal := 0.0
		for _, name := range opts.VotingBlockMembers {
			if p, ok := final[name]; ok {
				blockTotal += p.Vote
			}
		}
		// strictly greater; a block at exactly the threshold does not promote
		if blockTotal > thr {
			for _, name := range opts.VotingBlockMembers {
				if _, ok := final[name]; !ok {
					continue
				}
				isUBO[name] = true
				addReason(name, fmt.Sprintf("účast v voting blocku „%s“ s %s > %.2f%%",
					opts.VotingBlockName, FormatPct(blockTotal), thr*100.0))
			}
		}
	}

	for _, name := range SortedNames(final) {
		if !isUBO[name] {
			continue
		}
		ev.UBOs = append(ev.UBOs, Finding{
			FinalPerson: *final[name],
			Reasons:     reasons[name],
		})
	}
	return ev
}

func sumReport(final map[string]*FinalPerson) SumReport {
	var r SumReport
	for _, p := range final {
		r.TotalCap += clamp01(p.Cap)
		r.TotalVote += clamp01(p.Vote)
	}
	r.CapDelta = r.TotalCap - 1.0
	r.VoteDelta = r.TotalVote - 1.0
	r.CapOK = r.CapDelta >= -SumTolerance && r.CapDelta <= SumTolerance
	r.VoteOK = r.VoteDelta >= -SumTolerance && r.VoteDelta <= SumTolerance
	return r
}

// FormatPct renders a fraction as "12.34%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100.0)
}
