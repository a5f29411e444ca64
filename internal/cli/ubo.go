package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"ares-ubo/internal/resolve"
	"ares-ubo/internal/ubo"
)

// RunUBO resolves the ownership tree and evaluates the UBO criteria.
func RunUBO(ctx context.Context, d Deps, args []string) error {
	fs := flag.NewFlagSet("ubo", flag.ContinueOnError)
	ico := fs.String("ico", "", "Registry ID (IČO) of the root entity (required)")
	maxDepth := fs.Int("max-depth", d.Config.MaxDepth, "Maximum trace depth")
	manual := fs.String("manual", "", "Manual owners: target:owner=share,…")
	thresholdPct := fs.Float64("threshold", d.Config.Threshold*100.0, "UBO threshold in percent (strict)")
	capOverride := fs.String("cap-override", "", "Capital overrides: Name=percent,…")
	voteOverride := fs.String("vote-override", "", "Voting overrides: Name=percent,…")
	veto := fs.String("veto", "", "Persons with a veto right (comma separated)")
	orgMajority := fs.String("org-majority", "", "Persons appointing a majority of the governing body")
	substitute := fs.String("substitute", "", "Statutory-substitute persons (§ 5 ZESM)")
	manualPersons := fs.String("manual-person", "", "Manual persons: Name=cap%:vote%[:veto][:orgmaj][:sub];…")
	blockName := fs.String("block-name", "Voting Block 1", "Voting block name")
	blockMembers := fs.String("block-members", "", "Voting block members (comma separated)")
	showPaths := fs.Bool("paths", false, "Show per-path diagnostics for each person")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *ico == "" {
		fs.Usage()
		return fmt.Errorf("--ico is required")
	}
	if *thresholdPct <= 0 || *thresholdPct > 100 {
		return fmt.Errorf("threshold must be in (0, 100]")
	}

	overrides, err := parseManualOverrides(*manual)
	if err != nil {
		return err
	}
	capMap, err := parsePctMap(*capOverride)
	if err != nil {
		return err
	}
	voteMap, err := parsePctMap(*voteOverride)
	if err != nil {
		return err
	}
	manuals, err := parseManualPersons(*manualPersons)
	if err != nil {
		return err
	}

	res, err := d.Resolver.Resolve(ctx, *ico, resolve.Options{
		MaxDepth:        *maxDepth,
		ManualOverrides: overrides,
	})
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	persons := ubo.ComputeEffectivePersons(res.Lines)
	ev := ubo.Evaluate(persons, ubo.EvalOptions{
		Threshold:          *thresholdPct / 100.0,
		CapOverrides:       capMap,
		VoteOverrides:      voteMap,
		VetoFlags:          flagSetTrue(parseNameList(*veto)),
		OrgMajorityFlags:   flagSetTrue(parseNameList(*orgMajority)),
		SubstituteFlags:    flagSetTrue(parseNameList(*substitute)),
		ManualPersons:      manuals,
		VotingBlockName:    *blockName,
		VotingBlockMembers: parseNameList(*blockMembers),
	})

	printEvaluation(persons, ev, *showPaths)

	if len(res.Warnings) > 0 {
		fmt.Println("\nUpozornění:")
		for _, w := range res.Warnings {
			fmt.Printf("  [%s] %s\n", w.Kind, w.Text)
		}
	}
	return nil
}

func printEvaluation(persons map[string]*ubo.PersonAggregate, ev *ubo.Evaluation, showPaths bool) {
	fmt.Println("Osoby a jejich efektivní podíly:")
	for _, name := range ubo.SortedNames(ev.Persons) {
		p := ev.Persons[name]
		fmt.Printf("  %s — kapitál: %s, hlasovací práva: %s\n",
			name, ubo.FormatPct(p.Cap), ubo.FormatPct(p.Vote))
		if showPaths {
			if agg, ok := persons[name]; ok {
				for _, path := range agg.Paths {
					fmt.Printf("    · mult=%.4f local=%s eff=%s zdroj=%s: %s\n",
						path.ParentMult, fmtOptPct(path.LocalShare), fmtOptPct(path.Effective),
						path.Source, path.Text)
				}
			}
		}
	}

	printSum("Součet podílů na ZK", ev.Sums.TotalCap, ev.Sums.CapOK, ev.Sums.CapDelta)
	printSum("Součet hlasovacích práv", ev.Sums.TotalVote, ev.Sums.VoteOK, ev.Sums.VoteDelta)

	if len(ev.UBOs) == 0 {
		fmt.Println("Nebyly zjištěny fyzické osoby splňující definici skutečného majitele.")
		return
	}
	fmt.Println("\nSkuteční majitelé:")
	for _, f := range ev.UBOs {
		fmt.Printf("  - %s — kapitál: %s, hlasovací práva: %s — %s\n",
			f.Name, ubo.FormatPct(f.Cap), ubo.FormatPct(f.Vote), strings.Join(f.Reasons, "; "))
	}
}

func printSum(label string, total float64, ok bool, delta float64) {
	if ok {
		fmt.Printf("%s = %.2f %% (OK)\n", label, total*100.0)
		return
	}
	if delta < 0 {
		fmt.Printf("%s = %.2f %% (chybí %.2f %%)\n", label, total*100.0, -delta*100.0)
	} else {
		fmt.Printf("%s = %.2f %% (přebytek %.2f %%)\n", label, total*100.0, delta*100.0)
	}
}

func fmtOptPct(v *float64) string {
	if v == nil {
		return "—"
	}
	return ubo.FormatPct(*v)
}

// parseManualPersons parses "Name=cap%:vote%[:veto][:orgmaj][:sub];…".
func parseManualPersons(s string) ([]ubo.ManualPerson, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []ubo.ManualPerson
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, shares, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid manual person %q (want Name=cap%%:vote%%)", entry)
		}
		fields := strings.Split(shares, ":")
		if len(fields) < 2 {
			return nil, fmt.Errorf("manual person %q needs capital and voting percent", name)
		}
		capPct, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid capital percent for %s: %w", name, err)
		}
		votePct, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid voting percent for %s: %w", name, err)
		}
		mp := ubo.ManualPerson{
			Name: strings.TrimSpace(name),
			Cap:  capPct / 100.0,
			Vote: votePct / 100.0,
		}
		for _, f := range fields[2:] {
			switch strings.ToLower(strings.TrimSpace(f)) {
			case "veto":
				mp.Veto = true
			case "orgmaj":
				mp.OrgMajority = true
			case "sub":
				mp.SubstituteUBO = true
			case "":
			default:
				return nil, fmt.Errorf("unknown manual person flag %q", f)
			}
		}
		out = append(out, mp)
	}
	return out, nil
}
