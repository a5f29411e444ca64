package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"ares-ubo/internal/resolve"
)

// RunResolve expands the ownership tree of one entity and prints the trace.
func RunResolve(ctx context.Context, d Deps, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	ico := fs.String("ico", "", "Registry ID (IČO) of the root entity (required)")
	maxDepth := fs.Int("max-depth", d.Config.MaxDepth, "Maximum trace depth")
	manual := fs.String("manual", "", "Manual owners: target:owner=share,…;target2:…")
	forceRefresh := fs.Bool("force-refresh", false, "Bypass the cache for the root entity")
	showEff := fs.Bool("effective", false, "Append effective percentages to each line")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *ico == "" {
		fs.Usage()
		return fmt.Errorf("--ico is required")
	}

	overrides, err := parseManualOverrides(*manual)
	if err != nil {
		return err
	}

	res, err := d.Resolver.Resolve(ctx, *ico, resolve.Options{
		MaxDepth:        *maxDepth,
		ManualOverrides: overrides,
		ForceRefresh:    *forceRefresh,
	})
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	printTrace(res.Lines, *showEff)

	if len(res.Warnings) > 0 {
		fmt.Println("\nUpozornění:")
		for _, w := range res.Warnings {
			fmt.Printf("  [%s] %s\n", w.Kind, w.Text)
		}
	}
	return nil
}

func printTrace(lines []resolve.Line, showEff bool) {
	for _, ln := range lines {
		indent := strings.Repeat("  ", ln.Depth)
		if showEff && ln.EffectivePct != nil {
			fmt.Printf("%s%s  [efektivně %.2f%%]\n", indent, ln.Text, *ln.EffectivePct)
			continue
		}
		fmt.Printf("%s%s\n", indent, ln.Text)
	}
}
