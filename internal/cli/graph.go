package cli

import (
	"context"
	"flag"
	"fmt"

	"ares-ubo/internal/graph"
	"ares-ubo/internal/resolve"
)

// RunGraph resolves the ownership tree and prints the Graphviz projection.
func RunGraph(ctx context.Context, d Deps, args []string) error {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	ico := fs.String("ico", "", "Registry ID (IČO) of the root entity (required)")
	maxDepth := fs.Int("max-depth", d.Config.MaxDepth, "Maximum trace depth")
	manual := fs.String("manual", "", "Manual owners: target:owner=share,…")
	title := fs.String("title", "", "Graph title (defaults to Ownership_<ico>)")

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
	})
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	t := *title
	if t == "" {
		t = "Ownership_" + res.RootICO
	}
	g := graph.Build(res.Lines, res.RootICO, t)
	fmt.Print(g.DOT())
	return nil
}
