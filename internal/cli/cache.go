package cli

import (
	"context"
	"flag"
	"fmt"

	"ares-ubo/internal/ares"
)

// RunCache inspects or prunes the local registry cache. Subcommands:
//
//	cache stats           print row count and fetch-time range
//	cache purge [--ico X] drop one entity, or everything
func RunCache(ctx context.Context, d Deps, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: cache <stats|purge>")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "stats":
		return runCacheStats(ctx, d)
	case "purge":
		return runCachePurge(ctx, d, rest)
	default:
		return fmt.Errorf("unknown cache subcommand %q (want stats or purge)", sub)
	}
}

func runCacheStats(ctx context.Context, d Deps) error {
	stats, err := d.Cache.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}
	fmt.Printf("rows:   %d\n", stats.Rows)
	if stats.Rows > 0 {
		fmt.Printf("oldest: %s\n", stats.OldestFetch)
		fmt.Printf("newest: %s\n", stats.NewestFetch)
	}
	return nil
}

func runCachePurge(ctx context.Context, d Deps, args []string) error {
	fs := flag.NewFlagSet("cache purge", flag.ContinueOnError)
	ico := fs.String("ico", "", "Purge a single entity; empty purges everything")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	target := ""
	if *ico != "" {
		target = ares.NormalizeICO(*ico)
	}
	n, err := d.Cache.Purge(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	fmt.Printf("purged %d row(s)\n", n)
	return nil
}
