package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ares-ubo/internal/ares"
	"ares-ubo/internal/cli"
	"ares-ubo/internal/config"
	"ares-ubo/internal/resolve"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := newLogger()
	cfg := config.FromEnv()

	cache, err := ares.NewCacheStore(cfg.CachePath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.CachePath).Msg("failed to open cache")
		return 1
	}
	defer cache.Close()

	client := ares.NewClient(cache, cfg.Client, log)
	deps := cli.Deps{
		Config:   cfg,
		Cache:    cache,
		Client:   client,
		Resolver: resolve.New(client, log),
		Log:      log,
	}

	root := &cobra.Command{
		Use:           "ares-ubo",
		Short:         "Beneficial-ownership discovery over the ARES public registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		command("resolve", "Expand and print the ownership tree of an entity", deps, cli.RunResolve),
		command("ubo", "Evaluate the beneficial-owner criteria for an entity", deps, cli.RunUBO),
		command("graph", "Render the ownership tree as Graphviz DOT", deps, cli.RunGraph),
		command("compare", "Diff discovered persons against an external name list", deps, cli.RunCompare),
		command("cache", "Inspect or prune the local registry cache", deps, cli.RunCache),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// command wraps a flag.FlagSet-style runner as a cobra subcommand. Flag
// parsing is left to the runner, so cobra only routes.
func command(use, short string, d cli.Deps, fn func(ctx context.Context, d cli.Deps, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:                use,
		Short:              short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fn(cmd.Context(), d, args)
		},
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if v := os.Getenv("UBO_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
