// Package cli implements the command runners. Each command parses its own
// flags with a flag.FlagSet and prints human-readable results; the heavy
// lifting lives in the engine packages.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"ares-ubo/internal/ares"
	"ares-ubo/internal/config"
	"ares-ubo/internal/resolve"
)

// Deps bundles the shared engine handles passed to every command.
type Deps struct {
	Config   config.Config
	Cache    *ares.CacheStore
	Client   *ares.Client
	Resolver *resolve.Resolver
	Log      zerolog.Logger
}

// parseManualOverrides parses "target:owner=0.5,owner2=0.3;target2:owner=1"
// into the resolver's override map. Shares are fractions in [0,1].
func parseManualOverrides(s string) (map[string][]resolve.ManualOwner, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	out := make(map[string][]resolve.ManualOwner)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		target, owners, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid manual override %q (want target:owner=share,…)", part)
		}
		targetICO := ares.NormalizeICO(target)
		if targetICO == "" {
			return nil, fmt.Errorf("invalid target registry ID %q", target)
		}
		for _, pair := range strings.Split(owners, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			owner, shareText, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid owner entry %q (want owner=share)", pair)
			}
			shareVal, err := strconv.ParseFloat(strings.TrimSpace(shareText), 64)
			if err != nil || shareVal < 0 || shareVal > 1 {
				return nil, fmt.Errorf("invalid share %q for owner %s (fraction in [0,1])", shareText, owner)
			}
			out[targetICO] = append(out[targetICO], resolve.ManualOwner{
				ICO:   ares.NormalizeICO(owner),
				Share: shareVal,
			})
		}
	}
	return out, nil
}

// parseNameList splits a comma-separated list of personal names.
func parseNameList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// parsePctMap parses "Name=30,Other=12.5" (values in percent) into a
// fraction map.
func parsePctMap(s string) (map[string]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, pctText, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid override %q (want Name=percent)", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(pctText), 64)
		if err != nil || v < 0 || v > 100 {
			return nil, fmt.Errorf("invalid percent %q for %s", pctText, name)
		}
		out[strings.TrimSpace(name)] = v / 100.0
	}
	return out, nil
}

func flagSetTrue(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}
