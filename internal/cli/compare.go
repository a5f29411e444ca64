package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"ares-ubo/internal/names"
	"ares-ubo/internal/resolve"
	"ares-ubo/internal/ubo"
)

// RunCompare resolves the ownership tree and diffs the discovered natural
// persons against an externally supplied name list.
func RunCompare(ctx context.Context, d Deps, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	ico := fs.String("ico", "", "Registry ID (IČO) of the root entity (required)")
	maxDepth := fs.Int("max-depth", d.Config.MaxDepth, "Maximum trace depth")
	manual := fs.String("manual", "", "Manual owners: target:owner=share,…")
	namesPath := fs.String("names", "", "File with external names, one per line (required)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *ico == "" || *namesPath == "" {
		fs.Usage()
		return fmt.Errorf("--ico and --names are required")
	}

	external, err := readNameFile(*namesPath)
	if err != nil {
		return err
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

	persons := ubo.ComputeEffectivePersons(res.Lines)
	ours := ubo.SortedNames(persons)

	diff := names.Compare(ours, external)
	if diff.Equal() {
		fmt.Println("Seznamy se shodují.")
		return nil
	}
	if len(diff.MissingInExternal) > 0 {
		fmt.Println("Chybí v externím seznamu:")
		for _, n := range diff.MissingInExternal {
			fmt.Printf("  - %s\n", n)
		}
	}
	if len(diff.ExtraInExternal) > 0 {
		fmt.Println("Navíc v externím seznamu:")
		for _, n := range diff.ExtraInExternal {
			fmt.Printf("  - %s\n", n)
		}
	}
	return nil
}

// readNameFile loads one name per line, skipping blanks and '#' comments.
func readNameFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open name list: %w", err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read name list: %w", err)
	}
	return out, nil
}
