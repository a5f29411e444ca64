// Package resolve walks the ownership structure of a legal entity through
// the registry client and produces a linear depth-tagged trace. The walker
// deliberately performs no cycle detection: the AML methodology needs every
// path expanded so that effective shares can be summed across branches;
// MaxDepth and the persistent payload cache are the only safeguards.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ares-ubo/internal/ares"
	"ares-ubo/internal/extract"
	"ares-ubo/internal/share"
)

// DefaultMaxDepth bounds the walk when the caller does not.
const DefaultMaxDepth = 25

// ManualOwner is a caller-supplied company owner appended to the registry
// owners of a target entity. Share is a fraction in [0,1].
type ManualOwner struct {
	ICO   string
	Share float64
}

// Options parameterize one resolve call.
type Options struct {
	MaxDepth        int
	ManualOverrides map[string][]ManualOwner
	ForceRefresh    bool
}

// Result is the outcome of one resolve call.
type Result struct {
	RunID    string
	RootICO  string
	Lines    []Line
	Warnings []Warning
}

// Resolver drives the recursive walk.
type Resolver struct {
	client *ares.Client
	log    zerolog.Logger
}

// New builds a resolver over the given registry client.
func New(client *ares.Client, log zerolog.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

// Resolve expands the ownership tree under root. Non-fatal conditions
// (unreachable subtrees, unparseable shares, missing owners) become trace
// lines and warnings; cache I/O failures and context cancellation abort the
// call.
func (r *Resolver) Resolve(ctx context.Context, root string, opts Options) (*Result, error) {
	// MaxDepth 0 is a valid bound (root header only); negative means default
	if opts.MaxDepth < 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	res := &Result{
		RunID:   uuid.New().String(),
		RootICO: ares.NormalizeICO(root),
	}
	log := r.log.With().Str("run_id", res.RunID).Str("root", res.RootICO).Logger()
	log.Info().Int("max_depth", opts.MaxDepth).Msg("resolving ownership tree")

	if err := r.walk(ctx, res, opts, res.RootICO, 0, 1.0); err != nil {
		return nil, err
	}

	log.Info().Int("lines", len(res.Lines)).Int("warnings", len(res.Warnings)).Msg("resolve finished")
	return res, nil
}

func (r *Resolver) walk(ctx context.Context, res *Result, opts Options, ico string, depth int, parentMult float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth > opts.MaxDepth {
		res.Lines = append(res.Lines, Line{Depth: depth, Text: "⚠️ Překročena max hloubka"})
		return nil
	}

	payload, err := r.client.GetByID(ctx, ico, opts.ForceRefresh && depth == 0)
	if err != nil {
		if errors.Is(err, ares.ErrCacheIO) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		// unreachable registry: fatal for this subtree only
		text := fmt.Sprintf("⚠️ Nelze načíst ARES VR pro %s: %v", ico, err)
		res.Lines = append(res.Lines, Line{Depth: depth, Text: text})
		res.Warnings = append(res.Warnings, Warning{Kind: WarnError, ICO: ico, Text: text})
		return nil
	}
	if payload.IsError() {
		text := fmt.Sprintf("⚠️ Nelze načíst ARES VR pro %s: %s", ico, payload.Error)
		res.Lines = append(res.Lines, Line{Depth: depth, Text: text})
		res.Warnings = append(res.Warnings, Warning{Kind: WarnError, ICO: ico, Text: text})
		return nil
	}

	cICO, cName, owners := extract.ExtractCurrentOwners(payload)
	if cICO == "" {
		cICO = ico
	}

	var headerEff *float64
	if depth == 0 {
		v := parentMult * 100.0
		headerEff = &v
	}
	res.Lines = append(res.Lines, Line{
		Depth:        depth,
		Text:         fmt.Sprintf("%s (IČO %s)", cName, cICO),
		EffectivePct: headerEff,
	})

	// owner lines would sit at depth+2; stop here when they cannot fit
	if depth+2 > opts.MaxDepth {
		return nil
	}

	owners = append(owners, r.manualOwners(ctx, opts, cICO)...)

	if len(owners) == 0 {
		res.Warnings = append(res.Warnings, Warning{
			Kind: WarnUnresolved,
			ICO:  cICO,
			Name: cName,
			Text: fmt.Sprintf("⚠️ Nepodařilo se dohledat vlastníka v OR pro %s (IČO %s)", cName, cICO),
		})
		return nil
	}

	for _, group := range groupByLabel(owners) {
		res.Lines = append(res.Lines, Line{
			Depth: depth + 1,
			Label: group.label,
			Text:  group.label + ":",
		})

		for _, o := range group.owners {
			localShare, haveLocal := localShareOf(o)
			effShare, haveEff := share.ParseEffective(o.ShareRaw)

			if o.Kind == extract.KindCompany && o.ICO != "" {
				if err := r.walkCompanyOwner(ctx, res, opts, o, group.label, depth, parentMult, localShare, haveLocal, effShare, haveEff); err != nil {
					return err
				}
				continue
			}
			emitPersonOwner(res, o, group.label, depth, parentMult, localShare, haveLocal, effShare, haveEff)
		}
	}
	return nil
}

func (r *Resolver) walkCompanyOwner(ctx context.Context, res *Result, opts Options, o extract.Owner, label string, depth int, parentMult float64, localShare float64, haveLocal bool, effShare float64, haveEff bool) error {
	var pctText string
	var effPct *float64

	switch {
	case haveLocal:
		pctText = fmt.Sprintf("%.2f%%", localShare*100.0)
		v := parentMult * localShare * 100.0
		effPct = &v
	case haveEff:
		pctText = rawOrUnknown(o.ShareRaw)
		v := effShare * 100.0
		effPct = &v
	default:
		pctText = rawOrUnknown(o.ShareRaw)
	}

	res.Lines = append(res.Lines, Line{
		Depth:        depth + 2,
		Label:        label,
		Text:         fmt.Sprintf("%s — %s (IČO %s)", o.Name, pctText, o.ICO),
		EffectivePct: effPct,
	})

	nextMult := parentMult
	switch {
	case haveLocal:
		nextMult = parentMult * localShare
	case haveEff:
		// an "efektivně" marker already carries the full multiplication
		nextMult = effShare
	}
	return r.walk(ctx, res, opts, o.ICO, depth+3, nextMult)
}

func emitPersonOwner(res *Result, o extract.Owner, label string, depth int, parentMult float64, localShare float64, haveLocal bool, effShare float64, haveEff bool) {
	switch {
	case haveLocal:
		effPct := parentMult * localShare * 100.0
		res.Lines = append(res.Lines, Line{
			Depth:        depth + 2,
			Label:        label,
			Text:         fmt.Sprintf("%s — %.2f%% (efektivně %.2f%%)", o.Name, localShare*100.0, effPct),
			EffectivePct: &effPct,
		})
	case haveEff:
		baseText := rawOrUnknown(o.ShareRaw)
		if o.SharePct != nil {
			baseText = fmt.Sprintf("%.2f%%", *o.SharePct)
		}
		effPct := effShare * 100.0
		res.Lines = append(res.Lines, Line{
			Depth:        depth + 2,
			Label:        label,
			Text:         fmt.Sprintf("%s — %s (efektivně %.2f%%)", o.Name, baseText, effPct),
			EffectivePct: &effPct,
		})
	default:
		text := o.Name
		if o.ShareRaw != "" {
			text = fmt.Sprintf("%s — %s", o.Name, o.ShareRaw)
		}
		res.Lines = append(res.Lines, Line{Depth: depth + 2, Label: label, Text: text})
	}
}

// manualOwners materializes the caller's overrides for one target; they are
// appended to, never replace, registry-derived owners. Display names are
// resolved opportunistically, tolerant of failure.
func (r *Resolver) manualOwners(ctx context.Context, opts Options, targetICO string) []extract.Owner {
	overrides := opts.ManualOverrides[targetICO]
	if len(overrides) == 0 {
		return nil
	}
	out := make([]extract.Owner, 0, len(overrides))
	for _, m := range overrides {
		ownerICO := ares.NormalizeICO(m.ICO)
		name := fmt.Sprintf("Společnost (IČO %s)", ownerICO)
		if p, err := r.client.GetByID(ctx, ownerICO, false); err == nil && !p.IsError() {
			if _, n, _ := extract.ExtractCurrentOwners(p); n != "" {
				name = n
			}
		}
		pct := m.Share * 100.0
		out = append(out, extract.Owner{
			Kind:     extract.KindCompany,
			Name:     name,
			ICO:      ownerICO,
			SharePct: &pct,
			ShareRaw: fmt.Sprintf("velikost:%.2f PROCENTA", pct),
			Label:    extract.LabelManual,
		})
	}
	return out
}

// localShareOf derives the owner's local share in [0,1]: the extractor's
// parsed percent first, then the raw text.
func localShareOf(o extract.Owner) (float64, bool) {
	if o.SharePct != nil {
		return *o.SharePct / 100.0, true
	}
	if o.ShareRaw != "" {
		if v, ok := share.Parse(o.ShareRaw); ok {
			return v, true
		}
	}
	return 0, false
}

func rawOrUnknown(raw string) string {
	if raw == "" {
		return "?"
	}
	return raw
}

type labelGroup struct {
	label  string
	owners []extract.Owner
}

// groupByLabel buckets owners by label preserving first-seen label order.
func groupByLabel(owners []extract.Owner) []labelGroup {
	var groups []labelGroup
	index := make(map[string]int)
	for _, o := range owners {
		i, ok := index[o.Label]
		if !ok {
			i = len(groups)
			index[o.Label] = i
			groups = append(groups, labelGroup{label: o.Label})
		}
		groups[i].owners = append(groups[i].owners, o)
	}
	return groups
}
