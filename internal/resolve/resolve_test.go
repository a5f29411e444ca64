package resolve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ares-ubo/internal/ares"
)

func pct(v string) *ares.Obnos {
	return &ares.Obnos{TypObnos: "PROCENTA", Hodnota: ares.FlexString(v)}
}

func personMember(first, last, sharePct string) ares.Spolecnik {
	return ares.Spolecnik{
		Osoba: &ares.Osoba{FyzickaOsoba: &ares.FyzickaOsoba{Jmeno: first, Prijmeni: last}},
		Podil: []ares.Podil{{VelikostPodilu: pct(sharePct)}},
	}
}

func companyMember(name, ico, sharePct string) ares.Spolecnik {
	return ares.Spolecnik{
		Osoba: &ares.Osoba{PravnickaOsoba: &ares.PravnickaOsoba{ICO: ico, ObchodniJmeno: name}},
		Podil: []ares.Podil{{VelikostPodilu: pct(sharePct)}},
	}
}

func registryPayload(ico, name string, members ...ares.Spolecnik) *ares.VRPayload {
	return &ares.VRPayload{
		ICOID: ico,
		Zaznamy: []ares.Zaznam{{
			PrimarniZaznam: true,
			ObchodniJmeno:  []ares.HistoricValue{{Hodnota: name}},
			Spolecnici:     []ares.SpolecniciBlok{{Spolecnik: members}},
		}},
	}
}

// newTestResolver serves canned payloads keyed by registry ID; unknown IDs
// get HTTP 404.
func newTestResolver(t *testing.T, payloads map[string]*ares.VRPayload) *Resolver {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ico := strings.TrimPrefix(r.URL.Path, "/ekonomicke-subjekty-vr/")
		p, ok := payloads[ico]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(p))
	}))
	t.Cleanup(srv.Close)

	cache, err := ares.NewCacheStore(filepath.Join(t.TempDir(), "cache.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	client := ares.NewClient(cache, ares.ClientConfig{
		BaseURL:     srv.URL,
		Timeout:     5 * time.Second,
		MaxRetries:  1,
		BackoffBase: time.Millisecond,
		BackoffCap:  2 * time.Millisecond,
	}, zerolog.Nop())
	return New(client, zerolog.Nop())
}

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Text
	}
	return out
}

func TestResolveSingleLevel(t *testing.T) {
	r := newTestResolver(t, map[string]*ares.VRPayload{
		"12345678": registryPayload("12345678", "Alfa s.r.o.",
			personMember("Jan", "Novák", "50"),
			personMember("Eva", "Malá", "50"),
		),
	})

	res, err := r.Resolve(context.Background(), "12345678", Options{MaxDepth: DefaultMaxDepth})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "12345678", res.RootICO)

	assert.Equal(t, []string{
		"Alfa s.r.o. (IČO 12345678)",
		"Společníci:",
		"Jan Novák — 50.00% (efektivně 50.00%)",
		"Eva Malá — 50.00% (efektivně 50.00%)",
	}, texts(res.Lines))

	assert.Equal(t, []int{0, 1, 2, 2}, depths(res.Lines))
	require.NotNil(t, res.Lines[0].EffectivePct)
	assert.InDelta(t, 100.0, *res.Lines[0].EffectivePct, 1e-9)
	assert.Empty(t, res.Warnings)
}

func TestResolveNestedCompanyMultiplies(t *testing.T) {
	r := newTestResolver(t, map[string]*ares.VRPayload{
		"12345678": registryPayload("12345678", "Alfa s.r.o.",
			personMember("Jan", "Novák", "50"),
			companyMember("Beta s.r.o.", "87654321", "50"),
		),
		"87654321": registryPayload("87654321", "Beta s.r.o.",
			personMember("Eva", "Malá", "40"),
		),
	})

	res, err := r.Resolve(context.Background(), "12345678", Options{MaxDepth: DefaultMaxDepth})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Alfa s.r.o. (IČO 12345678)",
		"Společníci:",
		"Jan Novák — 50.00% (efektivně 50.00%)",
		"Beta s.r.o. — 50.00% (IČO 87654321)",
		"Beta s.r.o. (IČO 87654321)",
		"Společníci:",
		"Eva Malá — 40.00% (efektivně 20.00%)",
	}, texts(res.Lines))
	assert.Equal(t, []int{0, 1, 2, 2, 3, 4, 5}, depths(res.Lines))

	// company owner carries parent_mult * local
	require.NotNil(t, res.Lines[3].EffectivePct)
	assert.InDelta(t, 50.0, *res.Lines[3].EffectivePct, 1e-9)
	// nested person carries the full product
	require.NotNil(t, res.Lines[6].EffectivePct)
	assert.InDelta(t, 20.0, *res.Lines[6].EffectivePct, 1e-9)
}

func TestResolveMaxDepthZeroIsHeaderOnly(t *testing.T) {
	r := newTestResolver(t, map[string]*ares.VRPayload{
		"12345678": registryPayload("12345678", "Alfa s.r.o.",
			personMember("Jan", "Novák", "100"),
		),
	})

	res, err := r.Resolve(context.Background(), "12345678", Options{MaxDepth: 0})
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "Alfa s.r.o. (IČO 12345678)", res.Lines[0].Text)
}

func TestResolveMaxDepthTruncationNotice(t *testing.T) {
	r := newTestResolver(t, map[string]*ares.VRPayload{
		"12345678": registryPayload("12345678", "Alfa s.r.o.",
			companyMember("Beta s.r.o.", "87654321", "100"),
		),
		"87654321": registryPayload("87654321", "Beta s.r.o.",
			personMember("Eva", "Malá", "100"),
		),
	})

	// the child header would sit at depth 3, past the bound
	res, err := r.Resolve(context.Background(), "12345678", Options{MaxDepth: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Alfa s.r.o. (IČO 12345678)",
		"Společníci:",
		"Beta s.r.o. — 100.00% (IČO 87654321)",
		"⚠️ Překročena max hloubka",
	}, texts(res.Lines))
	assert.Equal(t, 3, res.Lines[3].Depth)
}

func TestResolvePadsSevenDigitID(t *testing.T) {
	r := newTestResolver(t, map[string]*ares.VRPayload{
		"06947000": registryPayload("06947000", "Gama s.r.o.",
			personMember("Petr", "Král", "100"),
		),
	})

	res, err := r.Resolve(context.Background(), "6947000", Options{MaxDepth: DefaultMaxDepth})
	require.NoError(t, err)
	assert.Equal(t, "06947000", res.RootICO)
	assert.Equal(t, "Gama s.r.o. (IČO 06947000)", res.Lines[0].Text)
}

func TestResolveUnreachableSubtreeBecomesWarning(t *testing.T) {
	r := newTestResolver(t, map[string]*ares.VRPayload{
		"12345678": registryPayload("12345678", "Alfa s.r.o.",
			companyMember("Zmizelá a.s.", "11111111", "100"),
		),
	})

	res, err := r.Resolve(context.Background(), "12345678", Options{MaxDepth: DefaultMaxDepth})
	require.NoError(t, err)

	last := res.Lines[len(res.Lines)-1]
	assert.Contains(t, last.Text, "⚠️ Nelze načíst ARES VR pro 11111111")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnError, res.Warnings[0].Kind)
	assert.Equal(t, "11111111", res.Warnings[0].ICO)
}

func TestResolveNoOwnersYieldsUnresolvedWarning(t *testing.T) {
	r := newTestResolver(t, map[string]*ares.VRPayload{
		"12345678": registryPayload("12345678", "Prázdná s.r.o."),
	})

	res, err := r.Resolve(context.Background(), "12345678", Options{MaxDepth: DefaultMaxDepth})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnUnresolved, res.Warnings[0].Kind)
	assert.Contains(t, res.Warnings[0].Text, "Prázdná s.r.o.")
}

func TestResolveManualOwnersAppend(t *testing.T) {
	r := newTestResolver(t, map[string]*ares.VRPayload{
		"12345678": registryPayload("12345678", "Alfa s.r.o.",
			personMember("Jan", "Novák", "80"),
		),
		"87654321": registryPayload("87654321", "Beta s.r.o.",
			personMember("Eva", "Malá", "100"),
		),
	})

	res, err := r.Resolve(context.Background(), "12345678", Options{
		MaxDepth: DefaultMaxDepth,
		ManualOverrides: map[string][]ManualOwner{
			"12345678": {{ICO: "87654321", Share: 0.2}},
		},
	})
	require.NoError(t, err)

	joined := strings.Join(texts(res.Lines), "\n")
	assert.Contains(t, joined, "Manuálně doplněno:")
	assert.Contains(t, joined, "Beta s.r.o. — 20.00% (IČO 87654321)")
	assert.Contains(t, joined, "Eva Malá — 100.00% (efektivně 20.00%)")
}

func TestResolveDeterministicAcrossRuns(t *testing.T) {
	payloads := map[string]*ares.VRPayload{
		"12345678": registryPayload("12345678", "Alfa s.r.o.",
			personMember("Jan", "Novák", "50"),
			companyMember("Beta s.r.o.", "87654321", "50"),
		),
		"87654321": registryPayload("87654321", "Beta s.r.o.",
			personMember("Eva", "Malá", "40"),
		),
	}
	r := newTestResolver(t, payloads)

	first, err := r.Resolve(context.Background(), "12345678", Options{MaxDepth: DefaultMaxDepth})
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "12345678", Options{MaxDepth: DefaultMaxDepth})
	require.NoError(t, err)

	assert.Equal(t, texts(first.Lines), texts(second.Lines))
	assert.NotEqual(t, first.RunID, second.RunID)
}

func depths(lines []Line) []int {
	out := make([]int, len(lines))
	for i, ln := range lines {
		out[i] = ln.Depth
	}
	return out
}
