package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PlainPercent(t *testing.T) {
	v, ok := Parse("50 %")
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestParse_Fraction(t *testing.T) {
	v, ok := Parse("1/3")
	require.True(t, ok)
	assert.InDelta(t, 1.0/3.0, v, 1e-9)
}

func TestParse_SemicolonFraction(t *testing.T) {
	v, ok := Parse("1;4 ZLOMEK")
	require.True(t, ok)
	assert.InDelta(t, 0.25, v, 1e-9)
}

func TestParse_SemicolonDecimalPercent(t *testing.T) {
	// ';' before a percent token is a decimal mark, not a fraction separator
	v, ok := Parse("velikost:2;25 PROCENTA")
	require.True(t, ok)
	assert.InDelta(t, 0.0225, v, 1e-9)
}

func TestParse_ObchodniPodilIgnoresSplaceno(t *testing.T) {
	v, ok := Parse("obchodni_podil: 1/2; splaceno:100 PROCENTA")
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestParse_ObchodniPodilSumsAllForms(t *testing.T) {
	v, ok := Parse("obchodni_podil: 1/4 obchodni_podil: 25 %")
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestParse_HlasovaciPravaLayer(t *testing.T) {
	v, ok := Parse("hlasovaci_prava: 30 % hlasovaci_prava: 10 PROCENTA")
	require.True(t, ok)
	assert.InDelta(t, 0.4, v, 1e-9)
}

func TestParse_ObchodniPodilWinsOverVoting(t *testing.T) {
	// once the first layer fires, only its matches count
	v, ok := Parse("obchodni_podil: 10 % hlasovaci_prava: 90 %")
	require.True(t, ok)
	assert.InDelta(t, 0.1, v, 1e-9)
}

func TestParse_DecimalSeparators(t *testing.T) {
	for _, in := range []string{"12,5 %", "12.5 %", "12;5 %"} {
		v, ok := Parse(in)
		require.True(t, ok, in)
		assert.InDelta(t, 0.125, v, 1e-9, in)
	}
}

func TestParse_DivisionByZeroSkipsTerm(t *testing.T) {
	_, ok := Parse("1/0")
	assert.False(t, ok)

	v, ok := Parse("1/0 a 1/2")
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestParse_ClampsToOne(t *testing.T) {
	v, ok := Parse("80 % a 70 %")
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-9)
}

func TestParse_Empty(t *testing.T) {
	_, ok := Parse("")
	assert.False(t, ok)
	_, ok = Parse("   ")
	assert.False(t, ok)
	_, ok = Parse("bez podílu")
	assert.False(t, ok)
}

func TestParsePercent(t *testing.T) {
	v, ok := ParsePercent("velikost:2;25 PROCENTA")
	require.True(t, ok)
	assert.InDelta(t, 2.25, v, 1e-9)
}

func TestParseEffective(t *testing.T) {
	v, ok := ParseEffective("Jan Novák — 50.00% (efektivně 20.00%)")
	require.True(t, ok)
	assert.InDelta(t, 0.2, v, 1e-9)

	_, ok = ParseEffective("Jan Novák — 50.00%")
	assert.False(t, ok)
}

func TestRequire(t *testing.T) {
	_, err := Require("nic")
	assert.ErrorIs(t, err, ErrUnparseable)

	v, err := Require("50 %")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-9)
}
