package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManualOverrides(t *testing.T) {
	out, err := parseManualOverrides("12345678:87654321=0.5,11122233=0.25;6947000:44455566=1")
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.Len(t, out["12345678"], 2)
	assert.Equal(t, "87654321", out["12345678"][0].ICO)
	assert.InDelta(t, 0.5, out["12345678"][0].Share, 1e-9)
	assert.InDelta(t, 0.25, out["12345678"][1].Share, 1e-9)

	// 7-digit target and owner IDs normalize to 8 digits
	require.Len(t, out["06947000"], 1)
	assert.Equal(t, "44455566", out["06947000"][0].ICO)
}

func TestParseManualOverridesRejectsBadShare(t *testing.T) {
	_, err := parseManualOverrides("12345678:87654321=1.5")
	assert.Error(t, err)

	_, err = parseManualOverrides("12345678:87654321")
	assert.Error(t, err)
}

func TestParseManualOverridesEmpty(t *testing.T) {
	out, err := parseManualOverrides("  ")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestParsePctMap(t *testing.T) {
	out, err := parsePctMap("Jan Novák=30,Eva Malá=12.5")
	require.NoError(t, err)
	assert.InDelta(t, 0.30, out["Jan Novák"], 1e-9)
	assert.InDelta(t, 0.125, out["Eva Malá"], 1e-9)

	_, err = parsePctMap("Jan Novák=130")
	assert.Error(t, err)
}

func TestParseNameList(t *testing.T) {
	assert.Equal(t, []string{"Jan Novák", "Eva Malá"}, parseNameList(" Jan Novák , Eva Malá ,"))
	assert.Nil(t, parseNameList(""))
}

func TestParseManualPersons(t *testing.T) {
	out, err := parseManualPersons("Jan Novák=30:40:veto;Eva Malá=10:10:orgmaj:sub")
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Jan Novák", out[0].Name)
	assert.InDelta(t, 0.30, out[0].Cap, 1e-9)
	assert.InDelta(t, 0.40, out[0].Vote, 1e-9)
	assert.True(t, out[0].Veto)

	assert.True(t, out[1].OrgMajority)
	assert.True(t, out[1].SubstituteUBO)
}

func TestParseManualPersonsRejectsUnknownFlag(t *testing.T) {
	_, err := parseManualPersons("Jan Novák=30:40:chair")
	assert.Error(t, err)
}
