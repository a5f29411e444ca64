package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCompanyHeader(t *testing.T) {
	name, ico, ok := ParseCompanyHeader("Alfa s.r.o. (IČO 12345678)")
	assert.True(t, ok)
	assert.Equal(t, "Alfa s.r.o.", name)
	assert.Equal(t, "12345678", ico)

	// an owner line carrying a share is not a header
	_, _, ok = ParseCompanyHeader("Beta s.r.o. — 50.00% (IČO 87654321)")
	assert.False(t, ok)
}

func TestCompanyICOInLinePadsSevenDigits(t *testing.T) {
	ico, ok := CompanyICOInLine("Beta s.r.o. — 50.00% (IČO 8765432)")
	assert.True(t, ok)
	assert.Equal(t, "08765432", ico)

	_, ok = CompanyICOInLine("Jan Novák — 50.00%")
	assert.False(t, ok)
}

func TestSplitNameShare(t *testing.T) {
	name, shareText, ok := SplitNameShare("Jan Novák — 50.00% (efektivně 25.00%)")
	assert.True(t, ok)
	assert.Equal(t, "Jan Novák", name)
	assert.Equal(t, "50.00% (efektivně 25.00%)", shareText)

	name, _, ok = SplitNameShare("Jan Novák")
	assert.False(t, ok)
	assert.Equal(t, "Jan Novák", name)
}

func TestLabelAndNoticeDetection(t *testing.T) {
	assert.True(t, IsLabelLine("Společníci:"))
	assert.False(t, IsLabelLine("Jan Novák — 50.00%"))
	assert.True(t, IsNoticeLine("⚠️ Překročena max hloubka"))
	assert.False(t, IsNoticeLine("Alfa s.r.o. (IČO 12345678)"))
}
