package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"atakama.com/sdk/plugin"
)

func newNameMatch(t *testing.T, args plugin.Args) plugin.DetectorPlugin {
	t.Helper()
	p, err := NewNameMatch(args)
	require.NoError(t, err)
	return p.(plugin.DetectorPlugin)
}

func needs(t *testing.T, d plugin.DetectorPlugin, path string) bool {
	t.Helper()
	got, err := d.NeedsEncryption(path)
	require.NoError(t, err)
	return got
}

func TestNameMatch_Regex_MatchesDocumentExtensions(t *testing.T) {
	d := newNameMatch(t, plugin.Args{"type": " Regex", "pattern": `(?i).*\.(pdf|doc|docx)$`})

	assert.True(t, needs(t, d, `C:\Users\Documents\Documentation\document.doc`))
	assert.True(t, needs(t, d, `C:\Users\Documents\Documentation\document.DoC`))
	assert.True(t, needs(t, d, `D:\Downloads\secrets.pdf`))
	assert.False(t, needs(t, d, `D:\Downloads\secrets.xls`))
	assert.False(t, needs(t, d, `C:\Users\Downloads\confidential.docm`))
}

func TestNameMatch_Regex_InvertFlipsSelection(t *testing.T) {
	d := newNameMatch(t, plugin.Args{
		"type": " Regex", "pattern": `(?i).*\.(pdf|doc|docx)$`, "invert": "true",
	})

	assert.False(t, needs(t, d, `C:\Users\Documents\Documentation\document.doc`))
	assert.False(t, needs(t, d, `D:\Downloads\secrets.pdf`))
	assert.True(t, needs(t, d, `D:\Downloads\secrets.xls`))
	assert.True(t, needs(t, d, `C:\Users\Downloads\confidential.docm`))
}

func TestNameMatch_Glob_MatchesSuffix(t *testing.T) {
	d := newNameMatch(t, plugin.Args{"type": "gloB", "pattern": "*.pdf"})

	assert.True(t, needs(t, d, `C:\Downloads\secRetS.pdf`))
	assert.True(t, needs(t, d, `D:\Downloads\secrets.pdf`))
	assert.False(t, needs(t, d, `F:\Top Secret.docx`))
	assert.False(t, needs(t, d, `/tmp/report.pdfz`), "glob must stay anchored at the end")

	inverted := newNameMatch(t, plugin.Args{"type": "gloB", "pattern": "*.pdf", "invert": "true"})
	assert.False(t, needs(t, inverted, `C:\Downloads\secRetS.pdf`))
	assert.True(t, needs(t, inverted, `F:\Top Secret.docx`))
}

func TestNameMatch_Glob_SupportsWildcardsAndRanges(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"QuestionMark_MatchesOneChar", "report-?.txt", "/srv/report-1.txt", true},
		{"QuestionMark_NeedsExactlyOne", "report-?.txt", "/srv/report-10.txt", false},
		{"Range_Matches", "backup-[0-9].tar", "/mnt/backup-7.tar", true},
		{"Range_Rejects", "backup-[0-9].tar", "/mnt/backup-x.tar", false},
		{"NegatedRange_Matches", "backup-[!0-9].tar", "/mnt/backup-x.tar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newNameMatch(t, plugin.Args{"type": "glob", "pattern": tt.pattern})
			assert.Equal(t, tt.want, needs(t, d, tt.path))
		})
	}
}

func TestNameMatch_Star_SelectsEverything(t *testing.T) {
	d := newNameMatch(t, plugin.Args{"type": " * "})

	assert.True(t, needs(t, d, "/test"))
	assert.True(t, needs(t, d, "tEsT.exe"))
	assert.True(t, needs(t, d, "D://Not\x00a>valid\\path:"))
}

func TestNameMatch_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		args plugin.Args
	}{
		{"UnknownType", plugin.Args{"type": "prefix", "pattern": "x"}},
		{"MissingPattern", plugin.Args{"type": "glob"}},
		{"InvalidRegex", plugin.Args{"type": "regex", "pattern": "[unclosed"}},
		{"MissingType", plugin.Args{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNameMatch(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestNameMatch_InvertIsExactComplement(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		path := rapid.StringMatching(`[a-zA-Z0-9./_-]{0,40}`).Draw(t, "path")

		plain, err := NewNameMatch(plugin.Args{"type": "glob", "pattern": "*.pdf"})
		require.NoError(t, err)
		flipped, err := NewNameMatch(plugin.Args{"type": "glob", "pattern": "*.pdf", "invert": "true"})
		require.NoError(t, err)

		a, err := plain.(plugin.DetectorPlugin).NeedsEncryption(path)
		require.NoError(t, err)
		b, err := flipped.(plugin.DetectorPlugin).NeedsEncryption(path)
		require.NoError(t, err)

		assert.NotEqual(t, a, b, "invert must be the exact complement for %q", path)
	})
}
