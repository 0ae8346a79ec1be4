package guide

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FallsBackToBundled(t *testing.T) {
	text, err := Load(filepath.Join(t.TempDir(), "missing.md"))
	require.NoError(t, err)
	assert.Contains(t, text, "# P(Doom) Player Guide")

	text, err = Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

func TestLoad_ReadsFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "guide.md")
	require.NoError(t, os.WriteFile(p, []byte("# Custom\nhello"), 0o644))

	text, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "# Custom\nhello", text)
}

func TestSections(t *testing.T) {
	got := Sections("intro line\n\n# One\nfirst\n## sub stays\n\n# Two\r\nsecond\n")
	require.Len(t, got, 3)
	assert.Equal(t, Section{Title: "", Body: "intro line"}, got[0])
	assert.Equal(t, "One", got[1].Title)
	assert.Equal(t, "first\n## sub stays", got[1].Body)
	assert.Equal(t, Section{Title: "Two", Body: "second"}, got[2])

	assert.Empty(t, Sections(""))
	assert.Len(t, Sections("# Only"), 1)
}

func TestBundledGuideHasSections(t *testing.T) {
	text, err := Load("")
	require.NoError(t, err)
	secs := Sections(text)
	assert.GreaterOrEqual(t, len(secs), 8)
}

func TestHTML(t *testing.T) {
	out, err := HTML("# Actions\n\nSpend **AP** wisely.\n\n<script>alert(1)</script>\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Actions</h1>")
	assert.Contains(t, out, "<strong>AP</strong>")
	assert.NotContains(t, out, "<script>")
}
