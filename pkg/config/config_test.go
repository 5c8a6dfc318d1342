package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/gapfill/pkg/analyze"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, analyze.DefaultThresholds(), c.AnalyzeOptions("x.csv").Thresholds)

	e := c.ExecutorOptions("x.csv")
	assert.Equal(t, 5, e.Neighbors)
	assert.Equal(t, 70.0, e.DropColumnPct)
	assert.Equal(t, "x.csv", e.InputFile)
	assert.False(t, e.CreateMissingIndicators)
}

func TestLoadFileAndEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "gapfill.yaml")
	body := "neighbors: 3\ndelimiter: ';'\nthresholds:\n  skew_limit: 1.5\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	t.Setenv("GAPFILL_CREATE_MISSING_INDICATORS", "true")
	t.Setenv("GAPFILL_THRESHOLDS_DROP_COLUMN_PCT", "80")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Neighbors)
	assert.Equal(t, ';', c.DelimiterRune())
	assert.Equal(t, 1.5, c.Thresholds.SkewLimit)
	assert.Equal(t, 0.95, c.Thresholds.IDUniqueRatio)
	assert.True(t, c.CreateMissingIndicators)
	assert.Equal(t, 80.0, c.ExecutorOptions("").DropColumnPct)
}

func TestZeroDropLimitIsKept(t *testing.T) {
	p := filepath.Join(t.TempDir(), "gapfill.yaml")
	require.NoError(t, os.WriteFile(p, []byte("thresholds:\n  drop_column_pct: 0\n"), 0o644))
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.ExecutorOptions("").DropColumnPct)
}

func TestLoadRejectsBadValues(t *testing.T) {
	p := filepath.Join(t.TempDir(), "gapfill.toml")
	require.NoError(t, os.WriteFile(p, []byte("neighbors = 0\n"), 0o644))
	_, err := Load(p)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := Default()
	c.Neighbors = 7
	c.Delimiter = `\t`
	for _, name := range []string{"out.yaml", "out.toml"} {
		p := filepath.Join(dir, "nested", name)
		require.NoError(t, Save(c, p))
		back, err := Load(p)
		require.NoError(t, err, name)
		assert.Equal(t, c, back, name)
		assert.Equal(t, '\t', back.DelimiterRune())
	}
}
