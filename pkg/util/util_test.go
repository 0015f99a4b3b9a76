package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 30000.0 / 1001},
		{"60", 60},
		{"29.97", 29.97},
		{"0/0", 0},
		{"", 0},
		{"abc", 0},
		{"1/2/3", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ParseFrameRate(tt.in), 1e-12, tt.in)
	}
}

func TestParseBitrate(t *testing.T) {
	valid := map[string]uint64{
		"25M":     25000000,
		"8000k":   8000000,
		"8000K":   8000000,
		"1.5M":    1500000,
		"2G":      2000000000,
		"2500000": 2500000,
	}
	for in, want := range valid {
		got, err := ParseBitrate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "fast", "0", "0M", "25MB", "25 M", "25 MiB", "1.5 GB", "25m", "-5M", "M"} {
		_, err := ParseBitrate(in)
		assert.Error(t, err, in)
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1.250000", FormatSeconds(1.25))
	assert.Equal(t, "0.000000", FormatSeconds(0))
	assert.Equal(t, "60", FormatRate(60))
	assert.Equal(t, "29.97", FormatRate(29.97))
	assert.Equal(t, "00:01:05.500", FormatDuration(65500*time.Millisecond))
	assert.Equal(t, 1500*time.Millisecond, Seconds(1.5))
}

func TestNonEmptyFile(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.mp4")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	full := filepath.Join(dir, "full.mp4")
	require.NoError(t, os.WriteFile(full, []byte("data"), 0644))

	assert.NoError(t, NonEmptyFile(full))
	assert.Error(t, NonEmptyFile(empty))
	assert.Error(t, NonEmptyFile(dir))
	assert.Error(t, NonEmptyFile(filepath.Join(dir, "nope.mp4")))

	assert.Equal(t, int64(4), FileSize(full))
	assert.Equal(t, int64(0), FileSize(filepath.Join(dir, "nope.mp4")))
}

func TestTempFileAndCleanup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EnsureDir(filepath.Join(dir, "a", "b")))
	assert.True(t, FileExists(filepath.Join(dir, "a", "b")))

	f, err := TempFile(dir, ".out-", ".mp4")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, ".mp4", filepath.Ext(f.Name()))

	CleanupFiles(f.Name(), filepath.Join(dir, "missing"))
	assert.False(t, FileExists(f.Name()))
}
