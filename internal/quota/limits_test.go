package quota

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTierLimits(t *testing.T) {
	limits := DefaultTierLimits()

	assert.Equal(t, Ceiling(5), limits.Ceiling(TierFree))
	assert.Equal(t, Ceiling(50), limits.Ceiling(TierBasic))
	assert.Equal(t, Ceiling(200), limits.Ceiling(TierPro))
	assert.Equal(t, Unbounded, limits.Ceiling(TierBusiness))
	assert.Equal(t, Ceiling(50), limits.Ceiling("BASIC"))
	assert.Equal(t, Ceiling(5), limits.Ceiling(""))
}

func TestCeilingString(t *testing.T) {
	assert.Equal(t, "∞", Unbounded.String())
	assert.Equal(t, "200", Ceiling(200).String())
}

func TestNextTier(t *testing.T) {
	assert.Equal(t, TierBasic, NextTier(TierFree))
	assert.Equal(t, TierPro, NextTier(TierBasic))
	assert.Equal(t, TierBusiness, NextTier(TierPro))
	assert.Empty(t, NextTier(TierBusiness))
	assert.Equal(t, TierBasic, NextTier("unknown"))
}

func TestParseCeiling(t *testing.T) {
	tests := []struct {
		raw     string
		want    Ceiling
		wantErr bool
	}{
		{"5", 5, false},
		{" 0 ", 0, false},
		{"unbounded", Unbounded, false},
		{"Unlimited", Unbounded, false},
		{"-1", Unbounded, false},
		{"-5", 0, true},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCeiling(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}

		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestLoadTierLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tiers:\n  free: 10\n  pro: unbounded\n  agency: 1000\n"), 0o600))

	limits, err := LoadTierLimits(path)
	require.NoError(t, err)

	assert.Equal(t, Ceiling(10), limits.Ceiling(TierFree))
	assert.Equal(t, Ceiling(50), limits.Ceiling(TierBasic), "unlisted tiers keep their default")
	assert.Equal(t, Unbounded, limits.Ceiling(TierPro))
	assert.Equal(t, Ceiling(1000), limits.Ceiling("agency"))
}

func TestLoadTierLimits_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tiers:\n  free: plenty\n"), 0o600))

	_, err := LoadTierLimits(path)
	assert.Error(t, err)

	_, err = LoadTierLimits(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadTierLimits_EmptyPathUsesDefaults(t *testing.T) {
	limits, err := LoadTierLimits("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTierLimits(), limits)
}
