package sai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_ResolvesToOriginal(t *testing.T) {
	mode, err := DefaultConfig().ResolvedMode()
	require.NoError(t, err)
	require.Equal(t, Original, mode)
}

func TestConfig_ResolvedModeHonorsExplicitMode(t *testing.T) {
	cfg := Config{Mode: "SPARSE"}
	mode, err := cfg.ResolvedMode()
	require.NoError(t, err)
	require.Equal(t, Sparse, mode)
}

func TestConfig_ResolvedModeRejectsUnknown(t *testing.T) {
	cfg := Config{Mode: "NOT-A-MODE"}
	_, err := cfg.ResolvedMode()
	require.Error(t, err)
}

func TestConfig_ResolvedMaxTermSizeDefaultsWhenZero(t *testing.T) {
	require.Equal(t, MaxTermSize, Config{}.ResolvedMaxTermSize())
}

func TestConfig_ResolvedMaxTermSizeHonorsOverride(t *testing.T) {
	require.Equal(t, 256, Config{MaxTermSize: 256}.ResolvedMaxTermSize())
}
