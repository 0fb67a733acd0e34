package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Network.PingInterval, cfg.Network.PingInterval)
}

func TestLoadYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network:\n  ping_interval: 5s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Network.PingInterval)
}

func TestEnvOverridesWinOverYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("membership:\n  rate_limit_threshold: 7\n"), 0o600))
	t.Setenv("GROUPCHAT_RATE_LIMIT_THRESHOLD", "3")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Membership.RateLimitThreshold)
}

func TestValidateRejectsNonPowerOfTwoWindow(t *testing.T) {
	cfg := Default()
	cfg.Network.LosslessWindowSize = 50
	assert.Error(t, cfg.Validate())
}
