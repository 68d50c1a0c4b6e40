package nexusdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cluster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadClusterConfigYAMLAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
seed_addresses:
  - node1:1729
  - node2:1729
`)

	cfg, err := LoadClusterConfigYAML(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"node1:1729", "node2:1729"}, cfg.SeedAddresses)
	assert.Equal(t, 3*time.Millisecond, cfg.DispatchInterval)
	assert.Equal(t, 5*time.Second, cfg.PulseInterval)
	assert.Equal(t, 2*time.Second, cfg.FailoverDelay)
	assert.Equal(t, 10, cfg.MaxFailoverAttempts)
	assert.False(t, cfg.TLSEnabled)
}

func TestLoadClusterConfigYAMLHonoursExplicitValues(t *testing.T) {
	path := writeTempConfig(t, `
seed_addresses:
  - node1:1729
tls_enabled: true
username: admin
password: secret
tls_root_ca: /etc/nexusdb/ca.pem
dispatch_interval: 10ms
pulse_interval: 30s
failover_delay: 1s
max_failover_attempts: 3
`)

	cfg, err := LoadClusterConfigYAML(path)
	require.NoError(t, err)

	assert.True(t, cfg.TLSEnabled)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, 10*time.Millisecond, cfg.DispatchInterval)
	assert.Equal(t, 30*time.Second, cfg.PulseInterval)
	assert.Equal(t, time.Second, cfg.FailoverDelay)
	assert.Equal(t, 3, cfg.MaxFailoverAttempts)

	cred := cfg.Credential()
	assert.True(t, cred.IsTLSEnabled())
	assert.Equal(t, "/etc/nexusdb/ca.pem", cred.TLSRootCA())
}

func TestLoadClusterConfigYAMLRejectsMissingSeedAddresses(t *testing.T) {
	path := writeTempConfig(t, `tls_enabled: false`)

	_, err := LoadClusterConfigYAML(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed_addresses is required")
}

func TestLoadClusterConfigYAMLRequiresUsernameWhenTLSEnabled(t *testing.T) {
	path := writeTempConfig(t, `
seed_addresses:
  - node1:1729
tls_enabled: true
`)

	_, err := LoadClusterConfigYAML(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username is required")
}

func TestLoadClusterConfigYAMLMissingFile(t *testing.T) {
	_, err := LoadClusterConfigYAML(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestClusterConfigCredentialWithoutTLS(t *testing.T) {
	cfg := &ClusterConfig{SeedAddresses: []string{"node1:1729"}, Username: "admin", Password: "secret"}
	cred := cfg.Credential()
	assert.False(t, cred.IsTLSEnabled())
	assert.Equal(t, "admin", cred.Username())
	assert.Equal(t, "secret", cred.Password())
}
