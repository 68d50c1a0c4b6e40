package nexusdb

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ClusterConfig is an optional, file-based alternative to constructing
// Credential and dial parameters programmatically: seed addresses,
// credential material paths, and runtime tuning in one YAML document
// (SPEC_FULL.md §4.11). The timing fields (DispatchInterval, PulseInterval,
// FailoverDelay, MaxFailoverAttempts) are parsed, defaulted and validated
// only: the driver's timings are fixed constants in internal/cluster that do
// not read them.
type ClusterConfig struct {
	// SeedAddresses is the list of "host:port" endpoints tried concurrently
	// during topology discovery. Required.
	SeedAddresses []string `yaml:"seed_addresses"`

	// Username and Password authenticate against an encrypted cluster.
	// Username is required when TLSEnabled is true; Password is not checked.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// TLSEnabled makes Credential build a TLS credential (NewCredentialWithTLS)
	// rather than a plaintext one. Defaults to false.
	TLSEnabled bool `yaml:"tls_enabled"`

	// TLSRootCA is the path to the root CA certificate used to verify the
	// server. Empty uses the system default pool.
	TLSRootCA string `yaml:"tls_root_ca"`

	// DispatchInterval bounds how long a transaction request sits in the
	// dispatch buffer before being flushed. Defaults to 3ms.
	DispatchInterval time.Duration `yaml:"dispatch_interval"`

	// PulseInterval is the period between session keepalive pulses.
	// Defaults to 5s.
	PulseInterval time.Duration `yaml:"pulse_interval"`

	// FailoverDelay is the pause between primary re-seek attempts. Defaults
	// to 2s.
	FailoverDelay time.Duration `yaml:"failover_delay"`

	// MaxFailoverAttempts caps RunOnPrimaryReplica's retry loop. Defaults
	// to 10.
	MaxFailoverAttempts int `yaml:"max_failover_attempts"`
}

// LoadClusterConfigYAML reads the YAML file at path, unmarshals it into a
// ClusterConfig, applies defaults, and validates required fields.
func LoadClusterConfigYAML(path string) (*ClusterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("nexusdb: cannot read %q: %w", path, err)
	}

	var cfg ClusterConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("nexusdb: cannot parse %q: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("nexusdb: validation failed for %q: %w", path, err)
	}

	return &cfg, nil
}

func (cfg *ClusterConfig) applyDefaults() {
	if cfg.DispatchInterval == 0 {
		cfg.DispatchInterval = 3 * time.Millisecond
	}
	if cfg.PulseInterval == 0 {
		cfg.PulseInterval = 5 * time.Second
	}
	if cfg.FailoverDelay == 0 {
		cfg.FailoverDelay = 2 * time.Second
	}
	if cfg.MaxFailoverAttempts == 0 {
		cfg.MaxFailoverAttempts = 10
	}
}

func (cfg *ClusterConfig) validate() error {
	var errs []error
	if len(cfg.SeedAddresses) == 0 {
		errs = append(errs, errors.New("seed_addresses is required"))
	}
	if cfg.TLSEnabled && cfg.Username == "" {
		errs = append(errs, errors.New("username is required when tls_enabled is true"))
	}
	return errors.Join(errs...)
}

// Credential builds the Credential described by this config.
func (cfg *ClusterConfig) Credential() Credential {
	if cfg.TLSEnabled {
		return NewCredentialWithTLS(cfg.Username, cfg.Password, cfg.TLSRootCA)
	}
	return NewCredentialWithoutTLS(cfg.Username, cfg.Password)
}
