// Package econfig is the engine's root configuration, read from YAML in
// the shape of the teacher's internal/config package: batch sizes,
// worker pool sizes, busy-timeout and cache-size settings, and the
// migration ladder ceiling (SPEC_FULL.md §A "Configuration").
package econfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the engine's root configuration.
type Config struct {
	RootDir string `yaml:"root_dir"`

	// Batch sizes, §4.4.1 "in batches of N (default 100)" and §4.5.
	MapBatchSize     int `yaml:"map_batch_size"`
	ReduceBatchSize  int `yaml:"reduce_batch_size"`
	CompactBatchSize int `yaml:"compact_batch_size"`
	CheckBatchSize   int `yaml:"check_batch_size"`

	// Worker pool sizes per kind (§4.1, §5).
	CompactWorkers int `yaml:"compact_workers"`
	CheckWorkers   int `yaml:"check_workers"`
	MapWorkers     int `yaml:"map_workers"`
	ReduceWorkers  int `yaml:"reduce_workers"`
	QueueDepth     int `yaml:"queue_depth"`

	// Embedded file tuning (§6 "external interfaces").
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`
	CacheSizeKB   int `yaml:"cache_size_kb"`

	// Change feed defaults (§4.6).
	LongPollTimeoutMS int `yaml:"long_poll_timeout_ms"`
	HeartbeatMS       int `yaml:"heartbeat_ms"`

	// MaxBodyBytes bounds a document/link body and an attachment blob.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// MigrationCeiling is the highest user_version this build knows how
	// to apply. Validate bounds-checks it, but relstore.Migrate does not
	// read it: each store rejects a user_version above its own last
	// migration step as CorruptMetadata.
	MigrationCeiling int `yaml:"migration_ceiling"`
}

// Default returns the engine's built-in defaults, matching the teacher's
// config.Default() shape.
func Default() Config {
	return Config{
		RootDir:           "./data",
		MapBatchSize:      100,
		ReduceBatchSize:   100,
		CompactBatchSize:  500,
		CheckBatchSize:    500,
		CompactWorkers:    1,
		CheckWorkers:      1,
		MapWorkers:        2,
		ReduceWorkers:     2,
		QueueDepth:        64,
		BusyTimeoutMS:     5000,
		CacheSizeKB:       2000,
		LongPollTimeoutMS: 60000,
		HeartbeatMS:       15000,
		MaxBodyBytes:      8 << 20,
		MigrationCeiling:  6,
	}
}

// Load reads and parses a YAML config file, filling unset fields from
// Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("econfig: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("econfig: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate bounds-checks the configuration, mirroring the teacher's
// config.Validate (MaxPath/MaxContent-style sanity limits).
func (c Config) Validate() error {
	if c.RootDir == "" {
		return fmt.Errorf("econfig: root_dir required")
	}
	if c.MapBatchSize <= 0 || c.MapBatchSize > 100000 {
		return fmt.Errorf("econfig: map_batch_size out of range: %d", c.MapBatchSize)
	}
	if c.ReduceBatchSize <= 0 || c.ReduceBatchSize > 100000 {
		return fmt.Errorf("econfig: reduce_batch_size out of range: %d", c.ReduceBatchSize)
	}
	if c.CompactBatchSize <= 0 || c.CompactBatchSize > 1000000 {
		return fmt.Errorf("econfig: compact_batch_size out of range: %d", c.CompactBatchSize)
	}
	if c.BusyTimeoutMS < 0 || c.BusyTimeoutMS > 600000 {
		return fmt.Errorf("econfig: busy_timeout_ms out of range: %d", c.BusyTimeoutMS)
	}
	if c.MaxBodyBytes <= 0 || c.MaxBodyBytes > 1<<30 {
		return fmt.Errorf("econfig: max_body_bytes out of range: %d", c.MaxBodyBytes)
	}
	if c.MigrationCeiling < 1 {
		return fmt.Errorf("econfig: migration_ceiling must be >= 1")
	}
	return nil
}
