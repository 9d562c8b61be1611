package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stratos-karas/elise/internal/cluster"
)

// loadClusterConfig parses a cluster YAML file into cluster.Config with
// strict unknown-field rejection, the way the teacher's cmd/default_config.go
// decodes defaults.yaml — a typo'd key should fail loudly at setup (spec.md
// §7's "Input" error category), not silently zero-value a field.
func loadClusterConfig(path string) (cluster.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cluster.Config{}, fmt.Errorf("cmd: reading cluster config: %w", err)
	}
	var cfg cluster.Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cluster.Config{}, fmt.Errorf("cmd: parsing cluster config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cluster.Config{}, fmt.Errorf("cmd: invalid cluster config: %w", err)
	}
	return cfg, nil
}
