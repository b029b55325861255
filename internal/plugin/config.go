package plugin

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	pkgerrors "github.com/brokkr-dev/plugboard/pkg/errors"
)

// DependencyPolicy controls what a batch-level operation (InitializePlugins,
// DestroyPlugins) does with an unconverged bundle once the fixed-point
// invoker has committed its final failure. Lenient leaves it as data on the
// returned Result, matching spec.md §4.6's "the invoker itself never aborts
// a batch over one bundle's failure". Strict additionally surfaces it as an
// aggregate error, for hosts that want batch-level all-or-nothing
// reporting without changing the invoker's own convergence semantics.
type DependencyPolicy string

const (
	DependencyPolicyLenient DependencyPolicy = "lenient"
	DependencyPolicyStrict  DependencyPolicy = "strict"
)

// ManagerConfig is the configuration a PluginManager runs under: where to
// look for plugin type manifests, how verbose logging should be, where to
// expose metrics, and how strictly to treat unconverged batches. LoadConfig
// parses it from YAML; the CLI harness builds its manager from
// DefaultConfig and does not read a config file. Nothing in this module
// reads MetricsAddr; serve-metrics takes its address from --addr.
type ManagerConfig struct {
	SearchPaths      []string         `yaml:"search_paths" validate:"omitempty,dive,required"`
	LogLevel         string           `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	MetricsAddr      string           `yaml:"metrics_addr"`
	DependencyPolicy DependencyPolicy `yaml:"dependency_policy" validate:"omitempty,oneof=lenient strict"`
}

var configValidator = validator.New()

// DefaultConfig is what the CLI harness falls back to when no config file
// is given. CI runs get a quieter default log level than an interactive
// terminal, the same CI-aware default the teacher applies to its own
// config.
func DefaultConfig() ManagerConfig {
	level := "info"
	if os.Getenv("CI") != "" {
		level = "warn"
	}
	return ManagerConfig{
		SearchPaths:      []string{"."},
		LogLevel:         level,
		DependencyPolicy: DependencyPolicyLenient,
	}
}

// LoadConfig parses and validates a ManagerConfig from YAML, layering it
// over DefaultConfig so an omitted field keeps its default rather than
// zeroing out.
func LoadConfig(data []byte) (ManagerConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ManagerConfig{}, pkgerrors.NewParseError("", 0, err)
	}
	if err := configValidator.Struct(cfg); err != nil {
		return ManagerConfig{}, fmt.Errorf("validating plugin manager config: %w", err)
	}
	return cfg, nil
}
