package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names searched in the working directory.
const (
	ConfigFileName    = "tabviz.yaml"
	ConfigFileNameAlt = "tabviz.yml"
)

// findConfigFile finds the config file to use.
// Priority: explicit path > tabviz.yaml > tabviz.yml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// flagKey maps a CLI flag name to its config key.
func flagKey(name string) string {
	switch name {
	case "port":
		return "server.port"
	case "state":
		return "state_path"
	case "watch-dir":
		return "watch_dir"
	default:
		return strings.ReplaceAll(name, "-", "_")
	}
}

// Load loads configuration from defaults, an optional config file,
// TABVIZ_-prefixed environment variables and CLI flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"state_path":           DefaultStateFile,
		"server.port":          DefaultPort,
		"limits.max_file_size": DefaultMaxFileSize,
		"limits.max_rows":      DefaultMaxRows,
		"limits.preview_rows":  DefaultPreviewRows,
		"limits.chunk_rows":    DefaultChunkRows,
		"limits.history":       DefaultHistory,
		"verbose":              false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// TABVIZ_STATE_PATH -> state_path, TABVIZ_SERVER__PORT -> server.port
	if err := k.Load(env.Provider("TABVIZ_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "TABVIZ_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}
