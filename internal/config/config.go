// Package config provides configuration for the tabviz CLI and server.
package config

// Config holds all configuration options.
type Config struct {
	StatePath string       `koanf:"state_path"`
	WatchDir  string       `koanf:"watch_dir"`
	Verbose   bool         `koanf:"verbose"`
	Server    ServerConfig `koanf:"server"`
	Limits    Limits       `koanf:"limits"`
}

// ServerConfig holds configuration for the web server.
type ServerConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
}

// Limits bounds ingestion memory. Every cap here exists to bound peak
// memory rather than CPU time.
type Limits struct {
	// MaxFileSize is the upload size cap in bytes.
	MaxFileSize int64 `koanf:"max_file_size"`
	// MaxRows is the hard cap on rows retained per ingestion.
	MaxRows int `koanf:"max_rows"`
	// PreviewRows bounds both preview-only parses and the rows returned
	// to the table preview.
	PreviewRows int `koanf:"preview_rows"`
	// ChunkRows is the CSV reader chunk size.
	ChunkRows int `koanf:"chunk_rows"`
	// History caps the per-session upload history length.
	History int `koanf:"history"`
}

// Default configuration values.
const (
	DefaultPort        = 8765
	DefaultStateFile   = ".tabviz/state.db"
	DefaultMaxFileSize = 50 << 20
	DefaultMaxRows     = 100000
	DefaultPreviewRows = 100
	DefaultChunkRows   = 2000
	DefaultHistory     = 10
)

// DefaultLimits returns the default ingestion limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize: DefaultMaxFileSize,
		MaxRows:     DefaultMaxRows,
		PreviewRows: DefaultPreviewRows,
		ChunkRows:   DefaultChunkRows,
		History:     DefaultHistory,
	}
}

// ApplyDefaults fills unset fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.StatePath == "" {
		c.StatePath = DefaultStateFile
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	d := DefaultLimits()
	if c.Limits.MaxFileSize == 0 {
		c.Limits.MaxFileSize = d.MaxFileSize
	}
	if c.Limits.MaxRows == 0 {
		c.Limits.MaxRows = d.MaxRows
	}
	if c.Limits.PreviewRows == 0 {
		c.Limits.PreviewRows = d.PreviewRows
	}
	if c.Limits.ChunkRows == 0 {
		c.Limits.ChunkRows = d.ChunkRows
	}
	if c.Limits.History == 0 {
		c.Limits.History = d.History
	}
}
