package config

import (
	"path/filepath"
	"time"

	"vdm-generator/internal/naming"
	"vdm-generator/internal/schemafilter"
)

// DefaultMappingFileName is used when mapping.file is not configured. The
// file is placed next to the input document.
const DefaultMappingFileName = "service-name-mappings.properties"

// Config holds the application configuration.
type Config struct {
	Input         InputConfig         `mapstructure:"input"`
	Output        OutputConfig        `mapstructure:"output"`
	Naming        naming.Config       `mapstructure:"naming"`
	Mapping       MappingConfig       `mapstructure:"mapping"`
	SchemaFilters schemafilter.Config `mapstructure:"schema_filters"`
	Watch         WatchConfig         `mapstructure:"watch"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// InputConfig selects the service description to generate from.
type InputConfig struct {
	Path string `mapstructure:"path"` // .edmx, .xml, .json, .yaml or .yml
	// ServiceIdentifier overrides the identifier derived from the document.
	ServiceIdentifier string `mapstructure:"service_identifier"`
}

// OutputConfig controls where and how sources are written.
type OutputConfig struct {
	Dir           string `mapstructure:"dir"`
	PackagePrefix string `mapstructure:"package_prefix"`
	// Force regenerates even if the input is unchanged since the last run.
	Force bool `mapstructure:"force"`
	// LegacyLookup reads previously generated classes from Dir to keep their
	// method overloads.
	LegacyLookup bool `mapstructure:"legacy_lookup"`
}

// MappingConfig locates the service name mapping file.
type MappingConfig struct {
	File string `mapstructure:"file"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// MappingFile returns the configured mapping file or the default next to
// the input.
func (c *Config) MappingFile() string {
	if c.Mapping.File != "" {
		return c.Mapping.File
	}
	return filepath.Join(filepath.Dir(c.Input.Path), DefaultMappingFileName)
}

// LoggingConfig holds logging parameters.
type LoggingConfig struct {
	Level          string `mapstructure:"level"`           // debug, info, warn, error
	Format         string `mapstructure:"format"`          // auto, json, text
	ExportsEnabled bool   `mapstructure:"exports_enabled"` // Enable OTLP log export
}

// ObservabilityConfig holds observability parameters.
type ObservabilityConfig struct {
	ServiceName      string        `mapstructure:"service_name"`
	ServiceVersion   string        `mapstructure:"service_version"`
	Environment      string        `mapstructure:"environment"`
	TracingEnabled   bool          `mapstructure:"tracing_enabled"`
	TraceSampleRatio float64       `mapstructure:"trace_sample_ratio"`
	MetricsTextfile  string        `mapstructure:"metrics_textfile"`
	Logging          LoggingConfig `mapstructure:"logging"`

	// Global OTLP settings (defaults for all signals)
	OTLP OTLPConfig `mapstructure:"otlp"`

	// Signal-specific overrides (optional)
	Traces *OTLPConfig `mapstructure:"traces,omitempty"`
	Logs   *OTLPConfig `mapstructure:"logs,omitempty"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Endpoint          string            `mapstructure:"endpoint"`
	Protocol          string            `mapstructure:"protocol"` // "grpc", "http/protobuf"
	Insecure          bool              `mapstructure:"insecure"`
	TLSCertFile       string            `mapstructure:"tls_cert_file"`
	TLSClientCertFile string            `mapstructure:"tls_client_cert_file"`
	TLSClientKeyFile  string            `mapstructure:"tls_client_key_file"`
	Headers           map[string]string `mapstructure:"headers"`
	Timeout           time.Duration     `mapstructure:"timeout"`
	Compression       string            `mapstructure:"compression"` // "none", "gzip"
	RetryEnabled      bool              `mapstructure:"retry_enabled"`
}

// GetTracesConfig returns the effective OTLP config for traces
func (c *ObservabilityConfig) GetTracesConfig() OTLPConfig {
	if c.Traces != nil {
		return mergeOTLPConfigs(c.OTLP, *c.Traces)
	}
	return c.OTLP
}

// GetLogsConfig returns the effective OTLP config for logs
func (c *ObservabilityConfig) GetLogsConfig() OTLPConfig {
	if c.Logs != nil {
		return mergeOTLPConfigs(c.OTLP, *c.Logs)
	}
	return c.OTLP
}

// mergeOTLPConfigs merges signal-specific config over global defaults.
// Insecure and RetryEnabled always come from the override: a bool cannot
// tell "unset" from false.
func mergeOTLPConfigs(base OTLPConfig, override OTLPConfig) OTLPConfig {
	result := base
	if override.Endpoint != "" {
		result.Endpoint = override.Endpoint
	}
	if override.Protocol != "" {
		result.Protocol = override.Protocol
	}
	result.Insecure = override.Insecure
	result.RetryEnabled = override.RetryEnabled

	if override.TLSCertFile != "" {
		result.TLSCertFile = override.TLSCertFile
	}
	if override.TLSClientCertFile != "" {
		result.TLSClientCertFile = override.TLSClientCertFile
	}
	if override.TLSClientKeyFile != "" {
		result.TLSClientKeyFile = override.TLSClientKeyFile
	}

	if override.Headers != nil {
		result.Headers = make(map[string]string, len(base.Headers)+len(override.Headers))
		for k, v := range base.Headers {
			result.Headers[k] = v
		}
		for k, v := range override.Headers {
			result.Headers[k] = v
		}
	}

	if override.Timeout != 0 {
		result.Timeout = override.Timeout
	}
	if override.Compression != "" {
		result.Compression = override.Compression
	}
	return result
}
