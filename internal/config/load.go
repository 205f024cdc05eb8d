// Package config loads configuration from files, env vars, and flags, and validates it.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vdm-generator/internal/naming"
)

// EnvPrefix prefixes every environment variable: VDMGEN_OUTPUT_DIR.
const EnvPrefix = "VDMGEN"

// Load loads configuration from multiple sources with the following precedence:
// 1. Command line flags (only those explicitly set in fs)
// 2. Environment variables
// 3. Config file
// 4. Default values
//
// fs must have been populated by DefineFlags and parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Defaults (lowest priority)
	setDefaults(v)

	// --- Config file ---
	var cfgPath string
	if fs != nil {
		cfgPath, _ = fs.GetString("config")
	}
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("vdm-generator")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.vdm-generator")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgPath != "" {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// --- Environment variables ---
	// Canonical keys: dot + snake_case
	// Env vars: VDMGEN_NAMING_STRATEGY
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Flags binding (highest priority) ---
	if fs != nil {
		bindChangedFlagsToViper(v, fs)
	}

	// --- Unmarshal (strict) ---
	var cfg Config
	if err := v.UnmarshalExact(
		&cfg,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				stringToStringSliceHookFunc(","),
			),
		),
	); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// bindChangedFlagsToViper copies only explicitly-set flags into Viper,
// preserving precedence: flags > env > file > defaults.
func bindChangedFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	fs.Visit(func(f *pflag.Flag) {
		if _, ok := flagKeys[f.Name]; !ok {
			return
		}

		switch f.Value.Type() {
		case "string":
			val, _ := fs.GetString(f.Name)
			v.Set(f.Name, val)
		case "bool":
			val, _ := fs.GetBool(f.Name)
			v.Set(f.Name, val)
		case "float64":
			val, _ := fs.GetFloat64(f.Name)
			v.Set(f.Name, val)
		case "duration":
			val, _ := fs.GetDuration(f.Name)
			v.Set(f.Name, val)
		case "stringSlice":
			val, _ := fs.GetStringSlice(f.Name)
			v.Set(f.Name, val)
		default:
			v.Set(f.Name, f.Value.String())
		}
	})
}

// flagKeys lists the flags that map onto configuration keys. Command flags
// such as --config or --watch live on the same set but are not bound.
var flagKeys = map[string]struct{}{}

func define[T any](add func(name string, value T, usage string) *T, name string, value T, usage string) {
	flagKeys[name] = struct{}{}
	add(name, value, usage)
}

// DefineFlags defines all configuration flags on fs using canonical
// snake_case keys.
func DefineFlags(fs *pflag.FlagSet) {
	// Input and output
	define(fs.String, "input.path", "", "Service description to generate from (EDMX or OpenAPI)")
	define(fs.String, "input.service_identifier", "", "Override the service identifier derived from the input")
	define(fs.String, "output.dir", "", "Directory generated sources are written to")
	define(fs.String, "output.package_prefix", "", "Java package prefix for generated classes")
	define(fs.Bool, "output.force", false, "Regenerate even if the input is unchanged")
	define(fs.Bool, "output.legacy_lookup", true, "Keep method overloads of previously generated classes")

	// Naming
	define(fs.String, "naming.strategy", "", "Naming convention (default, domain)")
	define(fs.String, "naming.name_source", "", "Prefer technical names or labels (name, label)")
	define(fs.String, "naming.equality", "", "Collision equality (case_sensitive, case_insensitive, lowercase)")
	define(fs.String, "naming.language", "", "Target language for reserved words (java, go)")
	define(fs.StringSlice, "naming.entity_prefixes", nil, "Entity prefixes stripped by the domain strategy")
	define(fs.StringSlice, "naming.property_prefixes", nil, "Property prefixes stripped by the domain strategy")
	define(fs.StringSlice, "naming.class_suffixes", nil, "Class suffixes stripped by the domain strategy")
	define(fs.StringSlice, "naming.service_prefixes", nil, "Service identifier prefixes stripped by the domain strategy")
	define(fs.StringSlice, "naming.service_suffixes", nil, "Service identifier suffixes stripped by the domain strategy")
	define(fs.StringSlice, "naming.reserved_member_names", nil, "Member names claimed in every generated class")
	define(fs.StringSlice, "naming.base_class_sources", nil, "Base class sources whose accessors must not be shadowed")
	define(fs.Bool, "naming.pluralize_collections", true, "Name collection accessors in the plural")

	// Mapping and watch
	define(fs.String, "mapping.file", "", "Service name mapping file (default: next to the input)")
	define(fs.Duration, "watch.debounce", 0, "Quiet period before a watched change triggers a run")

	// Observability
	define(fs.String, "observability.service_name", "", "Service name for observability")
	define(fs.String, "observability.environment", "", "Environment name (dev, ci, prod)")
	define(fs.Bool, "observability.tracing_enabled", false, "Export traces over OTLP")
	define(fs.Float64, "observability.trace_sample_ratio", 0, "Trace sampling ratio from 0.0 to 1.0")
	define(fs.String, "observability.metrics_textfile", "", "Write run metrics to this Prometheus textfile")
	define(fs.String, "observability.logging.level", "", "Log level (debug, info, warn, error)")
	define(fs.String, "observability.logging.format", "", "Log format (auto, json, text)")
	define(fs.Bool, "observability.logging.exports_enabled", false, "Enable OTLP log export")
	define(fs.String, "observability.otlp.endpoint", "", "OTLP endpoint for all signals (e.g., localhost:4317)")
	define(fs.String, "observability.otlp.protocol", "", "OTLP protocol for all signals (grpc, http/protobuf)")
	define(fs.Bool, "observability.otlp.insecure", false, "Use insecure connection (no TLS)")
	define(fs.Duration, "observability.otlp.timeout", 0, "OTLP export timeout")

	// Config file flag
	if fs.Lookup("config") == nil {
		fs.StringP("config", "c", "", "Config file path")
	}
}

// setDefaults sets default values (lowest precedence). Every key is listed so
// that AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper) {
	defaults := naming.DefaultConfig()

	v.SetDefault("input.path", "")
	v.SetDefault("input.service_identifier", "")
	v.SetDefault("output.dir", "")
	v.SetDefault("output.package_prefix", "com.example.vdm")
	v.SetDefault("output.force", false)
	v.SetDefault("output.legacy_lookup", true)

	v.SetDefault("naming.strategy", defaults.Strategy)
	v.SetDefault("naming.name_source", defaults.NameSource)
	v.SetDefault("naming.equality", defaults.Equality)
	v.SetDefault("naming.language", defaults.Language)
	v.SetDefault("naming.entity_prefixes", defaults.EntityPrefixes)
	v.SetDefault("naming.property_prefixes", defaults.PropertyPrefixes)
	v.SetDefault("naming.class_suffixes", defaults.ClassSuffixes)
	v.SetDefault("naming.service_prefixes", defaults.ServicePrefixes)
	v.SetDefault("naming.service_suffixes", defaults.ServiceSuffixes)
	v.SetDefault("naming.reserved_member_names", defaults.ReservedMemberNames)
	v.SetDefault("naming.base_class_sources", []string{})
	v.SetDefault("naming.pluralize_collections", defaults.PluralizeCollections)
	v.SetDefault("naming.plural_overrides", map[string]string{})
	v.SetDefault("naming.singular_overrides", map[string]string{})

	v.SetDefault("mapping.file", "")

	// Schema filter defaults (allow all)
	v.SetDefault("schema_filters.allow_entities", []string{"*"})
	v.SetDefault("schema_filters.deny_entities", []string{})
	v.SetDefault("schema_filters.allow_properties", map[string][]string{"*": {"*"}})
	v.SetDefault("schema_filters.deny_properties", map[string][]string{})
	v.SetDefault("schema_filters.allow_operations", []string{"*"})
	v.SetDefault("schema_filters.deny_operations", []string{})

	v.SetDefault("watch.debounce", 200*time.Millisecond)

	// Observability defaults
	v.SetDefault("observability.service_name", "vdm-generator")
	v.SetDefault("observability.service_version", "")
	v.SetDefault("observability.environment", "development")
	v.SetDefault("observability.tracing_enabled", false)
	v.SetDefault("observability.trace_sample_ratio", 1.0)
	v.SetDefault("observability.metrics_textfile", "")
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "auto")
	v.SetDefault("observability.logging.exports_enabled", false)
	v.SetDefault("observability.otlp.endpoint", "localhost:4317")
	v.SetDefault("observability.otlp.protocol", "grpc")
	v.SetDefault("observability.otlp.insecure", false)
	v.SetDefault("observability.otlp.tls_cert_file", "")
	v.SetDefault("observability.otlp.tls_client_cert_file", "")
	v.SetDefault("observability.otlp.tls_client_key_file", "")
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.otlp.timeout", 10*time.Second)
	v.SetDefault("observability.otlp.compression", "gzip")
	v.SetDefault("observability.otlp.retry_enabled", true)
}

func stringToStringSliceHookFunc(sep string) mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}

		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return []string{}, nil
		}

		parts := strings.Split(raw, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}
