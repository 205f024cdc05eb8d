package config

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"regexp"
	"strings"

	"vdm-generator/internal/naming"
	"vdm-generator/internal/schemafilter"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (r *ValidationResult) addError(field, message, hint string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Hint: hint})
}

func (r *ValidationResult) addWarning(field, message, hint string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: message, Hint: hint})
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	c.Input.validate(result)
	c.Output.validate(result)
	validateNamingConfig(result, c.Naming)
	validateSchemaFilters(result, c.SchemaFilters)
	if c.Watch.Debounce < 0 {
		result.addError("watch.debounce", "debounce cannot be negative", "")
	}
	c.Observability.validate(result)

	return result
}

func (i *InputConfig) validate(result *ValidationResult) {
	if strings.TrimSpace(i.Path) == "" {
		result.addError("input.path", "input path is required", "pass --input.path or set VDMGEN_INPUT_PATH")
		return
	}
	switch strings.ToLower(path.Ext(i.Path)) {
	case ".edmx", ".xml", ".json", ".yaml", ".yml":
	default:
		result.addWarning("input.path", fmt.Sprintf("unrecognized extension on %q", i.Path),
			"the format will be detected from the content")
	}
}

var javaPackageSegment = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func (o *OutputConfig) validate(result *ValidationResult) {
	if strings.TrimSpace(o.Dir) == "" {
		result.addError("output.dir", "output directory is required", "pass --output.dir or set VDMGEN_OUTPUT_DIR")
	}
	if o.PackagePrefix == "" {
		return
	}
	for _, segment := range strings.Split(o.PackagePrefix, ".") {
		if !javaPackageSegment.MatchString(segment) {
			result.addError("output.package_prefix",
				fmt.Sprintf("invalid package segment %q in %q", segment, o.PackagePrefix),
				"use dot separated Java identifiers, e.g. com.example.vdm")
			return
		}
		if naming.Java.IsReserved(segment) {
			result.addError("output.package_prefix",
				fmt.Sprintf("package segment %q is a reserved word", segment), "")
			return
		}
	}
}

func validateNamingConfig(result *ValidationResult, cfg naming.Config) {
	if _, err := naming.NewStrategy(cfg); err != nil {
		result.addError("naming", err.Error(), "")
	}
	if _, err := naming.ParseEquality(cfg.Equality); err != nil {
		result.addError("naming.equality", err.Error(), "valid values are: case_sensitive, case_insensitive, lowercase")
	}
	for _, name := range cfg.ReservedMemberNames {
		if strings.TrimSpace(name) == "" {
			result.addError("naming.reserved_member_names", "reserved member name cannot be empty", "")
		}
	}
	for _, source := range cfg.BaseClassSources {
		if strings.TrimSpace(source) == "" {
			result.addError("naming.base_class_sources", "base class source path cannot be empty", "")
		}
	}
	validateOverrides(result, "naming.plural_overrides", cfg.PluralOverrides)
	validateOverrides(result, "naming.singular_overrides", cfg.SingularOverrides)
}

func validateOverrides(result *ValidationResult, field string, overrides map[string]string) {
	for from, to := range overrides {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			result.addError(field, fmt.Sprintf("override %q -> %q cannot have an empty side", from, to), "")
		}
	}
}

func validateSchemaFilters(result *ValidationResult, filters schemafilter.Config) {
	validateGlobList(result, "schema_filters.allow_entities", filters.AllowEntities)
	validateGlobList(result, "schema_filters.deny_entities", filters.DenyEntities)
	validatePatternMap(result, "schema_filters.allow_properties", filters.AllowProperties)
	validatePatternMap(result, "schema_filters.deny_properties", filters.DenyProperties)
	validateGlobList(result, "schema_filters.allow_operations", filters.AllowOperations)
	validateGlobList(result, "schema_filters.deny_operations", filters.DenyOperations)
}

func validatePatternMap(result *ValidationResult, field string, patternMap map[string][]string) {
	for entityPattern, propertyPatterns := range patternMap {
		if strings.TrimSpace(entityPattern) == "" {
			result.addError(field, "entity pattern cannot be empty", "")
			continue
		}
		if _, err := path.Match(strings.ToLower(entityPattern), "probe"); err != nil {
			result.addError(field, fmt.Sprintf("invalid entity glob pattern %q: %v", entityPattern, err), "")
		}
		for _, propertyPattern := range propertyPatterns {
			if strings.TrimSpace(propertyPattern) == "" {
				result.addError(field, fmt.Sprintf("property pattern for entity pattern %q cannot be empty", entityPattern), "")
				continue
			}
			if _, err := path.Match(strings.ToLower(propertyPattern), "probe"); err != nil {
				result.addError(field, fmt.Sprintf("invalid property glob pattern %q for entity pattern %q: %v", propertyPattern, entityPattern, err), "")
			}
		}
	}
}

func validateGlobList(result *ValidationResult, field string, patterns []string) {
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			result.addError(field, "glob pattern cannot be empty", "")
			continue
		}
		if _, err := path.Match(strings.ToLower(pattern), "probe"); err != nil {
			result.addError(field, fmt.Sprintf("invalid glob pattern %q: %v", pattern, err), "")
		}
	}
}

func (o *ObservabilityConfig) validate(result *ValidationResult) {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[o.Logging.Level] {
		result.addError("observability.logging.level", fmt.Sprintf("invalid log level %q", o.Logging.Level),
			"valid values are: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"auto": true, "json": true, "text": true}
	if !validLogFormats[o.Logging.Format] {
		result.addError("observability.logging.format", fmt.Sprintf("invalid log format %q", o.Logging.Format),
			"valid values are: auto, json, text")
	}

	if o.TraceSampleRatio < 0 || o.TraceSampleRatio > 1 {
		result.addError("observability.trace_sample_ratio",
			fmt.Sprintf("trace sample ratio %v is out of range", o.TraceSampleRatio), "use a value from 0.0 to 1.0")
	}

	// node_exporter's textfile collector only reads *.prom files.
	if o.MetricsTextfile != "" && path.Ext(o.MetricsTextfile) != ".prom" {
		result.addWarning("observability.metrics_textfile",
			fmt.Sprintf("%q does not end in .prom", o.MetricsTextfile),
			"the node_exporter textfile collector ignores other files")
	}

	if o.TracingEnabled || o.Logging.ExportsEnabled {
		o.OTLP.validate("observability.otlp", result)
		if o.Traces != nil {
			o.Traces.validate("observability.traces", result)
		}
		if o.Logs != nil {
			o.Logs.validate("observability.logs", result)
		}
	}
}

func (o *OTLPConfig) validate(prefix string, result *ValidationResult) {
	validProtocols := map[string]bool{"": true, "grpc": true, "http/protobuf": true}
	if !validProtocols[o.Protocol] {
		result.addError(prefix+".protocol", fmt.Sprintf("invalid OTLP protocol %q", o.Protocol),
			"valid values are: grpc, http/protobuf")
	}

	if o.Protocol == "http/protobuf" && !validOTLPEndpoint(o.Endpoint) {
		result.addError(prefix+".endpoint", fmt.Sprintf("invalid OTLP endpoint %q for http/protobuf", o.Endpoint),
			"use host:port or a full URL")
	}

	validCompressions := map[string]bool{"": true, "none": true, "gzip": true}
	if !validCompressions[o.Compression] {
		result.addError(prefix+".compression", fmt.Sprintf("invalid OTLP compression %q", o.Compression),
			"valid values are: none, gzip")
	}
}

func validOTLPEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	if strings.Contains(endpoint, "://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return parsed.Host != ""
	}
	_, _, err := net.SplitHostPort(endpoint)
	return err == nil
}
