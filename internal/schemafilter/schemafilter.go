// Package schemafilter applies allow/deny filters to a service description.
package schemafilter

import (
	"path"
	"slices"
	"strings"

	"vdm-generator/internal/schema"
)

// Config controls allow/deny filters for entities, properties and operations.
type Config struct {
	AllowEntities   []string            `mapstructure:"allow_entities"`
	DenyEntities    []string            `mapstructure:"deny_entities"`
	AllowProperties map[string][]string `mapstructure:"allow_properties"`
	DenyProperties  map[string][]string `mapstructure:"deny_properties"`
	AllowOperations []string            `mapstructure:"allow_operations"`
	DenyOperations  []string            `mapstructure:"deny_operations"`
}

// Apply filters entities, properties, navigation properties and operations
// in place. Missing allow lists default to allow-all; deny rules always win.
// Key properties are never removed, and navigation properties pointing at a
// filtered entity are dropped with it.
func Apply(svc *schema.Service, cfg Config) {
	if svc == nil {
		return
	}

	allowedEntities := make(map[string]bool)
	filtered := make([]schema.EntityType, 0, len(svc.Entities))
	for _, entity := range svc.Entities {
		if !nameAllowed(entity.Name, cfg.AllowEntities, cfg.DenyEntities) {
			continue
		}
		filtered = append(filtered, entity)
		allowedEntities[entity.Name] = true
	}

	for i := range filtered {
		entity := &filtered[i]

		properties := make([]schema.Property, 0, len(entity.Properties))
		for _, prop := range entity.Properties {
			if entity.IsKey(prop.Name) || memberAllowed(entity.Name, prop.Name, cfg.AllowProperties, cfg.DenyProperties) {
				properties = append(properties, prop)
			}
		}
		entity.Properties = properties

		navigation := make([]schema.NavigationProperty, 0, len(entity.NavigationProperties))
		for _, nav := range entity.NavigationProperties {
			if !allowedEntities[nav.Target] {
				continue
			}
			if !memberAllowed(entity.Name, nav.Name, cfg.AllowProperties, cfg.DenyProperties) {
				continue
			}
			navigation = append(navigation, nav)
		}
		entity.NavigationProperties = navigation
	}
	svc.Entities = filtered

	operations := make([]schema.Operation, 0, len(svc.Operations))
	for _, op := range svc.Operations {
		if nameAllowed(op.Name, cfg.AllowOperations, cfg.DenyOperations) {
			operations = append(operations, op)
		}
	}
	svc.Operations = operations
}

func nameAllowed(name string, allow, deny []string) bool {
	if matchesAny(name, deny) {
		return false
	}
	if len(allow) == 0 {
		return true
	}
	return matchesAny(name, allow)
}

func memberAllowed(entity, member string, allow, deny map[string][]string) bool {
	if matchesAny(member, mergePatterns(deny, entity)) {
		return false
	}
	allowPatterns := mergePatterns(allow, entity)
	if len(allowPatterns) == 0 {
		return true
	}
	return matchesAny(member, allowPatterns)
}

func mergePatterns(patterns map[string][]string, entity string) []string {
	if patterns == nil {
		return nil
	}
	combined := append([]string{}, patterns["*"]...)
	combined = append(combined, patterns[entity]...)
	return slices.Compact(combined)
}

func matchesAny(value string, patterns []string) bool {
	value = strings.ToLower(value)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		// matching should be case-insensitive
		ok, err := path.Match(strings.ToLower(pattern), value)
		if err != nil {
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
