// Package schema holds the service model the generator names and emits,
// along with readers for EDMX and OpenAPI documents.
package schema

import "strings"

// Format identifies the document a service was read from.
type Format string

const (
	FormatEDMX    Format = "edmx"
	FormatOpenAPI Format = "openapi"
)

// Service is the abstract description of one service.
type Service struct {
	Identifier string
	Namespace  string
	Format     Format
	Version    string
	Entities   []EntityType
	Operations []Operation
}

// EntityType is an entity or structured type.
type EntityType struct {
	Name                 string
	Label                string
	Keys                 []string
	Properties           []Property
	NavigationProperties []NavigationProperty
}

// Property is a primitive or complex-valued property.
type Property struct {
	Name     string
	Label    string
	Type     string
	Nullable bool
}

// NavigationProperty links an entity to another entity type.
type NavigationProperty struct {
	Name   string
	Label  string
	Target string
	Many   bool
}

// Operation is a function import, action or REST operation.
type Operation struct {
	Name       string
	Label      string
	Parameters []Parameter
	ReturnType string
	HTTPMethod string
}

// Parameter is an operation parameter.
type Parameter struct {
	Name     string
	Label    string
	Type     string
	Nullable bool
}

// Entity returns the entity type with the given name.
func (s *Service) Entity(name string) (*EntityType, bool) {
	for i := range s.Entities {
		if s.Entities[i].Name == name {
			return &s.Entities[i], true
		}
	}
	return nil, false
}

// IsKey reports whether property is part of the entity key.
func (e *EntityType) IsKey(property string) bool {
	for _, k := range e.Keys {
		if k == property {
			return true
		}
	}
	return false
}

// localName strips a namespace or alias qualifier: "ns.A_Item" -> "A_Item".
func localName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// collectionOf unwraps "Collection(ns.T)" and reports whether it did.
func collectionOf(typeName string) (string, bool) {
	if strings.HasPrefix(typeName, "Collection(") && strings.HasSuffix(typeName, ")") {
		return typeName[len("Collection(") : len(typeName)-1], true
	}
	return typeName, false
}
