package schema

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type openAPIDocument struct {
	OpenAPI string `yaml:"openapi"`
	Swagger string `yaml:"swagger"`
	Info    struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`
	Paths      orderedPaths `yaml:"paths"`
	Components struct {
		Schemas orderedSchemas `yaml:"schemas"`
	} `yaml:"components"`
	// Swagger 2 keeps schemas under definitions.
	Definitions orderedSchemas `yaml:"definitions"`
}

type openAPISchema struct {
	Title      string           `yaml:"title"`
	Type       string           `yaml:"type"`
	Format     string           `yaml:"format"`
	Ref        string           `yaml:"$ref"`
	Nullable   bool             `yaml:"nullable"`
	Required   []string         `yaml:"required"`
	Items      *openAPISchema   `yaml:"items"`
	Properties orderedSchemas   `yaml:"properties"`
	AllOf      []*openAPISchema `yaml:"allOf"`
}

type namedSchema struct {
	Name   string
	Schema *openAPISchema
}

// orderedSchemas keeps mapping entries in document order so that generated
// names do not depend on map iteration.
type orderedSchemas []namedSchema

func (o *orderedSchemas) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of schemas", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var s openAPISchema
		if err := node.Content[i+1].Decode(&s); err != nil {
			return err
		}
		*o = append(*o, namedSchema{Name: node.Content[i].Value, Schema: &s})
	}
	return nil
}

type openAPIParameter struct {
	Name        string         `yaml:"name"`
	In          string         `yaml:"in"`
	Description string         `yaml:"description"`
	Required    bool           `yaml:"required"`
	Schema      *openAPISchema `yaml:"schema"`
	Type        string         `yaml:"type"`
}

type openAPIMediaTypes map[string]struct {
	Schema *openAPISchema `yaml:"schema"`
}

type openAPIOperation struct {
	OperationID string             `yaml:"operationId"`
	Summary     string             `yaml:"summary"`
	Parameters  []openAPIParameter `yaml:"parameters"`
	RequestBody *struct {
		Required bool              `yaml:"required"`
		Content  openAPIMediaTypes `yaml:"content"`
	} `yaml:"requestBody"`
	Responses map[string]struct {
		Content openAPIMediaTypes `yaml:"content"`
		Schema  *openAPISchema    `yaml:"schema"`
	} `yaml:"responses"`
}

type namedPath struct {
	Path       string
	Operations []methodOperation
}

type methodOperation struct {
	Method    string
	Operation openAPIOperation
}

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

type orderedPaths []namedPath

func (o *orderedPaths) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of paths", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		item := node.Content[i+1]
		if item.Kind != yaml.MappingNode {
			continue
		}
		path := namedPath{Path: node.Content[i].Value}
		for j := 0; j+1 < len(item.Content); j += 2 {
			method := strings.ToLower(item.Content[j].Value)
			if !httpMethods[method] {
				continue
			}
			var op openAPIOperation
			if err := item.Content[j+1].Decode(&op); err != nil {
				return err
			}
			path.Operations = append(path.Operations, methodOperation{Method: method, Operation: op})
		}
		*o = append(*o, path)
	}
	return nil
}

// ReadOpenAPI reads an OpenAPI 3 or Swagger 2 document in JSON or YAML.
// Object schemas become entity types, schema titles become labels and
// properties referencing other schemas become navigation properties.
// serviceID defaults to the document title.
func ReadOpenAPI(r io.Reader, serviceID string) (*Service, error) {
	var doc openAPIDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse OpenAPI: %w", err)
	}
	if doc.OpenAPI == "" && doc.Swagger == "" {
		return nil, fmt.Errorf("parse OpenAPI: missing openapi or swagger version field")
	}

	svc := &Service{
		Identifier: serviceID,
		Namespace:  doc.Info.Title,
		Format:     FormatOpenAPI,
		Version:    firstNonBlank(doc.OpenAPI, doc.Swagger),
	}
	if svc.Identifier == "" {
		svc.Identifier = doc.Info.Title
	}

	schemas := doc.Components.Schemas
	if len(schemas) == 0 {
		schemas = doc.Definitions
	}
	for _, named := range schemas {
		if entity, ok := convertSchema(named); ok {
			svc.Entities = append(svc.Entities, entity)
		}
	}

	for _, path := range doc.Paths {
		for _, mo := range path.Operations {
			svc.Operations = append(svc.Operations, convertRESTOperation(path.Path, mo))
		}
	}
	return svc, nil
}

func convertSchema(named namedSchema) (EntityType, bool) {
	s := named.Schema
	props := s.Properties
	for _, part := range s.AllOf {
		props = append(props, part.Properties...)
	}
	if s.Type != "object" && len(props) == 0 {
		return EntityType{}, false
	}

	entity := EntityType{Name: named.Name, Label: s.Title}
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}

	for _, p := range props {
		target, many := schemaReference(p.Schema)
		if target != "" {
			entity.NavigationProperties = append(entity.NavigationProperties, NavigationProperty{
				Name:   p.Name,
				Label:  p.Schema.Title,
				Target: target,
				Many:   many,
			})
			continue
		}
		entity.Properties = append(entity.Properties, Property{
			Name:     p.Name,
			Label:    p.Schema.Title,
			Type:     schemaType(p.Schema),
			Nullable: p.Schema.Nullable || !required[p.Name],
		})
	}
	return entity, true
}

// schemaReference returns the schema a property points at, directly or
// through array items.
func schemaReference(s *openAPISchema) (string, bool) {
	if s == nil {
		return "", false
	}
	if s.Ref != "" {
		return refName(s.Ref), false
	}
	if s.Type == "array" && s.Items != nil && s.Items.Ref != "" {
		return refName(s.Items.Ref), true
	}
	if len(s.AllOf) == 1 && s.AllOf[0].Ref != "" {
		return refName(s.AllOf[0].Ref), false
	}
	return "", false
}

func schemaType(s *openAPISchema) string {
	if s == nil {
		return ""
	}
	switch {
	case s.Ref != "":
		return refName(s.Ref)
	case s.Type == "array" && s.Items != nil:
		return "Collection(" + schemaType(s.Items) + ")"
	case s.Format != "":
		return s.Type + "(" + s.Format + ")"
	default:
		return s.Type
	}
}

func refName(ref string) string {
	return ref[strings.LastIndex(ref, "/")+1:]
}

func convertRESTOperation(path string, mo methodOperation) Operation {
	op := mo.Operation
	result := Operation{
		Name:       op.OperationID,
		Label:      op.Summary,
		HTTPMethod: strings.ToUpper(mo.Method),
	}
	if result.Name == "" {
		result.Name = mo.Method + " " + pathWords(path)
	}

	for _, p := range op.Parameters {
		if p.In == "header" || p.In == "cookie" {
			continue
		}
		typ := p.Type
		if p.Schema != nil {
			typ = schemaType(p.Schema)
		}
		result.Parameters = append(result.Parameters, Parameter{
			Name:     p.Name,
			Label:    p.Description,
			Type:     typ,
			Nullable: !p.Required,
		})
	}
	if op.RequestBody != nil {
		if s := jsonSchema(op.RequestBody.Content); s != nil {
			typ := schemaType(s)
			name := "body"
			if s.Ref != "" {
				name = refName(s.Ref)
			}
			result.Parameters = append(result.Parameters, Parameter{
				Name:     name,
				Type:     typ,
				Nullable: !op.RequestBody.Required,
			})
		}
	}

	for _, code := range []string{"200", "201", "202", "default"} {
		resp, ok := op.Responses[code]
		if !ok {
			continue
		}
		s := resp.Schema
		if s == nil {
			s = jsonSchema(resp.Content)
		}
		if s != nil {
			result.ReturnType = schemaType(s)
			break
		}
	}
	return result
}

func jsonSchema(content openAPIMediaTypes) *openAPISchema {
	if mt, ok := content["application/json"]; ok {
		return mt.Schema
	}
	return nil
}

// pathWords turns "/orders/{id}/items" into "orders id items".
func pathWords(path string) string {
	var words []string
	for _, segment := range strings.Split(path, "/") {
		segment = strings.Trim(segment, "{}")
		if segment != "" {
			words = append(words, segment)
		}
	}
	return strings.Join(words, " ")
}
