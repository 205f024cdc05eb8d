// Package emit renders the resolved model into Java source files.
package emit

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"vdm-generator/internal/vdm"
)

//go:embed templates/*.tmpl
var templates embed.FS

// DefaultRuntimePackage hosts the base classes generated code extends.
const DefaultRuntimePackage = "vdm.runtime"

// File is one generated source file. Path is slash separated and relative
// to the output directory.
type File struct {
	Path    string
	Content []byte
}

// Emitter renders Java sources from a resolved model.
type Emitter struct {
	tmpl           *template.Template
	runtimePackage string
}

// New parses the embedded templates. An empty runtimePackage selects
// DefaultRuntimePackage.
func New(runtimePackage string) (*Emitter, error) {
	if runtimePackage == "" {
		runtimePackage = DefaultRuntimePackage
	}
	tmpl, err := template.New("java").Funcs(funcs).ParseFS(templates, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Emitter{tmpl: tmpl, runtimePackage: runtimePackage}, nil
}

type entityData struct {
	ServiceID      string
	Package        string
	RuntimePackage string
	Imports        []string
	Entity         vdm.Entity
}

type serviceData struct {
	Model          *vdm.Model
	RuntimePackage string
	Imports        []string
}

// Emit renders one entity class and one fluent helper per entity, plus the
// service class. Files are returned in a stable order.
func (e *Emitter) Emit(ctx context.Context, model *vdm.Model) (files []File, err error) {
	_, span := otel.Tracer("vdm-generator/emit").Start(ctx, "emit.render")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("vdm.files", len(files)))
		span.End()
	}()

	dir := strings.ReplaceAll(model.Package, ".", "/")
	for _, entity := range model.Entities {
		data := entityData{
			ServiceID:      model.ServiceID,
			Package:        model.Package,
			RuntimePackage: e.runtimePackage,
			Imports:        entityImports(entity),
			Entity:         entity,
		}
		f, err := e.render("entity.java.tmpl", path.Join(dir, entity.ClassName+".java"), data)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", entity.Source, err)
		}
		files = append(files, f)

		f, err = e.render("fluent_helper.java.tmpl", path.Join(dir, entity.FluentHelperClass+".java"), data)
		if err != nil {
			return nil, fmt.Errorf("fluent helper %s: %w", entity.Source, err)
		}
		files = append(files, f)
	}

	f, err := e.render("service.java.tmpl", path.Join(dir, model.ServiceClass+".java"), serviceData{
		Model:          model,
		RuntimePackage: e.runtimePackage,
		Imports:        serviceImports(model),
	})
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", model.ServiceID, err)
	}
	files = append(files, f)
	return files, nil
}

func (e *Emitter) render(name, filePath string, data any) (File, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return File{}, err
	}
	return File{Path: filePath, Content: buf.Bytes()}, nil
}

var funcs = template.FuncMap{
	"doc":       doc,
	"navType":   navType,
	"params":    params,
	"keyParams": keyParams,
	"rawType":   rawType,
}

// doc prefers the label and falls back to the technical name.
func doc(label, source string) string {
	if strings.TrimSpace(label) != "" {
		return strings.ReplaceAll(label, "*/", "* /")
	}
	return source
}

func navType(n vdm.Navigation) string {
	if n.Many {
		return "List<" + n.Target + ">"
	}
	return n.Target
}

func params(ps []vdm.Parameter) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = "final " + p.JavaType + " " + p.Name
	}
	return strings.Join(parts, ", ")
}

func keyParams(entity vdm.Entity) string {
	keys := entity.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = "final " + k.JavaType + " " + k.Field
	}
	return strings.Join(parts, ", ")
}

// rawType strips type arguments so the result can be used in a class literal.
func rawType(javaType string) string {
	if i := strings.IndexByte(javaType, '<'); i >= 0 {
		return javaType[:i]
	}
	return javaType
}

var typeImports = map[string]string{
	"BigDecimal":     "java.math.BigDecimal",
	"UUID":           "java.util.UUID",
	"LocalDate":      "java.time.LocalDate",
	"LocalDateTime":  "java.time.LocalDateTime",
	"LocalTime":      "java.time.LocalTime",
	"OffsetDateTime": "java.time.OffsetDateTime",
	"Duration":       "java.time.Duration",
}

func collectImports(types []string) []string {
	seen := make(map[string]bool)
	var imports []string
	for _, t := range types {
		for _, part := range strings.FieldsFunc(t, func(r rune) bool { return r == '<' || r == '>' || r == ',' || r == ' ' }) {
			if imp, ok := typeImports[part]; ok && !seen[imp] {
				seen[imp] = true
				imports = append(imports, imp)
			}
		}
	}
	sort.Strings(imports)
	return imports
}

func entityImports(entity vdm.Entity) []string {
	types := make([]string, 0, len(entity.Properties))
	for _, p := range entity.Properties {
		types = append(types, p.JavaType)
	}
	return collectImports(types)
}

func serviceImports(model *vdm.Model) []string {
	var types []string
	for _, e := range model.Entities {
		for _, k := range e.Keys() {
			types = append(types, k.JavaType)
		}
	}
	for _, op := range model.Operations {
		types = append(types, op.ReturnType)
		for _, p := range op.Parameters {
			types = append(types, p.JavaType)
		}
	}
	return collectImports(types)
}
