// Package schemanaming applies a naming strategy to a service description
// and produces the resolved model the emitter consumes.
package schemanaming

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"vdm-generator/internal/legacy"
	"vdm-generator/internal/mapping"
	"vdm-generator/internal/naming"
	"vdm-generator/internal/schema"
	"vdm-generator/internal/vdm"
)

// Recorder observes naming decisions. Implementations must be safe to call
// from the single goroutine running Apply.
type Recorder interface {
	IdentifierResolved(ctx context.Context, kind naming.Kind, collided bool)
	NamingFailed(ctx context.Context, kind naming.Kind)
	OverloadsResolved(ctx context.Context, count int)
}

type noopRecorder struct{}

func (noopRecorder) IdentifierResolved(context.Context, naming.Kind, bool) {}
func (noopRecorder) NamingFailed(context.Context, naming.Kind)            {}
func (noopRecorder) OverloadsResolved(context.Context, int)               {}

// Options configures Apply.
type Options struct {
	Strategy naming.Strategy
	Equality naming.Equality
	// ReservedMemberNames are claimed in every class scope before any
	// generated member.
	ReservedMemberNames []string
	// BaseMembers are the methods generated entities inherit; their
	// accessors are claimed in every field scope.
	BaseMembers []naming.Member
	// Inflector pluralizes collection accessors; nil keeps them singular.
	Inflector *naming.Inflector
	// Lookup finds previously generated classes for overload resolution.
	Lookup        legacy.Lookup
	ServiceNames  mapping.ServiceNames
	PackagePrefix string
	Logger        *slog.Logger
	Recorder      Recorder
}

// ErrNoStrategy is returned when Options carries no naming strategy.
var ErrNoStrategy = errors.New("schemanaming: no naming strategy configured")

type applier struct {
	ctx      context.Context
	opts     Options
	logger   *slog.Logger
	recorder Recorder
	registry *naming.Registry
	classOf  map[string]string
}

// Apply names every element of svc. Names are claimed in schema order, so the
// result is deterministic for a given document and configuration. Naming
// errors are returned wrapped with the path of the offending element.
func Apply(ctx context.Context, svc *schema.Service, opts Options) (model *vdm.Model, err error) {
	if opts.Strategy == nil {
		return nil, ErrNoStrategy
	}
	if opts.Equality == nil {
		opts.Equality = naming.CaseInsensitive
	}
	a := &applier{
		opts:     opts,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		classOf:  make(map[string]string, len(svc.Entities)),
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.recorder == nil {
		a.recorder = noopRecorder{}
	}
	a.registry = naming.NewRegistry(opts.Equality, a.logger, opts.ReservedMemberNames...)

	tracer := otel.Tracer("vdm-generator/schemanaming")
	ctx, span := tracer.Start(ctx, "schemanaming.apply")
	span.SetAttributes(
		attribute.String("vdm.service", svc.Identifier),
		attribute.Int("vdm.entities", len(svc.Entities)),
		attribute.Int("vdm.operations", len(svc.Operations)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	a.ctx = ctx

	model = &vdm.Model{
		ServiceID:    svc.Identifier,
		ServiceClass: opts.ServiceNames.ClassName,
		Package:      joinPackage(opts.PackagePrefix, opts.ServiceNames.PackageName),
		Format:       string(svc.Format),
	}

	classes := naming.NewContext("package "+model.Package, opts.Equality, a.logger)
	classes.LoadPreexistingNames(model.ServiceClass)
	for _, e := range svc.Entities {
		entity, err := a.nameClasses(e, classes)
		if err != nil {
			return nil, err
		}
		model.Entities = append(model.Entities, entity)
	}

	serviceMethods := a.registry.Context(model.ServiceClass)
	for i, e := range svc.Entities {
		if err := a.nameMembers(e, &model.Entities[i], serviceMethods); err != nil {
			return nil, err
		}
	}

	for _, op := range svc.Operations {
		operation, err := a.nameOperation(model, op, serviceMethods)
		if err != nil {
			return nil, err
		}
		model.Operations = append(model.Operations, operation)
	}
	return model, nil
}

func (a *applier) nameClasses(e schema.EntityType, classes *naming.Context) (vdm.Entity, error) {
	className, err := a.unique(naming.KindClass, e.Name, e.Label, classes)
	if err != nil {
		return vdm.Entity{}, fmt.Errorf("entity %s: %w", e.Name, err)
	}
	helper, err := a.unique(naming.KindFluentHelperClass, e.Name, e.Label, classes)
	if err != nil {
		return vdm.Entity{}, fmt.Errorf("entity %s: %w", e.Name, err)
	}
	a.classOf[e.Name] = className
	return vdm.Entity{
		Source:            e.Name,
		Label:             e.Label,
		ClassName:         className,
		FluentHelperClass: helper,
	}, nil
}

func (a *applier) nameMembers(e schema.EntityType, entity *vdm.Entity, serviceMethods *naming.Context) error {
	fields := a.registry.Context(entity.ClassName + ".fields")
	fields.LoadAccessors(a.opts.BaseMembers)
	constants := a.registry.Context(entity.ClassName + ".constants")
	methods := a.registry.Context(entity.ClassName + ".methods")
	defer func() {
		a.registry.Release(entity.ClassName + ".fields")
		a.registry.Release(entity.ClassName + ".constants")
		a.registry.Release(entity.ClassName + ".methods")
	}()

	for _, p := range e.Properties {
		prop := vdm.Property{
			Source:   p.Name,
			Label:    p.Label,
			JavaType: vdm.JavaType(p.Type, a.lookupClass),
			Key:      e.IsKey(p.Name),
			Nullable: p.Nullable,
		}
		var err error
		if prop.Field, err = a.unique(naming.KindField, p.Name, p.Label, fields); err != nil {
			return fmt.Errorf("entity %s property %s: %w", e.Name, p.Name, err)
		}
		if prop.Constant, err = a.unique(naming.KindConstant, p.Name, p.Label, constants); err != nil {
			return fmt.Errorf("entity %s property %s: %w", e.Name, p.Name, err)
		}
		if prop.BuilderMethod, err = a.unique(naming.KindBuilderMethod, p.Name, p.Label, methods); err != nil {
			return fmt.Errorf("entity %s property %s: %w", e.Name, p.Name, err)
		}
		entity.Properties = append(entity.Properties, prop)
	}

	for _, n := range e.NavigationProperties {
		target, ok := a.classOf[n.Target]
		if !ok {
			a.logger.Warn("skipping navigation property with unknown target",
				slog.String("entity", e.Name),
				slog.String("navigation", n.Name),
				slog.String("target", n.Target),
			)
			continue
		}
		nav := vdm.Navigation{Source: n.Name, Target: target, Many: n.Many}
		var err error
		if nav.Field, err = a.unique(naming.KindNavigationField, n.Name, n.Label, fields); err != nil {
			return fmt.Errorf("entity %s navigation %s: %w", e.Name, n.Name, err)
		}
		if nav.Constant, err = a.unique(naming.KindNavigationConstant, n.Name, n.Label, constants); err != nil {
			return fmt.Errorf("entity %s navigation %s: %w", e.Name, n.Name, err)
		}
		if nav.Method, err = a.unique(naming.KindNavigationMethod, n.Name, n.Label, methods); err != nil {
			return fmt.Errorf("entity %s navigation %s: %w", e.Name, n.Name, err)
		}
		entity.Navigations = append(entity.Navigations, nav)
	}

	collection := entity.ClassName
	if a.opts.Inflector != nil {
		collection = a.opts.Inflector.CollectionName(collection)
	}
	var err error
	if entity.CollectionMethod, err = a.unique(naming.KindMethod, "getAll"+collection, "", serviceMethods); err != nil {
		return fmt.Errorf("entity %s: %w", e.Name, err)
	}
	if len(e.Keys) > 0 {
		if entity.ByKeyMethod, err = a.unique(naming.KindMethod, "get"+entity.ClassName+"ByKey", "", serviceMethods); err != nil {
			return fmt.Errorf("entity %s: %w", e.Name, err)
		}
	}
	return nil
}

func (a *applier) nameOperation(model *vdm.Model, op schema.Operation, serviceMethods *naming.Context) (vdm.Operation, error) {
	method, err := a.unique(naming.KindOperationMethod, op.Name, op.Label, serviceMethods)
	if err != nil {
		return vdm.Operation{}, fmt.Errorf("operation %s: %w", op.Name, err)
	}
	operation := vdm.Operation{
		Source:     op.Name,
		Label:      op.Label,
		Method:     method,
		HTTPMethod: op.HTTPMethod,
		ReturnType: vdm.JavaType(op.ReturnType, a.lookupClass),
	}

	params := naming.NewContext(model.ServiceClass+"."+method, a.opts.Equality, a.logger)
	for _, p := range op.Parameters {
		name, err := a.unique(naming.KindMethodParameter, p.Name, p.Label, params)
		if err != nil {
			return vdm.Operation{}, fmt.Errorf("operation %s parameter %s: %w", op.Name, p.Name, err)
		}
		operation.Parameters = append(operation.Parameters, vdm.Parameter{
			Source:   p.Name,
			Name:     name,
			JavaType: vdm.JavaType(p.Type, a.lookupClass),
			Nullable: p.Nullable,
		})
	}

	overloads, err := legacy.ResolveArgumentSets(a.opts.Lookup, a.logger,
		joinPackage(model.Package, model.ServiceClass), method,
		operation.Parameters, func(p vdm.Parameter) string { return p.Name })
	if err != nil {
		a.recorder.NamingFailed(a.ctx, naming.KindMethodParameter)
		return vdm.Operation{}, fmt.Errorf("operation %s: %w", op.Name, err)
	}
	operation.Overloads = overloads
	a.recorder.OverloadsResolved(a.ctx, len(overloads))
	return operation, nil
}

// unique derives an identifier and claims it in scope.
func (a *applier) unique(kind naming.Kind, name, label string, scope *naming.Context) (string, error) {
	id, err := a.opts.Strategy.NameFor(kind, naming.RawName{Name: name, Label: label})
	if err != nil {
		a.recorder.NamingFailed(a.ctx, kind)
		return "", err
	}
	final := scope.EnsureUniqueName(id)
	a.recorder.IdentifierResolved(a.ctx, kind, final != id)
	return final, nil
}

func (a *applier) lookupClass(name string) (string, bool) {
	class, ok := a.classOf[name]
	return class, ok
}

func joinPackage(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "." + name
	}
}
