// Package generator runs one generation: it reads a service description,
// names every element, emits Java sources and persists the service name
// mapping, and can repeat that whenever the input changes.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"vdm-generator/internal/config"
	"vdm-generator/internal/emit"
	"vdm-generator/internal/legacy"
	"vdm-generator/internal/logging"
	"vdm-generator/internal/mapping"
	"vdm-generator/internal/naming"
	"vdm-generator/internal/schema"
	"vdm-generator/internal/schemafilter"
	"vdm-generator/internal/schemanaming"
)

// Run outcomes reported to Metrics.
const (
	OutcomeGenerated = "generated"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

// Metrics receives naming decisions and run summaries.
type Metrics interface {
	schemanaming.Recorder
	FilesWritten(ctx context.Context, count int)
	RecordRun(ctx context.Context, duration time.Duration, outcome, trigger string)
}

type noopMetrics struct{}

func (noopMetrics) IdentifierResolved(context.Context, naming.Kind, bool)    {}
func (noopMetrics) NamingFailed(context.Context, naming.Kind)                {}
func (noopMetrics) OverloadsResolved(context.Context, int)                   {}
func (noopMetrics) FilesWritten(context.Context, int)                        {}
func (noopMetrics) RecordRun(context.Context, time.Duration, string, string) {}

// Result summarizes a run.
type Result struct {
	RunID        string
	ServiceID    string
	ServiceClass string
	Package      string
	// Files are slash separated paths relative to the output directory.
	Files     []string
	Unchanged bool
	Duration  time.Duration
}

// Generator holds everything that stays fixed across runs.
type Generator struct {
	cfg       *config.Config
	logger    *logging.Logger
	metrics   Metrics
	strategy  naming.Strategy
	equality  naming.Equality
	inflector *naming.Inflector
	emitter   *emit.Emitter
}

// New validates the naming setup and reads the configured base class
// sources. metrics may be nil.
func New(cfg *config.Config, logger *logging.Logger, metrics Metrics) (*Generator, error) {
	if logger == nil {
		logger = logging.FromContext(context.Background())
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	strategy, err := naming.NewStrategy(cfg.Naming)
	if err != nil {
		return nil, fmt.Errorf("naming strategy: %w", err)
	}
	equality, err := naming.ParseEquality(cfg.Naming.Equality)
	if err != nil {
		return nil, fmt.Errorf("naming equality: %w", err)
	}
	emitter, err := emit.New("")
	if err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		strategy: strategy,
		equality: equality,
		emitter:  emitter,
	}
	if cfg.Naming.PluralizeCollections {
		g.inflector = naming.NewInflector(cfg.Naming)
	}
	// Base classes are read again on every run; this only rejects bad sources early.
	if _, err := g.loadBaseMembers(); err != nil {
		return nil, err
	}
	return g, nil
}

// loadBaseMembers parses the configured base class sources. They are inputs
// like the service description, so each run reads their current content.
func (g *Generator) loadBaseMembers() ([]naming.Member, error) {
	var members []naming.Member
	for _, source := range g.cfg.Naming.BaseClassSources {
		sig, err := legacy.ParseJavaFile(source)
		if err != nil {
			return nil, fmt.Errorf("base class %s: %w", source, err)
		}
		members = append(members, sig.Members()...)
	}
	return members, nil
}

// Run performs one generation. Unless output.force is set, a run whose
// inputs match the previous successful run is skipped.
func (g *Generator) Run(ctx context.Context, trigger string) (result *Result, err error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := g.logger.WithRunID(runID)
	ctx = logging.WithLogger(ctx, logger)

	ctx, span := otel.Tracer("vdm-generator/generator").Start(ctx, "generator.run")
	span.SetAttributes(
		attribute.String("vdm.run_id", runID),
		attribute.String("vdm.trigger", trigger),
		attribute.String("vdm.input", g.cfg.Input.Path),
	)
	defer func() {
		outcome := OutcomeGenerated
		switch {
		case err != nil:
			outcome = OutcomeFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error("generation failed", slog.String("error", err.Error()))
		case result.Unchanged:
			outcome = OutcomeUnchanged
		}
		duration := time.Since(start)
		if result != nil {
			result.Duration = duration
		}
		g.metrics.RecordRun(ctx, duration, outcome, trigger)
		span.SetAttributes(attribute.String("vdm.outcome", outcome))
		span.End()
	}()

	outputDir := g.cfg.Output.Dir
	fingerprint, err := fingerprintInputs(g.cfg)
	if err != nil {
		return nil, err
	}
	previous, err := loadState(outputDir)
	if err != nil {
		logger.Warn("ignoring unreadable generator state", slog.String("error", err.Error()))
		previous = nil
	}
	if !g.cfg.Output.Force && previous.upToDate(outputDir, fingerprint) {
		logger.Info("input unchanged, skipping generation",
			slog.String("service", previous.ServiceID),
			slog.String("fingerprint", fingerprint),
		)
		return &Result{RunID: runID, ServiceID: previous.ServiceID, Files: previous.Files, Unchanged: true}, nil
	}

	baseMembers, err := g.loadBaseMembers()
	if err != nil {
		return nil, err
	}
	svc, err := schema.ReadFile(g.cfg.Input.Path, g.cfg.Input.ServiceIdentifier)
	if err != nil {
		return nil, err
	}
	schemafilter.Apply(svc, g.cfg.SchemaFilters)
	logger.Debug("read service description",
		slog.String("service", svc.Identifier),
		slog.String("format", string(svc.Format)),
		slog.Int("entities", len(svc.Entities)),
		slog.Int("operations", len(svc.Operations)),
	)

	store, err := mapping.Open(g.cfg.MappingFile(), logger.Logger)
	if err != nil {
		return nil, err
	}
	names, err := mapping.ResolveServiceNames(store, svc.Identifier, g.strategy)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", svc.Identifier, err)
	}

	var lookup legacy.Lookup
	if g.cfg.Output.LegacyLookup {
		lookup = legacy.DirLookup{Root: outputDir}
	}
	model, err := schemanaming.Apply(ctx, svc, schemanaming.Options{
		Strategy:            g.strategy,
		Equality:            g.equality,
		ReservedMemberNames: g.cfg.Naming.ReservedMemberNames,
		BaseMembers:         baseMembers,
		Inflector:           g.inflector,
		Lookup:              lookup,
		ServiceNames:        names,
		PackagePrefix:       g.cfg.Output.PackagePrefix,
		Logger:              logger.Logger,
		Recorder:            g.metrics,
	})
	if err != nil {
		return nil, err
	}

	files, err := g.emitter.Emit(ctx, model)
	if err != nil {
		return nil, err
	}
	written := make([]string, 0, len(files))
	for _, f := range files {
		if err := writeFileAtomic(filepath.Join(outputDir, filepath.FromSlash(f.Path)), f.Content); err != nil {
			return nil, err
		}
		written = append(written, f.Path)
	}
	g.metrics.FilesWritten(ctx, len(written))

	if store.Dirty() {
		if err := store.Save(); err != nil {
			return nil, err
		}
		logger.Info("updated service name mapping", slog.String("path", store.Path()))
	}

	// The mapping file may have just been created, so the stored fingerprint
	// is taken after saving it.
	if fingerprint, err = fingerprintInputs(g.cfg); err != nil {
		return nil, err
	}
	if err := saveState(outputDir, &state{
		Fingerprint: fingerprint,
		ServiceID:   svc.Identifier,
		Files:       written,
		GeneratedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	logger.Info("generated sources",
		slog.String("service", svc.Identifier),
		slog.String("class", model.ServiceClass),
		slog.String("package", model.Package),
		slog.Int("files", len(written)),
	)
	return &Result{
		RunID:        runID,
		ServiceID:    svc.Identifier,
		ServiceClass: model.ServiceClass,
		Package:      model.Package,
		Files:        written,
	}, nil
}

// IsNamingFailure reports whether err means the schema cannot be named, as
// opposed to an I/O or configuration problem.
func IsNamingFailure(err error) bool {
	return naming.IsNamingError(err) || errors.Is(err, naming.ErrMalformedMappingFile)
}
