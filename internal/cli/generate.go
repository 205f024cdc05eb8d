package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vdm-generator/internal/app"
	"vdm-generator/internal/config"
	"vdm-generator/internal/generator"
)

const shutdownTimeout = 10 * time.Second

type generateOptions struct {
	watch bool
	force bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Java sources from a service description",
		Long: "generate names every entity, property, navigation and operation of the input service, " +
			"writes the Java sources and records the service class and package names in the mapping file.",
		Example: "  vdm-generator generate --input.path API_SALES_ORDER_SRV.edmx --output.dir src/main/java\n" +
			"  vdm-generator generate -c vdm-generator.yaml --watch",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, root, opts)
		},
	}
	config.DefineFlags(cmd.Flags())
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Keep running and regenerate whenever an input changes")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Regenerate even if the input is unchanged")
	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return wrapError("failed to load configuration", err, "check the config file and flag names", exitConfig)
	}
	if opts.force {
		cfg.Output.Force = true
	}
	if cfg.Observability.ServiceVersion == "" {
		cfg.Observability.ServiceVersion = root.info.GitVersion
	}

	validation := cfg.Validate()
	for _, warn := range validation.Warnings {
		slog.Warn("configuration warning",
			slog.String("field", warn.Field),
			slog.String("message", warn.Message),
			slog.String("hint", warn.Hint),
		)
	}
	if validation.HasErrors() {
		first := validation.Errors[0]
		return wrapError(fmt.Sprintf("invalid configuration: %s: %s", first.Field, first.Message),
			validation, first.Hint, exitConfig)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, loggerProvider, err := app.InitLogger(ctx, cfg)
	if err != nil {
		return wrapError("failed to initialize logging", err, "check the observability.logs OTLP settings", exitConfig)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		if loggerProvider != nil {
			_ = loggerProvider.Shutdown(context.Background(), logger.Logger)
		}
		return wrapError("", err, "", exitFailure)
	}
	a.AttachLoggerProvider(loggerProvider)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.Shutdown(shutdownCtx)
	}()

	if err := a.Init(ctx); err != nil {
		return wrapError("failed to initialize generator", err, "check the naming and observability settings", exitConfig)
	}

	if opts.watch {
		if err := a.Watch(ctx); err != nil {
			return classify(err)
		}
		return nil
	}

	result, err := a.Generate(ctx)
	if err != nil {
		return classify(err)
	}
	out := cmd.OutOrStdout()
	if result.Unchanged {
		fmt.Fprintf(out, "%s is up to date (%d files)\n", result.ServiceID, len(result.Files))
		return nil
	}
	fmt.Fprintf(out, "generated %d files for %s (%s.%s) in %s\n",
		len(result.Files), result.ServiceID, result.Package, result.ServiceClass, cfg.Output.Dir)
	return nil
}

// classify maps a run error to the exit code and hint a user can act on.
func classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return nil
	case generator.IsNamingFailure(err):
		return wrapError("", err,
			"rename the element in the service description or pin the service names in the mapping file", exitNaming)
	default:
		return wrapError("generation failed", err, "", exitFailure)
	}
}
