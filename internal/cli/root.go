// Package cli implements the vdm-generator command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose bool
	info    goversion.Info
}

// NewRootCmd constructs the root command with all subcommands attached.
func NewRootCmd(info goversion.Info) *cobra.Command {
	opts := &rootOptions{info: info}
	cmd := &cobra.Command{
		Use:   "vdm-generator",
		Short: "vdm-generator - Java VDM sources from EDMX and OpenAPI service descriptions",
		Long: "vdm-generator reads an OData EDMX or OpenAPI service description and generates Java " +
			"entity, fluent helper and service classes with stable, collision free identifiers.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print error details")
	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newVersionCmd(opts))
	return cmd
}

// Execute runs the CLI entrypoint and exits the process on failure.
func Execute(info goversion.Info) {
	cmd := NewRootCmd(info)
	if code := exitCode(cmd.Execute(), verboseFlag(cmd), os.Stderr); code != 0 {
		os.Exit(code)
	}
}

func verboseFlag(cmd *cobra.Command) bool {
	v, _ := cmd.PersistentFlags().GetBool("verbose")
	return v
}

// exitCode reports err on stderr and maps it to a process exit code.
func exitCode(err error, verbose bool, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var cerr CommandError
	if !errors.As(err, &cerr) {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	msg := strings.TrimSpace(cerr.Message)
	if msg == "" && cerr.Cause != nil {
		msg = cerr.Cause.Error()
	}
	if msg != "" {
		fmt.Fprintln(stderr, msg)
	}
	if cerr.Cause != nil && msg != cerr.Cause.Error() && verbose {
		fmt.Fprintf(stderr, "details: %v\n", cerr.Cause)
	}
	if cerr.Suggestion != "" {
		fmt.Fprintln(stderr, formatSuggestion(cerr.Suggestion))
	}
	return cerr.ExitStatus()
}
