// Package cli implements the releasekit command-line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cachebag/releasekit/internal/config"
	clierrors "github.com/cachebag/releasekit/internal/errors"
)

var configFlag string

var rootCmd = &cobra.Command{
	Use:   "releasekit",
	Short: "Release tooling for the nmrs project",
	Long: `releasekit cuts releases: it promotes the changelog, bumps version
strings across crate and packaging manifests, and extracts release notes
for GitHub releases.

Commands:
  promote   Promote the Unreleased changelog section to a release
  extract   Extract release notes for a version
  bump      Bump version strings and checksums across all release files`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Project config file (default .releasekit/config.yml)")
}

// ExitError carries an exit code through RunE when the command has already
// printed its own diagnostics.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError creates an error that sets the exit code without printing.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		if cliErr := clierrors.AsCLIError(err); cliErr != nil {
			clierrors.PrintError(cliErr)
		} else {
			clierrors.PrintSimpleError(err, clierrors.Runtime)
		}
		return ExitFailure
	}
	return ExitSuccess
}

// loadConfig loads the project configuration, honoring the --config flag.
func loadConfig() (*config.Configuration, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Configuration,
			"loading configuration",
			"Check .releasekit/config.yml for syntax or value errors",
			"Run with --config to point at a different config file")
	}
	return cfg, nil
}
