package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cachebag/releasekit/internal/config"
	clierrors "github.com/cachebag/releasekit/internal/errors"
	"github.com/cachebag/releasekit/internal/output"
)

var initForceFlag bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a project config file",
	Long: `Create the project config file with the default, fully commented
configuration as a starting point.

The file is written to .releasekit/config.yml (or the --config path) and
documents every available option. An existing file is never overwritten
unless --force is given.

Examples:
  releasekit init            # Write .releasekit/config.yml
  releasekit init --force    # Overwrite an existing config`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForceFlag, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command) error {
	path := configFlag
	if path == "" {
		path = config.ProjectConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !initForceFlag {
		return clierrors.NewConfigError(path+" already exists",
			"Pass --force to overwrite it with the default template",
			"Or edit the existing file in place")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Runtime, "creating config directory")
		}
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "writing config file")
	}

	output.PrintSuccess(cmd.OutOrStdout(), "wrote %s", path)
	output.PrintDetail(cmd.OutOrStdout(), "edit it to match your project, then run 'releasekit bump'")
	return nil
}
