package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cachebag/releasekit/internal/changelog"
	clierrors "github.com/cachebag/releasekit/internal/errors"
	"github.com/cachebag/releasekit/internal/output"
)

var (
	extractOutputFlag    string
	extractChangelogFlag string
	extractRootFlag      string
)

var extractCmd = &cobra.Command{
	Use:   "extract <version> <channel>",
	Short: "Extract release notes for a version",
	Long: `Extract release notes for a version from the changelog.

The section matching the version and channel is written out as a standalone
markdown document, suitable for a GitHub release body. The changelog itself
is never modified.

A missing section is not an error: a placeholder note is produced and the
command still succeeds, so release pipelines can publish first and let a
human fill in the notes afterwards.

Examples:
  releasekit extract 0.3.0 beta                # Notes for 0.3.0-beta, to stdout
  releasekit extract 1.0.0 stable -o notes.md  # Write to a file`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutputFlag, "output", "o", "", "Write the note to a file instead of stdout")
	extractCmd.Flags().StringVar(&extractChangelogFlag, "changelog", "", "Changelog path (default: from config)")
	extractCmd.Flags().StringVar(&extractRootFlag, "root", ".", "Project root directory")
}

func runExtract(cmd *cobra.Command, version, channel string) error {
	rel, err := newIdentity(version, channel, "", "releasekit extract <version> <channel>")
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := extractChangelogFlag
	if path == "" {
		path = filepath.Join(extractRootFlag, cfg.Changelog)
	}

	doc, err := changelog.Load(path)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "reading changelog",
			"Check that "+path+" exists and is readable",
			"Pass --changelog or --root if the changelog lives elsewhere")
	}

	note := changelog.ExtractNotes(doc, rel)
	if !note.Found() {
		output.PrintWarning(cmd.ErrOrStderr(), "no [%s] section in %s; wrote a placeholder note", rel.Label(), path)
	}

	if extractOutputFlag != "" {
		if err := os.WriteFile(extractOutputFlag, []byte(note.Markdown()), 0o644); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Runtime, "writing release note")
		}
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), note.Markdown())
	return nil
}
