package cli

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cachebag/releasekit/internal/changelog"
	clierrors "github.com/cachebag/releasekit/internal/errors"
	"github.com/cachebag/releasekit/internal/output"
	"github.com/cachebag/releasekit/internal/release"
)

var (
	promoteCrateFlag     string
	promotePriorTagFlag  string
	promoteChangelogFlag string
	promoteRootFlag      string
)

var promoteCmd = &cobra.Command{
	Use:   "promote <version> <channel>",
	Short: "Promote the Unreleased changelog section to a release",
	Long: `Promote the Unreleased changelog section to a versioned release.

The Unreleased section is re-labeled with the version and today's date, a
fresh empty Unreleased section is opened above it, and the trailing link
table is rewritten so the comparison links stay consistent.

The previous release's tag is read from the link table. Pass --prior-tag
when the table cannot be trusted, e.g. after history rewrites.

Examples:
  releasekit promote 0.3.0 beta                  # Cut 0.3.0-beta
  releasekit promote 1.0.0 stable --crate nmrs   # Cut nmrs-v1.0.0
  releasekit promote 0.3.0 beta --prior-tag v0.2.0-beta`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPromote(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(promoteCmd)

	promoteCmd.Flags().StringVar(&promoteCrateFlag, "crate", "", "Crate being released (affects the git tag prefix)")
	promoteCmd.Flags().StringVar(&promotePriorTagFlag, "prior-tag", "", "Previous release's git tag (default: derived from the link table)")
	promoteCmd.Flags().StringVar(&promoteChangelogFlag, "changelog", "", "Changelog path (default: from config)")
	promoteCmd.Flags().StringVar(&promoteRootFlag, "root", ".", "Project root directory")
}

func runPromote(cmd *cobra.Command, version, channel string) error {
	rel, err := newIdentity(version, channel, promoteCrateFlag, "releasekit promote <version> <channel>")
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := promoteChangelogFlag
	if path == "" {
		path = filepath.Join(promoteRootFlag, cfg.Changelog)
	}

	doc, err := changelog.Load(path)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "reading changelog",
			"Check that "+path+" exists and is readable",
			"Pass --changelog or --root if the changelog lives elsewhere")
	}

	priorTag := promotePriorTagFlag
	if priorTag == "" {
		priorTag, err = changelog.PriorTag(doc)
		if err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Document, "resolving prior tag",
				"Pass --prior-tag with the previous release's git tag",
				"Or add the previous release's comparison link to the changelog")
		}
	}

	if err := changelog.Promote(doc, rel, priorTag); err != nil {
		return promoteError(err)
	}

	if err := changelog.Save(path, doc); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "writing changelog")
	}

	out := cmd.OutOrStdout()
	output.PrintSuccess(out, "Promoted Unreleased to [%s]", rel.Label())
	output.PrintDetail(out, "git tag: %s (compare against %s)", rel.GitTag(), priorTag)

	if s := doc.Section(rel.Label()); s != nil && s.Body == changelog.EmptyBodyPlaceholder {
		output.PrintWarning(out, "Unreleased was empty; the release notes are a placeholder")
	}

	return nil
}

// promoteError maps changelog-structure failures to errors with remediation.
func promoteError(err error) error {
	var missingSection *changelog.MissingSectionError
	if errors.As(err, &missingSection) {
		return clierrors.Wrap(err, clierrors.Document,
			"Add an '## [Unreleased]' section to the changelog",
			"Every release is cut from the Unreleased section")
	}

	var missingLink *changelog.MissingLinkError
	if errors.As(err, &missingLink) {
		return clierrors.Wrap(err, clierrors.Document,
			"Add an '[Unreleased]: .../compare/<tag>...HEAD' entry to the link table")
	}

	return clierrors.Wrap(err, clierrors.Document)
}

// newIdentity builds a release identity from command arguments, mapping
// validation failures to argument errors with usage.
func newIdentity(version, channel, crate, usage string) (release.Identity, error) {
	prefixOverride := ""
	if crate != "" {
		// A configured tag_prefix beats the built-in crate rules.
		if cfg, err := loadConfig(); err == nil {
			if c, ok := cfg.Crate(crate); ok {
				prefixOverride = c.TagPrefix
			}
		}
	}

	rel, err := release.NewIdentity(version, channel, crate, prefixOverride)
	if err != nil {
		var vErr *release.ValidationError
		if errors.As(err, &vErr) {
			return release.Identity{}, clierrors.NewArgumentErrorWithUsage(
				vErr.Error(),
				usage,
				"Version must be X.Y.Z, e.g. 0.3.0",
				"Channel must be 'beta' or 'stable'")
		}
		return release.Identity{}, err
	}
	return rel, nil
}
