package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cachebag/releasekit/internal/artifact"
	"github.com/cachebag/releasekit/internal/bump"
	"github.com/cachebag/releasekit/internal/git"
	"github.com/cachebag/releasekit/internal/output"
)

var (
	bumpCrateFlag         string
	bumpPriorTagFlag      string
	bumpChecksumsOnlyFlag bool
	bumpRootFlag          string
	bumpNoProgressFlag    bool
)

var bumpCmd = &cobra.Command{
	Use:   "bump <version> <channel>",
	Short: "Bump version strings and checksums across all release files",
	Long: `Bump version strings and checksums across the project's release files.

The crate's Cargo.toml version, the PKGBUILD pkgver and tarball checksum,
the package.nix version and cargoHash, and the changelog are all updated in
one pass. Each file reports its own outcome; a failure in one file does not
hide the state of the others.

The PKGBUILD and package.nix package the nmrs binary, so they are only
touched for nmrs releases (or when no crate is given). With no --crate,
every configured crate's Cargo.toml is bumped.

The PKGBUILD checksum is computed by downloading the release tarball. The
cargoHash is recovered by clearing it and reading the corrected value out of
a failed nix build; when nix is unavailable the hash is left empty for
manual follow-up.

Examples:
  releasekit bump 0.3.0 beta --crate nmrs        # Full bump for nmrs-v0.3.0-beta
  releasekit bump 0.3.0 beta --crate nmrs-gui    # GUI release (gui-v tags)
  releasekit bump 0.2.0 beta --checksums-only    # Refresh checksums after tagging`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBump(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(bumpCmd)

	bumpCmd.Flags().StringVar(&bumpCrateFlag, "crate", "", "Crate to release (bumps its Cargo.toml, affects the git tag prefix)")
	bumpCmd.Flags().StringVar(&bumpPriorTagFlag, "prior-tag", "", "Previous release's git tag (default: derived from the changelog link table)")
	bumpCmd.Flags().BoolVar(&bumpChecksumsOnlyFlag, "checksums-only", false, "Only recompute the PKGBUILD checksum and nix cargoHash")
	bumpCmd.Flags().StringVar(&bumpRootFlag, "root", ".", "Project root directory")
	bumpCmd.Flags().BoolVar(&bumpNoProgressFlag, "no-progress", false, "Disable the download spinner")
}

func runBump(cmd *cobra.Command, version, channel string) error {
	rel, err := newIdentity(version, channel, bumpCrateFlag, "releasekit bump <version> <channel>")
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	output.PrintHeader(out, "Bumping to "+rel.GitTag())

	// Preflight: the bump edits files that reference the tag, so a tag that
	// already exists usually means the version argument is stale.
	if git.IsRepository(bumpRootFlag) {
		if exists, err := git.TagExists(bumpRootFlag, rel.GitTag()); err == nil && exists && !bumpChecksumsOnlyFlag {
			output.PrintWarning(out, "tag %s already exists", rel.GitTag())
		}
		if bumpPriorTagFlag != "" {
			if exists, err := git.TagExists(bumpRootFlag, bumpPriorTagFlag); err == nil && !exists {
				output.PrintWarning(out, "prior tag %s does not exist in this repository", bumpPriorTagFlag)
			}
		}
	} else {
		output.PrintWarning(out, "%s is not inside a git repository", bumpRootFlag)
	}

	runner := &bump.Runner{
		Root:          bumpRootFlag,
		Config:        cfg,
		Release:       rel,
		Crate:         bumpCrateFlag,
		PriorTag:      bumpPriorTagFlag,
		ChecksumsOnly: bumpChecksumsOnlyFlag,
		Hasher:        &artifact.HTTPHasher{ShowProgress: !bumpNoProgressFlag},
		Resolver:      artifact.NewNixResolver(cfg.NixEntry, time.Duration(cfg.NixTimeout)*time.Second),
	}

	results := runner.Run(cmd.Context())
	for _, res := range results {
		switch {
		case res.Err != nil:
			output.PrintFailure(out, "%s", res.File)
			output.PrintDetail(out, "%v", res.Err)
		case res.Changed:
			output.PrintSuccess(out, "%s", res.File)
		default:
			output.PrintSuccess(out, "%s (unchanged)", res.File)
		}
		for _, w := range res.Warnings {
			output.PrintWarning(out, "%s", w)
		}
	}

	if bump.Failed(results) {
		return NewExitError(ExitFailure)
	}
	return nil
}
