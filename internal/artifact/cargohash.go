package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"time"
)

// ErrUnavailable indicates the corrected cargoHash could not be recovered:
// nix-build is not installed, the build timed out, or its output did not
// contain a hash.
var ErrUnavailable = errors.New("cargo hash unavailable")

// BuildHashResolver recovers the corrected cargoHash for the project rooted
// at root. The caller is expected to have emptied the cargoHash field first
// so the build fails with the real hash in its error message.
type BuildHashResolver interface {
	Resolve(ctx context.Context, root string) (string, error)
}

// nixHashPattern matches the hash mismatch line nix prints on failure:
// "got:    sha256-...".
var (
	nixHashPattern      = regexp.MustCompile(`got:\s+(sha256-[A-Za-z0-9+/=]+)`)
	nixHashLoosePattern = regexp.MustCompile(`sha256-[A-Za-z0-9+/=]{44}`)
)

// NixResolver recovers the hash by running nix-build against the project
// entry file and scraping the mismatch error. The hash-in-error-message
// format is nix's contract, not ours; if nix ever changes it, Resolve
// degrades to ErrUnavailable rather than guessing.
type NixResolver struct {
	// Entry is the nix entry file relative to the project root.
	Entry string

	// Timeout bounds the build attempt. Zero means no limit.
	Timeout time.Duration

	// run executes a command in dir and returns its output streams.
	// Overridable in tests.
	run func(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
}

// NewNixResolver returns a resolver for the given entry file (for example
// "default.nix").
func NewNixResolver(entry string, timeout time.Duration) *NixResolver {
	return &NixResolver{Entry: entry, Timeout: timeout, run: runCommand}
}

// Resolve runs nix-build and extracts the corrected hash from its output.
func (r *NixResolver) Resolve(ctx context.Context, root string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	stdout, stderr, err := r.run(ctx, root, "nix-build", "--no-out-link", r.Entry)
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", fmt.Errorf("nix-build not found: %w", ErrUnavailable)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("nix-build timed out: %w", ErrUnavailable)
		}
		// A failing build is the expected path; the hash lives in stderr.
	}

	if m := nixHashPattern.FindStringSubmatch(stderr); m != nil {
		return m[1], nil
	}
	if m := nixHashLoosePattern.FindString(stdout); m != "" {
		return m, nil
	}
	return "", fmt.Errorf("no corrected hash in nix-build output: %w", ErrUnavailable)
}

func runCommand(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
