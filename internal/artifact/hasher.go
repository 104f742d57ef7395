// Package artifact provides the two hash collaborators used during a
// version bump: downloading a release tarball to compute its SHA-256, and
// recovering a corrected cargoHash from a deliberately failed nix build.
// Both are soft dependencies; when they fail the bump degrades to a warning
// and the checksum is left for manual follow-up.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// ErrNotFound indicates the artifact does not exist yet, typically because
// the release tag has not been pushed and GitHub has no tarball to serve.
var ErrNotFound = errors.New("artifact does not exist")

// HashProvider computes the SHA-256 content hash of the artifact at url.
type HashProvider interface {
	Hash(ctx context.Context, url string) (string, error)
}

// HTTPHasher streams an artifact over HTTP into a SHA-256 digest without
// buffering it on disk. A 404 maps to ErrNotFound so callers can tell
// "not published yet" apart from real transport failures.
type HTTPHasher struct {
	// Client overrides the HTTP client. Nil uses a client with a download
	// timeout suited to release tarballs.
	Client *http.Client

	// ShowProgress enables a terminal spinner while downloading. It is
	// ignored when stderr is not a TTY.
	ShowProgress bool
}

func (h *HTTPHasher) client() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return &http.Client{Timeout: 5 * time.Minute}
}

// Hash downloads url and returns the hex-encoded SHA-256 of its content.
func (h *HTTPHasher) Hash(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := h.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%s: %w", url, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	if h.ShowProgress && term.IsTerminal(int(os.Stderr.Fd())) {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " downloading " + url
		s.Start()
		defer s.Stop()
	}

	digest := sha256.New()
	if _, err := io.Copy(digest, resp.Body); err != nil {
		return "", fmt.Errorf("hashing %s: %w", url, err)
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}
