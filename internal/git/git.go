// Package git provides the small set of repository queries releasekit needs
// for preflight checks: repository detection and tag lookups. It uses the
// go-git library so no git CLI installation is required.
package git

import (
	"fmt"
	"os"
	"sort"

	gogit "github.com/go-git/go-git/v5"
)

// openRepo opens the git repository containing path, traversing up the
// directory tree to find the repository root. An empty path means the
// current working directory.
func openRepo(path string) (*gogit.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// IsRepository checks whether path is inside a git repository.
func IsRepository(path string) bool {
	_, err := openRepo(path)
	return err == nil
}

// Tags returns the repository's tag names, sorted.
func Tags(path string) ([]string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var tags []string
	for {
		ref, err := iter.Next()
		if err != nil {
			break
		}
		tags = append(tags, ref.Name().Short())
	}

	sort.Strings(tags)
	return tags, nil
}

// TagExists checks whether the repository already has the given tag.
func TagExists(path, tag string) (bool, error) {
	tags, err := Tags(path)
	if err != nil {
		return false, err
	}
	for _, t := range tags {
		if t == tag {
			return true, nil
		}
	}
	return false, nil
}
