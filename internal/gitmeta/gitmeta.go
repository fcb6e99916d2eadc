// Package gitmeta resolves source revision metadata from an enclosing git
// work tree, for the rendered page footer.
package gitmeta

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Stamp records the last commit touching a source file.
type Stamp struct {
	Commit string // abbreviated hash
	When   time.Time
}

// Short returns the stamp formatted for display, e.g. "a1b2c3d (2026-01-02)".
func (s *Stamp) Short() string {
	return fmt.Sprintf("%s (%s)", s.Commit, s.When.UTC().Format("2006-01-02"))
}

// Lookup returns the last-commit stamp for path, or (nil, nil) when the
// file is not inside a git work tree or has no commits yet. Only hard
// repository access failures surface as errors.
func Lookup(path string) (*Stamp, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve source path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, nil
		}
		return nil, fmt.Errorf("open git repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, nil
	}
	rel, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil {
		return nil, nil
	}
	rel = filepath.ToSlash(rel)

	iter, err := repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		// Empty repository: no HEAD yet.
		return nil, nil
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil || commit == nil {
		return nil, nil
	}
	return stampFrom(commit), nil
}

func stampFrom(c *object.Commit) *Stamp {
	return &Stamp{
		Commit: c.Hash.String()[:7],
		When:   c.Author.When,
	}
}
