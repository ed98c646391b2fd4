package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitegen/internal/site"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Git loads items from a remote repository: shallow clone into a temporary
// directory, then a filesystem walk of the content directory inside it.
type Git struct {
	url        string
	branch     string
	contentDir string
}

func NewGit(url, branch, contentDir string) *Git {
	return &Git{url: url, branch: branch, contentDir: contentDir}
}

func (s *Git) Load(ctx context.Context) ([]*site.Item, error) {
	dir, err := os.MkdirTemp("", "sitegen-src-*")
	if err != nil {
		return nil, fmt.Errorf("create clone dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("Failed to clean up clone dir", "dir", dir, "error", err)
		}
	}()

	opts := &git.CloneOptions{
		URL:          s.url,
		Depth:        1,
		SingleBranch: true,
	}
	if s.branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.branch)
	}

	slog.Info("Cloning content repository", "url", s.url, "branch", s.branch)
	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return nil, fmt.Errorf("clone %s: %w", s.url, err)
	}

	return NewFilesystem(filepath.Join(dir, s.contentDir)).Load(ctx)
}
