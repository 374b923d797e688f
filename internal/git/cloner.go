package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

// Cloner keeps bare mirrors of remote repositories on local disk
type Cloner struct {
	progress io.Writer
}

func NewCloner(progress io.Writer) *Cloner {
	if progress == nil {
		progress = io.Discard
	}
	return &Cloner{progress: progress}
}

// CloneOrFetch clones url into localPath as a bare repository, or fetches
// new refs when a clone already exists there.
func (c *Cloner) CloneOrFetch(ctx context.Context, url, localPath string) (*git.Repository, error) {
	if _, err := os.Stat(localPath); err == nil {
		return c.fetch(ctx, localPath)
	}

	// Bare clone: history only, no working tree
	r, err := git.PlainCloneContext(ctx, localPath, true, &git.CloneOptions{
		URL:      url,
		Progress: c.progress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return r, nil
}

func (c *Cloner) fetch(ctx context.Context, localPath string) (*git.Repository, error) {
	r, err := git.PlainOpen(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	err = r.FetchContext(ctx, &git.FetchOptions{
		RefSpecs: []gitconfig.RefSpec{BranchRefSpec},
		Progress: c.progress,
		Force:    true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	return r, nil
}
