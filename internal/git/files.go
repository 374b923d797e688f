package git

import (
	"context"
	"fmt"
	"path"
	"strings"

	"repo-analytics-dashboard/internal/stats"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// ListFiles returns every file in the HEAD tree. Entry ids are blob hashes.
func (r *Repository) ListFiles(ctx context.Context) ([]stats.FileEntry, error) {
	head, err := r.repo.CommitObject(r.ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD commit: %w", err)
	}

	tree, err := head.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD tree: %w", err)
	}

	var files []stats.FileEntry
	err = tree.Files().ForEach(func(f *object.File) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !f.Mode.IsFile() {
			return nil
		}

		files = append(files, stats.FileEntry{
			ID:        f.Hash.String(),
			Path:      f.Name,
			Extension: strings.TrimPrefix(path.Ext(f.Name), "."),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk file tree: %w", err)
	}

	return files, nil
}
