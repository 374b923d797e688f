package config

import (
	"path"
	"strings"
)

// FileExclusions contains patterns for files/directories hidden from file trees on request
var FileExclusions = ExclusionConfig{
	// Patterns use path.Match syntax; a trailing "/" matches a directory prefix
	Patterns: []string{
		// Package manager lock files
		"package-lock.json",
		"yarn.lock",
		"pnpm-lock.yaml",
		"Gemfile.lock",
		"Pipfile.lock",
		"poetry.lock",
		"go.sum",

		// Generated/compiled files
		"*.pb.go",
		"*.gen.go",
		"*.generated.*",
		"*.min.js",
		"*.min.css",
		"*.bundle.js",

		// Vendor/dependency directories
		"vendor/",
		"node_modules/",
		".git/",

		// Build artifacts
		"dist/",
		"build/",
		"out/",
		"bin/",
		"coverage/",

		// IDE/editor config
		".vscode/",
		".idea/",
	},

	// File extensions to always exclude
	Extensions: []string{
		".lock",
		".sum",
		".map",
	},
}

// ExclusionConfig holds file exclusion patterns
type ExclusionConfig struct {
	Patterns   []string `json:"patterns"`
	Extensions []string `json:"extensions"`
}

// IsExcluded reports whether a repository-relative path matches an exclusion.
// File patterns are matched against the base name, directory patterns against
// every leading directory of the path.
func (c ExclusionConfig) IsExcluded(p string) bool {
	p = strings.TrimPrefix(p, "/")
	base := path.Base(p)

	for _, ext := range c.Extensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}

	dirs := strings.Split(p, "/")
	dirs = dirs[:len(dirs)-1]

	for _, pattern := range c.Patterns {
		if dir, ok := strings.CutSuffix(pattern, "/"); ok {
			for _, d := range dirs {
				if matched, _ := path.Match(dir, d); matched {
					return true
				}
			}
			continue
		}
		if matched, _ := path.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
