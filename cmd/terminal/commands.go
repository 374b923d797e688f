package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"repo-analytics-dashboard/internal/config"
	"repo-analytics-dashboard/internal/git"
	"repo-analytics-dashboard/internal/stats"
	"repo-analytics-dashboard/internal/validation"

	"github.com/spf13/cobra"
)

type options struct {
	json bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "repo-analytics",
		Short: "Repository analytics for a local Git checkout.",
		Long: `Compute commit, ownership and coverage analytics for a local repository
without running the API or the worker.

Examples:
  repo-analytics frequency ./my-repo
  repo-analytics busfactor --threshold 0.8 ./my-repo
  repo-analytics tree --exclude ./my-repo
  repo-analytics coverage --branch main --commit abc123 coverage-summary.json`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of a table")

	root.AddCommand(
		newFrequencyCmd(opts),
		newSizeCmd(opts),
		newBusFactorCmd(opts),
		newTreeCmd(opts),
		newCoverageCmd(opts),
	)
	return root
}

func newFrequencyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "frequency [repo-path]",
		Short: "Commits per day and author.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commits, err := loadCommits(cmd, repoPath(args))
			if err != nil {
				return err
			}
			report := stats.CommitFrequency(commits)
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return renderFrequency(cmd.OutOrStdout(), report)
		},
	}
}

func newSizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "size [repo-path]",
		Short: "Lines added and deleted per author.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commits, err := loadCommits(cmd, repoPath(args))
			if err != nil {
				return err
			}
			s := stats.CommitSizeStats(commits)
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			return renderSize(cmd.OutOrStdout(), s)
		},
	}
}

func newBusFactorCmd(opts *options) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "busfactor [repo-path]",
		Short: "Smallest set of authors owning the given share of commits.",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validation.New().Fraction("threshold", threshold).Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			commits, err := loadCommits(cmd, repoPath(args))
			if err != nil {
				return err
			}
			result := stats.BusFactor(commits, threshold)
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return renderBusFactor(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", stats.DefaultBusFactorThreshold, "ownership share to cover")
	return cmd
}

func newTreeCmd(opts *options) *cobra.Command {
	var exclude bool

	cmd := &cobra.Command{
		Use:   "tree [repo-path]",
		Short: "File tree at HEAD.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := git.OpenRepository(repoPath(args))
			if err != nil {
				return err
			}
			files, err := repo.ListFiles(cmd.Context())
			if err != nil {
				return err
			}
			if exclude {
				files = filterExcluded(files, config.FileExclusions)
			}

			tree := stats.BuildFileTree(files)
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), tree)
			}
			renderTree(cmd.OutOrStdout(), tree)
			return nil
		},
	}
	cmd.Flags().BoolVar(&exclude, "exclude", false, "hide lock files, vendored and generated paths")
	return cmd
}

func newCoverageCmd(opts *options) *cobra.Command {
	var commitID, branch string

	cmd := &cobra.Command{
		Use:   "coverage <coverage-summary.json>",
		Short: "Summarize an istanbul json-summary report.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read report: %w", err)
			}

			report, err := stats.ParseCoverageReport(data)
			if err != nil {
				return err
			}
			snapshot, err := stats.ProcessCoverage(0, commitID, branch, report)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), snapshot)
			}
			return renderCoverage(cmd.OutOrStdout(), snapshot)
		},
	}
	cmd.Flags().StringVar(&commitID, "commit", "", "commit the report was produced for")
	cmd.Flags().StringVar(&branch, "branch", "main", "branch the report was produced for")
	return cmd
}

func repoPath(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// loadCommits reads HEAD history and drops records without a usable timestamp
func loadCommits(cmd *cobra.Command, path string) ([]stats.CanonicalCommit, error) {
	repo, err := git.OpenRepository(path)
	if err != nil {
		return nil, err
	}

	raw, err := repo.ReadHistory(cmd.Context(), "")
	if err != nil {
		return nil, err
	}

	commits, err := stats.NormalizeCommits(raw)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d malformed commits\n", len(raw)-len(commits))
	}
	return commits, nil
}

func filterExcluded(files []stats.FileEntry, exclusions config.ExclusionConfig) []stats.FileEntry {
	kept := make([]stats.FileEntry, 0, len(files))
	for _, f := range files {
		if !exclusions.IsExcluded(f.Path) {
			kept = append(kept, f)
		}
	}
	return kept
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
