package git

// Tuning for history walks
const (
	HistoryWorkers = 10 // Goroutines computing per-commit diff stats

	// Remote refspec mirrored into bare clones on fetch
	BranchRefSpec = "+refs/heads/*:refs/heads/*"
)
