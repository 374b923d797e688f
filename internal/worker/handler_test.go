package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"repo-analytics-dashboard/internal/cache"
	"repo-analytics-dashboard/internal/database"
	"repo-analytics-dashboard/internal/github"
	"repo-analytics-dashboard/internal/logger"
	"repo-analytics-dashboard/internal/queue"
	"repo-analytics-dashboard/internal/stats"
	"repo-analytics-dashboard/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	repo          *database.Repository
	statuses      []database.RepositoryStatus
	commits       []stats.CanonicalCommit
	files         []stats.FileEntry
	replaced      bool
	upsertErr     error
	statusMissing bool
}

func (s *fakeStore) GetRepository(ctx context.Context, id int64) (*database.Repository, error) {
	if s.repo == nil {
		return nil, validation.NotFound("repository")
	}
	r := *s.repo
	return &r, nil
}

func (s *fakeStore) UpdateRepositoryStatus(ctx context.Context, id int64, status database.RepositoryStatus) error {
	if s.statusMissing {
		return validation.NotFound("repository")
	}
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *fakeStore) UpdateRepository(ctx context.Context, repo *database.Repository) error {
	s.statuses = append(s.statuses, repo.Status)
	s.repo = repo
	return nil
}

func (s *fakeStore) ReplaceCommits(ctx context.Context, repositoryID int64, commits []stats.CanonicalCommit) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.replaced = true
	s.commits = commits
	return nil
}

func (s *fakeStore) UpsertCommits(ctx context.Context, repositoryID int64, commits []stats.CanonicalCommit) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.commits = commits
	return nil
}

func (s *fakeStore) ReplaceRepositoryFiles(ctx context.Context, repositoryID int64, files []stats.FileEntry) error {
	s.files = files
	return nil
}

type fakeLocal struct {
	snapshot  *Snapshot
	localPath string
}

func (f *fakeLocal) Fetch(ctx context.Context, url, localPath string) (*Snapshot, error) {
	f.localPath = localPath
	return f.snapshot, nil
}

type fakeRemote struct {
	commits []stats.RawCommit
	files   []stats.FileEntry
	branch  string
	err     error
}

func (f *fakeRemote) ListCommits(ctx context.Context, owner, repo string, opts github.CommitListOptions) ([]stats.RawCommit, error) {
	f.branch = opts.Branch
	return f.commits, f.err
}

func (f *fakeRemote) ListFiles(ctx context.Context, owner, repo, ref string) ([]stats.FileEntry, error) {
	return f.files, nil
}

type fakeCache struct {
	cache.Noop
	invalidated []int64
}

func (c *fakeCache) InvalidateRepository(ctx context.Context, repositoryID int64) error {
	c.invalidated = append(c.invalidated, repositoryID)
	return nil
}

func rawCommit(sha, date string) stats.RawCommit {
	return stats.RawCommit{
		SHA: sha,
		Commit: &stats.RawCommitDetail{
			Author:  &stats.RawAuthor{Name: "Ada", Email: "ada@x.io", Date: date},
			Message: "change",
		},
	}
}

func testRepo() *database.Repository {
	return &database.Repository{
		ID:            7,
		URL:           "https://github.com/acme/widgets",
		Owner:         "acme",
		Name:          "widgets",
		DefaultBranch: "main",
		Status:        database.StatusPending,
	}
}

func TestHandleIndexJob(t *testing.T) {
	store := &fakeStore{repo: testRepo()}
	local := &fakeLocal{snapshot: &Snapshot{
		Commits: []stats.RawCommit{rawCommit("a1", "2024-03-01T09:00:00Z")},
		Files:   []stats.FileEntry{{ID: "f1", Path: "main.go", Extension: "go"}},
		Branch:  "trunk",
	}}
	c := &fakeCache{}

	handler := NewJobHandler(store, c, local, &fakeRemote{}, "/var/repos", logger.Discard())
	fixed := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return fixed }

	err := handler.HandleJob(context.Background(), queue.NewJob(queue.JobTypeIndex, 7))
	require.NoError(t, err)

	assert.Equal(t, []database.RepositoryStatus{database.StatusIndexing, database.StatusCompleted}, store.statuses)
	assert.True(t, store.replaced)
	require.Len(t, store.commits, 1)
	assert.Equal(t, "a1", store.commits[0].SHA)
	assert.Len(t, store.files, 1)

	assert.Equal(t, "/var/repos/7", local.localPath)
	require.NotNil(t, store.repo.LocalPath)
	assert.Equal(t, "/var/repos/7", *store.repo.LocalPath)
	assert.Equal(t, "trunk", store.repo.DefaultBranch)
	assert.Equal(t, fixed, *store.repo.LastIndexedAt)
	assert.Equal(t, []int64{7}, c.invalidated)
}

func TestHandleSyncJobSkipsMalformed(t *testing.T) {
	store := &fakeStore{repo: testRepo()}
	remote := &fakeRemote{
		commits: []stats.RawCommit{
			rawCommit("a1", "2024-03-01T09:00:00Z"),
			rawCommit("bad", "yesterday"),
			rawCommit("b2", "2024-03-02T09:00:00Z"),
		},
	}

	handler := NewJobHandler(store, &fakeCache{}, &fakeLocal{}, remote, "/tmp", logger.Discard())

	err := handler.HandleJob(context.Background(), queue.NewJob(queue.JobTypeSync, 7))
	require.NoError(t, err)

	assert.False(t, store.replaced)
	assert.Equal(t, "main", remote.branch)
	require.Len(t, store.commits, 2)
	assert.Equal(t, "b2", store.commits[1].SHA)
	assert.Nil(t, store.repo.LocalPath)
}

func TestHandleJobMarksFailed(t *testing.T) {
	store := &fakeStore{repo: testRepo(), upsertErr: errors.New("db down")}
	local := &fakeLocal{snapshot: &Snapshot{}}

	handler := NewJobHandler(store, &fakeCache{}, local, &fakeRemote{}, "/tmp", logger.Discard())

	err := handler.HandleJob(context.Background(), queue.NewJob(queue.JobTypeIndex, 7))
	require.Error(t, err)
	assert.False(t, errors.Is(err, queue.ErrPermanent))
	assert.Equal(t, []database.RepositoryStatus{database.StatusIndexing, database.StatusFailed}, store.statuses)
}

func TestHandleIndexJobKeepsHistoryOnPersistFailure(t *testing.T) {
	existing := []stats.CanonicalCommit{{SHA: "old"}}
	store := &fakeStore{repo: testRepo(), commits: existing, upsertErr: errors.New("batch failed")}
	local := &fakeLocal{snapshot: &Snapshot{
		Commits: []stats.RawCommit{rawCommit("a1", "2024-03-01T09:00:00Z")},
	}}

	handler := NewJobHandler(store, &fakeCache{}, local, &fakeRemote{}, "/tmp", logger.Discard())

	err := handler.HandleJob(context.Background(), queue.NewJob(queue.JobTypeIndex, 7))
	assert.ErrorContains(t, err, "failed to persist commits")
	assert.False(t, store.replaced)
	assert.Equal(t, existing, store.commits)
	assert.Nil(t, store.files)
}

func TestHandleJobFetchError(t *testing.T) {
	store := &fakeStore{repo: testRepo()}
	remote := &fakeRemote{err: errors.New("rate limited")}

	handler := NewJobHandler(store, &fakeCache{}, &fakeLocal{}, remote, "/tmp", logger.Discard())

	err := handler.HandleJob(context.Background(), queue.NewJob(queue.JobTypeSync, 7))
	assert.ErrorContains(t, err, "rate limited")
	assert.Equal(t, database.StatusFailed, store.statuses[len(store.statuses)-1])
}

func TestHandleJobMissingRepositoryIsPermanent(t *testing.T) {
	store := &fakeStore{statusMissing: true}
	handler := NewJobHandler(store, &fakeCache{}, &fakeLocal{}, &fakeRemote{}, "/tmp", logger.Discard())

	err := handler.HandleJob(context.Background(), queue.NewJob(queue.JobTypeSync, 99))
	assert.ErrorIs(t, err, queue.ErrPermanent)
}

func TestHandleJobUnknownType(t *testing.T) {
	handler := NewJobHandler(&fakeStore{}, &fakeCache{}, &fakeLocal{}, &fakeRemote{}, "/tmp", logger.Discard())

	err := handler.HandleJob(context.Background(), &queue.Job{Type: "discover"})
	assert.ErrorIs(t, err, queue.ErrPermanent)
}

func TestMalformedCount(t *testing.T) {
	_, err := stats.NormalizeCommits([]stats.RawCommit{{SHA: "x"}, {SHA: "y"}})
	assert.Equal(t, 2, malformedCount(err))
	assert.Equal(t, 0, malformedCount(nil))
}
