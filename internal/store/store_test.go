package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facet/internal/catalog"
	"github.com/roach88/facet/internal/dataset"
	"github.com/roach88/facet/internal/testutil"
)

// createTestStore creates a new file-backed store for testing with a
// deterministic clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	s.now = testutil.NewStepClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), time.Second).Now
	return s
}

func TestOpenPragmas(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
	require.NoError(t, s.verifyPragma("foreign_keys", "1"))
	require.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestCloseNilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestRunLifecycle(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginRun(ctx, "run-1", "/in", "/out", []string{"contrast"}, 2))

	rec := dataset.ImageRecord{SourcePath: "/in/a.png", RelativePath: "a.png"}
	v := catalog.Variant{Severity: 1, Corruption: "contrast"}
	require.NoError(t, s.RecordVariant(ctx, "run-1", rec, v, "/out/1/contrast/a.png"))
	// Duplicate write is ignored.
	require.NoError(t, s.RecordVariant(ctx, "run-1", rec, v, "/out/1/contrast/a.png"))

	run, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Equal(t, 1, run.Variants)
	assert.Equal(t, []string{"contrast"}, run.Catalog)
	assert.Nil(t, run.FinishedAt)

	require.NoError(t, s.FinishRun(ctx, "run-1", StatusFailed, 1))

	run, err = s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, 1, run.Failed)
	require.NotNil(t, run.FinishedAt)
	assert.True(t, run.FinishedAt.After(run.StartedAt))
}

func TestRecordVariantUnknownRun(t *testing.T) {
	s := createTestStore(t)
	rec := dataset.ImageRecord{SourcePath: "/in/a.png", RelativePath: "a.png"}
	err := s.RecordVariant(context.Background(), "missing", rec, catalog.Variant{Severity: 1, Corruption: "x"}, "/out/x")
	require.Error(t, err) // foreign key
}

func TestRecordVariantRejectsBadSeverity(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.BeginRun(ctx, "run-1", "/in", "/out", []string{"x"}, 1))

	rec := dataset.ImageRecord{SourcePath: "/in/a.png", RelativePath: "a.png"}
	err := s.RecordVariant(ctx, "run-1", rec, catalog.Variant{Severity: 0, Corruption: "x"}, "/out/0/x/a.png")
	require.Error(t, err)
}

func TestFinishUnknownRun(t *testing.T) {
	s := createTestStore(t)
	err := s.FinishRun(context.Background(), "missing", StatusCompleted, 0)
	require.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.GetRun(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRunsOrdered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginRun(ctx, "b", "/in", "/out", []string{"x"}, 1))
	require.NoError(t, s.BeginRun(ctx, "a", "/in", "/out", []string{"x"}, 1))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, "a", runs[1].ID)
}

func TestRecorder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.BeginRun(ctx, "run-1", "/in", "/out", []string{"x"}, 1))

	r := s.Recorder("run-1")
	rec := dataset.ImageRecord{SourcePath: "/in/a.png", RelativePath: "a.png"}
	for sev := 1; sev <= 5; sev++ {
		v := catalog.Variant{Severity: sev, Corruption: "x"}
		require.NoError(t, r.VariantWritten(ctx, rec, v, filepath.Join("/out", v.String(), "a.png")))
	}

	run, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 5, run.Variants)
}

func TestGenerators(t *testing.T) {
	a := UUIDv7Generator{}.Generate()
	b := UUIDv7Generator{}.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)

	g := NewFixedGenerator("one", "two")
	assert.Equal(t, "one", g.Generate())
	assert.Equal(t, "two", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
