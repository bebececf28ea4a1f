package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facet/internal/store"
)

func seedLedger(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.BeginRun(ctx, "run-1", "/data", "/out", []string{"contrast"}, 3))
	require.NoError(t, st.FinishRun(ctx, "run-1", store.StatusCompleted, 0))
	require.NoError(t, st.BeginRun(ctx, "run-2", "/data", "/out", []string{"contrast", "pixelate"}, 3))
	require.NoError(t, st.FinishRun(ctx, "run-2", store.StatusFailed, 1))
	return path
}

func executeRuns(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRunsCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRunsList(t *testing.T) {
	ledger := seedLedger(t)

	out, err := executeRuns(t, "text", "--ledger", ledger)
	require.NoError(t, err)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "run-2")
	assert.Contains(t, out, "failed=1")
}

func TestRunsShowJSON(t *testing.T) {
	ledger := seedLedger(t)

	out, err := executeRuns(t, "json", "--ledger", ledger, "run-2")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "run-2", resp.Data.ID)
	assert.Equal(t, store.StatusFailed, resp.Data.Status)
	assert.Equal(t, []string{"contrast", "pixelate"}, resp.Data.Catalog)
}

func TestRunsUnknownID(t *testing.T) {
	ledger := seedLedger(t)

	out, err := executeRuns(t, "text", "--ledger", ledger, "run-9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E020]")
}

func TestRunsMissingLedger(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.db")

	_, err := executeRuns(t, "text", "--ledger", missing)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.NoFileExists(t, missing)
}

func TestRunsRequiresLedgerFlag(t *testing.T) {
	_, err := executeRuns(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
