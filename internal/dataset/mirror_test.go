package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facet/internal/testutil"
)

func assertTree(t *testing.T, target string) {
	t.Helper()
	for _, dir := range testutil.TreeDirs() {
		info, err := os.Stat(filepath.Join(target, dir))
		require.NoError(t, err, "missing mirrored dir %s", dir)
		assert.True(t, info.IsDir())
	}
}

func TestMirrorCreatesStructure(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	testutil.ImageTree(t, in)

	require.NoError(t, Mirror(in, out, nil))
	assertTree(t, out)

	// Only directories are mirrored.
	_, err := os.Stat(filepath.Join(out, "top.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestMirrorIdempotent(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	testutil.ImageTree(t, in)

	require.NoError(t, Mirror(in, out, nil))
	require.NoError(t, Mirror(in, out, nil))
	assertTree(t, out)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 3) // alice, bob, empty
}

func TestMirrorMissingTarget(t *testing.T) {
	in := t.TempDir()
	testutil.ImageTree(t, in)

	err := Mirror(in, filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)
	assert.True(t, IsIOError(err))
}

func TestMirrorFileInTheWay(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	testutil.ImageTree(t, in)
	testutil.WriteFile(t, filepath.Join(out, "alice"), []byte("blocking file"))

	err := Mirror(in, out, nil)
	require.Error(t, err)
	assert.True(t, IsIOError(err))
}

func TestMirrorTreeRebased(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	testutil.ImageTree(t, in)

	ds, err := Index(in, Rebased{})
	require.NoError(t, err)

	err = ds.MirrorTree("")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))

	require.NoError(t, ds.MirrorTree(out))
	assertTree(t, out)
}

func TestMirrorTreeFixed(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	testutil.ImageTree(t, in)

	ds, err := Index(in, Fixed{Root: out})
	require.NoError(t, err)

	err = ds.MirrorTree(t.TempDir())
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))

	require.NoError(t, ds.MirrorTree(""))
	assertTree(t, out)
}
