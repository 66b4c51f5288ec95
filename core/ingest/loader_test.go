package ingest

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/queuewait/schema"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("ok", func(t *testing.T) {
		path := writeFile(t, dir, "ok.csv", "time,position,length\n100,5,10\n200,0,10\n")
		run, err := LoadFile(path)
		require.NoError(t, err)
		assert.Len(t, run.Subsequent, 1)
	})

	t.Run("empty run", func(t *testing.T) {
		path := writeFile(t, dir, "single.csv", "time,position,length\n100,5,10\n")
		_, err := LoadFile(path)
		assert.ErrorIs(t, err, schema.ErrEmptyRun)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "time,position,length\n100,5,10\n200,0,10\n")
	writeFile(t, dir, "a.csv", "time,position,length\n50,3,8\n60,2,8\n70,0,8\n")
	writeFile(t, dir, "c.txt", "not a log\n")
	writeFile(t, dir, "d.csv", "time,position,length\n100,5,10\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "e"), 0o755))

	results, err := LoadDir(dir)
	require.NoError(t, err)
	all := slices.Collect(results)
	require.Len(t, all, 5)

	assert.True(t, all[0].OK())
	assert.Equal(t, filepath.Join(dir, "a.csv"), all[0].Path)
	assert.Len(t, all[0].Run.Subsequent, 2)
	assert.True(t, all[1].OK())
	assert.ErrorIs(t, all[2].Err, ErrHeaderUnresolved)
	assert.ErrorIs(t, all[3].Err, schema.ErrEmptyRun)
	assert.ErrorIs(t, all[4].Err, ErrIsDirectory)

	ok := slices.Collect(Successes(results))
	assert.Len(t, ok, 2)

	paths, err := EntryPaths(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 5)
}

func TestLoadDirSymlinkedDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "time,position,length\n100,5,10\n200,0,10\n")
	target := t.TempDir()
	if err := os.Symlink(target, filepath.Join(dir, "b.csv")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	results, err := LoadDir(dir)
	require.NoError(t, err)
	all := slices.Collect(results)
	require.Len(t, all, 2)
	assert.True(t, all[0].OK())
	assert.False(t, all[1].OK())
	assert.ErrorIs(t, all[1].Err, ErrRead)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
