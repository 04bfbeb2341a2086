package starter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	scene := writeFile(t, dir, "scene.yaml", "entities: []\n")
	other := writeFile(t, dir, "notes.txt", "")

	w, err := NewSceneWatcher(scene)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(scene, []byte("entities: [{name: a}]\n"), 0o644))

	want, err := filepath.Abs(scene)
	require.NoError(t, err)
	select {
	case got := <-w.Events:
		assert.Equal(t, want, got)
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for the scene file")
	}
}

func TestSceneWatcherClose(t *testing.T) {
	w, err := NewSceneWatcher(filepath.Join(t.TempDir(), "scene.yaml"))
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "second close is a no-op")

	var zero SceneWatcher
	assert.NoError(t, zero.Close())
}

func TestSceneWatchModuleSkipsMissingDirectory(t *testing.T) {
	app := newApp()
	cmd := &Commands{app: app}
	SceneWatchModule{Path: filepath.Join(t.TempDir(), "missing", "scene.yaml")}.Install(app, cmd)

	assert.NoError(t, cmd.err)
	assert.Nil(t, Resource[SceneWatcher](app))
}

func TestSceneWatcherReportsFinalWrite(t *testing.T) {
	dir := t.TempDir()
	scene := writeFile(t, dir, "scene.yaml", "entities: []\n")

	w, err := NewSceneWatcher(scene)
	require.NoError(t, err)
	defer w.Close()

	// truncate then write, the way some editors save
	require.NoError(t, os.WriteFile(scene, nil, 0o644))
	require.NoError(t, os.WriteFile(scene, []byte("entities: [{name: final}]\n"), 0o644))
	written := time.Now()

	select {
	case <-w.Events:
		assert.GreaterOrEqual(t, time.Since(written), reloadDebounce, "reported only after the file went quiet")
		data, err := os.ReadFile(scene)
		require.NoError(t, err)
		assert.Equal(t, "entities: [{name: final}]\n", string(data))
	case <-time.After(5 * time.Second):
		t.Fatal("no event for the scene file")
	}

	select {
	case name := <-w.Events:
		t.Fatalf("burst reported twice: %s", name)
	case <-time.After(3 * reloadDebounce):
	}
}
