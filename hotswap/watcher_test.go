package hotswap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZenLiuCN/sdutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func watched(t *testing.T) (*Module, *Watcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "external01")
	m := New()
	lib := sdutils.New(NewLoader().Register(sdutils.ModuleName, m), sdutils.WithMountPath(path))
	require.Equal(t, sdutils.Success, lib.Initialize())
	w, err := NewWatcher(m, lib, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return m, w, path
}

func TestWatcherCheck(t *testing.T) {
	m, w, path := watched(t)
	assert.False(t, w.Mounted())
	var events []string
	m.addAttach(func(s sdutils.AttachStatus) { events = append(events, s.String()) })
	m.addCleanUp(func() { events = append(events, "cleanup") })

	w.Check()
	assert.Empty(t, events)
	require.NoError(t, os.Mkdir(path, 0o755))
	w.Check()
	w.Check()
	assert.True(t, w.Mounted())
	require.NoError(t, os.Remove(path))
	w.Check()
	assert.Equal(t, []string{"mounted", "cleanup", "unmounted"}, events)
}

func TestWatcherMountedAtStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "external01")
	require.NoError(t, os.Mkdir(path, 0o755))
	m := New()
	lib := sdutils.New(NewLoader().Register(sdutils.ModuleName, m), sdutils.WithMountPath(path))
	w, err := NewWatcher(m, lib, path)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	assert.True(t, w.Mounted())

	var events []string
	m.addAttach(func(s sdutils.AttachStatus) { events = append(events, s.String()) })
	w.Check()
	assert.Empty(t, events, "an existing directory is no state change")
	require.NoError(t, os.Remove(path))
	w.Check()
	assert.Equal(t, []string{"unmounted"}, events)
}

func TestWatcherRun(t *testing.T) {
	m, w, path := watched(t)
	events := make(chan sdutils.AttachStatus, 4)
	m.addAttach(func(s sdutils.AttachStatus) { events <- s })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.Mkdir(path, 0o755))
	select {
	case s := <-events:
		assert.Equal(t, sdutils.Mounted, s)
	case <-time.After(5 * time.Second):
		t.Fatal("no attach event")
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcherMissingParent(t *testing.T) {
	lib := sdutils.New(nil)
	_, err := NewWatcher(New(), lib, filepath.Join(t.TempDir(), "missing", "external01"))
	assert.Error(t, err)
}
