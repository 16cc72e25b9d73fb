package hotswap

import (
	"testing"

	"github.com/ZenLiuCN/sdutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleCapacity(t *testing.T) {
	m := New(WithMaxCallbacks(2))
	add, ok := m.AddAttachHandler()
	require.True(t, ok)
	remove, ok := m.RemoveAttachHandler()
	require.True(t, ok)

	a := func(sdutils.AttachStatus) {}
	b := func(sdutils.AttachStatus) {}
	c := func(sdutils.AttachStatus) {}
	assert.True(t, add(a))
	assert.True(t, add(a), "duplicate add is accepted")
	assert.True(t, add(b))
	assert.False(t, add(c), "list is full")
	n, _ := m.Registered()
	assert.Equal(t, 2, n)

	assert.True(t, remove(a))
	assert.False(t, remove(a))
	assert.True(t, add(c))
	m.Reset()
	n, _ = m.Registered()
	assert.Zero(t, n)
}

type card struct{ events []sdutils.AttachStatus }

func (c *card) onAttach(s sdutils.AttachStatus) { c.events = append(c.events, s) }

func TestModuleMethodValues(t *testing.T) {
	m := New()
	a, b := &card{}, &card{}
	fa, fb := sdutils.AttachHandler(a.onAttach), sdutils.AttachHandler(b.onAttach)
	require.True(t, m.addAttach(fa))
	require.True(t, m.addAttach(fb))
	n, _ := m.Registered()
	require.Equal(t, 2, n, "method values of distinct receivers are distinct handlers")

	m.Attach()
	assert.Equal(t, []sdutils.AttachStatus{sdutils.Mounted}, a.events)
	assert.Equal(t, []sdutils.AttachStatus{sdutils.Mounted}, b.events)

	require.True(t, m.removeAttach(fb))
	m.Eject()
	assert.Equal(t, []sdutils.AttachStatus{sdutils.Mounted, sdutils.Unmounted}, a.events)
	assert.Equal(t, []sdutils.AttachStatus{sdutils.Mounted}, b.events)
	assert.False(t, m.removeAttach(fb))
	assert.True(t, m.removeAttach(fa))
}

func TestModuleClosures(t *testing.T) {
	m := New()
	var calls []int
	var hs []sdutils.CleanUpHandler
	for i := 0; i < 3; i++ {
		h := sdutils.CleanUpHandler(func() { calls = append(calls, i) })
		hs = append(hs, h)
		require.True(t, m.addCleanUp(h))
	}
	_, n := m.Registered()
	require.Equal(t, 3, n)
	require.True(t, m.addCleanUp(hs[1]), "duplicate add is accepted")
	require.True(t, m.removeCleanUp(hs[1]))
	m.Eject()
	assert.Equal(t, []int{0, 2}, calls)
}

func TestModuleDispatch(t *testing.T) {
	m := New()
	var events []string
	m.addAttach(func(s sdutils.AttachStatus) { events = append(events, "attach:"+s.String()) })
	m.addCleanUp(func() { events = append(events, "cleanup") })
	m.addAttach(func(s sdutils.AttachStatus) { events = append(events, "second:"+s.String()) })

	m.Attach()
	m.Eject()
	assert.Equal(t, []string{
		"attach:mounted", "second:mounted",
		"cleanup", "attach:unmounted", "second:unmounted",
	}, events)
}

func TestModuleHandlerMayRemoveItself(t *testing.T) {
	m := New()
	var calls int
	var self sdutils.AttachHandler
	self = func(sdutils.AttachStatus) {
		calls++
		m.removeAttach(self)
	}
	require.True(t, m.addAttach(self))
	m.Attach()
	m.Attach()
	assert.Equal(t, 1, calls)
}

func TestModuleExports(t *testing.T) {
	m := New(WithVersion(0), WithoutExports(sdutils.ExportAddCleanUpHandlesHandler, sdutils.ExportRemoveCleanUpHandlesHandler))
	getVersion, ok := m.GetVersion()
	require.True(t, ok)
	var v sdutils.Version = sdutils.VersionError
	assert.Equal(t, sdutils.Success, getVersion(&v))
	assert.Equal(t, sdutils.Version(0), v)
	assert.Equal(t, sdutils.InvalidArgument, getVersion(nil))

	_, ok = m.AddAttachHandler()
	assert.True(t, ok)
	_, ok = m.RemoveAttachHandler()
	assert.True(t, ok)
	f, ok := m.AddCleanUpHandlesHandler()
	assert.False(t, ok)
	assert.Nil(t, f)
	_, ok = m.RemoveCleanUpHandlesHandler()
	assert.False(t, ok)
}

func TestLoader(t *testing.T) {
	m := New()
	l := NewLoader().Register(sdutils.ModuleName, m)
	p, err := l.Acquire(sdutils.ModuleName)
	require.NoError(t, err)
	assert.Same(t, m, p)
	_, err = l.Acquire("missing")
	assert.ErrorIs(t, err, ErrNotRegistered)
}
