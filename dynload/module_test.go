package dynload

import (
	"reflect"
	"testing"

	"github.com/ZenLiuCN/sdutils"
)

// table mimics the symbol map of a linked module
type table map[string]uintptr

func (t table) Fetch(sym string) (Sym, bool) {
	p, ok := t[sym]
	return Sym(p), ok
}

func code(f any) uintptr {
	return reflect.ValueOf(f).Pointer()
}

var registered []sdutils.AttachHandler

func exportGetVersion(out *sdutils.Version) sdutils.Status {
	*out = 2
	return sdutils.Success
}

func exportAddAttach(f sdutils.AttachHandler) bool {
	registered = append(registered, f)
	return len(registered) < 2
}

func exportRemoveAttach(sdutils.AttachHandler) bool {
	return false
}

func sample() table {
	return table{
		sdutils.ExportGetVersion:          code(exportGetVersion),
		sdutils.ExportAddAttachHandler:    code(exportAddAttach),
		sdutils.ExportRemoveAttachHandler: code(exportRemoveAttach),
	}
}

func TestAs(t *testing.T) {
	f := As[sdutils.GetVersionFunc](Sym(code(exportGetVersion)))
	for i := 0; i < 10; i++ {
		var v sdutils.Version
		if st := f(&v); st != sdutils.Success || v != 2 {
			t.Fatalf("call %d = %s %d", i, st, v)
		}
	}
}

func TestModule(t *testing.T) {
	m := &Module{d: sample()}
	getVersion, ok := m.GetVersion()
	if !ok {
		t.Fatal("missing version export")
	}
	var v sdutils.Version
	if st := getVersion(&v); st != sdutils.Success || v != 2 {
		t.Errorf("GetVersion = %s %d", st, v)
	}
	if _, ok = m.AddCleanUpHandlesHandler(); ok {
		t.Error("clean up export resolved")
	}
	if _, ok = m.RemoveCleanUpHandlesHandler(); ok {
		t.Error("clean up export resolved")
	}
}

func TestModuleLibrary(t *testing.T) {
	registered = nil
	lib := sdutils.New(loaderFunc(func(name string) (sdutils.Provider, error) {
		return &Module{d: sample()}, nil
	}))
	if st := lib.Initialize(); st != sdutils.Success {
		t.Fatalf("Initialize = %s", st)
	}
	tests := []struct {
		name string
		got  sdutils.Status
		want sdutils.Status
	}{
		{"add", lib.AddAttachHandler(func(sdutils.AttachStatus) {}), sdutils.Success},
		{"add full", lib.AddAttachHandler(func(sdutils.AttachStatus) {}), sdutils.MaxCallbacks},
		{"remove", lib.RemoveAttachHandler(func(sdutils.AttachStatus) {}), sdutils.NotFound},
		{"add clean up", lib.AddCleanUpHandlesHandler(func() {}), sdutils.UnsupportedCommand},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
	if len(registered) != 2 {
		t.Errorf("registered %d handlers", len(registered))
	}
}

type loaderFunc func(name string) (sdutils.Provider, error)

func (f loaderFunc) Acquire(name string) (sdutils.Provider, error) { return f(name) }
