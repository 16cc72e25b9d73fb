package dynload

import (
	"path/filepath"
	"testing"

	"github.com/ZenLiuCN/fn"
	"github.com/spf13/afero"
)

func TestPrepareSdk(t *testing.T) {
	afs := afero.NewMemMapFs()
	goroot := "/usr/local/go"
	internal, objfile := sdkDirs(goroot)
	fn.Panic(afero.WriteFile(afs, filepath.Join(internal, "goobj", "objfile.go"), []byte("package goobj"), 0o644))
	fn.Panic(afero.WriteFile(afs, filepath.Join(internal, "objabi", "head.go"), []byte("package objabi"), 0o600))

	if removed, err := CleanSdk(afs, goroot); err != nil || removed {
		t.Fatalf("CleanSdk before prepare = %v %v", removed, err)
	}
	if copied, err := PrepareSdk(afs, goroot); err != nil || !copied {
		t.Fatalf("PrepareSdk = %v %v", copied, err)
	}
	tests := []struct {
		file string
		data string
	}{
		{filepath.Join(objfile, "goobj", "objfile.go"), "package goobj"},
		{filepath.Join(objfile, "objabi", "head.go"), "package objabi"},
	}
	for _, tt := range tests {
		b, err := afero.ReadFile(afs, tt.file)
		if err != nil || string(b) != tt.data {
			t.Errorf("read %s = %q %v", tt.file, b, err)
		}
	}
	if info, err := afs.Stat(tests[1].file); err != nil || info.Mode().Perm() != 0o600 {
		t.Errorf("mode of %s = %v %v", tests[1].file, info, err)
	}
	if copied, err := PrepareSdk(afs, goroot); err != nil || copied {
		t.Errorf("PrepareSdk again = %v %v", copied, err)
	}
	if removed, err := CleanSdk(afs, goroot); err != nil || !removed {
		t.Fatalf("CleanSdk = %v %v", removed, err)
	}
	if ok, _ := afero.Exists(afs, objfile); ok {
		t.Errorf("%s still exists", objfile)
	}
	if ok, _ := afero.Exists(afs, internal); !ok {
		t.Errorf("%s removed", internal)
	}
}

func TestPrepareSdkMissing(t *testing.T) {
	if _, err := PrepareSdk(afero.NewMemMapFs(), "/missing"); err == nil {
		t.Error("prepared a missing sdk")
	}
}
