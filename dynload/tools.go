package dynload

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZenLiuCN/fn"
	"github.com/ZenLiuCN/sdutils"
	"github.com/pkujhd/goloader"
	"github.com/spf13/afero"
)

const importCfg = "importcfg"

// sdkDirs are the compiler internals of the sdk at goroot and the copy goloader imports them from.
func sdkDirs(goroot string) (internal, objfile string) {
	cmd := filepath.Join(goroot, "src", "cmd")
	return filepath.Join(cmd, "internal"), filepath.Join(cmd, "objfile")
}

// GoRoot asks the go tool where its sdk lives.
func GoRoot() (string, error) {
	out, err := exec.Command("go", "env", "GOROOT").Output()
	if err != nil {
		return "", fmt.Errorf("locate go sdk: %w%s", err, stderr(err))
	}
	return strings.TrimSpace(string(out)), nil
}

// PrepareSdk copies the compiler internals of the sdk at goroot to where goloader expects them.
// It reports false when the copy already exists.
func PrepareSdk(afs afero.Fs, goroot string) (bool, error) {
	internal, objfile := sdkDirs(goroot)
	if ok, err := afero.DirExists(afs, objfile); err != nil || ok {
		return false, err
	}
	if err := copyTree(afs, internal, objfile); err != nil {
		return true, fmt.Errorf("copy %s: %w", internal, err)
	}
	return true, nil
}

// CleanSdk removes the copy made by PrepareSdk, it reports false when there was none.
func CleanSdk(afs afero.Fs, goroot string) (bool, error) {
	_, objfile := sdkDirs(goroot)
	if ok, err := afero.Exists(afs, objfile); err != nil || !ok {
		return false, err
	}
	return true, afs.RemoveAll(objfile)
}

func copyTree(afs afero.Fs, src, dest string) error {
	return afero.Walk(afs, src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			return afs.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(afs, path, target, info.Mode().Perm())
	})
}

func copyFile(afs afero.Fs, src, dest string, perm fs.FileMode) error {
	in, err := afs.Open(src)
	if err != nil {
		return err
	}
	defer fn.IgnoreClose(in)
	out, err := afs.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Compile sources of package pkg into the object file out, using the importcfg written by Imports.
func Compile(debug bool, pkg, out string, src []string) (err error) {
	args := []string{"tool", "compile", "-importcfg", importCfg, "-p", pkg}
	if out != "" {
		args = append(args, "-o", out)
	}
	cmd := exec.Command("go", append(args, src...)...)
	if debug {
		log.Printf("execute: %v", cmd.Args)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err = cmd.Run(); err == nil && !debug {
		err = os.Remove(importCfg)
	}
	return
}

// Imports generate import cfg as importcfg file in current working directory.
func Imports(debug bool, src []string) (err error) {
	var cfg *os.File
	if cfg, err = os.OpenFile(importCfg, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644); err != nil {
		return
	}
	defer fn.IgnoreClose(cfg)
	cmd := exec.Command("go", append([]string{"list", "-export", "-f", "{{.Imports}}"}, src...)...)
	if debug {
		log.Printf("execute: %v", cmd.Args)
	}
	bout, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("inspect imports: %w%s", err, stderr(err))
	}
	out := strings.TrimSpace(string(bout))
	out = strings.TrimSuffix(strings.TrimPrefix(out, "["), "]")
	deps := strings.Fields(out)
	cmd = exec.Command("go", append([]string{"list", "-export", "-f", "{{if .Export}}packagefile {{.ImportPath}}={{.Export}}{{end}}", "std"}, deps...)...)
	if debug {
		log.Printf("execute: %v", cmd.Args)
	}
	if bout, err = cmd.Output(); err != nil {
		return fmt.Errorf("inspect dependencies: %w%s", err, stderr(err))
	}
	_, err = cfg.Write(bout)
	return
}

func stderr(err error) string {
	if x, ok := err.(*exec.ExitError); ok && len(x.Stderr) > 0 {
		return "\n" + string(x.Stderr)
	}
	return ""
}

// Inspect display symbols inside an object file
func Inspect(file, pkg string) ([]string, error) {
	return goloader.Parse(file, pkg)
}

// MissingExports lists the hot swap exports an object file does not define.
func MissingExports(file, pkg string) (missing []string, err error) {
	syms, err := Inspect(file, pkg)
	if err != nil {
		return nil, err
	}
	for _, e := range sdutils.Exports {
		if !slices.Contains(syms, pkg+"."+e) {
			missing = append(missing, e)
		}
	}
	return
}
