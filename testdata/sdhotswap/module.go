// Package homebrew_sdhotswap publishes the hot swap exports from an object file.
//
// Build it with the cli, the host must link sdutils and hotswap:
//
//	sdutils compile -o homebrew_sdhotswap.o module.go
package homebrew_sdhotswap

import (
	"github.com/ZenLiuCN/sdutils"
	"github.com/ZenLiuCN/sdutils/hotswap"
)

//go:generate sdutils compile -o ../homebrew_sdhotswap.o module.go

var module = hotswap.New(hotswap.WithVersion(2))

func SDUtilsGetVersion(out *sdutils.Version) sdutils.Status {
	f, _ := module.GetVersion()
	return f(out)
}

func SDUtilsAddAttachHandler(fn sdutils.AttachHandler) bool {
	f, _ := module.AddAttachHandler()
	return f(fn)
}

func SDUtilsRemoveAttachHandler(fn sdutils.AttachHandler) bool {
	f, _ := module.RemoveAttachHandler()
	return f(fn)
}

func SDUtilsAddCleanUpHandlesHandler(fn sdutils.CleanUpHandler) bool {
	f, _ := module.AddCleanUpHandlesHandler()
	return f(fn)
}

func SDUtilsRemoveCleanUpHandlesHandler(fn sdutils.CleanUpHandler) bool {
	f, _ := module.RemoveCleanUpHandlesHandler()
	return f(fn)
}
