package dynload

import "github.com/ZenLiuCN/sdutils"

type fetcher interface {
	Fetch(sym string) (Sym, bool)
}

// Module resolves the hot swap exports of a linked Dynamic.
type Module struct {
	d fetcher
}

// NewModule wraps a linked Dynamic.
func NewModule(d *Dynamic) *Module {
	return &Module{d: d}
}

func resolve[T any](m *Module, export string) (f T, ok bool) {
	var p Sym
	if p, ok = m.d.Fetch(export); !ok {
		return
	}
	return As[T](p), true
}

func (m *Module) GetVersion() (sdutils.GetVersionFunc, bool) {
	return resolve[sdutils.GetVersionFunc](m, sdutils.ExportGetVersion)
}

func (m *Module) AddAttachHandler() (sdutils.AddAttachHandlerFunc, bool) {
	return resolve[sdutils.AddAttachHandlerFunc](m, sdutils.ExportAddAttachHandler)
}

func (m *Module) RemoveAttachHandler() (sdutils.RemoveAttachHandlerFunc, bool) {
	return resolve[sdutils.RemoveAttachHandlerFunc](m, sdutils.ExportRemoveAttachHandler)
}

func (m *Module) AddCleanUpHandlesHandler() (sdutils.AddCleanUpHandlesHandlerFunc, bool) {
	return resolve[sdutils.AddCleanUpHandlesHandlerFunc](m, sdutils.ExportAddCleanUpHandlesHandler)
}

func (m *Module) RemoveCleanUpHandlesHandler() (sdutils.RemoveCleanUpHandlesHandlerFunc, bool) {
	return resolve[sdutils.RemoveCleanUpHandlesHandlerFunc](m, sdutils.ExportRemoveCleanUpHandlesHandler)
}
