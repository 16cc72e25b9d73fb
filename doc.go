/*
Package sdutils binds to the sd card hot swap module and exposes its attach and clean up notifications,
plus a mount state query.

# Binding

The module named [ModuleName] is acquired through a [Loader] and its exports are resolved into typed functions
by a [Provider]. Only [ExportGetVersion] is mandatory, the handler registration exports appeared with module
version 1 and are optional:

 1. A missing module or version query fails [Library.Initialize] with [ModuleNotFound] or [ModuleMissingExport].
 2. A missing handler export, or a module older than [VersionCallbacks], makes the matching operation return
    [UnsupportedCommand].
 3. Handler operations called before a successful Initialize return [LibUninitialized].

Concrete loaders live in sub packages:

  - dynload loads the module from a go object file with [goloader].
  - hotswap implements the module in process, also used as test double.

# Notes

 1. Initialize must complete before other goroutines use the Library.
 2. Handlers are invoked by the module, on its own goroutines. On ejection clean up handlers run before attach handlers.
 3. The module is never released, Deinitialize is a no-op.

# Sample

	r := fn.Panic1(dynload.NewRegistry())
	fn.Panic(r.LoadFile(sdutils.ModuleName, "homebrew_sdhotswap.o", sdutils.ModuleName))
	sdutils.SetDefaultLoader(r)
	if st := sdutils.InitLibrary(); st != sdutils.Success {
		log.Fatal(st)
	}
	sdutils.AddAttachHandler(func(s sdutils.AttachStatus) { log.Println("sd card", s) })

[goloader]: https://github.com/pkujhd/goloader
*/
package sdutils
