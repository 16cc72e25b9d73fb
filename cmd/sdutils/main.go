package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"

	"github.com/ZenLiuCN/sdutils"
	"github.com/ZenLiuCN/sdutils/config"
	"github.com/ZenLiuCN/sdutils/dynload"
	"github.com/ZenLiuCN/sdutils/hotswap"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "sdutils"
	app.Usage = "sd card hot swap module tool"
	app.Description = "query the sd card hot swap module, watch sd card events and compile module object files"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file, yaml or toml"},
		&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "sd card mount path"},
	}
	app.Commands = []*cli.Command{
		{Name: "mounted", Action: mounted, Usage: "check if the sd card is mounted"},
		{Name: "version", Action: version, Usage: "display the hot swap module version"},
		{Name: "exports",
			Action: exports,
			Usage:  "display which hot swap capabilities are usable",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "dump", Usage: "dump the configuration"},
			},
		},
		{Name: "watch", Action: watch, Usage: "report sd card attach and eject events of the mount path"},
		{Name: "compile",
			Action:    compile,
			Usage:     "compile go sources into a hot swap module object file",
			ArgsUsage: "sources...",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "pkg", Value: sdutils.ModuleName, Usage: "package path of the module"},
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "object file"},
			},
		},
		{Name: "prepare", Action: prepare, Usage: "copy internals of go sdk"},
		{Name: "clean", Action: clean, Usage: "remove copied internals of go sdk"},
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("failure %s", err)
	}
}

func load(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.Logging.Debug = cfg.Logging.Debug || ctx.Bool("debug")
	if ctx.IsSet("path") {
		cfg.Mount.Path = ctx.String("path")
	}
	return cfg, nil
}

// library binds a Library to the configured module source, the in process module is returned for memory sources.
func library(cfg *config.Config) (*sdutils.Library, *hotswap.Module, error) {
	opts := []sdutils.Option{
		sdutils.WithModuleName(cfg.Module.Name),
		sdutils.WithMountPath(cfg.Mount.Path),
		sdutils.WithDebug(cfg.Logging.Debug),
	}
	if cfg.Module.Source == "object" {
		r, err := dynload.NewRegistry(cfg.Logging.Debug)
		if err != nil {
			return nil, nil, err
		}
		if err = r.LoadFile(cfg.Module.Name, cfg.Module.Object, cfg.Module.Package); err != nil {
			return nil, nil, err
		}
		return sdutils.New(r, opts...), nil, nil
	}
	m := hotswap.New(cfg.HotSwap.Options()...)
	return sdutils.New(hotswap.NewLoader().Register(cfg.Module.Name, m), opts...), m, nil
}

func mounted(ctx *cli.Context) error {
	cfg, err := load(ctx)
	if err != nil {
		return err
	}
	lib, _, err := library(cfg)
	if err != nil {
		return err
	}
	var ok bool
	if err = lib.IsSdCardMounted(&ok).Err(); err != nil {
		return err
	}
	if ok {
		fmt.Printf("%s: mounted\n", cfg.Mount.Path)
	} else {
		fmt.Printf("%s: not mounted\n", cfg.Mount.Path)
	}
	return nil
}

func version(ctx *cli.Context) error {
	cfg, err := load(ctx)
	if err != nil {
		return err
	}
	lib, _, err := library(cfg)
	if err != nil {
		return err
	}
	var v sdutils.Version
	if err = lib.GetVersion(&v).Err(); err != nil {
		return err
	}
	fmt.Printf("%s: version %d\n", cfg.Module.Name, v)
	return nil
}

func exports(ctx *cli.Context) error {
	cfg, err := load(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool("dump") {
		spew.Dump(cfg)
	}
	lib, _, err := library(cfg)
	if err != nil {
		return err
	}
	if err = lib.Initialize().Err(); err != nil {
		return err
	}
	v, _ := lib.Version()
	fmt.Printf("%s: version %d\n", cfg.Module.Name, v)
	for _, e := range sdutils.Exports {
		fmt.Printf("\t%-36s %v\n", e, lib.Supports(e))
	}
	return nil
}

func watch(ctx *cli.Context) error {
	cfg, err := load(ctx)
	if err != nil {
		return err
	}
	if cfg.Module.Source != "memory" {
		return fmt.Errorf("watch drives the in process module, module source is %s", cfg.Module.Source)
	}
	lib, m, err := library(cfg)
	if err != nil {
		return err
	}
	if err = lib.Initialize().Err(); err != nil {
		return err
	}
	if err = lib.AddCleanUpHandlesHandler(func() {
		log.Printf("%s: closing handles", cfg.Mount.Path)
	}).Err(); err != nil {
		return err
	}
	if err = lib.AddAttachHandler(func(s sdutils.AttachStatus) {
		log.Printf("%s: %s", cfg.Mount.Path, s)
	}).Err(); err != nil {
		return err
	}
	w, err := hotswap.NewWatcher(m, lib, cfg.Mount.Path, cfg.Logging.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	log.Printf("watching %s, mounted: %v", cfg.Mount.Path, w.Mounted())
	if err = w.Run(ctx.Context); errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func compile(ctx *cli.Context) error {
	d := ctx.Bool("debug")
	src := ctx.Args().Slice()
	if len(src) == 0 {
		return fmt.Errorf("missing target sources list")
	}
	if _, err := exec.LookPath("go"); err != nil {
		return fmt.Errorf("missing go sdk: %w", err)
	}
	if err := dynload.Imports(d, src); err != nil {
		return err
	}
	pkg, out := ctx.String("pkg"), ctx.String("out")
	if out == "" {
		out = pkg + ".o"
	}
	if err := dynload.Compile(d, pkg, out, src); err != nil {
		return err
	}
	missing, err := dynload.MissingExports(out, pkg)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		log.Printf("%s does not export %v", out, missing)
	}
	return nil
}

func clean(ctx *cli.Context) error {
	goroot, err := dynload.GoRoot()
	if err != nil {
		return err
	}
	removed, err := dynload.CleanSdk(afero.NewOsFs(), goroot)
	if err == nil && ctx.Bool("debug") {
		log.Printf("clean go sdk %s, removed: %v", goroot, removed)
	}
	return err
}

func prepare(ctx *cli.Context) error {
	goroot, err := dynload.GoRoot()
	if err != nil {
		return err
	}
	copied, err := dynload.PrepareSdk(afero.NewOsFs(), goroot)
	if err == nil && ctx.Bool("debug") {
		log.Printf("prepare go sdk %s, copied: %v", goroot, copied)
	}
	return err
}
