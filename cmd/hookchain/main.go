// Package main is the hookchain module harness. It builds a framework
// from a YAML configuration, defines a demonstration runtime, loads
// the configured hooker modules against it, exercises the hooked
// targets, and reports dispatch statistics.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dshills/hookchain"
	"github.com/dshills/hookchain/internal/config"
	"github.com/dshills/hookchain/runtime"
	"github.com/dshills/hookchain/xlog"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "hookchain - method interception harness\n\n")
		fmt.Fprintf(os.Stderr, "Usage: hookchain [options] [module-dirs...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("hookchain %s (%s)\n", version, commit)
		return 0
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	opts := []hookchain.Option{
		hookchain.WithLogSink(xlog.NewSlogSink(logger)),
	}
	if !cfg.Metrics {
		opts = append(opts, hookchain.WithoutMetrics())
	}
	if cfg.PrefsDir != "" {
		opts = append(opts, hookchain.WithPrefsDir(cfg.PrefsDir))
	}
	if cfg.FilesDir != "" {
		opts = append(opts, hookchain.WithFilesDir(cfg.FilesDir))
	}
	fw := hookchain.New(opts...)

	rt := demoRuntime()

	var loaded []*hookchain.LoadedModule
	for _, dir := range append(cfg.Modules, flag.Args()...) {
		lm, err := fw.LoadModule(rt, dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		loaded = append(loaded, lm)
	}
	defer func() {
		for _, lm := range loaded {
			lm.Unload()
		}
	}()

	if err := exercise(rt); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	s := fw.Stats()
	fmt.Printf("dispatches=%d throws=%d skips=%d panics=%d targets=%d avg=%s\n",
		s.Dispatches, s.Throws, s.Skips, s.Panics, s.Targets, s.AverageDuration)
	return 0
}

// demoRuntime defines a small Account class hierarchy for modules to
// hook against.
func demoRuntime() *runtime.Runtime {
	rt := runtime.New()

	account := runtime.NewClass("Account", nil)
	account.MustDefineConstructor(1, 0, func(this *runtime.Object, args []any) error {
		this.Set("owner", args[0])
		this.Set("balance", int64(0))
		return nil
	})
	account.MustDefineMethod("deposit", 1, 0, func(this *runtime.Object, args []any) (any, error) {
		amount, _ := args[0].(int64)
		bal := balanceOf(this)
		this.Set("balance", bal+amount)
		return bal + amount, nil
	})
	account.MustDefineMethod("balance", 0, 0, func(this *runtime.Object, args []any) (any, error) {
		return balanceOf(this), nil
	})
	if _, err := account.DefineInitializer(func(this *runtime.Object, args []any) (any, error) {
		return nil, nil
	}); err != nil {
		panic(err)
	}
	if err := rt.Define(account); err != nil {
		panic(err)
	}

	savings := runtime.NewClass("SavingsAccount", account)
	savings.MustDefineMethod("deposit", 1, 0, func(this *runtime.Object, args []any) (any, error) {
		amount, _ := args[0].(int64)
		bal := balanceOf(this) + amount + amount/10
		this.Set("balance", bal)
		return bal, nil
	})
	if err := rt.Define(savings); err != nil {
		panic(err)
	}

	return rt
}

func balanceOf(o *runtime.Object) int64 {
	v, _ := o.Get("balance")
	bal, _ := v.(int64)
	return bal
}

// exercise drives the demo classes so loaded module hooks fire.
func exercise(rt *runtime.Runtime) error {
	account, _ := rt.Lookup("Account")

	acct, err := account.New("alice")
	if err != nil {
		return err
	}
	for _, amount := range []int64{100, 250, 50} {
		if _, err := acct.Call("deposit", amount); err != nil {
			return err
		}
	}
	bal, err := acct.Call("balance")
	if err != nil {
		return err
	}
	fmt.Printf("account balance: %v\n", bal)
	return nil
}

func slogLevel(name string) slog.Level {
	switch xlog.ParseLevel(name) {
	case xlog.LevelDebug:
		return slog.LevelDebug
	case xlog.LevelWarn:
		return slog.LevelWarn
	case xlog.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
