package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/compdocs/internal/config"
	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
	"git.home.luguber.info/inful/compdocs/internal/orchestrator"
	"git.home.luguber.info/inful/compdocs/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"compdocs.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output   string `short:"o" help:"Output directory override"`
		Watch    bool   `short:"w" help:"Watch sources and rebuild incrementally"`
		SkipSite bool   `help:"Skip the final site-layer build/serve step"`
	} `cmd:"" help:"Build the documentation site"`

	Init struct {
		Force bool `help:"Overwrite an existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch kctx.Command() {
	case "build":
		if err := runBuild(logger); err != nil {
			reportFailure(logger, err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			logger.Error("init failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Println("compdocs", version.String())
	default:
		_ = kctx.PrintUsage(false)
		os.Exit(1)
	}
}

func runBuild(logger *slog.Logger) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Build.Output != "" {
		cfg.Output.Dir = CLI.Build.Output
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := orchestrator.New(cfg, logger, orchestrator.Options{
		Watch:    CLI.Build.Watch,
		SkipSite: CLI.Build.SkipSite,
	})
	return orch.Run(ctx)
}

// reportFailure is the single place that decides how a run failure is
// presented: configuration mistakes get a short user-facing message,
// everything else the full diagnostic.
func reportFailure(logger *slog.Logger, err error) {
	if cerrors.IsCategory(err, cerrors.CategoryConfig) {
		msg := err.Error()
		var be *cerrors.BuildError
		if errors.As(err, &be) {
			msg = be.Message
		}
		fmt.Fprintln(os.Stderr, "configuration error:", msg)
		return
	}
	logger.Error("build failed", "error", err)
}
