package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gradle-digest/internal/config"
	"gradle-digest/internal/digest"
)

type flags struct {
	root      string
	config    string
	output    string
	bundle    string
	buildLog  string
	syncLog   string
	skipBuild bool
	timeout   time.Duration
	color     string
	verbose   bool
	quiet     bool
}

func newRootCmd(stdout, stderr io.Writer, lookup func(string) (string, bool)) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:          "gradle-digest",
		Short:        "Digest an Android/Gradle build into plain-text debugging reports",
		Long:         `gradle-digest runs ./gradlew, extracts build and sync failures with code snippets, and dumps the project's sources and tree into an output directory.`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch f.color {
			case "auto", "on", "off":
			default:
				return fmt.Errorf("invalid --color %q (want auto, on or off)", f.color)
			}
			run(cmd.Context(), f, stdout, stderr, lookup)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.StringVar(&f.root, "root", ".", "project root directory")
	fl.StringVar(&f.config, "config", "", "config file (TOML or YAML); default: gradle-digest.{toml,yaml} in the root")
	fl.StringVarP(&f.output, "output", "o", "", "output directory (default from config: .gradle-digest)")
	fl.StringVar(&f.bundle, "bundle", "", "also write the reports into this ZIP")
	fl.StringVar(&f.buildLog, "build-log", "", "analyse this build log instead of running the build")
	fl.StringVar(&f.syncLog, "sync-log", "", "analyse this sync log instead of running the task listing")
	fl.BoolVar(&f.skipBuild, "skip-build", false, "do not invoke the build tool")
	fl.DurationVar(&f.timeout, "timeout", 0, "abort build invocations after this long (0 = no limit)")
	fl.StringVar(&f.color, "color", "auto", "colorize output (auto|on|off)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging and streamed build output")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "only log warnings and errors")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	return cmd
}

// run executes the digest. Failures are logged, never returned.
func run(ctx context.Context, f *flags, stdout, stderr io.Writer, lookup func(string) (string, bool)) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	logger := newLogger(stderr, f)
	cfg := loadConfig(logger, f, lookup)

	opts := digest.Options{
		Root:      f.root,
		Config:    cfg,
		BuildLog:  f.buildLog,
		SyncLog:   f.syncLog,
		SkipBuild: f.skipBuild,
		Bundle:    f.bundle,
		Logger:    logger,
	}
	if f.verbose {
		opts.Tee = stderr
	}

	sum, err := digest.Run(ctx, opts)
	switch {
	case err == nil:
	case sum == nil:
		// No stage ran: the project root or output directory is unusable.
		logger.Error("digest setup failed", "err", err)
	default:
		logger.Error("digest interrupted", "err", err)
	}
	if sum != nil && !f.quiet {
		printSummary(stdout, sum, useColor(f.color, stdout))
	}
}

func newLogger(w io.Writer, f *flags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig layers defaults, the config file, the environment and flags.
// A broken config file is logged and the defaults are used.
func loadConfig(logger *slog.Logger, f *flags, lookup func(string) (string, bool)) config.Config {
	path := f.config
	if path == "" {
		path = config.Find(f.root)
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("config ignored", "path", path, "err", err)
		cfg = config.Default()
	} else if path != "" {
		logger.Debug("config loaded", "path", path)
	}
	cfg.ApplyEnv(lookup)
	if f.output != "" {
		cfg.OutputDir = f.output
	}
	return cfg
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
