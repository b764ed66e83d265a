// Package digest runs the four report stages (content, errors, sync, tree)
// over one project and writes their results into the output directory.
//
// Stages run sequentially. A stage that fails internally is logged and
// recorded in the Summary; it never stops the remaining stages. The only
// error Run returns is a cancelled context.
package digest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"gradle-digest/internal/config"
	"gradle-digest/internal/diff"
	"gradle-digest/internal/extract"
	"gradle-digest/internal/meta"
	"gradle-digest/internal/pathres"
	"gradle-digest/internal/report"
	"gradle-digest/internal/runner"
	"gradle-digest/internal/synccheck"
	"gradle-digest/internal/walkwalk"
	"gradle-digest/internal/ziputil"
)

// Scratch file names. They are overwritten on every run and are not part of
// the report contract.
const (
	ScratchCandidates = "candidates.txt"
	ScratchBuildLog   = "build.log"
	ScratchSyncLog    = "sync.log"
	ScratchErrorsDiff = "build_errors.diff"
)

// maxDiffBytes bounds the report diff input.
const maxDiffBytes = 4 << 20

// Options configures a run.
type Options struct {
	// Root is the project root. Relative roots are made absolute.
	Root   string
	Config config.Config

	// BuildLog and SyncLog name existing log files to analyse instead of
	// invoking the entry point.
	BuildLog string
	SyncLog  string

	// SkipBuild disables both entry point invocations. Without a log file
	// the corresponding stage reports its sentinel.
	SkipBuild bool

	// Bundle, when set, is the path of a ZIP receiving the four reports.
	Bundle string

	// Tee streams build output while it runs. Nil disables streaming.
	Tee io.Writer

	Logger *slog.Logger

	// ProjectFS and OutputFS override the on-disk filesystems (tests).
	ProjectFS billy.Filesystem
	OutputFS  billy.Filesystem
}

// Summary reports what a run produced.
type Summary struct {
	Project      meta.Info `json:"project"`
	OutputDir    string    `json:"output_dir"`
	Sources      int       `json:"sources"`
	BuildErrors  int       `json:"build_errors"`
	SyncErrors   int       `json:"sync_errors"`
	BuildSkipped bool      `json:"build_skipped"`
	SyncSkipped  bool      `json:"sync_skipped"`
	ErrorsDiff   bool      `json:"errors_changed"`
	Failures     []string  `json:"failures,omitempty"`
}

// pipeline carries the shared state of one run.
type pipeline struct {
	opts    Options
	cfg     config.Config
	root    string
	project billy.Filesystem
	store   *report.Store
	log     *slog.Logger
	sum     *Summary

	sources []walkwalk.FileInfo
}

// Run executes every stage in order.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	p, err := newPipeline(opts)
	if err != nil {
		return nil, err
	}
	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"content", p.content},
		{"errors", p.buildErrors},
		{"sync", p.syncErrors},
		{"tree", p.tree},
	}
	for _, st := range stages {
		p.log.Debug("stage start", "stage", st.name)
		if err := st.run(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return p.sum, fmt.Errorf("stage %s: %w", st.name, ctxErr)
			}
			p.fail(st.name, err)
		}
	}
	if opts.Bundle != "" {
		if err := p.bundle(opts.Bundle); err != nil {
			p.fail("bundle", err)
		}
	}
	return p.sum, nil
}

func newPipeline(opts Options) (*pipeline, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	cfg := opts.Config
	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = config.Default().OutputDir
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(abs, outDir)
	}

	project := opts.ProjectFS
	if project == nil {
		project = osfs.New(abs)
	}
	out := opts.OutputFS
	if out == nil {
		out = osfs.New(outDir)
	}
	if err := out.MkdirAll(".", 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &pipeline{
		opts:    opts,
		cfg:     cfg,
		root:    abs,
		project: project,
		store:   report.NewStore(out),
		log:     logger,
		sum:     &Summary{OutputDir: outDir},
	}, nil
}

func (p *pipeline) fail(stage string, err error) {
	p.log.Error("stage failed", "stage", stage, "err", err)
	p.sum.Failures = append(p.sum.Failures, stage+": "+err.Error())
}

// content collects the project's sources and dumps them.
func (p *pipeline) content(context.Context) error {
	p.sum.Project = meta.Detect(p.project)
	targets := pathres.TargetDirs(p.project, p.sum.Project.Package())
	p.log.Debug("target directories", "package", p.sum.Project.Package(), "dirs", targets)

	files, err := walkwalk.CollectSources(p.project, targets, p.cfg.ExtSet(), p.cfg.ExcludeSet())
	if err != nil {
		// An empty dump still gets written below.
		p.fail("collect", err)
	}
	p.sources = files
	p.sum.Sources = len(files)

	paths := walkwalk.Paths(files)
	if err := p.store.WriteString(ScratchCandidates, lines(paths)); err != nil {
		p.log.Warn("scratch write failed", "file", ScratchCandidates, "err", err)
	}

	entries := make([]report.ContentFile, 0, len(files))
	for _, f := range files {
		b, err := p.readProject(f.RelPath)
		if err != nil {
			p.log.Debug("unreadable source", "path", f.RelPath, "err", err)
		}
		entries = append(entries, report.ContentFile{Path: f.RelPath, Content: string(b)})
	}
	p.log.Info("content", "stage", "content", "files", len(entries))
	return p.store.WriteString(report.FileContent, report.Content(entries))
}

// buildErrors obtains the build log, extracts records and writes the report
// together with a diff against the previous one.
func (p *pipeline) buildErrors(ctx context.Context) error {
	log, skipped, err := p.obtainLog(ctx, p.opts.BuildLog, p.cfg.BuildArgs)
	if err != nil {
		return err
	}
	p.sum.BuildSkipped = skipped
	if err := p.store.WriteString(ScratchBuildLog, log); err != nil {
		p.log.Warn("scratch write failed", "file", ScratchBuildLog, "err", err)
	}

	src := extract.BillySource{FS: p.project, Exclude: p.cfg.ExcludeSet()}
	recs := extract.Extract(log, src, extract.OptionsFrom(p.root, p.cfg))
	if !extract.IsClean(recs) {
		p.sum.BuildErrors = len(recs)
	}
	body := report.Errors(recs)

	prev, err := p.store.Read(report.FileErrors)
	if err != nil {
		p.log.Debug("previous error report unreadable", "err", err)
	}
	if err := p.store.WriteString(report.FileErrors, body); err != nil {
		return err
	}
	d := diff.Reports(report.FileErrors, prev, []byte(body), diff.Options{MaxBytes: maxDiffBytes})
	// A first run diffs against nothing; that is not a change.
	p.sum.ErrorsDiff = prev != nil && d != ""
	if err := p.store.WriteString(ScratchErrorsDiff, d); err != nil {
		p.log.Warn("scratch write failed", "file", ScratchErrorsDiff, "err", err)
	}
	p.log.Info("errors", "stage", "errors", "records", p.sum.BuildErrors, "skipped", skipped)
	return nil
}

// syncErrors runs the configuration-only invocation and writes the sync report.
func (p *pipeline) syncErrors(ctx context.Context) error {
	prefixes := p.cfg.Rules.SyncPrefixes
	var res *synccheck.Result
	switch {
	case p.opts.SyncLog != "":
		log, err := readLog(p.opts.SyncLog)
		if err != nil {
			p.log.Warn("sync log unreadable", "path", p.opts.SyncLog, "err", err)
		}
		res = &synccheck.Result{Errors: synccheck.Scan(log, prefixes), Log: log}
	case p.opts.SkipBuild:
		res = &synccheck.Result{Skipped: true}
	default:
		r := runner.New(p.root, p.cfg.EntryPoint)
		var err error
		res, err = synccheck.Check(ctx, r, p.cfg.SyncArgs, prefixes, p.runOpts()...)
		if err != nil {
			return err
		}
	}
	p.sum.SyncSkipped = res.Skipped
	p.sum.SyncErrors = len(res.Errors)
	if err := p.store.WriteString(ScratchSyncLog, res.Log); err != nil {
		p.log.Warn("scratch write failed", "file", ScratchSyncLog, "err", err)
	}
	p.log.Info("sync", "stage", "sync", "errors", len(res.Errors), "skipped", res.Skipped)
	return p.store.WriteString(report.FileSync, report.Sync(res.Errors))
}

// tree writes the collected source paths, absolute unless configured
// otherwise.
func (p *pipeline) tree(context.Context) error {
	paths := walkwalk.Paths(p.sources)
	if p.cfg.Absolute() {
		for i, rel := range paths {
			paths[i] = filepath.Join(p.root, filepath.FromSlash(rel))
		}
	}
	p.log.Info("tree", "stage", "tree", "paths", len(paths), "absolute", p.cfg.Absolute())
	return p.store.WriteString(report.FileTree, report.Tree(paths))
}

// obtainLog returns the build log from a file, from the entry point, or
// empty when the build is skipped.
func (p *pipeline) obtainLog(ctx context.Context, file string, args []string) (string, bool, error) {
	if file != "" {
		log, err := readLog(file)
		if err != nil {
			p.log.Warn("build log unreadable", "path", file, "err", err)
		}
		return log, false, nil
	}
	if p.opts.SkipBuild {
		return "", true, nil
	}
	r := runner.New(p.root, p.cfg.EntryPoint)
	opts := append([]runner.Option{runner.WithArgs(args...)}, p.runOpts()...)
	res, err := r.Run(ctx, opts...)
	if err != nil {
		return "", false, err
	}
	if res.Skipped {
		p.log.Info("entry point not available, build skipped", "entry_point", r.Path())
		return "", true, nil
	}
	p.log.Debug("build finished", "exit_code", res.ExitCode, "bytes", len(res.Log))
	return res.Log, false, nil
}

func (p *pipeline) runOpts() []runner.Option {
	if p.opts.Tee == nil {
		return nil
	}
	return []runner.Option{runner.WithTee(p.opts.Tee)}
}

func (p *pipeline) readProject(rel string) ([]byte, error) {
	return util.ReadFile(p.project, rel)
}

// bundle zips the four reports and the run summary into dest.
func (p *pipeline) bundle(dest string) error {
	entries := make([]ziputil.Entry, 0, len(report.Names))
	for _, name := range report.Names {
		b, err := p.store.Read(name)
		if err != nil {
			return err
		}
		if b == nil {
			continue
		}
		entries = append(entries, ziputil.Entry{Name: name, Data: b})
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(p.root, dest)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating bundle: %w", err)
	}
	if err := ziputil.Bundle(f, entries, p.sum); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing bundle: %w", err)
	}
	p.log.Info("bundle written", "path", dest, "entries", len(entries))
	return nil
}

// readLog loads a recorded log. A missing file reads as an empty log.
func readLog(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), nil
}

func lines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}
