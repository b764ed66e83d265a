// Package runner invokes the project's build tool entry point (normally
// ./gradlew) and captures its combined output. A failing build is data, not
// a fault: Run reports the exit code and the log and only returns an error
// when the caller's context is cancelled.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoEntryPoint marks a result where no executable entry point existed.
var ErrNoEntryPoint = errors.New("runner: build entry point missing or not executable")

// Result holds the captured output of one invocation.
type Result struct {
	Log      string // combined stdout+stderr
	ExitCode int    // -1 when the process could not be started
	Skipped  bool   // entry point absent; nothing was run
	Err      error  // process error (exit status, start failure); informational
}

// Options configures an invocation.
type Options struct {
	Args []string
	Env  map[string]string

	// Tee receives the combined output as it is produced (e.g. os.Stderr
	// in verbose mode). Nil disables streaming.
	Tee io.Writer
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithArgs sets the build tool arguments.
func WithArgs(args ...string) Option {
	return func(o *Options) { o.Args = append([]string(nil), args...) }
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// WithTee streams output to w in addition to capturing it.
func WithTee(w io.Writer) Option {
	return func(o *Options) { o.Tee = w }
}

// Runner runs an entry point located in a project root.
type Runner struct {
	root       string
	entryPoint string
}

// New returns a Runner for root/entryPoint.
func New(root, entryPoint string) *Runner {
	return &Runner{root: root, entryPoint: entryPoint}
}

// Path returns the absolute entry point path.
func (r *Runner) Path() string {
	p := filepath.Join(r.root, filepath.FromSlash(r.entryPoint))
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Available reports whether the entry point exists, is a regular file and
// carries an executable bit.
func (r *Runner) Available() bool {
	st, err := os.Stat(r.Path())
	if err != nil || !st.Mode().IsRegular() {
		return false
	}
	return st.Mode().Perm()&0o111 != 0
}

// Run invokes the entry point. When it is unavailable the result is
// Skipped with Err = ErrNoEntryPoint and nothing is executed. A non-zero
// exit or a start failure is recorded in the result; the start failure is
// also appended to Log so downstream extraction sees it. The returned error
// is non-nil only when ctx was cancelled.
func (r *Runner) Run(ctx context.Context, opts ...Option) (*Result, error) {
	if !r.Available() {
		return &Result{Skipped: true, ExitCode: -1, Err: ErrNoEntryPoint}, nil
	}
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	cmd := exec.CommandContext(ctx, r.Path(), options.Args...)
	cmd.Dir = r.root
	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var combined bytes.Buffer
	var w io.Writer = &combined
	if options.Tee != nil {
		w = io.MultiWriter(&combined, options.Tee)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	res := &Result{Log: combined.String(), Err: err}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
		res.Log = appendLine(res.Log, fmt.Sprintf("could not start %s: %v", r.entryPoint, err))
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("running %s: %w", r.entryPoint, ctxErr)
	}
	return res, nil
}

func appendLine(log, line string) string {
	if log != "" && !strings.HasSuffix(log, "\n") {
		log += "\n"
	}
	return log + line + "\n"
}
