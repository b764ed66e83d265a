// Package synccheck runs the configuration-only Gradle invocation and picks
// out dependency resolution and project configuration failures.
package synccheck

import (
	"context"
	"strings"

	"gradle-digest/internal/runner"
	"gradle-digest/internal/sortutil"
	"gradle-digest/internal/textutil"
)

// Result is the outcome of one sync check.
type Result struct {
	Errors  []string // distinct failure lines in log order
	Log     string   // raw sync log; empty when skipped
	Skipped bool     // no entry point, nothing was run
}

// Clean reports whether the check found nothing to report.
func (r *Result) Clean() bool { return r == nil || len(r.Errors) == 0 }

// Check invokes the entry point with args and scans its output. The only
// error returned is a cancelled context.
func Check(ctx context.Context, r *runner.Runner, args, prefixes []string, opts ...runner.Option) (*Result, error) {
	opts = append([]runner.Option{runner.WithArgs(args...)}, opts...)
	res, err := r.Run(ctx, opts...)
	if err != nil {
		return &Result{Log: res.Log}, err
	}
	if res.Skipped {
		return &Result{Skipped: true}, nil
	}
	return &Result{Errors: Scan(res.Log, prefixes), Log: res.Log}, nil
}

// Scan returns the lines of log that, after trimming whitespace and one
// leading '>', start with any of prefixes (case-sensitive). Identical lines
// are reported once.
func Scan(log string, prefixes []string) []string {
	var hits []string
	for _, ln := range textutil.SplitLines(string(textutil.NormalizeUTF8LF([]byte(log)))) {
		s := strings.TrimSpace(ln)
		s = strings.TrimSpace(strings.TrimPrefix(s, ">"))
		if s == "" {
			continue
		}
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(s, p) {
				hits = append(hits, s)
				break
			}
		}
	}
	return sortutil.UniqueInOrder(hits)
}
