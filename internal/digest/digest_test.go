package digest

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradle-digest/internal/config"
	"gradle-digest/internal/report"
)

func numbered(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func readOut(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	b, err := util.ReadFile(fs, name)
	require.NoError(t, err)
	return string(b)
}

func writeLog(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestRunWithoutEntryPointWritesSentinels(t *testing.T) {
	root := t.TempDir()
	sum, err := Run(context.Background(), Options{Root: root, Config: config.Default()})
	require.NoError(t, err)
	assert.True(t, sum.BuildSkipped)
	assert.True(t, sum.SyncSkipped)
	assert.Empty(t, sum.Failures)

	out := filepath.Join(root, ".gradle-digest")
	want := map[string]string{
		report.FileContent: "No source files found.\n.\n",
		report.FileErrors:  "No build errors found.\n.\n",
		report.FileSync:    "No sync errors found.\n.\n",
		report.FileTree:    "No source files found.\n.\n",
	}
	for name, body := range want {
		got, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Equal(t, body, string(got), name)
	}
}

func recordedRun(t *testing.T) (Options, billy.Filesystem) {
	t.Helper()
	project := memfs.New()
	require.NoError(t, util.WriteFile(project, "app/src/main/kotlin/Foo.kt", []byte(numbered(100)), 0o644))
	require.NoError(t, util.WriteFile(project, "app/build/generated/Gen.kt", []byte("generated\n"), 0o644))

	logs := t.TempDir()
	cfg := config.Default()
	rel := false
	cfg.AbsoluteTree = &rel
	out := memfs.New()
	return Options{
		Root:      "/work/proj",
		Config:    cfg,
		BuildLog:  writeLog(t, logs, "build.log", "app/src/main/kotlin/Foo.kt:42: error: unresolved reference: bar\napp/src/main/kotlin/Foo.kt:42: error: unresolved reference: bar\n"),
		SyncLog:   writeLog(t, logs, "sync.log", "> Configure project :app\nCould not resolve: com.example:lib:1.0\n"),
		ProjectFS: project,
		OutputFS:  out,
	}, out
}

func TestRunRecordedLogs(t *testing.T) {
	opts, out := recordedRun(t)
	sum, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Sources)
	assert.Equal(t, 1, sum.BuildErrors)
	assert.Equal(t, 1, sum.SyncErrors)
	assert.Empty(t, sum.Failures)

	errs := readOut(t, out, report.FileErrors)
	assert.Equal(t, 1, strings.Count(errs, "Error in: "))
	assert.Contains(t, errs, "Error in: app/src/main/kotlin/Foo.kt\nLine: 42\nMessage: unresolved reference: bar\nCode:\n22: line 22\n")
	assert.Contains(t, errs, "62: line 62\nFull Content:\nline 1\n")
	assert.NotContains(t, errs, "63: line 63")
	assert.True(t, strings.HasSuffix(errs, "line 100\n"+report.Sep+"\n.\n"))

	assert.Equal(t, "Sync Error: Could not resolve: com.example:lib:1.0\n"+report.Sep+"\n.\n", readOut(t, out, report.FileSync))
	assert.Equal(t, "app/src/main/kotlin/Foo.kt\n.\n", readOut(t, out, report.FileTree))
	assert.Equal(t, "app/src/main/kotlin/Foo.kt\n", readOut(t, out, ScratchCandidates))

	content := readOut(t, out, report.FileContent)
	assert.True(t, strings.HasPrefix(content, "=== FILE START ===\nPath: app/src/main/kotlin/Foo.kt\nFile: Foo.kt\nContent:\nline 1\n"))
	assert.NotContains(t, content, "Gen.kt")

	assert.True(t, strings.HasPrefix(readOut(t, out, ScratchErrorsDiff), "--- /dev/null\n"))
	assert.False(t, sum.ErrorsDiff)
}

func TestRunFlagsChangedErrorsOnLaterRun(t *testing.T) {
	opts, out := recordedRun(t)
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	opts.BuildLog = writeLog(t, t.TempDir(), "build.log", "app/src/main/kotlin/Foo.kt:7: error: type mismatch\n")
	sum, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, sum.ErrorsDiff)
	d := readOut(t, out, ScratchErrorsDiff)
	assert.Contains(t, d, "-Message: unresolved reference: bar\n")
	assert.Contains(t, d, "+Message: type mismatch\n")
}

func TestRunIsIdempotent(t *testing.T) {
	opts, out := recordedRun(t)
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	first := make(map[string]string)
	for _, name := range report.Names {
		first[name] = readOut(t, out, name)
	}

	sum, err := Run(context.Background(), opts)
	require.NoError(t, err)
	for _, name := range report.Names {
		assert.Equal(t, first[name], readOut(t, out, name), name)
	}
	assert.False(t, sum.ErrorsDiff)
	assert.Empty(t, readOut(t, out, ScratchErrorsDiff))
}

func TestRunAbsoluteTree(t *testing.T) {
	opts, out := recordedRun(t)
	opts.Config.AbsoluteTree = nil
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	want := filepath.Join("/work/proj", "app", "src", "main", "kotlin", "Foo.kt")
	assert.Equal(t, want+"\n.\n", readOut(t, out, report.FileTree))
}

func TestRunWritesBundle(t *testing.T) {
	opts, _ := recordedRun(t)
	opts.Bundle = filepath.Join(t.TempDir(), "digest.zip")
	sum, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, sum.Failures)

	zr, err := zip.OpenReader(opts.Bundle)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		report.FileErrors,
		report.FileContent,
		report.FileTree,
		report.FileSync,
		"summary.json",
	}, names)
}

func TestRunSkipBuildWithoutLogs(t *testing.T) {
	opts, out := recordedRun(t)
	opts.BuildLog = ""
	opts.SyncLog = ""
	opts.SkipBuild = true
	sum, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, sum.BuildSkipped)
	assert.True(t, sum.SyncSkipped)
	assert.Equal(t, "No build errors found.\n.\n", readOut(t, out, report.FileErrors))
	assert.Equal(t, "No sync errors found.\n.\n", readOut(t, out, report.FileSync))
}
