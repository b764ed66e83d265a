package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func writeScript(t *testing.T, dir, body string, mode os.FileMode) {
	t.Helper()
	p := filepath.Join(dir, "gradlew")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), mode))
}

func TestRunSkipsWhenEntryPointMissing(t *testing.T) {
	r := New(t.TempDir(), "gradlew")
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.ErrorIs(t, res.Err, ErrNoEntryPoint)
	assert.Empty(t, res.Log)
}

func TestRunSkipsWhenNotExecutable(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "echo hi\n", 0o644)
	res, err := New(dir, "gradlew").Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
}

func TestRunCapturesCombinedOutputAndIgnoresFailure(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	writeScript(t, dir, "echo \"args: $*\"\necho 'FAILURE: Build failed' >&2\nexit 3\n", 0o755)

	var tee bytes.Buffer
	res, err := New(dir, "gradlew").Run(context.Background(),
		WithArgs("assembleDebug", "--console=plain"), WithTee(&tee))
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Log, "args: assembleDebug --console=plain")
	assert.Contains(t, res.Log, "FAILURE: Build failed")
	assert.Equal(t, res.Log, tee.String())
}

func TestRunPassesEnvAndWorkingDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	writeScript(t, dir, "echo \"$DIGEST_PROBE\"\npwd\n", 0o755)

	res, err := New(dir, "gradlew").Run(context.Background(), WithEnvVar("DIGEST_PROBE", "xyz"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	lines := strings.Split(strings.TrimSpace(res.Log), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "xyz", lines[0])
	wantDir, _ := filepath.EvalSymlinks(dir)
	gotDir, _ := filepath.EvalSymlinks(lines[1])
	assert.Equal(t, wantDir, gotDir)
}

func TestRunStartFailureBecomesLogLine(t *testing.T) {
	dir := t.TempDir()
	// Executable bit set but not a valid program.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gradlew"), []byte{0x00, 0x01, 0x02}, 0o755))
	res, err := New(dir, "gradlew").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, res.Log, "could not start gradlew")
}
