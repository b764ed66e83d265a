package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().OutputDir, cfg.OutputDir)
	assert.Equal(t, 20, cfg.SnippetRadius)
	assert.True(t, cfg.Absolute())
}

func TestLoadTOMLOverridesRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gradle-digest.toml")
	body := `
output_dir = "out"
extensions = ["KT", "java"]
snippet_radius = 5
absolute_tree = false

[rules]
noise_phrases = ["at com.example."]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, []string{".kt", ".java"}, cfg.Extensions)
	assert.Equal(t, 5, cfg.SnippetRadius)
	assert.False(t, cfg.Absolute())
	assert.Equal(t, []string{"at com.example."}, cfg.Rules.NoisePhrases)
	// untouched lists keep their defaults
	assert.Equal(t, DefaultRules().SyncPrefixes, cfg.Rules.SyncPrefixes)
	assert.Equal(t, "gradlew", cfg.EntryPoint)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gradle-digest.yaml")
	body := "entry_point: tools/gradlew\nbuild_args: [compileDebugKotlin]\nrules:\n  task_header: \"> Step \"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tools/gradlew", cfg.EntryPoint)
	assert.Equal(t, []string{"compileDebugKotlin"}, cfg.BuildArgs)
	assert.Equal(t, "> Step ", cfg.Rules.TaskHeader)
}

func TestLoadUnknownFormat(t *testing.T) {
	_, err := Load("settings.ini")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFindProbesDefaultNames(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Find(dir))
	p := filepath.Join(dir, ".gradle-digest.yaml")
	require.NoError(t, os.WriteFile(p, []byte("output_dir: x\n"), 0o644))
	assert.Equal(t, p, Find(dir))
}

func TestApplyEnvTreeToggle(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		if k == EnvAbsoluteTree {
			return "0", true
		}
		return "", false
	})
	assert.False(t, cfg.Absolute())

	cfg.ApplyEnv(func(string) (string, bool) { return "garbage", true })
	assert.False(t, cfg.Absolute(), "unparseable values are ignored")
}
