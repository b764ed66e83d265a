// Package config holds the settings of a digest run: where reports go, how
// Gradle is invoked, which files count as sources, and the curated phrase
// lists the extractor matches log lines against.
//
// Defaults live in Go (Default). A project may override any field with a
// TOML or YAML file at its root; flags override the file, and the tree
// toggle can also be set from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvAbsoluteTree toggles absolute paths in the source tree report.
const EnvAbsoluteTree = "GRADLE_DIGEST_ABSOLUTE_TREE"

// ErrUnknownFormat is returned for config files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("config: unknown file format")

// DefaultFileNames are probed in order at the project root when no explicit
// config path is given.
var DefaultFileNames = []string{
	"gradle-digest.toml",
	".gradle-digest.toml",
	"gradle-digest.yaml",
	".gradle-digest.yaml",
}

// Config is the full run configuration.
type Config struct {
	// OutputDir receives the four reports and the scratch files.
	OutputDir string `toml:"output_dir" yaml:"output_dir"`

	// EntryPoint is the build tool launcher relative to the project root.
	EntryPoint string `toml:"entry_point" yaml:"entry_point"`

	BuildArgs []string `toml:"build_args" yaml:"build_args"`
	SyncArgs  []string `toml:"sync_args" yaml:"sync_args"`

	// Extensions is the source allow-list, lower-case with the leading dot.
	Extensions []string `toml:"extensions" yaml:"extensions"`

	// Exclude lists directory base names skipped while walking.
	Exclude []string `toml:"exclude" yaml:"exclude"`

	SnippetRadius     int `toml:"snippet_radius" yaml:"snippet_radius"`
	ManifestHeadLines int `toml:"manifest_head_lines" yaml:"manifest_head_lines"`
	FallbackMaxLines  int `toml:"fallback_max_lines" yaml:"fallback_max_lines"`

	// AbsoluteTree is a pointer so an unset file value keeps the default.
	AbsoluteTree *bool `toml:"absolute_tree" yaml:"absolute_tree"`

	Rules Rules `toml:"rules" yaml:"rules"`
}

// Rules are the empirically tuned phrase lists. All matching is
// case-insensitive unless stated otherwise.
type Rules struct {
	// Indicators are substrings whose presence means the build failed.
	Indicators []string `toml:"indicators" yaml:"indicators"`

	// ErrorPrefixes are compiler line prefixes ("e: ", "error: ").
	ErrorPrefixes []string `toml:"error_prefixes" yaml:"error_prefixes"`

	// TaskHeader starts a log segment (case-sensitive, at line start).
	TaskHeader string `toml:"task_header" yaml:"task_header"`

	RealErrorPhrases []string `toml:"real_error_phrases" yaml:"real_error_phrases"`
	NoisePhrases     []string `toml:"noise_phrases" yaml:"noise_phrases"`
	FallbackMarkers  []string `toml:"fallback_markers" yaml:"fallback_markers"`
	ManifestMarkers  []string `toml:"manifest_markers" yaml:"manifest_markers"`

	// SyncPrefixes select configuration-time failures in the sync log
	// (case-sensitive, after trimming whitespace and a leading '>').
	SyncPrefixes []string `toml:"sync_prefixes" yaml:"sync_prefixes"`
}

// Default returns the built-in configuration.
func Default() Config {
	abs := true
	return Config{
		OutputDir:         ".gradle-digest",
		EntryPoint:        "gradlew",
		BuildArgs:         []string{"assembleDebug", "--console=plain", "--stacktrace"},
		SyncArgs:          []string{"tasks", "--all", "--console=plain"},
		Extensions:        []string{".kt", ".java", ".xml", ".gradle", ".kts"},
		Exclude:           []string{"build", ".gradle", ".git", ".idea", "node_modules", ".gradle-digest"},
		SnippetRadius:     20,
		ManifestHeadLines: 120,
		FallbackMaxLines:  80,
		AbsoluteTree:      &abs,
		Rules:             DefaultRules(),
	}
}

// DefaultRules returns the phrase lists tuned against Gradle/AGP/kotlinc output.
func DefaultRules() Rules {
	return Rules{
		Indicators: []string{
			"failure:",
			"build failed",
			"error:",
			"could not",
			"execution failed",
			"exception",
		},
		ErrorPrefixes: []string{"e: ", "error: "},
		TaskHeader:    "> Task ",
		RealErrorPhrases: []string{
			"error:",
			"e: ",
			"failed",
			"exception",
			"could not",
			"cannot",
			"unresolved",
			"not found",
			"duplicate",
			"conflict",
			"manifest merger",
			"what went wrong",
		},
		NoisePhrases: []string{
			"at org.gradle.",
			"at java.base/",
			"at java.lang.",
			"at jdk.internal.",
			"at sun.",
			"at kotlin.",
			"at groovy.",
			"at org.jetbrains.",
			"at com.android.build.",
			"at com.google.common.",
			"caused by: org.gradle.",
			"> run with --",
			"> get more help",
			"build failed in",
		},
		FallbackMarkers: []string{
			"what went wrong",
			"failure",
			"error",
			"exception",
			"could not",
			"failed",
		},
		ManifestMarkers: []string{"<activity", "<application", "<uses-permission", "<manifest"},
		SyncPrefixes: []string{
			"Could not resolve",
			"Could not find",
			"Could not get unknown property",
			"Could not apply",
			"Could not determine the dependencies",
			"Failed to resolve",
			"Unable to resolve",
			"Plugin [id:",
			"A problem occurred configuring",
			"A problem occurred evaluating",
		},
	}
}

// Absolute reports whether the tree report uses absolute paths.
func (c *Config) Absolute() bool {
	if c.AbsoluteTree == nil {
		return true
	}
	return *c.AbsoluteTree
}

// Find returns the first default config file present in root, or "".
func Find(root string) string {
	for _, name := range DefaultFileNames {
		p := filepath.Join(root, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads path (TOML or YAML by extension) over the defaults. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	var fileCfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &fileCfg); err != nil {
			return cfg, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &fileCfg); err != nil {
			return cfg, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	cfg.merge(fileCfg)
	return cfg, nil
}

// ApplyEnv applies environment overrides using lookup (os.LookupEnv in
// production). Unparseable values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	v, ok := lookup(EnvAbsoluteTree)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return
	}
	c.AbsoluteTree = &b
}

// merge copies every non-zero field of o into c.
func (c *Config) merge(o Config) {
	c.OutputDir = orDefault(o.OutputDir, c.OutputDir)
	c.EntryPoint = orDefault(o.EntryPoint, c.EntryPoint)
	c.BuildArgs = orDefaultList(o.BuildArgs, c.BuildArgs)
	c.SyncArgs = orDefaultList(o.SyncArgs, c.SyncArgs)
	c.Extensions = normalizeExts(orDefaultList(o.Extensions, c.Extensions))
	c.Exclude = orDefaultList(o.Exclude, c.Exclude)
	if o.SnippetRadius > 0 {
		c.SnippetRadius = o.SnippetRadius
	}
	if o.ManifestHeadLines > 0 {
		c.ManifestHeadLines = o.ManifestHeadLines
	}
	if o.FallbackMaxLines > 0 {
		c.FallbackMaxLines = o.FallbackMaxLines
	}
	if o.AbsoluteTree != nil {
		c.AbsoluteTree = o.AbsoluteTree
	}

	r := &c.Rules
	r.Indicators = orDefaultList(o.Rules.Indicators, r.Indicators)
	r.ErrorPrefixes = orDefaultList(o.Rules.ErrorPrefixes, r.ErrorPrefixes)
	r.TaskHeader = orDefault(o.Rules.TaskHeader, r.TaskHeader)
	r.RealErrorPhrases = orDefaultList(o.Rules.RealErrorPhrases, r.RealErrorPhrases)
	r.NoisePhrases = orDefaultList(o.Rules.NoisePhrases, r.NoisePhrases)
	r.FallbackMarkers = orDefaultList(o.Rules.FallbackMarkers, r.FallbackMarkers)
	r.ManifestMarkers = orDefaultList(o.Rules.ManifestMarkers, r.ManifestMarkers)
	r.SyncPrefixes = orDefaultList(o.Rules.SyncPrefixes, r.SyncPrefixes)
}

// ExtSet returns the extension allow-list as a set.
func (c *Config) ExtSet() map[string]struct{} {
	m := make(map[string]struct{}, len(c.Extensions))
	for _, e := range normalizeExts(c.Extensions) {
		m[e] = struct{}{}
	}
	return m
}

// ExcludeSet returns the excluded directory names as a set.
func (c *Config) ExcludeSet() map[string]struct{} {
	m := make(map[string]struct{}, len(c.Exclude))
	for _, e := range c.Exclude {
		if e = strings.TrimSpace(e); e != "" {
			m[e] = struct{}{}
		}
	}
	return m
}

// normalizeExts lower-cases extensions and adds a missing leading dot.
func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

func orDefault(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}

func orDefaultList(val, fallback []string) []string {
	if len(val) == 0 {
		return fallback
	}
	return val
}
