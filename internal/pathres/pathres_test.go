package pathres

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	root := "/work/proj"
	cases := map[string]string{
		"./app/src/main/kotlin/Foo.kt":                 "app/src/main/kotlin/Foo.kt",
		"app/src/main/kotlin/Foo.kt":                   "app/src/main/kotlin/Foo.kt",
		"/work/proj/app/src/main/kotlin/Foo.kt":        "app/src/main/kotlin/Foo.kt",
		"file:///work/proj/app/src/main/kotlin/Foo.kt": "app/src/main/kotlin/Foo.kt",
		"///work/proj/app/Foo.kt":                      "app/Foo.kt",
		"/home/u/.gradle/caches/Lib.kt":                "/home/u/.gradle/caches/Lib.kt",
		"./../elsewhere/Foo.kt":                        "../elsewhere/Foo.kt",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(root, in), "input %q", in)
	}
}

func TestInProject(t *testing.T) {
	assert.True(t, InProject("app/Foo.kt"))
	assert.False(t, InProject("/abs/Foo.kt"))
	assert.False(t, InProject("../Foo.kt"))
	assert.False(t, InProject("app/../../Foo.kt"))
	assert.False(t, InProject(""))
}

func TestExists(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "app/Foo.kt", []byte("x"), 0o644))
	assert.True(t, Exists(fs, "app/Foo.kt"))
	assert.False(t, Exists(fs, "app"), "directories are not files")
	assert.False(t, Exists(fs, "app/Bar.kt"))
	assert.False(t, Exists(fs, "../app/Foo.kt"))
}

func TestTargetDirsPrefersPackagePath(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("app/src/main/kotlin/com/example/app", 0o755))
	require.NoError(t, fs.MkdirAll("app/src/main/java", 0o755))

	got := TargetDirs(fs, "com.example.app")
	assert.Equal(t, []string{"app/src/main/kotlin/com/example/app"}, got)
}

func TestTargetDirsFallsBackWithoutMerging(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("app/src/main/java", 0o755))
	require.NoError(t, fs.MkdirAll("app/src/main/kotlin", 0o755))

	got := TargetDirs(fs, "com.missing")
	assert.Equal(t, []string{"app/src/main/java", "app/src/main/kotlin"}, got)

	fs2 := memfs.New()
	require.NoError(t, fs2.MkdirAll("app/src/test", 0o755))
	assert.Equal(t, []string{"app/src"}, TargetDirs(fs2, ""))

	assert.Nil(t, TargetDirs(memfs.New(), ""))
}
