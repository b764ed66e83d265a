package walkwalk

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, s := range items {
		m[s] = struct{}{}
	}
	return m
}

func writeAll(t *testing.T, fs billy.Filesystem, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, util.WriteFile(fs, p, []byte("// "+p+"\n"), 0o644))
	}
}

func TestCollectFilesFiltersSortsAndDedups(t *testing.T) {
	fs := memfs.New()
	writeAll(t, fs,
		"app/src/main/kotlin/b/Z.kt",
		"app/src/main/kotlin/a/Y.KT",
		"app/src/main/kotlin/a/notes.txt",
		"app/src/main/kotlin/build/Gen.kt",
		"app/src/main/res/layout/main.xml",
	)

	files, err := CollectFiles(fs,
		[]string{"app/src/main/kotlin", "app/src/main/kotlin", "app/src/main/missing"},
		set(".kt"), set("build"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"app/src/main/kotlin/a/Y.KT",
		"app/src/main/kotlin/b/Z.kt",
	}, Paths(files))
	assert.Equal(t, ".kt", files[0].Ext)
	assert.Equal(t, "Y.KT", files[0].Base())
}

func TestCollectSourcesFallsBackToSrcSegment(t *testing.T) {
	fs := memfs.New()
	writeAll(t, fs,
		"feature/login/src/main/java/Login.java",
		"buildSrc/Deps.kt",
		"lib/src/Util.kt",
		"build/src/Generated.kt",
	)

	files, err := CollectSources(fs, []string{"app/src/main/java"}, set(".kt", ".java"), set("build"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"feature/login/src/main/java/Login.java",
		"lib/src/Util.kt",
	}, Paths(files))
}

func TestCollectSourcesUsesTargetsWhenTheyMatch(t *testing.T) {
	fs := memfs.New()
	writeAll(t, fs, "app/src/main/java/Main.java", "lib/src/Util.kt")

	files, err := CollectSources(fs, []string{"app/src/main/java"}, set(".kt", ".java"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"app/src/main/java/Main.java"}, Paths(files))
}

func TestFindByBase(t *testing.T) {
	fs := memfs.New()
	writeAll(t, fs,
		"app/src/main/AndroidManifest.xml",
		"lib/src/main/AndroidManifest.xml",
		"app/build/intermediates/AndroidManifest.xml",
	)
	got := FindByBase(fs, "AndroidManifest.xml", set("build"))
	assert.Equal(t, []string{
		"app/src/main/AndroidManifest.xml",
		"lib/src/main/AndroidManifest.xml",
	}, got)
}
