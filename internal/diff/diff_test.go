package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportsIdentical(t *testing.T) {
	b := []byte("No build errors found.\n.\n")
	assert.Empty(t, Reports("build_errors.txt", b, b, Options{}))
}

func TestReportsChanged(t *testing.T) {
	prev := []byte("Error in: a.kt\nMessage: boom\n.\n")
	cur := []byte("No build errors found.\n.\n")
	got := Reports("build_errors.txt", prev, cur, Options{})

	assert.True(t, strings.HasPrefix(got, "--- a/build_errors.txt\n+++ b/build_errors.txt\n"))
	assert.Contains(t, got, "-Message: boom\n")
	assert.Contains(t, got, "+No build errors found.\n")
	assert.Contains(t, got, " .\n")
}

func TestReportsFirstRun(t *testing.T) {
	got := Reports("build_errors.txt", nil, []byte("x\n"), Options{})
	assert.True(t, strings.HasPrefix(got, "--- /dev/null\n+++ b/build_errors.txt\n"))
	assert.Contains(t, got, "+x\n")
}

func TestUnifiedOversize(t *testing.T) {
	got := Unified("a", "b", []byte("123"), []byte("456"), Options{MaxBytes: 4})
	assert.Contains(t, got, "# diff omitted (oversize)")
}
