package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePath_Sanitization(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		original string
	}{
		{"traversal", "../../etc/passwd"},
		{"windows separators", `..\..\evil.pdf`},
		{"spaces and unicode", "Годовой отчёт 2024.pdf"},
		{"plain", "charter.pdf"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DerivePath(7, tt.original, now)
			assert.True(t, strings.HasPrefix(p, "org_7_"), "path %q", p)
			assert.True(t, strings.HasSuffix(p, ".pdf"), "path %q", p)
			assert.NotContains(t, p, "..")
			assert.NotContains(t, p, "/")
			assert.NotContains(t, p, `\`)
			assert.NotContains(t, p, " ")
		})
	}
}

func TestDerivePath_CollisionFree(t *testing.T) {
	now := time.Now()
	a := DerivePath(1, "charter.pdf", now)
	b := DerivePath(1, "charter.pdf", now)
	assert.NotEqual(t, a, b, "same org, name and instant must still yield distinct paths")
}

func TestDiskStore_SaveRemove(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	path := DerivePath(3, "charter.pdf", time.Now())
	require.NoError(t, store.Save(path, []byte("%PDF-1.4")))

	abs, err := store.Resolve(path)
	require.NoError(t, err)
	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(abs)
	assert.True(t, os.IsNotExist(err))

	// removing an already-absent file is not an error
	assert.NoError(t, store.Remove(path))
}

func TestDiskStore_ResolveStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root)

	abs, err := store.Resolve("../outside.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "outside.pdf"), abs)

	_, err = store.Resolve("")
	assert.Error(t, err)
	_, err = store.Resolve("/")
	assert.Error(t, err)
}
