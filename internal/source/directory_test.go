package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhiya492/pdf-data-extraction-tool/internal/common"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestListDocuments(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"))
	touch(t, filepath.Join(root, "a.pdf"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "upper.PDF"))
	touch(t, filepath.Join(root, ".hidden.pdf"))
	touch(t, filepath.Join(root, ".cache", "c.pdf"))
	touch(t, filepath.Join(root, "nested", "d.pdf"))

	paths, err := ListDocuments(root)
	require.NoError(t, err)

	// Lexical order, extension match is case-insensitive, hidden entries
	// and non-PDF files are skipped.
	assert.Equal(t, []string{
		filepath.Join(root, "a.pdf"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "nested", "d.pdf"),
		filepath.Join(root, "upper.PDF"),
	}, paths)
}

func TestListDocumentsEmptyRoot(t *testing.T) {
	paths, err := ListDocuments(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestListDocumentsMissingRoot(t *testing.T) {
	_, err := ListDocuments(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, common.ErrLoadFailure)
}

func TestListDocumentsBlankRoot(t *testing.T) {
	_, err := ListDocuments("  ")
	assert.ErrorIs(t, err, common.ErrLoadFailure)
}
