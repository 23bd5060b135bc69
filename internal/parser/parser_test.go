package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-qa/internal/parser"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Text(t *testing.T) {
	path := writeFile(t, "notes.txt", "Plain text content.")

	pages, err := parser.Load(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "notes.txt", pages[0].Source)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "Plain text content.", pages[0].Text)
}

func TestLoad_EmptyText(t *testing.T) {
	path := writeFile(t, "empty.txt", "  \n ")

	pages, err := parser.Load(path)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestLoad_MarkdownStripsFormatting(t *testing.T) {
	path := writeFile(t, "doc.md", "# Heading\n\nSome **bold** and *italic* text.\n\n- item one\n- item two\n")

	pages, err := parser.Load(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	text := pages[0].Text
	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "bold")
	assert.Contains(t, text, "item one")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "**")
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "image.png", "not really an image")

	_, err := parser.Load(path)
	require.ErrorIs(t, err, parser.ErrUnsupportedFormat)
}

func TestLoad_CorruptPDF(t *testing.T) {
	path := writeFile(t, "broken.pdf", "this is not a pdf")

	_, err := parser.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrParse)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := parser.Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
