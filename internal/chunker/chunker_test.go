package chunker_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-qa/internal/chunker"
	"document-qa/internal/models"
)

func wordText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%03d", i)
	}
	return strings.Join(words, " ")
}

func TestSplit_ShortPageYieldsSingleChunk(t *testing.T) {
	s := chunker.New(1000, 200)
	pages := []models.Page{{Source: "a.pdf", Number: 1, Text: "A short paragraph."}}

	chunks, err := s.Split(pages)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short paragraph.", chunks[0].Content)
	assert.Equal(t, "a.pdf", chunks[0].SourceFilename)
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Equal(t, 1, chunks[0].ChunkID)
}

func TestSplit_RespectsMaxChunkSize(t *testing.T) {
	s := chunker.New(100, 20)
	pages := []models.Page{{Source: "a.pdf", Number: 1, Text: wordText(200)}}

	chunks, err := s.Split(pages)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), 100)
	}
}

func TestSplit_ConsecutiveChunksOverlap(t *testing.T) {
	s := chunker.New(80, 30)
	pages := []models.Page{{Source: "a.pdf", Number: 1, Text: wordText(100)}}

	chunks, err := s.Split(pages)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		firstWord := strings.Fields(chunks[i].Content)[0]
		assert.Contains(t, chunks[i-1].Content, firstWord,
			"chunk %d should start inside the tail of chunk %d", i, i-1)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	pages := []models.Page{
		{Source: "a.pdf", Number: 1, Text: wordText(300)},
		{Source: "a.pdf", Number: 2, Text: wordText(150)},
	}

	first, err := chunker.New(120, 25).Split(pages)
	require.NoError(t, err)
	second, err := chunker.New(120, 25).Split(pages)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplit_NeverCrossesPageBoundaries(t *testing.T) {
	s := chunker.New(100, 20)
	pages := []models.Page{
		{Source: "a.pdf", Number: 1, Text: strings.Repeat("alpha ", 50)},
		{Source: "b.pdf", Number: 4, Text: strings.Repeat("omega ", 50)},
	}

	chunks, err := s.Split(pages)
	require.NoError(t, err)
	for _, c := range chunks {
		switch c.SourceFilename {
		case "a.pdf":
			assert.Equal(t, 1, c.PageNumber)
			assert.NotContains(t, c.Content, "omega")
		case "b.pdf":
			assert.Equal(t, 4, c.PageNumber)
			assert.NotContains(t, c.Content, "alpha")
		default:
			t.Fatalf("unexpected source %q", c.SourceFilename)
		}
	}
}

func TestSplit_ChunkIDsRestartPerPage(t *testing.T) {
	s := chunker.New(100, 20)
	pages := []models.Page{
		{Source: "a.pdf", Number: 1, Text: wordText(60)},
		{Source: "a.pdf", Number: 2, Text: wordText(60)},
	}

	chunks, err := s.Split(pages)
	require.NoError(t, err)

	seenPages := map[int]bool{}
	for _, c := range chunks {
		if !seenPages[c.PageNumber] {
			assert.Equal(t, 1, c.ChunkID, "first chunk of page %d", c.PageNumber)
			seenPages[c.PageNumber] = true
		}
	}
	assert.Len(t, seenPages, 2)
}

func TestSplit_EmptyInput(t *testing.T) {
	s := chunker.New(1000, 200)
	chunks, err := s.Split(nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
