// Package chunker splits loaded pages into overlapping passages sized for
// embedding and retrieval.
package chunker

import (
	"github.com/tmc/langchaingo/textsplitter"

	"document-qa/internal/models"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// Splitter performs recursive character splitting: paragraph, then line,
// then word boundaries are preferred before a hard cut, so no chunk exceeds
// the configured size and consecutive chunks from the same page overlap.
type Splitter struct {
	inner textsplitter.RecursiveCharacter
}

func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = defaultChunkOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Splitter{
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(overlap),
		),
	}
}

// Split chunks pages in order. Splitting restarts on every page, so a chunk
// never crosses a page or document boundary. The result is deterministic for
// identical input and parameters.
func (s *Splitter) Split(pages []models.Page) ([]models.Chunk, error) {
	var chunks []models.Chunk
	for _, page := range pages {
		parts, err := s.inner.SplitText(page.Text)
		if err != nil {
			return nil, err
		}
		for i, part := range parts {
			if part == "" {
				continue
			}
			chunks = append(chunks, models.Chunk{
				Content:        part,
				Document:       page.Document,
				SourceFilename: page.Source,
				PageNumber:     page.Number,
				ChunkID:        i + 1,
			})
		}
	}
	return chunks, nil
}
