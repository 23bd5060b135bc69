// Package index wraps a chromem-go collection as the service's single
// persisted vector index. The on-disk artifact is one export file that is
// only ever replaced atomically, never updated in place.
package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"

	"document-qa/internal/models"
)

var (
	// ErrNotFound is returned when no index artifact exists at the location.
	ErrNotFound = errors.New("index not found")

	// ErrModelMismatch is returned when a persisted index was built with a
	// different embedding model than the one configured.
	ErrModelMismatch = errors.New("index was built with a different embedding model")

	// ErrLengthMismatch is returned when chunks and vectors do not pair up.
	ErrLengthMismatch = errors.New("chunks and vectors length mismatch")
)

// Index holds an in-memory vector collection loaded from or destined for the
// persisted artifact.
type Index struct {
	db    *chromem.DB
	coll  *chromem.Collection
	model string
}

// Build constructs a fresh in-memory index from parallel slices of chunks
// and their embedding vectors.
func Build(ctx context.Context, model string, chunks []models.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, ErrLengthMismatch
	}
	if len(chunks) == 0 {
		return nil, errors.New("cannot build an index from zero chunks")
	}

	db := chromem.NewDB()
	coll, err := db.GetOrCreateCollection(collectionName(model), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		// The document ordinal keeps IDs unique when two uploads in one
		// batch share a filename; chromem upserts by ID, so a collision
		// would silently drop chunks.
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("%d-%s-%d-%d", chunk.Document, chunk.SourceFilename, chunk.PageNumber, chunk.ChunkID),
			Content: chunk.Content,
			Metadata: map[string]string{
				"doc":    strconv.Itoa(chunk.Document),
				"source": chunk.SourceFilename,
				"page":   strconv.Itoa(chunk.PageNumber),
				"chunk":  strconv.Itoa(chunk.ChunkID),
			},
			Embedding: vectors[i],
		}
	}
	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("failed to add documents: %w", err)
	}
	return &Index{db: db, coll: coll, model: model}, nil
}

// Load reads a previously persisted index into memory and verifies it was
// built with the expected embedding model.
func Load(path, model string) (*Index, error) {
	if !Exists(path) {
		return nil, ErrNotFound
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return nil, fmt.Errorf("failed to import index: %w", err)
	}

	colls := db.ListCollections()
	if len(colls) == 0 {
		return nil, ErrNotFound
	}
	coll, ok := colls[collectionName(model)]
	if !ok {
		return nil, fmt.Errorf("%w: want %q", ErrModelMismatch, model)
	}
	return &Index{db: db, coll: coll, model: model}, nil
}

// Exists reports whether a non-empty index artifact is present at path.
func Exists(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.Size() > 0
}

// Persist writes the index to path, fully replacing any prior artifact. The
// export goes to a temporary file in the same directory first and is then
// renamed over the target, so a reader never observes a half-written index.
func (ix *Index) Persist(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".index-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := ix.db.ExportToFile(tmpPath, false, "", ix.coll.Name); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to export index: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Search returns the k nearest chunks to queryVector, best match first.
// k is clamped to the collection size.
func (ix *Index) Search(ctx context.Context, queryVector []float32, k int) ([]models.SearchResult, error) {
	count := ix.coll.Count()
	if count == 0 {
		return nil, nil
	}
	if k <= 0 || k > count {
		k = count
	}

	results, err := ix.coll.QueryEmbedding(ctx, queryVector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	out := make([]models.SearchResult, 0, len(results))
	for _, res := range results {
		doc, _ := strconv.Atoi(res.Metadata["doc"])
		page, _ := strconv.Atoi(res.Metadata["page"])
		chunkID, _ := strconv.Atoi(res.Metadata["chunk"])
		out = append(out, models.SearchResult{
			Chunk: models.Chunk{
				Content:        res.Content,
				Document:       doc,
				SourceFilename: res.Metadata["source"],
				PageNumber:     page,
				ChunkID:        chunkID,
			},
			Score: res.Similarity,
		})
	}
	return out, nil
}

// Count reports the number of chunks in the index.
func (ix *Index) Count() int {
	return ix.coll.Count()
}

// collectionName embeds the model identifier so Load can detect an index
// built with a different embedder.
func collectionName(model string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, model)
	return "docs_" + sanitized
}
