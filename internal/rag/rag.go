// Package rag holds the two pipelines at the core of the service: ingestion
// (load, chunk, embed, index, persist) and answering (load, retrieve,
// generate grounded on retrieved context).
package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/prompts"

	"document-qa/internal/chunker"
	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/index"
	"document-qa/internal/llmservice"
	"document-qa/internal/models"
	"document-qa/internal/parser"
)

var (
	// ErrNoDocuments is returned when ingestion is called with no input.
	ErrNoDocuments = errors.New("no documents provided")

	// ErrNoIndex is returned when answering is attempted before any
	// successful ingestion.
	ErrNoIndex = errors.New("no index has been built yet")

	// ErrIngest wraps any ingestion-stage failure.
	ErrIngest = errors.New("ingestion failed")

	// ErrAnswer wraps any answer-stage failure.
	ErrAnswer = errors.New("answering failed")
)

// Upload is one raw document submitted for ingestion. Its bytes live only in
// scratch storage for the duration of the call.
type Upload struct {
	Filename string
	Content  []byte
}

// Pipeline wires the loader, chunker, embedder, index and generator
// together. One Pipeline serves the whole process; concurrent ingestions are
// serialized so one persisted index never clobbers another mid-write.
type Pipeline struct {
	cfg       *config.Config
	embedder  embedding.Embedder
	generator llmservice.Generator
	splitter  *chunker.Splitter
	prompt    prompts.PromptTemplate

	ingestMu sync.Mutex
}

func NewPipeline(cfg *config.Config, embedder embedding.Embedder, generator llmservice.Generator) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		embedder:  embedder,
		generator: generator,
		splitter:  chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
		prompt:    prompts.NewPromptTemplate(models.AnswerPromptTemplate, []string{"context", "question"}),
	}
}

// HasIndex reports whether a persisted index is present.
func (p *Pipeline) HasIndex() bool {
	return index.Exists(p.cfg.RAG.IndexPath)
}

// Ingest runs the full ingestion pipeline over the uploads and fully
// replaces any prior index. It returns the number of chunks indexed. On
// failure the prior index is left untouched.
func (p *Pipeline) Ingest(ctx context.Context, uploads []Upload) (int, error) {
	if len(uploads) == 0 {
		return 0, ErrNoDocuments
	}

	p.ingestMu.Lock()
	defer p.ingestMu.Unlock()

	count, err := p.ingest(ctx, uploads)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIngest, err)
	}
	return count, nil
}

func (p *Pipeline) ingest(ctx context.Context, uploads []Upload) (int, error) {
	scratch := filepath.Join(p.cfg.RAG.ScratchPath, uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return 0, err
	}
	// Uploaded bytes never outlive the call, success or failure.
	defer os.RemoveAll(scratch)

	var pages []models.Page
	for docNum, upload := range uploads {
		path := filepath.Join(scratch, filepath.Base(upload.Filename))
		if err := os.WriteFile(path, upload.Content, 0o644); err != nil {
			return 0, err
		}
		loaded, err := parser.Load(path)
		if err != nil {
			return 0, err
		}
		// Stamp the batch ordinal so uploads sharing a filename keep
		// distinct chunk identities in the index.
		for i := range loaded {
			loaded[i].Document = docNum + 1
		}
		pages = append(pages, loaded...)
	}

	chunks, err := p.splitter.Split(pages)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, errors.New("no text extracted from documents")
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, err
	}

	ix, err := index.Build(ctx, p.cfg.EmbedLLM.Model, chunks, vectors)
	if err != nil {
		return 0, err
	}
	if err := ix.Persist(p.cfg.RAG.IndexPath); err != nil {
		return 0, err
	}

	log.Info().
		Int("documents", len(uploads)).
		Int("chunks", len(chunks)).
		Str("index", p.cfg.RAG.IndexPath).
		Msg("Index replaced")
	return len(chunks), nil
}

// Answer loads the persisted index, retrieves the chunks most similar to the
// question and generates an answer grounded only on those chunks. The
// returned sources keep retrieval order.
func (p *Pipeline) Answer(ctx context.Context, question string) (*models.Answer, error) {
	answer, err := p.answer(ctx, question)
	if err != nil {
		// The load itself decides index presence, so an index removed
		// moments before still surfaces as the absence case rather than
		// a generic failure.
		if errors.Is(err, index.ErrNotFound) {
			return nil, ErrNoIndex
		}
		return nil, fmt.Errorf("%w: %w", ErrAnswer, err)
	}
	return answer, nil
}

func (p *Pipeline) answer(ctx context.Context, question string) (*models.Answer, error) {
	ix, err := index.Load(p.cfg.RAG.IndexPath, p.cfg.EmbedLLM.Model)
	if err != nil {
		return nil, err
	}

	queryVector, err := p.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	results, err := ix.Search(ctx, queryVector, p.cfg.RAG.TopK)
	if err != nil {
		return nil, err
	}

	sources := make([]string, 0, len(results))
	for _, res := range results {
		sources = append(sources, res.Chunk.Content)
	}
	contextText := strings.Join(sources, models.ContextSeparator)

	prompt, err := p.prompt.Format(map[string]any{
		"context":  contextText,
		"question": question,
	})
	if err != nil {
		return nil, err
	}

	completion, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("retrieved", len(results)).
		Str("question", question).
		Msg("Answered question")
	return &models.Answer{
		Content: strings.TrimSpace(completion),
		Sources: sources,
	}, nil
}
