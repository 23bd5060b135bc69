package models

// Page is one unit of loaded text from a source document. Document is the
// 1-based ordinal of the document instance within one ingestion batch, so
// two uploads sharing a filename stay distinguishable.
type Page struct {
	Document int
	Source   string
	Number   int
	Text     string
}

// Chunk represents a passage of bounded length with its source metadata.
type Chunk struct {
	Content        string
	Document       int
	SourceFilename string
	PageNumber     int
	ChunkID        int
}

// SearchResult pairs a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// Answer is the generated response plus the passages it was grounded on.
type Answer struct {
	Content string
	Sources []string
}
