// Package api provides the HTTP surface of the document Q&A service.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"document-qa/internal/rag"
)

const maxUploadMemory = 32 << 20 // 32 MB before multipart spills to disk

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	pipeline *rag.Pipeline
}

func NewHandler(pipeline *rag.Pipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

// CheckDatabaseResponse reports whether an index has been built.
type CheckDatabaseResponse struct {
	Exists bool `json:"exists"`
}

// IngestResponse is returned after a successful ingestion.
type IngestResponse struct {
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
}

// AskRequest carries a single natural-language question.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse carries the generated answer and its source passages in
// retrieval order.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// ErrorResponse is the body for all failure statuses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HandleCheckDatabase handles GET /check-database requests.
func (h *Handler) HandleCheckDatabase(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, CheckDatabaseResponse{Exists: h.pipeline.HasIndex()})
}

// HandleIngest handles POST /ingest requests carrying a multipart file list.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		sendJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Invalid multipart request: " + err.Error()})
		return
	}
	defer r.MultipartForm.RemoveAll()

	var uploads []rag.Upload
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			sendJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Unreadable upload: " + err.Error()})
			return
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			sendJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Unreadable upload: " + err.Error()})
			return
		}
		uploads = append(uploads, rag.Upload{Filename: header.Filename, Content: content})
	}

	count, err := h.pipeline.Ingest(r.Context(), uploads)
	if err != nil {
		if errors.Is(err, rag.ErrNoDocuments) {
			sendJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "No files uploaded"})
			return
		}
		sendJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
		return
	}

	sendJSON(w, http.StatusOK, IngestResponse{
		Message: "Database created successfully",
		Chunks:  count,
	})
}

// HandleAsk handles POST /ask requests.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		sendJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Question must not be empty"})
		return
	}

	answer, err := h.pipeline.Answer(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, rag.ErrNoIndex) {
			sendJSON(w, http.StatusNotFound, ErrorResponse{Detail: "Database not found"})
			return
		}
		sendJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
		return
	}

	sendJSON(w, http.StatusOK, AskResponse{
		Answer:  answer.Content,
		Sources: answer.Sources,
	})
}

// sendJSON sends a JSON response with the given status code.
func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
