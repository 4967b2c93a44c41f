package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clausewise/internal/app"
	"clausewise/internal/extract"
	"clausewise/internal/httputil"
	"clausewise/internal/queue"
	"clausewise/internal/store"
)

const previewChars = 2000

type analyzeTaskPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Text       string    `json:"text"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/contracts/upload", uploadHandler(deps))
	r.Get("/api/contracts/{id}/report", reportHandler(deps))
	r.Get("/api/contracts/{id}/progress", progressHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
		switch ext {
		case "pdf", "docx", "txt":
		default:
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF, DOCX and TXT allowed)", nil, http.StatusBadRequest)
			return
		}

		text, err := extractUpload(file, ext)
		if err != nil {
			httputil.Fail(deps.Log, w, "could not extract text from file", err, http.StatusUnprocessableEntity)
			return
		}
		if strings.TrimSpace(text) == "" {
			httputil.Fail(deps.Log, w, "could not extract text from file", nil, http.StatusUnprocessableEntity)
			return
		}

		doc, err := deps.Store.CreateDocument(ctx, header.Filename)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist document", err, http.StatusInternalServerError)
			return
		}

		payload := analyzeTaskPayload{
			DocumentID: doc.ID,
			Filename:   header.Filename,
			Text:       text,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			fail(ctx, deps, w, "marshal payload failed", err, doc.ID, http.StatusInternalServerError, true)
			return
		}
		task := queue.Task{Type: queue.TaskTypeAnalyze, Payload: body}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			fail(ctx, deps, w, "failed to enqueue document; please retry", err, doc.ID, http.StatusInternalServerError, true)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"document_id": doc.ID.String(),
			"status":      doc.Status,
			"preview":     preview(text),
		})
	}
}

// extractUpload spools the upload to a temp file and extracts its text. The
// temp file lives only for this call; it is removed whether or not extraction
// succeeds.
func extractUpload(file io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp("", "clausewise-upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		return "", fmt.Errorf("spool upload: %w", err)
	}
	content, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return extract.Text(content, ext)
}

func preview(text string) string {
	if len(text) > previewChars {
		return text[:previewChars]
	}
	return text
}

// fail is gateway-specific error handler that can mark documents as failed
func fail(ctx context.Context, deps app.Deps, w http.ResponseWriter, message string, err error, docID uuid.UUID, status int, markFailed bool) {
	log := deps.Log.With("document_id", docID)
	if markFailed && docID != uuid.Nil {
		if upErr := deps.Store.UpdateDocumentStatus(ctx, docID, store.StatusFailed); upErr != nil {
			log.Error("failed to mark document failed", "err", upErr)
		}
	}

	httputil.Fail(log, w, message, err, status)
}

func reportHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
			return
		}
		rep, err := deps.Store.GetReport(r.Context(), docID)
		if err != nil {
			httputil.Fail(deps.Log, w, "report not ready", err, http.StatusNotFound)
			return
		}

		results := make([]map[string]any, 0, len(rep.Results))
		for i, res := range rep.Results {
			results = append(results, map[string]any{
				"clause":   i + 1,
				"risk":     res.RiskLabel(),
				"analysis": res,
			})
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"document_id": docID,
			"summary":     rep.Summary,
			"results":     results,
		})
	}
}

func progressHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
			return
		}
		doc, err := deps.Store.GetDocument(r.Context(), docID)
		if err != nil {
			httputil.Fail(deps.Log, w, "document not found", err, http.StatusNotFound)
			return
		}

		body := map[string]any{"document_id": docID, "status": doc.Status}
		if p, err := deps.Cache.GetProgress(r.Context(), docID); err != nil {
			deps.Log.Warn("progress lookup failed", "err", err, "document_id", docID)
		} else if p != nil {
			body["done"] = p.Done
			body["total"] = p.Total
			body["fraction"] = p.Fraction()
		}
		httputil.WriteJSON(w, http.StatusOK, body)
	}
}
