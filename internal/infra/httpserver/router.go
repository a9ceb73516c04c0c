package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Buontempo-Raul/Resurface/internal/application/batch"
	"github.com/Buontempo-Raul/Resurface/internal/domain/analysis"
	"github.com/Buontempo-Raul/Resurface/internal/middleware"
)

const multipartMemory = 32 << 20

type Router struct {
	orch     *batch.Orchestrator
	maxBytes int64
}

func NewRouter(orch *batch.Orchestrator, provider analysis.Provider, version string, maxBytes int64) http.Handler {
	r := &Router{orch: orch, maxBytes: maxBytes}
	mux := chi.NewRouter()

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", middleware.HealthHandler(version, provider))
		rt.Get("/metrics", middleware.MetricsHandler)

		rt.Post("/items", r.wrap(r.handleSubmit))
		rt.Get("/items", r.wrap(r.handleListItems))
		rt.Delete("/items/{id}", r.wrap(r.handleRemove))
		rt.Post("/items/clear", r.wrap(r.handleClear))
		rt.Post("/items/{id}/reanalyze", r.wrap(r.handleReanalyze))

		rt.Post("/analyze", r.wrap(r.handleRunBatch))
		rt.Get("/stats", r.wrap(r.handleStats))
		rt.Get("/progress", r.wrap(r.handleProgress))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, batch.ErrNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, batch.ErrBusy):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, analysis.ErrQuotaExceeded):
				http.Error(w, "provider quota exceeded", http.StatusTooManyRequests)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// POST /api/items
// multipart form, one or more files under the "images" field
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		http.Error(w, "expected multipart form upload", http.StatusBadRequest)
		return nil
	}

	files := req.MultipartForm.File["images"]
	if len(files) == 0 {
		files = req.MultipartForm.File["image"]
	}
	if len(files) == 0 {
		http.Error(w, "no files in upload", http.StatusBadRequest)
		return nil
	}

	raws := make([]analysis.RawImage, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return err
		}
		limit := r.maxBytes
		if limit <= 0 {
			limit = multipartMemory
		}
		// one byte past the limit is enough for the validator to reject
		data, err := io.ReadAll(io.LimitReader(f, limit+1))
		f.Close()
		if err != nil {
			return err
		}
		raws = append(raws, analysis.RawImage{
			Name:   fh.Filename,
			Format: strings.TrimPrefix(filepath.Ext(fh.Filename), "."),
			Data:   data,
		})
	}

	receipt := r.orch.Submit(raws)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(receipt)
}

// GET /api/items
func (r *Router) handleListItems(w http.ResponseWriter, req *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(r.orch.Items())
}

// DELETE /api/items/{id}
func (r *Router) handleRemove(w http.ResponseWriter, req *http.Request) error {
	r.orch.Remove(analysis.ItemID(chi.URLParam(req, "id")))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /api/items/clear
func (r *Router) handleClear(w http.ResponseWriter, req *http.Request) error {
	if err := r.orch.Clear(); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{"status": "cleared"})
}

// POST /api/analyze
// Starts the batch walk in the background and replies immediately, so the
// client polls /api/progress and /api/items for updates.
func (r *Router) handleRunBatch(w http.ResponseWriter, req *http.Request) error {
	total, err := r.orch.StartBatch(context.Background())
	if err != nil {
		return err
	}
	middleware.IncrementBatchRuns()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(map[string]any{
		"status":    "started",
		"total":     total,
		"startedAt": time.Now(),
	})
}

// POST /api/items/{id}/reanalyze
func (r *Router) handleReanalyze(w http.ResponseWriter, req *http.Request) error {
	id := analysis.ItemID(chi.URLParam(req, "id"))
	if _, ok := r.orch.Get(id); !ok {
		return fmt.Errorf("%w: %s", batch.ErrNotFound, id)
	}
	middleware.IncrementReanalyses()

	go func() {
		if err := r.orch.Reanalyze(context.Background(), id); err != nil {
			log.Printf("reanalyze failed: item=%s err=%v", id, err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(map[string]any{
		"status": "started",
		"id":     id,
	})
}

// GET /api/stats
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(r.orch.Stats())
}

// GET /api/progress
func (r *Router) handleProgress(w http.ResponseWriter, req *http.Request) error {
	current, total, running := r.orch.Progress()
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"current": current,
		"total":   total,
		"running": running,
	})
}
