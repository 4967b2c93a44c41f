package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clausewise/internal/analysis"
	"clausewise/internal/app"
	"clausewise/internal/cache"
	"clausewise/internal/httputil"
	"clausewise/internal/queue"
	"clausewise/internal/store"
)

const progressTTL = 30 * time.Minute

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
	deps.Log.Info("analyzer worker starting")

	g, ctx := errgroup.WithContext(context.Background())

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeAnalyze, func(ctx context.Context, task queue.Task) error {
			var payload analyzeTaskPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				return err
			}
			return handleAnalyze(ctx, deps, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(deps.Log, deps.Config.Port, "analyzer")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("analyzer service stopped", "err", err)
	}
}

func handleAnalyze(ctx context.Context, deps app.Deps, payload analyzeTaskPayload) error {
	log := deps.Log.With("document_id", payload.DocumentID, "filename", payload.Filename)

	pipeline := analysis.NewPipeline(deps.Inference, log, analysis.Options{
		ClauseCap:      deps.Config.ClauseCap,
		MaxClauseChars: deps.Config.MaxClauseChars,
		ClauseTokens:   deps.Config.ClauseTokens,
		SummaryTokens:  deps.Config.SummaryTokens,
		Progress: func(done, total int) {
			p := cache.Progress{Done: done, Total: total}
			if err := deps.Cache.SetProgress(ctx, payload.DocumentID, p, progressTTL); err != nil {
				log.Warn("failed to record progress", "err", err)
			}
		},
	})

	report, err := pipeline.Run(ctx, payload.Text)
	if errors.Is(err, analysis.ErrNoClauses) {
		// Nothing to analyze; retrying will not help.
		log.Error("document yielded no clauses")
		return markFailed(ctx, deps, payload.DocumentID)
	}
	if err != nil {
		_ = markFailed(ctx, deps, payload.DocumentID)
		return err
	}

	if err := deps.Store.SaveReport(ctx, payload.DocumentID, report); err != nil {
		return err
	}
	if err := deps.Cache.ClearProgress(ctx, payload.DocumentID); err != nil {
		log.Warn("failed to clear progress", "err", err)
	}
	log.Info("analysis complete", "clauses", len(report.Results))
	return deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusReady)
}

func markFailed(ctx context.Context, deps app.Deps, docID uuid.UUID) error {
	if err := deps.Store.UpdateDocumentStatus(ctx, docID, store.StatusFailed); err != nil {
		deps.Log.Error("failed to mark document failed", "document_id", docID, "err", err)
	}
	return nil
}
