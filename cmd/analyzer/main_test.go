package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"clausewise/internal/app"
	"clausewise/internal/cache"
	"clausewise/internal/config"
	"clausewise/internal/inference"
	"clausewise/internal/store"
)

const analyzerTestDoc = "\n1. The supplier shall deliver all goods within thirty days of receiving an order.\n2. Either party may terminate this agreement with ninety days written notice."

func newAnalyzerDeps(st store.Store, ca cache.Cache, client inference.Client) app.Deps {
	return app.Deps{
		Store:     st,
		Cache:     ca,
		Inference: client,
		Config: config.Config{
			ClauseCap:      20,
			MaxClauseChars: 1500,
			ClauseTokens:   400,
			SummaryTokens:  400,
		},
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func clauseCall(params inference.Params) bool  { return params.Temperature == 0.0 }
func summaryCall(params inference.Params) bool { return params.Temperature == 0.3 }

func TestHandleAnalyzeSuccess(t *testing.T) {
	docID := uuid.New()
	client := new(inference.MockClient)
	client.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(clauseCall)).
		Return(`{"clause_text": "delivery clause", "risk_level": "low"}`, nil).Times(2)
	client.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(summaryCall)).
		Return("A supply agreement with delivery and termination terms.", nil).Once()

	st := new(store.MockStore)
	st.On("SaveReport", mock.Anything, docID, mock.Anything).Return(nil).Once()
	st.On("UpdateDocumentStatus", mock.Anything, docID, store.StatusReady).Return(nil).Once()

	ca := new(cache.MockCache)
	ca.On("SetProgress", mock.Anything, docID, mock.Anything, progressTTL).Return(nil).Times(2)
	ca.On("ClearProgress", mock.Anything, docID).Return(nil).Once()

	deps := newAnalyzerDeps(st, ca, client)
	err := handleAnalyze(context.Background(), deps, analyzeTaskPayload{
		DocumentID: docID,
		Filename:   "contract.txt",
		Text:       analyzerTestDoc,
	})
	if err != nil {
		t.Fatalf("handleAnalyze returned error: %v", err)
	}
	st.AssertExpectations(t)
	ca.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestHandleAnalyzeProgressRecorded(t *testing.T) {
	docID := uuid.New()
	client := new(inference.MockClient)
	client.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(clauseCall)).
		Return(`{"risk_level": "low"}`, nil).Times(2)
	client.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(summaryCall)).
		Return("summary", nil).Once()

	st := new(store.MockStore)
	st.On("SaveReport", mock.Anything, docID, mock.Anything).Return(nil).Once()
	st.On("UpdateDocumentStatus", mock.Anything, docID, store.StatusReady).Return(nil).Once()

	var seen []cache.Progress
	ca := new(cache.MockCache)
	ca.On("SetProgress", mock.Anything, docID, mock.MatchedBy(func(p cache.Progress) bool {
		seen = append(seen, p)
		return true
	}), progressTTL).Return(nil)
	ca.On("ClearProgress", mock.Anything, docID).Return(nil).Once()

	deps := newAnalyzerDeps(st, ca, client)
	if err := handleAnalyze(context.Background(), deps, analyzeTaskPayload{DocumentID: docID, Text: analyzerTestDoc}); err != nil {
		t.Fatalf("handleAnalyze returned error: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(seen))
	}
	last := seen[len(seen)-1]
	if last.Done != last.Total {
		t.Errorf("final progress should be complete, got %d/%d", last.Done, last.Total)
	}
}

func TestHandleAnalyzeNoClausesDoesNotRetry(t *testing.T) {
	docID := uuid.New()
	st := new(store.MockStore)
	st.On("UpdateDocumentStatus", mock.Anything, docID, store.StatusFailed).Return(nil).Once()

	deps := newAnalyzerDeps(st, cache.NewNoOpCache(), new(inference.MockClient))
	err := handleAnalyze(context.Background(), deps, analyzeTaskPayload{DocumentID: docID, Text: "   \n  "})
	if err != nil {
		t.Fatalf("empty document should not be retried, got error: %v", err)
	}
	st.AssertExpectations(t)
}

func TestHandleAnalyzeSaveReportFailureRetries(t *testing.T) {
	docID := uuid.New()
	client := new(inference.MockClient)
	client.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(clauseCall)).
		Return(`{"risk_level": "low"}`, nil).Times(2)
	client.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(summaryCall)).
		Return("summary", nil).Once()

	st := new(store.MockStore)
	st.On("SaveReport", mock.Anything, docID, mock.Anything).Return(errors.New("db down")).Once()

	deps := newAnalyzerDeps(st, cache.NewNoOpCache(), client)
	err := handleAnalyze(context.Background(), deps, analyzeTaskPayload{DocumentID: docID, Text: analyzerTestDoc})
	if err == nil {
		t.Fatal("expected error so the task is retried")
	}
	st.AssertExpectations(t)
}
