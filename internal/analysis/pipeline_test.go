package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"clausewise/internal/inference"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// numberedDocument builds a contract with n enumerated clauses.
func numberedDocument(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "\n%d. Clause number %d imposes an obligation on the contracting parties.", i, i)
	}
	return b.String()
}

func isSummaryParams(p inference.Params) bool {
	return p.Temperature == summaryTemperature
}

func TestPipelineRunHappyPath(t *testing.T) {
	client := new(inference.MockClient)
	client.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(func(p inference.Params) bool {
		return p.Temperature == clauseTemperature
	})).Return(`{"clause_text":"analyzed","risk_level":"low - routine"}`, nil).Times(3)
	client.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(isSummaryParams)).
		Return("  A short contract summary.  ", nil).Once()

	var fractions []float64
	p := NewPipeline(client, testLogger(), Options{
		Progress: func(done, total int) {
			fractions = append(fractions, float64(done)/float64(total))
		},
	})
	report, err := p.Run(context.Background(), numberedDocument(3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(report.Results))
	}
	if report.Summary != "A short contract summary." {
		t.Errorf("expected trimmed summary, got %q", report.Summary)
	}
	if len(fractions) != 3 || fractions[2] != 1.0 {
		t.Errorf("expected progress fractions ending at 1.0, got %v", fractions)
	}
	client.AssertExpectations(t)
}

func TestPipelineRunClauseCap(t *testing.T) {
	client := new(inference.MockClient)
	client.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"clause_text":"ok"}`, nil)

	var calls int
	p := NewPipeline(client, testLogger(), Options{
		Progress: func(done, total int) {
			calls++
			if total != 20 {
				t.Errorf("expected progress total 20, got %d", total)
			}
		},
	})
	report, err := p.Run(context.Background(), numberedDocument(25))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Results) != 20 {
		t.Errorf("expected exactly 20 results, got %d", len(report.Results))
	}
	if calls != 20 {
		t.Errorf("expected 20 progress reports, got %d", calls)
	}
}

func TestPipelineRunAllCallsFail(t *testing.T) {
	client := new(inference.MockClient)
	client.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("", &inference.HTTPError{Status: 500, Body: "server error"})

	p := NewPipeline(client, testLogger(), Options{})
	report, err := p.Run(context.Background(), numberedDocument(25))
	if err != nil {
		t.Fatalf("per-call failures must not abort the run: %v", err)
	}

	if len(report.Results) != 20 {
		t.Fatalf("expected 20 error entries, got %d", len(report.Results))
	}
	for i, r := range report.Results {
		if r.Error != "HTTP 500" {
			t.Fatalf("result %d: expected error \"HTTP 500\", got %q", i, r.Error)
		}
		if r.Raw != "server error" {
			t.Fatalf("result %d: expected raw body kept, got %q", i, r.Raw)
		}
		if r.ClauseText == "" {
			t.Fatalf("result %d: clause_text must be populated on error", i)
		}
		if r.RiskLabel() != "N/A" {
			t.Fatalf("result %d: expected placeholder risk label, got %q", i, r.RiskLabel())
		}
	}
	if !strings.HasPrefix(report.Summary, "Error during summarization:") {
		t.Errorf("expected inline summary error, got %q", report.Summary)
	}
}

func TestPipelineRunTransportErrorEntry(t *testing.T) {
	client := new(inference.MockClient)
	client.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(func(p inference.Params) bool {
		return p.Temperature == clauseTemperature
	})).Return("", &inference.TransportError{Err: context.DeadlineExceeded}).Once()
	client.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(isSummaryParams)).
		Return("summary", nil).Once()

	p := NewPipeline(client, testLogger(), Options{})
	report, err := p.Run(context.Background(), "The parties agree to binding arbitration in all disputes.")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(report.Results))
	}
	if report.Results[0].Error != context.DeadlineExceeded.Error() {
		t.Errorf("expected transport error description, got %q", report.Results[0].Error)
	}
}

func TestPipelineRunSummaryConcatenation(t *testing.T) {
	client := new(inference.MockClient)
	client.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(func(p inference.Params) bool {
		return p.Temperature == clauseTemperature
	})).Return("no json here", nil).Times(2)

	var summaryPrompt string
	client.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		summaryPrompt = prompt
		return true
	}), mock.MatchedBy(isSummaryParams)).Return("done", nil).Once()

	para1 := "The Supplier delivers goods to the Buyer on a monthly basis."
	para2 := "The Buyer pays within thirty days of each valid invoice."
	p := NewPipeline(client, testLogger(), Options{})
	if _, err := p.Run(context.Background(), para1+"\n\n"+para2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Failed parses still contribute their backfilled clause_text.
	if !strings.Contains(summaryPrompt, para1+" "+para2) {
		t.Errorf("summary prompt missing space-joined clause texts: %q", summaryPrompt)
	}
}

func TestPipelineRunEmptyDocument(t *testing.T) {
	p := NewPipeline(new(inference.MockClient), testLogger(), Options{})
	if _, err := p.Run(context.Background(), "   \n \t "); err != ErrNoClauses {
		t.Errorf("expected ErrNoClauses, got %v", err)
	}
	// Nothing segmentable: every fragment under the length floor.
	if _, err := p.Run(context.Background(), "short\n\ntiny"); err != ErrNoClauses {
		t.Errorf("expected ErrNoClauses for unsegmentable text, got %v", err)
	}
}
