package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"clausewise/internal/inference"
	"clausewise/internal/prompt"
	"clausewise/internal/segmenter"
)

// ErrNoClauses reports a document from which no analyzable clauses could be
// derived. It is the only pipeline-level failure; everything per-clause is
// recovered into the result sequence.
var ErrNoClauses = errors.New("no clauses could be derived from document text")

const (
	defaultClauseCap     = 20
	defaultClauseTokens  = 400
	defaultSummaryTokens = 400

	// Clause extraction is deterministic; summarization benefits from some
	// lexical variety.
	clauseTemperature  = 0.0
	summaryTemperature = 0.3
)

// ProgressFunc receives the completed and total clause counts after each
// clause, letting an observer render fractional progress. Completions arrive
// strictly in order today, but the counts would also fit an index-tagged
// concurrent implementation.
type ProgressFunc func(done, total int)

// Options bounds a pipeline run.
type Options struct {
	// ClauseCap limits the working set to the first N clauses. Documents
	// segmenting into more are only partially analyzed, to bound cost and
	// worst-case latency.
	ClauseCap      int
	MaxClauseChars int
	ClauseTokens   int
	SummaryTokens  int
	Progress       ProgressFunc
}

// Pipeline runs clause-level analysis and document summarization over one
// document. Clauses are processed strictly sequentially, each inference call
// attempted exactly once.
type Pipeline struct {
	client inference.Client
	log    *slog.Logger
	opts   Options
}

func NewPipeline(client inference.Client, log *slog.Logger, opts Options) *Pipeline {
	if opts.ClauseCap <= 0 {
		opts.ClauseCap = defaultClauseCap
	}
	if opts.ClauseTokens <= 0 {
		opts.ClauseTokens = defaultClauseTokens
	}
	if opts.SummaryTokens <= 0 {
		opts.SummaryTokens = defaultSummaryTokens
	}
	return &Pipeline{client: client, log: log, opts: opts}
}

// Run segments the document, analyzes each clause, and closes with one
// summary call over the concatenated clause texts. A clause-level failure
// becomes an error entry; a summary failure degrades to an inline error
// string. Only an unsegmentable document returns an error.
func (p *Pipeline) Run(ctx context.Context, documentText string) (Report, error) {
	if strings.TrimSpace(documentText) == "" {
		return Report{}, ErrNoClauses
	}
	clauses := segmenter.Segment(documentText, segmenter.Options{MaxClauseChars: p.opts.MaxClauseChars})
	if len(clauses) == 0 {
		return Report{}, ErrNoClauses
	}
	if len(clauses) > p.opts.ClauseCap {
		p.log.Info("applying clause cap", "found", len(clauses), "analyzing", p.opts.ClauseCap)
		clauses = clauses[:p.opts.ClauseCap]
	}

	results := make([]ClauseAnalysis, 0, len(clauses))
	for i, clause := range clauses {
		results = append(results, p.analyzeClause(ctx, clause.Text))
		if p.opts.Progress != nil {
			p.opts.Progress(i+1, len(clauses))
		}
	}

	return Report{
		Summary: p.summarize(ctx, results),
		Results: results,
	}, nil
}

func (p *Pipeline) analyzeClause(ctx context.Context, clauseText string) ClauseAnalysis {
	out, err := p.client.Generate(ctx, prompt.ClausePrompt(clauseText), inference.Params{
		MaxNewTokens: p.opts.ClauseTokens,
		Temperature:  clauseTemperature,
	})
	if err != nil {
		p.log.Warn("clause inference failed", "err", err)
		return errorResult(err, clauseText)
	}
	return ParseClauseOutput(out, clauseText)
}

// errorResult converts a failed inference call into a result entry, keeping
// the response body of an HTTP failure for diagnosis.
func errorResult(err error, clauseText string) ClauseAnalysis {
	var httpErr *inference.HTTPError
	if errors.As(err, &httpErr) {
		return ClauseAnalysis{ClauseText: clauseText, Error: httpErr.Error(), Raw: httpErr.Body}
	}
	return ClauseAnalysis{ClauseText: clauseText, Error: err.Error()}
}

func (p *Pipeline) summarize(ctx context.Context, results []ClauseAnalysis) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.ClauseText)
	}
	out, err := p.client.Generate(ctx, prompt.SummaryPrompt(strings.Join(texts, " ")), inference.Params{
		MaxNewTokens: p.opts.SummaryTokens,
		Temperature:  summaryTemperature,
	})
	if err != nil {
		p.log.Warn("summarization failed", "err", err)
		return "Error during summarization: " + err.Error()
	}
	return strings.TrimSpace(out)
}
