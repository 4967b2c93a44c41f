package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"clausewise/internal/analysis"
)

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrReportNotFound   = errors.New("report not found")
)

type Document struct {
	ID        uuid.UUID
	Filename  string
	Status    DocumentStatus
	CreatedAt time.Time
}

// Report is a finished analysis for one document: the summary plus clause
// results in document order.
type Report struct {
	DocumentID uuid.UUID
	Summary    string
	Results    []analysis.ClauseAnalysis
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	CreateDocument(ctx context.Context, filename string) (Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (Document, error)
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error
	SaveReport(ctx context.Context, docID uuid.UUID, report analysis.Report) error
	GetReport(ctx context.Context, docID uuid.UUID) (Report, error)
}
