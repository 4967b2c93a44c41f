package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"clausewise/internal/analysis"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Use advisory lock to prevent concurrent migrations from multiple services.
	// Note: In production, use dedicated migration tools (e.g., golang-migrate/migrate)
	// that run as a separate deployment step before app services start.
	const lockID = 742190365

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			filename TEXT,
			status TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS reports (
			document_id UUID PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
			summary TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS clause_results (
			document_id UUID REFERENCES documents(id) ON DELETE CASCADE,
			ord INT,
			clause_text TEXT,
			risk_level TEXT,
			recommended_action TEXT,
			issues TEXT[],
			tags TEXT[],
			error TEXT,
			raw TEXT,
			extra JSONB,
			PRIMARY KEY (document_id, ord)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, filename string) (Document, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, `INSERT INTO documents(id, filename, status) VALUES($1,$2,$3)`,
		id, filename, StatusProcessing)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Filename: filename, Status: StatusProcessing, CreatedAt: time.Now()}, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	var doc Document
	row := s.db.QueryRowContext(ctx, `SELECT id, filename, status, created_at FROM documents WHERE id=$1`, id)
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.Status, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (s *PostgresStore) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *PostgresStore) SaveReport(ctx context.Context, docID uuid.UUID, report analysis.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports(document_id, summary)
		VALUES($1,$2)
		ON CONFLICT (document_id) DO UPDATE SET summary=excluded.summary, created_at=now()`,
		docID, report.Summary)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM clause_results WHERE document_id=$1`, docID); err != nil {
		return err
	}
	for ord, r := range report.Results {
		extra, err := marshalExtra(r.Extra)
		if err != nil {
			return fmt.Errorf("marshal extra fields for clause %d: %w", ord, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO clause_results(document_id, ord, clause_text, risk_level, recommended_action, issues, tags, error, raw, extra)
			VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			docID, ord, r.ClauseText, r.RiskLevel, r.RecommendedAction,
			pq.Array(stringArray(r.Issues)), pq.Array(stringArray(r.Tags)), r.Error, r.Raw, extra)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) GetReport(ctx context.Context, docID uuid.UUID) (Report, error) {
	rep := Report{DocumentID: docID}
	row := s.db.QueryRowContext(ctx, `SELECT summary FROM reports WHERE document_id=$1`, docID)
	if err := row.Scan(&rep.Summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Report{}, ErrReportNotFound
		}
		return Report{}, fmt.Errorf("failed to get report for doc %s: %w", docID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT clause_text, risk_level, recommended_action, issues, tags, error, raw, extra
		FROM clause_results WHERE document_id=$1 ORDER BY ord`, docID)
	if err != nil {
		return Report{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r      analysis.ClauseAnalysis
			issues []string
			tags   []string
			extra  []byte
		)
		if err := rows.Scan(&r.ClauseText, &r.RiskLevel, &r.RecommendedAction,
			pq.Array(&issues), pq.Array(&tags), &r.Error, &r.Raw, &extra); err != nil {
			return Report{}, err
		}
		if len(issues) > 0 {
			r.Issues = issues
		}
		if len(tags) > 0 {
			r.Tags = tags
		}
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &r.Extra); err != nil {
				return Report{}, fmt.Errorf("decode extra fields: %w", err)
			}
		}
		rep.Results = append(rep.Results, r)
	}
	return rep, rows.Err()
}

func stringArray(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func marshalExtra(extra map[string]json.RawMessage) (any, error) {
	if len(extra) == 0 {
		return nil, nil
	}
	return json.Marshal(extra)
}
