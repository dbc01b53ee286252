package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ShayCichocki/codi/internal/audit"
	"github.com/ShayCichocki/codi/pkg/models"
)

// ErrNotFound is returned when a stored row does not exist.
var ErrNotFound = errors.New("not found")

// SaveReport stores a report keyed by its ID. Reports are write-once: saving
// an existing ID replaces the row, matching the in-memory store.
func (db *DB) SaveReport(ctx context.Context, r *models.Report) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("save report: missing id")
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", r.ID, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	_, err = db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports (id, objective, status, engine, created_at, completed_at, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Objective, string(r.Status), string(r.Engine),
		formatTime(r.CreatedAt), formatTime(r.CompletedAt), string(body))
	if err != nil {
		return fmt.Errorf("save report %s: %w", r.ID, err)
	}
	return nil
}

// GetReport loads a report by ID.
func (db *DB) GetReport(ctx context.Context, id string) (*models.Report, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var body string
	err := db.conn.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	return decodeReport(body)
}

// ListReports returns every stored report, oldest first.
func (db *DB) ListReports(ctx context.Context) ([]*models.Report, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `SELECT body FROM reports ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r, err := decodeReport(body)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func decodeReport(body string) (*models.Report, error) {
	var r models.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// SaveAuditRecord implements audit.Store.
func (db *DB) SaveAuditRecord(ctx context.Context, rec audit.Record) error {
	steps, err := marshalStrings(rec.Steps)
	if err != nil {
		return err
	}
	warnings, err := marshalStrings(rec.Warnings)
	if err != nil {
		return err
	}
	errs, err := marshalStrings(rec.Errors)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO audit_records (execution_id, goal, steps, warnings, errors, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ExecutionID, rec.Goal, steps, warnings, errs, formatTime(rec.Timestamp))
	if err != nil {
		return fmt.Errorf("save audit record %s: %w", rec.ExecutionID, err)
	}
	return nil
}

// ListAuditRecords returns the audit records for an execution, oldest first.
// An empty executionID returns all records.
func (db *DB) ListAuditRecords(ctx context.Context, executionID string) ([]audit.Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	query := `SELECT execution_id, goal, steps, warnings, errors, recorded_at FROM audit_records`
	var args []any
	if executionID != "" {
		query += ` WHERE execution_id = ?`
		args = append(args, executionID)
	}
	query += ` ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var recs []audit.Record
	for rows.Next() {
		var (
			rec                   audit.Record
			steps, warnings, errs string
			recordedAt            string
		)
		if err := rows.Scan(&rec.ExecutionID, &rec.Goal, &steps, &warnings, &errs, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		if err := json.Unmarshal([]byte(steps), &rec.Steps); err != nil {
			return nil, fmt.Errorf("decode steps: %w", err)
		}
		if err := json.Unmarshal([]byte(warnings), &rec.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
		if err := json.Unmarshal([]byte(errs), &rec.Errors); err != nil {
			return nil, fmt.Errorf("decode errors: %w", err)
		}
		if rec.Timestamp, err = parseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func marshalStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(data), nil
}
