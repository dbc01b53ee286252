package state

import (
	"context"
	"io"

	"github.com/ShayCichocki/codi/internal/audit"
	"github.com/ShayCichocki/codi/pkg/models"
)

// ReportStore handles report persistence.
type ReportStore interface {
	SaveReport(ctx context.Context, r *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	ListReports(ctx context.Context) ([]*models.Report, error)
}

// AuditStore handles audit record persistence.
type AuditStore interface {
	audit.Store
	ListAuditRecords(ctx context.Context, executionID string) ([]audit.Record, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store defines the persistence backend used by the orchestrator.
type Store interface {
	io.Closer
	Migrator
	ReportStore
	AuditStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store       = (*DB)(nil)
	_ ReportStore = (*DB)(nil)
	_ AuditStore  = (*DB)(nil)
	_ audit.Store = (*DB)(nil)
)
