// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"tradelens/internal/models"
)

// DataStore defines the interface for data persistence. The analysis engine
// itself never touches the store; only the CLI host persists imports and
// generated reports.
type DataStore interface {
	// Imports
	SaveImport(ctx context.Context, imp *Import, records []models.TradeRecord) error
	GetImport(ctx context.Context, id string) (*Import, error)
	LatestImport(ctx context.Context) (*Import, error)
	ListImports(ctx context.Context, limit int) ([]Import, error)
	GetTrades(ctx context.Context, importID string) ([]models.TradeRecord, error)

	// Coaching reports
	SaveReport(ctx context.Context, importID string, report *models.CoachingReport) error
	LatestReport(ctx context.Context, importID string) (*models.CoachingReport, error)

	// Lifecycle
	Close() error
}

// Import describes one persisted trade-log upload.
type Import struct {
	ID           string
	Source       string
	RowsTotal    int
	RowsValid    int
	RowsRejected int
	CreatedAt    time.Time
}
