// Package records provides the persistence layer for prompt records.
//
// # Overview
//
// The package defines a Repository interface for CRUD and query operations on
// Record models (see internal/models). A SQLite-backed implementation
// (SQLiteRepository) persists data using a dbx.DBTX (either *sql.DB or *sql.Tx),
// which lets the hard-delete path share a transaction with the tombstone log.
//
// # Data Model
//
// Each row stores the editable fields, the soft-delete and favorite flags, a
// version counter, and two JSON columns: tags (array of strings) and history
// (array of pre-save snapshots). Timestamps are kept as integer nanoseconds so
// that ordering by updated_at is exact.
//
// Versioning is not this package's concern: the repository stores whatever
// record it is handed. The material-change comparison and history appending
// live in the services layer.
//
// Typical Usage
//
//	repo := records.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, rec)
//	list, _ := repo.GetAll(ctx)
//	one, _ := repo.GetByID(ctx, id)
package records
