// Package store persists compiled register catalogs in PostgreSQL.
//
// A catalog is stored as one register_catalogs row plus one register_defs
// row per register, written in a single transaction. Register rows are
// loaded with the COPY protocol.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/regdef/internal/catalog"
	"github.com/JonMunkholm/regdef/internal/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrCatalogNotFound is returned when no catalog has the requested id.
var ErrCatalogNotFound = errors.New("catalog not found")

// DB is the database handle the store needs.
// Satisfied by *pgxpool.Pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store reads and writes catalogs.
type Store struct {
	db DB
}

// New creates a Store on db.
func New(db DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the catalog tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveCatalog writes c and all its registers in one transaction and
// returns the number of register rows written.
func (s *Store) SaveCatalog(ctx context.Context, c *catalog.Catalog) (int64, error) {
	logger := logging.WithFields(ctx, "catalog_id", c.ID.String(), "source", c.Source)

	rows, err := copyRows(c)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertCatalogSQL, catalogArgs(c)...); err != nil {
		return 0, fmt.Errorf("insert catalog: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{registerTable}, CopyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy registers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	logger.Info("catalog saved", "registers", n)
	return n, nil
}

// ListCatalogs returns the stored catalogs, newest first.
func (s *Store) ListCatalogs(ctx context.Context) ([]catalog.Summary, error) {
	rows, err := s.db.Query(ctx, listCatalogsSQL)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}

	summaries, err := pgx.CollectRows(rows, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	return summaries, nil
}

// DeleteCatalog removes a catalog and its registers, returning the number
// of register rows deleted.
func (s *Store) DeleteCatalog(ctx context.Context, id uuid.UUID) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	pgID := pgUUID(id)

	tag, err := tx.Exec(ctx, deleteRegistersSQL, pgID)
	if err != nil {
		return 0, fmt.Errorf("delete registers: %w", err)
	}
	deleted := tag.RowsAffected()

	tag, err = tx.Exec(ctx, deleteCatalogSQL, pgID)
	if err != nil {
		return 0, fmt.Errorf("delete catalog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("%w: %s", ErrCatalogNotFound, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	logging.FromContext(ctx).Info("catalog deleted", "catalog_id", id.String(), "registers", deleted)
	return deleted, nil
}

func scanSummary(row pgx.CollectableRow) (catalog.Summary, error) {
	var (
		s  catalog.Summary
		id pgtype.UUID
		at pgtype.Timestamptz
	)
	if err := row.Scan(&id, &s.Source, &s.Lang, &at, &s.Count, &s.Groups); err != nil {
		return s, err
	}
	s.ID = uuid.UUID(id.Bytes).String()
	s.CompiledAt = at.Time
	if s.Groups == nil {
		s.Groups = []string{}
	}
	return s, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}
