// Package store mirrors the deduplicated series into a sqlite database so
// that successive runs accumulate into a single table.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"carcatalog/internal/catalog"
	"carcatalog/internal/components/chrono"
	"carcatalog/lib/sqliteutil"
)

//go:embed schema.sql
var Schema string

const upsertSeries = `
insert into series (
    series_id, brand_id, brand_name, factory_name, series_name,
    price_range, level, status, fuel_types, run_id, updated_at
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (series_id) do update set
    brand_id = excluded.brand_id,
    brand_name = excluded.brand_name,
    factory_name = excluded.factory_name,
    series_name = excluded.series_name,
    price_range = excluded.price_range,
    level = excluded.level,
    status = excluded.status,
    fuel_types = excluded.fuel_types,
    run_id = excluded.run_id,
    updated_at = excluded.updated_at`

type Store struct {
	db    *sql.DB
	runID string
	clock chrono.API
}

// Open opens (creating if needed) the database at `path`.
func Open(path, runID string, clock chrono.API) (*Store, error) {
	db, err := sqliteutil.OpenDB(Schema, path)
	if err != nil {
		return nil, err
	}
	return New(db, runID, clock), nil
}

func New(db *sql.DB, runID string, clock chrono.API) *Store {
	return &Store{db: db, runID: runID, clock: clock}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSeries upserts every record by series id in a single transaction,
// stamping rows with the store's run id.
func (s *Store) SaveSeries(ctx context.Context, records []catalog.Series) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSeries)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := s.clock.Now().Unix()
	for _, r := range records {
		fuel, err := json.Marshal(r.FuelTypes)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(
			ctx,
			r.SeriesID, r.BrandID, r.BrandName, r.FactoryName, r.SeriesName,
			r.PriceRange, r.Level, r.Status.String(), string(fuel), s.runID, now,
		)
		if err != nil {
			return fmt.Errorf("upsert series %d: %w", r.SeriesID, err)
		}
	}
	return tx.Commit()
}
