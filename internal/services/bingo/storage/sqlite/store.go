// Package sqlite provides a SQLite-backed bingo catalog store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/landstalker-bingo/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/storage"
	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const tagSeparator = ","

// Store persists bingo catalogs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.CatalogStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a catalog SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// SchemaMigrations lists the migrations recorded in the database, oldest first.
func (s *Store) SchemaMigrations(ctx context.Context) ([]string, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	return sqlitemigrate.Applied(ctx, s.sqlDB)
}

// Close closes the SQLite handle.
//
// Close is nil-safe so callers can defer it on every startup path.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutCatalog replaces the stored catalog with record in one transaction.
func (s *Store) PutCatalog(ctx context.Context, record storage.CatalogRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("catalog id is required")
	}
	if record.BoardSize <= 0 {
		return fmt.Errorf("board size must be positive")
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put catalog: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := deleteCatalogRows(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bingo_catalogs (id, board_size, updated_at) VALUES (?, ?, ?)`,
		id, record.BoardSize, toMillis(record.UpdatedAt),
	); err != nil {
		return fmt.Errorf("insert catalog %s: %w", id, err)
	}
	for poolOrdinal, pool := range record.Pools {
		poolID := strings.TrimSpace(pool.ID)
		if poolID == "" {
			return fmt.Errorf("pool %d id is required", poolOrdinal)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bingo_pools (catalog_id, pool_id, ordinal) VALUES (?, ?, ?)`,
			id, poolID, poolOrdinal,
		); err != nil {
			return fmt.Errorf("insert pool %s: %w", poolID, err)
		}
		for goalOrdinal, goal := range pool.Goals {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO bingo_goals (catalog_id, pool_id, ordinal, name, tags) VALUES (?, ?, ?, ?, ?)`,
				id, poolID, goalOrdinal, goal.Name, strings.Join(goal.Tags, tagSeparator),
			); err != nil {
				return fmt.Errorf("insert goal %s/%d: %w", poolID, goalOrdinal, err)
			}
		}
	}
	for _, slot := range record.Slots {
		var poolID sql.NullString
		if ref := strings.TrimSpace(slot.PoolID); ref != "" {
			poolID = sql.NullString{String: ref, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bingo_slots (catalog_id, position, pool_id) VALUES (?, ?, ?)`,
			id, slot.Position, poolID,
		); err != nil {
			return fmt.Errorf("insert slot %d: %w", slot.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put catalog: %w", err)
	}
	return nil
}

// GetCatalog loads one catalog by id.
func (s *Store) GetCatalog(ctx context.Context, id string) (storage.CatalogRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CatalogRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CatalogRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.CatalogRecord{}, fmt.Errorf("catalog id is required")
	}

	record := storage.CatalogRecord{ID: id}
	var updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT board_size, updated_at FROM bingo_catalogs WHERE id = ?`, id,
	).Scan(&record.BoardSize, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CatalogRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CatalogRecord{}, fmt.Errorf("get catalog %s: %w", id, err)
	}
	record.UpdatedAt = fromMillis(updatedAt)

	pools, err := s.listPools(ctx, id)
	if err != nil {
		return storage.CatalogRecord{}, err
	}
	record.Pools = pools

	slots, err := s.listSlots(ctx, id)
	if err != nil {
		return storage.CatalogRecord{}, err
	}
	record.Slots = slots
	return record, nil
}

// ListCatalogIDs returns stored catalog ids in lexical order.
func (s *Store) ListCatalogIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id FROM bingo_catalogs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan catalog id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalogs: %w", err)
	}
	return ids, nil
}

// DeleteCatalog removes one catalog. Missing catalogs report ErrNotFound.
func (s *Store) DeleteCatalog(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("catalog id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete catalog: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var found int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM bingo_catalogs WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check catalog %s: %w", id, err)
	}
	if err := deleteCatalogRows(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete catalog: %w", err)
	}
	return nil
}

// deleteCatalogRows clears children before parents so the delete does not
// depend on cascade support in the connection's pragma set.
func deleteCatalogRows(ctx context.Context, tx *sql.Tx, id string) error {
	for _, table := range []string{"bingo_slots", "bingo_goals", "bingo_pools"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE catalog_id = ?", id); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, id, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bingo_catalogs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("clear catalog %s: %w", id, err)
	}
	return nil
}

func (s *Store) listPools(ctx context.Context, catalogID string) ([]storage.PoolRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	p.pool_id,
	g.name,
	g.tags
FROM bingo_pools p
LEFT JOIN bingo_goals g
	ON g.catalog_id = p.catalog_id AND g.pool_id = p.pool_id
WHERE p.catalog_id = ?
ORDER BY p.ordinal, g.ordinal
`, catalogID)
	if err != nil {
		return nil, fmt.Errorf("list pools for %s: %w", catalogID, err)
	}
	defer rows.Close()

	var pools []storage.PoolRecord
	for rows.Next() {
		var (
			poolID string
			name   sql.NullString
			tags   sql.NullString
		)
		if err := rows.Scan(&poolID, &name, &tags); err != nil {
			return nil, fmt.Errorf("scan pool row: %w", err)
		}
		if len(pools) == 0 || pools[len(pools)-1].ID != poolID {
			pools = append(pools, storage.PoolRecord{ID: poolID})
		}
		if !name.Valid {
			continue
		}
		current := &pools[len(pools)-1]
		current.Goals = append(current.Goals, storage.GoalRecord{
			Name: name.String,
			Tags: splitTags(tags.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pools for %s: %w", catalogID, err)
	}
	return pools, nil
}

func (s *Store) listSlots(ctx context.Context, catalogID string) ([]storage.SlotRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT position, pool_id
FROM bingo_slots
WHERE catalog_id = ?
ORDER BY position
`, catalogID)
	if err != nil {
		return nil, fmt.Errorf("list slots for %s: %w", catalogID, err)
	}
	defer rows.Close()

	var slots []storage.SlotRecord
	for rows.Next() {
		var (
			slot   storage.SlotRecord
			poolID sql.NullString
		)
		if err := rows.Scan(&slot.Position, &poolID); err != nil {
			return nil, fmt.Errorf("scan slot row: %w", err)
		}
		slot.PoolID = poolID.String
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots for %s: %w", catalogID, err)
	}
	return slots, nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return strings.Split(raw, tagSeparator)
}
