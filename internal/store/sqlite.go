package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/weeklybasket/storefront/internal/domain"
)

// RunMigrations brings the cart slot schema up to date.
func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// SqliteStore keeps the cart slot in a local file, for deployments
// without a Redis alongside.
type SqliteStore struct {
	db *sql.DB
}

func NewSqliteStore(db *sql.DB) *SqliteStore {
	return &SqliteStore{db: db}
}

func (s *SqliteStore) Load(ctx context.Context) ([]domain.CartLine, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT lines FROM cart_slot WHERE id = ?", slotKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite select failed: %w", err)
	}

	var lines []domain.CartLine
	if err2 := json.Unmarshal([]byte(payload), &lines); err2 != nil {
		log.Printf("discarding corrupt cart slot: %v", err2)
		return nil, nil
	}

	return lines, nil
}

func (s *SqliteStore) Save(ctx context.Context, lines []domain.CartLine) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart lines failed: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cart_slot (id, lines, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			lines = excluded.lines,
			updated_at = CURRENT_TIMESTAMP`,
		slotKey, string(payload))
	if err != nil {
		return fmt.Errorf("sqlite upsert failed: %w", err)
	}
	return nil
}
