package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"saboaria/backend/internal/domain"
)

// PostgresSlot keeps the snapshot in a single-row table, upserted on
// every save. Postgres acts as the off-process safety net, not as the
// primary store.
type PostgresSlot struct {
	db *sql.DB
}

func NewPostgresSlot(ctx context.Context, databaseURL string) (*PostgresSlot, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	slot := &PostgresSlot{db: db}
	if err := slot.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return slot, nil
}

func (s *PostgresSlot) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS store_snapshot (
			id SMALLINT PRIMARY KEY CHECK (id = 1),
			payload JSONB NOT NULL,
			saved_at TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

func (s *PostgresSlot) Save(ctx context.Context, doc domain.BackupDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO store_snapshot (id, payload, saved_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, saved_at = EXCLUDED.saved_at
	`, payload)
	return err
}

func (s *PostgresSlot) Load(ctx context.Context) (domain.BackupDocument, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM store_snapshot WHERE id = 1
	`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BackupDocument{}, false, nil
	}
	if err != nil {
		return domain.BackupDocument{}, false, err
	}

	var doc domain.BackupDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return domain.BackupDocument{}, false, err
	}
	if doc.Meta == nil {
		return domain.BackupDocument{}, false, fmt.Errorf("postgres snapshot has no metadata block")
	}
	return doc, true, nil
}

func (s *PostgresSlot) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresSlot) Close() error {
	return s.db.Close()
}
