package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps each conversation as one JSONB document.
type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects through the pgx stdlib driver and pings once.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return NewPostgresStore(db), nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    document JSONB NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_user_id ON conversations(user_id);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Create(ctx context.Context, c *Conversation) error {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("conversation id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO conversations (id, user_id, document, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
`, c.ID, c.UserID, doc, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Conversation, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM conversations WHERE id=$1`, strings.TrimSpace(id)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeDocument(doc)
}

func (s *PostgresStore) Save(ctx context.Context, c *Conversation) error {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("conversation id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE conversations SET document=$2, updated_at=$3 WHERE id=$1
`, c.ID, doc, c.UpdatedAt)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, userID string) ([]*Conversation, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT document FROM conversations
WHERE ($1 = '' OR user_id = $1)
ORDER BY updated_at DESC
`, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		c, err := decodeDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id=$1`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeDocument(doc []byte) (*Conversation, error) {
	var c Conversation
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	if c.Turns == nil {
		c.Turns = []Turn{}
	}
	return &c, nil
}
