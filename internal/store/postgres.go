package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_session": `INSERT INTO sessions (id, created_at, expires_at) VALUES ($1, $2, $3)`,
	"get_session":    `SELECT id, created_at, expires_at FROM sessions WHERE id = $1 AND expires_at > now()`,
	"put_document": `INSERT INTO session_documents (session_id, doc_type, extraction, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, doc_type) DO UPDATE SET
		  extraction = excluded.extraction,
		  updated_at = excluded.updated_at`,
	"get_documents": `SELECT doc_type, extraction FROM session_documents WHERE session_id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS session_documents (
	session_id TEXT NOT NULL REFERENCES sessions(id),
	doc_type   TEXT NOT NULL,
	extraction JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (session_id, doc_type)
);

CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, ttl time.Duration) (*model.Session, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, created_at, expires_at) VALUES ($1, $2, $3)`,
		id, now, expiresAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert session")
	}

	return &model.Session{ID: id, CreatedAt: now, ExpiresAt: expiresAt}, nil
}

func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, created_at, expires_at FROM sessions WHERE id = $1 AND expires_at > now()`,
		sessionID,
	)

	var sess model.Session
	err := row.Scan(&sess.ID, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get session %s", sessionID)
	}
	return &sess, nil
}

func (s *PostgresStore) DeleteExpiredSessions(ctx context.Context) (int, error) {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM session_documents WHERE session_id IN
		 (SELECT id FROM sessions WHERE expires_at <= now())`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired documents")
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired sessions")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) PutDocument(ctx context.Context, sessionID string, ext model.DocumentExtraction) error {
	if !ext.DocType.Valid() {
		return eris.Errorf("invalid doc type: %s", ext.DocType)
	}

	extJSON, err := json.Marshal(ext)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal extraction")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO session_documents (session_id, doc_type, extraction, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, doc_type) DO UPDATE SET
		   extraction = excluded.extraction,
		   updated_at = excluded.updated_at`,
		sessionID, string(ext.DocType), string(extJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: put document %s/%s", sessionID, ext.DocType)
}

func (s *PostgresStore) GetDocuments(ctx context.Context, sessionID string) (map[model.DocType]model.DocumentExtraction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc_type, extraction FROM session_documents WHERE session_id = $1`,
		sessionID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get documents %s", sessionID)
	}
	defer rows.Close()

	docs := make(map[model.DocType]model.DocumentExtraction)
	for rows.Next() {
		var docType, extJSON string
		if err := rows.Scan(&docType, &extJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		var ext model.DocumentExtraction
		if err := json.Unmarshal([]byte(extJSON), &ext); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal extraction")
		}
		docs[model.DocType(docType)] = ext
	}
	return docs, eris.Wrap(rows.Err(), "postgres: get documents iterate")
}
