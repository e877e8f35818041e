package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS session_documents (
	session_id TEXT NOT NULL REFERENCES sessions(id),
	doc_type   TEXT NOT NULL,
	extraction TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (session_id, doc_type)
);

CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSession(ctx context.Context, ttl time.Duration) (*model.Session, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, expires_at) VALUES (?, ?, ?)`,
		id, now, expiresAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert session")
	}

	return &model.Session{ID: id, CreatedAt: now, ExpiresAt: expiresAt}, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, expires_at FROM sessions
		 WHERE id = ? AND expires_at > ?`,
		sessionID, time.Now().UTC(),
	)

	var sess model.Session
	err := row.Scan(&sess.ID, &sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get session %s", sessionID)
	}
	return &sess, nil
}

func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_documents WHERE session_id IN
		 (SELECT id FROM sessions WHERE expires_at <= ?)`,
		now,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired documents")
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`,
		now,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired sessions")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) PutDocument(ctx context.Context, sessionID string, ext model.DocumentExtraction) error {
	if !ext.DocType.Valid() {
		return eris.Errorf("invalid doc type: %s", ext.DocType)
	}

	extJSON, err := json.Marshal(ext)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal extraction")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_documents (session_id, doc_type, extraction, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, doc_type) DO UPDATE SET
		   extraction = excluded.extraction,
		   updated_at = excluded.updated_at`,
		sessionID, string(ext.DocType), string(extJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put document %s/%s", sessionID, ext.DocType)
}

func (s *SQLiteStore) GetDocuments(ctx context.Context, sessionID string) (map[model.DocType]model.DocumentExtraction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_type, extraction FROM session_documents WHERE session_id = ?`,
		sessionID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get documents %s", sessionID)
	}
	defer rows.Close()

	docs := make(map[model.DocType]model.DocumentExtraction)
	for rows.Next() {
		var docType, extJSON string
		if err := rows.Scan(&docType, &extJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document")
		}
		var ext model.DocumentExtraction
		if err := json.Unmarshal([]byte(extJSON), &ext); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal extraction")
		}
		docs[model.DocType(docType)] = ext
	}
	return docs, eris.Wrap(rows.Err(), "sqlite: get documents iterate")
}
