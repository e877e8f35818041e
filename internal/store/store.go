package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

// ErrSessionNotFound is returned when a session does not exist or has expired.
var ErrSessionNotFound = eris.New("session not found")

// Store defines the persistence interface for sessions and their extracted
// documents.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, ttl time.Duration) (*model.Session, error)
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Documents
	PutDocument(ctx context.Context, sessionID string, ext model.DocumentExtraction) error
	GetDocuments(ctx context.Context, sessionID string) (map[model.DocType]model.DocumentExtraction, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
