package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateSession(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sess, err := s.CreateSession(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, sess.ExpiresAt.After(sess.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSession_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, created_at, expires_at FROM sessions`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetSession(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSession(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, created_at, expires_at FROM sessions`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "expires_at"}).
			AddRow("sess-1", now, now.Add(time.Hour)))

	sess, err := s.GetSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sess.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutDocument(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO session_documents`).
		WithArgs("sess-1", "invoice", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.PutDocument(context.Background(), "sess-1", model.DocumentExtraction{
		DocType: model.DocInvoice,
		Fields:  map[string]model.ResolvedField{"invoice_number": {Value: "INV-1", SourceLayer: model.LayerA, Confidence: 0.95}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutDocument_BadType(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	err := s.PutDocument(context.Background(), "sess-1", model.DocumentExtraction{DocType: "waybill"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid doc type")
}

func TestPostgresStore_GetDocuments(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ext := model.DocumentExtraction{
		DocType: model.DocBL,
		Fields:  map[string]model.ResolvedField{"bl_number": {Value: "BL-7", SourceLayer: model.LayerB, Confidence: 0.72}},
	}
	payload, err := json.Marshal(ext)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT doc_type, extraction FROM session_documents`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows([]string{"doc_type", "extraction"}).
			AddRow("bl", string(payload)))

	docs, err := s.GetDocuments(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "BL-7", docs[model.DocBL].Fields["bl_number"].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteExpiredSessions(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM session_documents`).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM sessions`).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	n, err := s.DeleteExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
