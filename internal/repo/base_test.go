package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:repo_base?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(`CREATE TABLE IF NOT EXISTS widgets (id TEXT PRIMARY KEY)`).Error)
	return conn
}

type ctxKey struct{}

func TestBaseDB_BindsContext(t *testing.T) {
	base := NewBase(newTestDB(t))
	ctx := context.WithValue(context.Background(), ctxKey{}, "value")

	withCtx := base.DB(ctx)
	require.Equal(t, "value", withCtx.Statement.Context.Value(ctxKey{}))
	require.NotNil(t, base.DB(nil))
}

func TestBaseWithTx(t *testing.T) {
	conn := newTestDB(t)
	base := NewBase(conn)
	require.Equal(t, conn, base.WithTx(nil).db)

	err := conn.Transaction(func(tx *gorm.DB) error {
		require.Equal(t, tx, base.WithTx(tx).db)
		return nil
	})
	require.NoError(t, err)
}

func TestBaseExists(t *testing.T) {
	conn := newTestDB(t)
	id := uuid.New()
	require.NoError(t, conn.Exec(`INSERT INTO widgets (id) VALUES (?)`, id.String()).Error)

	base := NewBase(conn)
	ok, err := base.Exists(context.Background(), "widgets", id)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = base.Exists(context.Background(), "widgets", uuid.New())
	require.NoError(t, err)
	require.False(t, ok)
}
