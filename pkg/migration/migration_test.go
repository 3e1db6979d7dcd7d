package migration_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/commandes/app/models"
	_ "github.com/shashiranjanraj/commandes/database/migrations"
	"github.com/shashiranjanraj/commandes/pkg/database"
	"github.com/shashiranjanraj/commandes/pkg/logger"
	"github.com/shashiranjanraj/commandes/pkg/migration"
)

func TestRunStatusRollback(t *testing.T) {
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	var out bytes.Buffer
	r := migration.New(db, logger.Discard(), &out)

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"20240101000000_create_users_table",
		"20240101000001_create_commandes_tables",
	}, pending)

	require.NoError(t, r.Run())
	assert.True(t, db.Migrator().HasTable(&models.Order{}))
	assert.True(t, db.Migrator().HasTable(&models.OrderImage{}))
	assert.True(t, db.Migrator().HasTable(&models.User{}))

	pending, err = r.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	out.Reset()
	require.NoError(t, r.Run())
	assert.Contains(t, out.String(), "Nothing to migrate.")

	out.Reset()
	require.NoError(t, r.Status())
	assert.Contains(t, out.String(), "20240101000001_create_commandes_tables")
	assert.Contains(t, out.String(), "Ran")

	require.NoError(t, r.Rollback())
	assert.False(t, db.Migrator().HasTable(&models.Order{}))
	assert.False(t, db.Migrator().HasTable(&models.User{}))

	out.Reset()
	require.NoError(t, r.Rollback())
	assert.Contains(t, out.String(), "Nothing to roll back.")
}
