// Package testkit holds helpers shared by package tests: a migrated
// throwaway database, a settable clock and envelope assertions.
package testkit

import (
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/shashiranjanraj/commandes/database/migrations"
	"github.com/shashiranjanraj/commandes/pkg/database"
	"github.com/shashiranjanraj/commandes/pkg/logger"
	"github.com/shashiranjanraj/commandes/pkg/migration"
)

// DB opens a fresh SQLite file under t.TempDir, runs every registered
// migration and closes the pool when the test ends.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	Migrate(t, db)
	return db
}

// Migrate runs every registered migration against db.
func Migrate(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, migration.New(db, logger.Discard(), io.Discard).Run())
}

// Clock is a settable time source for code that accepts func() time.Time.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock { return &Clock{now: now} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}
