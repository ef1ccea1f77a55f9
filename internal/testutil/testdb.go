// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"subscription-tracker/internal/client"
	"subscription-tracker/internal/config"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory sqlite database with the schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.InitDBClient(config.Database{
		Driver: "sqlite",
		URL:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}
