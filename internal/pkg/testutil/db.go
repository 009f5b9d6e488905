// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crrelabs/HireAnyPro/app/models"
)

// NewDB opens a private in-memory SQLite database with every model migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db := NewEmptyDB(t)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// NewEmptyDB opens a private in-memory SQLite database without a schema.
func NewEmptyDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateListing inserts an unclaimed listing with the given slug.
func CreateListing(t testing.TB, db *gorm.DB, slug string) *models.Listing {
	t.Helper()
	l := &models.Listing{
		Name:    "Listing " + slug,
		Slug:    slug,
		City:    "Tampa",
		Phone:   "813-555-0100",
		Email:   slug + "@example.com",
		Website: "https://" + slug + ".example.com",
		Tier:    models.TierFree,
	}
	require.NoError(t, db.Create(l).Error)
	return l
}

// ReloadListing reads the listing back from the database.
func ReloadListing(t testing.TB, db *gorm.DB, id string) *models.Listing {
	t.Helper()
	var l models.Listing
	require.NoError(t, db.First(&l, "id = ?", id).Error)
	return &l
}
