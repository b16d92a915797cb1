// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/gminsights/roadmap-api/internal/database"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("file:"+name+"?mode=memory&cache=shared", false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateProfile inserts a profile with the given role and password "secret123".
func CreateProfile(t *testing.T, db *gorm.DB, email, role string) models.Profile {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	p := models.Profile{Email: email, Password: string(hash), Name: email, Role: role}
	require.NoError(t, db.Create(&p).Error)
	return p
}
