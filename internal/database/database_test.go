package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
)

func TestNewSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "foodgram.db"),
	}

	db, err := database.New(cfg)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.HealthCheck(context.Background(), db))

	user := models.User{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "B", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	assert.NotZero(t, user.ID)

	// Unique violations come back as gorm.ErrDuplicatedKey.
	dup := models.User{Email: "a@example.com", Username: "b", FirstName: "A", LastName: "B", PasswordHash: "x"}
	assert.ErrorContains(t, db.Create(&dup).Error, "duplicated key")
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := database.New(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestMigrationsAreOrdered(t *testing.T) {
	migrations, err := database.Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, "0001", migrations[0].Version)
	assert.Equal(t, "0001_init.sql", migrations[0].Name)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE")
	assert.Equal(t, "0002", migrations[1].Version)
	assert.Equal(t, "0003", migrations[2].Version)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", database.PostgresDSN(cfg))
}
