package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/emilythestrangee/pyra/backend/internal/models"
)

func TestPostgresMigrateAndConstraints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("pyra"),
		postgres.WithUsername("pyra"),
		postgres.WithPassword("pyra"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(Options{Driver: DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	user := models.User{Username: "pg", Email: "pg@example.com", PasswordHash: "x"}
	require.NoError(t, db.DB.Create(&user).Error)

	require.NoError(t, db.DB.Create(&models.Vote{UserID: user.ID, VotableType: models.VotableComment, VotableID: 9, Value: 1}).Error)

	err = db.DB.Create(&models.Vote{UserID: user.ID, VotableType: models.VotableComment, VotableID: 9, Value: 1}).Error
	assert.True(t, IsDuplicate(err), "unique (user, type, id) must reject a second row: %v", err)

	err = db.DB.Create(&models.Vote{UserID: user.ID, VotableType: models.VotableComment, VotableID: 10, Value: 0}).Error
	assert.Error(t, err, "check constraint must reject value 0 rows")

	assert.Equal(t, "up", db.Health(ctx)["status"])
}
