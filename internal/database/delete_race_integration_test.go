package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/content"
	"github.com/emilythestrangee/pyra/backend/internal/database"
	"github.com/emilythestrangee/pyra/backend/internal/models"
	"github.com/emilythestrangee/pyra/backend/internal/testutil"
	"github.com/emilythestrangee/pyra/backend/internal/voting"
)

func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
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

	db, err := database.Open(database.Options{Driver: database.DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db.DB
}

func countVotes(t *testing.T, db *gorm.DB, ref models.Ref) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Vote{}).
		Where("votable_type = ? AND votable_id = ?", ref.Type, ref.ID).
		Count(&n).Error)
	return n
}

func TestDeleteWaitsForVoteInFlight(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	article := testutil.CreateArticle(t, db, owner, "Article 42", "news", time.Now())
	ref := article.Ref()

	engine := voting.NewEngine(db)
	repo := content.NewRepository(db, engine, clockwork.NewRealClock())

	// A vote that has passed its existence check but not yet written.
	tx := db.WithContext(ctx).Begin()
	require.NoError(t, tx.Error)
	store := voting.NewStore(tx)
	ok, err := store.VotableExists(ctx, ref)
	require.NoError(t, err)
	require.True(t, ok)

	deleted := make(chan error, 1)
	go func() {
		deleted <- repo.DeleteArticle(ctx, article.ID, owner.ID)
	}()

	select {
	case err := <-deleted:
		t.Fatalf("delete finished while a vote on the article was open: %v", err)
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, store.CompareAndSwap(ctx, owner.ID, ref, 0, 1))
	require.NoError(t, tx.Commit().Error)

	select {
	case err := <-deleted:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("delete never finished")
	}

	counts, err := engine.Counts(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, voting.Counts{}, counts)
	assert.Zero(t, countVotes(t, db, ref))
}

func TestVoteWaitsForDeleteInFlight(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	voter := testutil.CreateUser(t, db, "voter")
	article := testutil.CreateArticle(t, db, owner, "Article 42", "news", time.Now())
	fc := testutil.CreateFactCheck(t, db, article, owner, 4)
	ref := fc.Ref()

	engine := voting.NewEngine(db)

	// A delete that has locked the fact-check but not yet purged it.
	tx := db.WithContext(ctx).Begin()
	require.NoError(t, tx.Error)
	var locked models.FactCheck
	require.NoError(t, tx.Scopes(database.ForUpdate).First(&locked, fc.ID).Error)

	voted := make(chan error, 1)
	go func() {
		_, _, err := engine.Cast(ctx, voter.ID, ref, voting.Like)
		voted <- err
	}()

	select {
	case err := <-voted:
		t.Fatalf("vote finished while the fact-check was being deleted: %v", err)
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, engine.Purge(ctx, tx, []models.Ref{ref}))
	require.NoError(t, tx.Delete(&models.FactCheck{}, fc.ID).Error)
	require.NoError(t, tx.Commit().Error)

	select {
	case err := <-voted:
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "got %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("vote never finished")
	}
	assert.Zero(t, countVotes(t, db, ref))
}
