package voting

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/lock"
	"github.com/emilythestrangee/pyra/backend/internal/models"
	"github.com/emilythestrangee/pyra/backend/internal/testutil"
)

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	return NewEngine(db), db
}

func TestCastToggleScenario(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	u1 := testutil.CreateUser(t, db, "u1")
	require.NoError(t, db.Create(&models.Article{ID: 42, Title: "t", URL: "https://example.com"}).Error)
	ref := models.Ref{Type: models.VotableArticle, ID: 42}

	counts, value, err := engine.Cast(ctx, u1.ID, ref, Like)
	require.NoError(t, err)
	assert.Equal(t, Counts{Likes: 1, Dislikes: 0}, counts)
	assert.Equal(t, 1, value)

	counts, value, err = engine.Cast(ctx, u1.ID, ref, Like)
	require.NoError(t, err)
	assert.Equal(t, Counts{Likes: 0, Dislikes: 0}, counts)
	assert.Equal(t, 0, value)

	counts, value, err = engine.Cast(ctx, u1.ID, ref, Dislike)
	require.NoError(t, err)
	assert.Equal(t, Counts{Likes: 0, Dislikes: 1}, counts)
	assert.Equal(t, -1, value)
}

func TestCastSwitchOverwritesRow(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "switcher")
	a := testutil.CreateArticle(t, db, u, "a", models.CategoryNews, time.Time{})

	_, _, err := engine.Cast(ctx, u.ID, a.Ref(), Dislike)
	require.NoError(t, err)
	counts, value, err := engine.Cast(ctx, u.ID, a.Ref(), Like)
	require.NoError(t, err)

	assert.Equal(t, Counts{Likes: 1}, counts)
	assert.Equal(t, 1, value)

	var rows int64
	require.NoError(t, db.Model(&models.Vote{}).Where("user_id = ?", u.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestSetAndVote(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "setter")
	a := testutil.CreateArticle(t, db, u, "a", models.CategoryNews, time.Time{})
	c := testutil.CreateComment(t, db, a, u, "hi")

	counts, err := engine.Set(ctx, u.ID, c.Ref(), -1)
	require.NoError(t, err)
	assert.Equal(t, Counts{Dislikes: 1}, counts)

	v, err := engine.Vote(ctx, u.ID, c.Ref())
	require.NoError(t, err)
	assert.Equal(t, -1, v)

	counts, err = engine.Set(ctx, u.ID, c.Ref(), -1)
	require.NoError(t, err)
	assert.Equal(t, Counts{Dislikes: 1}, counts, "setting the held value is idempotent")

	counts, err = engine.Set(ctx, u.ID, c.Ref(), 0)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)

	v, err = engine.Vote(ctx, u.ID, c.Ref())
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestCountsNeverDrift(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	var voters []*models.User
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		voters = append(voters, testutil.CreateUser(t, db, name))
	}
	article := testutil.CreateArticle(t, db, voters[0], "x", models.CategoryNews, time.Time{})
	fc := testutil.CreateFactCheck(t, db, article, voters[1], 3)
	refs := []models.Ref{article.Ref(), fc.Ref()}

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		voter := voters[rng.IntN(len(voters))]
		ref := refs[rng.IntN(len(refs))]
		dir := Like
		if rng.IntN(2) == 0 {
			dir = Dislike
		}
		_, _, err := engine.Cast(ctx, voter.ID, ref, dir)
		require.NoError(t, err)

		for _, r := range refs {
			got, err := engine.Counts(ctx, r)
			require.NoError(t, err)
			likes, dislikes := testutil.Scan(t, db, r)
			require.Equal(t, Counts{Likes: likes, Dislikes: dislikes}, got, "after step %d", i)
		}
	}
}

func TestConcurrentCastsFromSameVoterSerialize(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "clicker")
	a := testutil.CreateArticle(t, db, u, "a", models.CategoryNews, time.Time{})

	const casts = 10
	var wg sync.WaitGroup
	errs := make(chan error, casts)
	for i := 0; i < casts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := engine.Cast(ctx, u.ID, a.Ref(), Like)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// An even number of toggles lands back on no vote.
	v, err := engine.Vote(ctx, u.ID, a.Ref())
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	counts, err := engine.Counts(ctx, a.Ref())
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)
}

func TestConcurrentCastsFromDifferentVoters(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	a := testutil.CreateArticle(t, db, nil, "a", models.CategoryNews, time.Time{})
	var voters []*models.User
	for _, name := range []string{"v1", "v2", "v3", "v4", "v5", "v6"} {
		voters = append(voters, testutil.CreateUser(t, db, name))
	}

	var wg sync.WaitGroup
	for i, v := range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dir := Like
			if i%3 == 0 {
				dir = Dislike
			}
			_, _, err := engine.Cast(ctx, v.ID, a.Ref(), dir)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	counts, err := engine.Counts(ctx, a.Ref())
	require.NoError(t, err)
	assert.Equal(t, Counts{Likes: 4, Dislikes: 2}, counts)
}

func TestCastWhileLockHeldReportsCallerErrors(t *testing.T) {
	db := testutil.OpenTestDB(t)
	locks := lock.NewLocal[VoteKey]()
	engine := NewEngine(db, WithLocker(locks))

	u := testutil.CreateUser(t, db, "waiter")
	a := testutil.CreateArticle(t, db, u, "a", models.CategoryNews, time.Time{})

	release, err := locks.Lock(context.Background(), VoteKey{VoterID: u.ID, Ref: a.Ref()})
	require.NoError(t, err)
	defer release()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = engine.Cast(canceled, u.ID, a.Ref(), Like)
	assert.Equal(t, apperrors.KindCanceled, apperrors.KindOf(err))

	timeout, cancelTimeout := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelTimeout()
	_, _, err = engine.Cast(timeout, u.ID, a.Ref(), Like)
	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))

	likes, dislikes := testutil.Scan(t, db, a.Ref())
	assert.Zero(t, likes+dislikes)
}

func TestCastErrors(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "someone")
	a := testutil.CreateArticle(t, db, u, "a", models.CategoryNews, time.Time{})

	tests := []struct {
		name string
		call func() error
		kind apperrors.Kind
	}{
		{"anonymous voter", func() error {
			_, _, err := engine.Cast(ctx, 0, a.Ref(), Like)
			return err
		}, apperrors.KindUnauthorized},
		{"unknown voter", func() error {
			_, _, err := engine.Cast(ctx, 9999, a.Ref(), Like)
			return err
		}, apperrors.KindUnauthorized},
		{"missing article", func() error {
			_, _, err := engine.Cast(ctx, u.ID, models.Ref{Type: models.VotableArticle, ID: 9999}, Like)
			return err
		}, apperrors.KindNotFound},
		{"missing comment", func() error {
			_, err := engine.Set(ctx, u.ID, models.Ref{Type: models.VotableComment, ID: 9999}, 1)
			return err
		}, apperrors.KindNotFound},
		{"bad direction", func() error {
			_, _, err := engine.Cast(ctx, u.ID, a.Ref(), Direction(3))
			return err
		}, apperrors.KindInvalidArgument},
		{"bad value", func() error {
			_, err := engine.Set(ctx, u.ID, a.Ref(), 2)
			return err
		}, apperrors.KindInvalidArgument},
		{"bad votable type", func() error {
			_, _, err := engine.Cast(ctx, u.ID, models.Ref{Type: 9, ID: a.ID}, Like)
			return err
		}, apperrors.KindInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
		})
	}

	counts, err := engine.Counts(ctx, a.Ref())
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts, "failed votes leave counts untouched")
}

func TestCountsBatch(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	u1 := testutil.CreateUser(t, db, "one")
	u2 := testutil.CreateUser(t, db, "two")
	a := testutil.CreateArticle(t, db, u1, "a", models.CategoryNews, time.Time{})
	fc := testutil.CreateFactCheck(t, db, a, u1, 4)
	c := testutil.CreateComment(t, db, a, u2, "nice")

	for _, step := range []struct {
		voter *models.User
		ref   models.Ref
		dir   Direction
	}{
		{u1, a.Ref(), Like},
		{u2, a.Ref(), Like},
		{u1, fc.Ref(), Dislike},
		{u2, c.Ref(), Like},
		{u1, c.Ref(), Dislike},
	} {
		_, _, err := engine.Cast(ctx, step.voter.ID, step.ref, step.dir)
		require.NoError(t, err)
	}

	missing := models.Ref{Type: models.VotableComment, ID: 777}
	got, err := engine.CountsBatch(ctx, []models.Ref{a.Ref(), fc.Ref(), c.Ref(), missing})
	require.NoError(t, err)

	assert.Equal(t, map[models.Ref]Counts{
		a.Ref():  {Likes: 2},
		fc.Ref(): {Dislikes: 1},
		c.Ref():  {Likes: 1, Dislikes: 1},
		missing:  {},
	}, got)

	empty, err := engine.CountsBatch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCountsBatchLimits(t *testing.T) {
	engine, _ := newTestEngine(t)

	refs := make([]models.Ref, MaxBatch+1)
	for i := range refs {
		refs[i] = models.Ref{Type: models.VotableArticle, ID: i + 1}
	}
	_, err := engine.CountsBatch(context.Background(), refs)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidArgument))

	_, err = engine.CountsBatch(context.Background(), []models.Ref{{Type: models.VotableArticle, ID: 0}})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidArgument))
}

func TestPurgeLeavesZeroCounts(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "purger")
	a := testutil.CreateArticle(t, db, u, "a", models.CategoryNews, time.Time{})
	keep := testutil.CreateArticle(t, db, u, "b", models.CategoryNews, time.Time{})

	_, _, err := engine.Cast(ctx, u.ID, a.Ref(), Like)
	require.NoError(t, err)
	_, _, err = engine.Cast(ctx, u.ID, keep.Ref(), Like)
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := engine.Purge(ctx, tx, []models.Ref{a.Ref()}); err != nil {
			return err
		}
		return tx.Delete(&models.Article{}, a.ID).Error
	})
	require.NoError(t, err)

	counts, err := engine.Counts(ctx, a.Ref())
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)

	counts, err = engine.Counts(ctx, keep.Ref())
	require.NoError(t, err)
	assert.Equal(t, Counts{Likes: 1}, counts)

	_, _, err = engine.Cast(ctx, u.ID, a.Ref(), Like)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
