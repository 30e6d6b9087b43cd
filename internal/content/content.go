// Package content stores users, articles, fact-checks and comments.
package content

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/emilythestrangee/pyra/backend/internal/models"
)

// VotePurger removes the votes of deleted votables inside a transaction.
type VotePurger interface {
	Purge(ctx context.Context, tx *gorm.DB, refs []models.Ref) error
}

type Repository struct {
	db    *gorm.DB
	votes VotePurger
	clock clockwork.Clock
}

func NewRepository(db *gorm.DB, votes VotePurger, clock clockwork.Clock) *Repository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Repository{db: db, votes: votes, clock: clock}
}

func (r *Repository) now() time.Time {
	return r.clock.Now().UTC()
}
