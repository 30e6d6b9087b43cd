package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/lock"
	"github.com/emilythestrangee/pyra/backend/internal/metrics"
	"github.com/emilythestrangee/pyra/backend/internal/models"
	"github.com/emilythestrangee/pyra/backend/internal/retry"
)

// MaxBatch caps how many votables one CountsBatch call may ask for.
const MaxBatch = 500

// DefaultRetryPolicy retries compare-and-set misses a few times with a short backoff.
var DefaultRetryPolicy = retry.Policy{
	MaxAttempts:    5,
	InitialBackoff: 5 * time.Millisecond,
}

// Engine applies votes one (voter, votable) pair at a time and answers
// aggregate reads straight from the vote table.
type Engine struct {
	store  *Store
	locker lock.Locker[VoteKey]
	policy retry.Policy
	clock  clockwork.Clock
	logger *slog.Logger
}

type Option func(*Engine)

// WithLocker replaces the default in-process keyed lock.
func WithLocker(l lock.Locker[VoteKey]) Option {
	return func(e *Engine) { e.locker = l }
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(db *gorm.DB, opts ...Option) *Engine {
	e := &Engine{
		store:  NewStore(db),
		locker: lock.NewLocal[VoteKey](),
		policy: DefaultRetryPolicy,
		clock:  clockwork.NewRealClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	onRetry := e.policy.OnRetry
	e.policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		metrics.VoteConflictsTotal.Inc()
		e.logger.Debug("retrying vote after conflict", "attempt", attempt, "backoff", backoff, "error", err)
		if onRetry != nil {
			onRetry(attempt, err, backoff)
		}
	}
	return e
}

// Cast resolves a like/dislike click against the voter's current vote and
// returns the new counts together with the voter's resulting value.
func (e *Engine) Cast(ctx context.Context, voterID int, ref models.Ref, d Direction) (Counts, int, error) {
	if !d.Valid() {
		return Counts{}, 0, apperrors.InvalidArgument("direction must be like or dislike").WithField("direction", int(d))
	}
	return e.apply(ctx, voterID, ref, func(prev int) (int, error) {
		return Resolve(prev, d)
	})
}

// Set stores an already resolved value (-1, 0 or 1).
func (e *Engine) Set(ctx context.Context, voterID int, ref models.Ref, value int) (Counts, error) {
	if err := ValidateValue(value); err != nil {
		return Counts{}, err
	}
	counts, _, err := e.apply(ctx, voterID, ref, func(int) (int, error) {
		return value, nil
	})
	return counts, err
}

// Vote returns the voter's current value on ref, 0 when absent.
func (e *Engine) Vote(ctx context.Context, voterID int, ref models.Ref) (int, error) {
	if err := validateRef(ref); err != nil {
		return 0, err
	}
	return e.store.GetVote(ctx, voterID, ref)
}

// Counts returns likes and dislikes for ref. Unknown or deleted votables count as zero.
func (e *Engine) Counts(ctx context.Context, ref models.Ref) (Counts, error) {
	if err := validateRef(ref); err != nil {
		return Counts{}, err
	}
	m, err := e.store.Counts(ctx, []models.Ref{ref})
	if err != nil {
		return Counts{}, err
	}
	return m[ref], nil
}

// CountsBatch aggregates many votables in a single query.
func (e *Engine) CountsBatch(ctx context.Context, refs []models.Ref) (map[models.Ref]Counts, error) {
	if len(refs) > MaxBatch {
		return nil, apperrors.InvalidArgument(fmt.Sprintf("at most %d votables per batch", MaxBatch)).
			WithField("count", len(refs))
	}
	for _, ref := range refs {
		if err := validateRef(ref); err != nil {
			return nil, err
		}
	}
	metrics.CountsBatchSize.Observe(float64(len(refs)))
	return e.store.Counts(ctx, refs)
}

// Purge deletes all votes on refs inside the caller's transaction.
func (e *Engine) Purge(ctx context.Context, tx *gorm.DB, refs []models.Ref) error {
	n, err := NewStore(tx).Purge(ctx, refs)
	if err != nil {
		return err
	}
	if n > 0 {
		e.logger.Debug("purged votes", "votables", len(refs), "votes", n)
	}
	return nil
}

type applied struct {
	counts  Counts
	value   int
	outcome string
}

func (e *Engine) apply(ctx context.Context, voterID int, ref models.Ref, decide func(prev int) (int, error)) (Counts, int, error) {
	if voterID <= 0 {
		return Counts{}, 0, apperrors.Unauthorized("voting requires a signed in user")
	}
	if err := validateRef(ref); err != nil {
		return Counts{}, 0, err
	}

	start := e.clock.Now()
	defer func() {
		metrics.VoteDuration.Observe(e.clock.Since(start).Seconds())
	}()

	release, err := e.locker.Lock(ctx, VoteKey{VoterID: voterID, Ref: ref})
	if err != nil {
		return Counts{}, 0, lockError(err)
	}
	defer release()

	res, err := retry.Do(ctx, e.policy, classify, func() (applied, error) {
		var out applied
		err := e.store.Transaction(ctx, func(tx *Store) error {
			ok, err := tx.VoterExists(ctx, voterID)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.Unauthorized("voter does not exist").WithField("user_id", voterID)
			}

			ok, err = tx.VotableExists(ctx, ref)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.NotFound(fmt.Sprintf("%s %d not found", ref.Type, ref.ID))
			}

			prev, err := tx.GetVote(ctx, voterID, ref)
			if err != nil {
				return err
			}
			next, err := decide(prev)
			if err != nil {
				return err
			}
			if err := tx.CompareAndSwap(ctx, voterID, ref, prev, next); err != nil {
				return err
			}

			counts, err := tx.Counts(ctx, []models.Ref{ref})
			if err != nil {
				return err
			}
			out = applied{counts: counts[ref], value: next, outcome: outcomeOf(prev, next)}
			return nil
		})
		return out, err
	})
	if err != nil {
		return Counts{}, 0, err
	}

	metrics.VotesTotal.WithLabelValues(ref.Type.String(), res.outcome).Inc()
	e.logger.Debug("vote applied",
		"user_id", voterID,
		"votable", ref.String(),
		"value", res.value,
		"outcome", res.outcome,
	)
	return res.counts, res.value, nil
}

// lockError reports a caller that gave up as canceled and any other
// failure to get the lock as a retryable outage.
func lockError(err error) error {
	if errors.Is(err, context.Canceled) {
		return apperrors.Canceled("vote abandoned before it was applied", err)
	}
	return apperrors.Unavailable("vote lock unavailable, try again", err)
}

func classify(err error) retry.Action {
	if apperrors.Is(err, apperrors.KindConflict) {
		return retry.Retry
	}
	return retry.Stop
}

func outcomeOf(prev, next int) string {
	switch {
	case prev == next:
		return "unchanged"
	case prev == 0:
		return "created"
	case next == 0:
		return "removed"
	default:
		return "switched"
	}
}

func validateRef(ref models.Ref) error {
	if !ref.Type.Valid() {
		return apperrors.InvalidArgument("unknown votable type").WithField("votable_type", ref.Type.String())
	}
	if ref.ID <= 0 {
		return apperrors.InvalidArgument("votable id must be positive").WithField("votable_id", ref.ID)
	}
	return nil
}
