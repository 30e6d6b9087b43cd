package voting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/database"
	"github.com/emilythestrangee/pyra/backend/internal/models"
)

// ErrVoteChanged means the row no longer held the value a write expected.
var ErrVoteChanged = errors.New("vote changed concurrently")

// Store reads and writes vote rows. A Store built on a transaction handle
// keeps every call inside that transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn with a Store bound to a new transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// GetVote returns the voter's current value on ref, 0 when there is none.
func (s *Store) GetVote(ctx context.Context, voterID int, ref models.Ref) (int, error) {
	var vote models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND votable_type = ? AND votable_id = ?", voterID, ref.Type, ref.ID).
		Take(&vote).Error
	if database.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read vote: %w", err)
	}
	return vote.Value, nil
}

// CompareAndSwap moves the voter's value on ref from prev to next and fails
// with a Conflict if the stored value is no longer prev. A value of 0 means
// no row.
func (s *Store) CompareAndSwap(ctx context.Context, voterID int, ref models.Ref, prev, next int) error {
	if prev == next {
		return nil
	}
	db := s.db.WithContext(ctx)

	if prev == 0 {
		err := db.Create(&models.Vote{
			UserID:      voterID,
			VotableType: ref.Type,
			VotableID:   ref.ID,
			Value:       next,
		}).Error
		if database.IsDuplicate(err) {
			return apperrors.Conflict("vote changed concurrently", ErrVoteChanged)
		}
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
		return nil
	}

	scope := db.Model(&models.Vote{}).
		Where("user_id = ? AND votable_type = ? AND votable_id = ? AND value = ?", voterID, ref.Type, ref.ID, prev)

	var result *gorm.DB
	if next == 0 {
		result = scope.Delete(&models.Vote{})
	} else {
		result = scope.Update("value", next)
	}
	if result.Error != nil {
		return fmt.Errorf("failed to write vote: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Conflict("vote changed concurrently", ErrVoteChanged)
	}
	return nil
}

// Upsert sets the voter's value on ref, deleting the row for 0.
func (s *Store) Upsert(ctx context.Context, voterID int, ref models.Ref, value int) error {
	if err := ValidateValue(value); err != nil {
		return err
	}
	prev, err := s.GetVote(ctx, voterID, ref)
	if err != nil {
		return err
	}
	return s.CompareAndSwap(ctx, voterID, ref, prev, value)
}

func (s *Store) VoterExists(ctx context.Context, voterID int) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", voterID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to look up voter: %w", err)
	}
	return n > 0, nil
}

// VotableExists reports whether the entity ref points at is still there.
// Inside a transaction on postgres the row stays share-locked until commit.
func (s *Store) VotableExists(ctx context.Context, ref models.Ref) (bool, error) {
	var model any
	switch ref.Type {
	case models.VotableArticle:
		model = &models.Article{}
	case models.VotableFactCheck:
		model = &models.FactCheck{}
	case models.VotableComment:
		model = &models.Comment{}
	default:
		return false, apperrors.InvalidArgument("unknown votable type").WithField("votable_type", int(ref.Type))
	}

	// The shared lock keeps a delete from purging votes between this
	// check and the write that follows it in the same transaction.
	var ids []int
	err := s.db.WithContext(ctx).
		Scopes(database.ForShare).
		Model(model).
		Where("id = ?", ref.ID).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", ref, err)
	}
	return len(ids) > 0, nil
}

type countRow struct {
	VotableType models.VotableType
	VotableID   int
	Likes       int
	Dislikes    int
}

// Counts aggregates likes and dislikes for every ref in one query. Refs
// without votes map to zero counts.
func (s *Store) Counts(ctx context.Context, refs []models.Ref) (map[models.Ref]Counts, error) {
	out := make(map[models.Ref]Counts, len(refs))
	for _, ref := range refs {
		out[ref] = Counts{}
	}
	if len(refs) == 0 {
		return out, nil
	}

	cond, args := refFilter(refs)
	if cond == "" {
		return out, nil
	}
	var rows []countRow
	err := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("votable_type, votable_id, " +
			"SUM(CASE WHEN value = 1 THEN 1 ELSE 0 END) AS likes, " +
			"SUM(CASE WHEN value = -1 THEN 1 ELSE 0 END) AS dislikes").
		Where(cond, args...).
		Group("votable_type, votable_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate votes: %w", err)
	}

	for _, r := range rows {
		out[models.Ref{Type: r.VotableType, ID: r.VotableID}] = Counts{Likes: r.Likes, Dislikes: r.Dislikes}
	}
	return out, nil
}

// Purge deletes every vote on the given refs and returns how many went.
func (s *Store) Purge(ctx context.Context, refs []models.Ref) (int64, error) {
	if len(refs) == 0 {
		return 0, nil
	}
	cond, args := refFilter(refs)
	if cond == "" {
		return 0, nil
	}
	result := s.db.WithContext(ctx).Where(cond, args...).Delete(&models.Vote{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge votes: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// refFilter groups ids by type: (votable_type = ? AND votable_id IN ?) OR ...
func refFilter(refs []models.Ref) (string, []any) {
	byType := make(map[models.VotableType][]int)
	for _, ref := range refs {
		byType[ref.Type] = append(byType[ref.Type], ref.ID)
	}

	var conds []string
	var args []any
	for _, t := range models.VotableTypes {
		ids, ok := byType[t]
		if !ok || !t.Valid() {
			continue
		}
		conds = append(conds, "(votable_type = ? AND votable_id IN ?)")
		args = append(args, t, ids)
	}
	return strings.Join(conds, " OR "), args
}
