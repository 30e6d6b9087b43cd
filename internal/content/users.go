package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/database"
	"github.com/emilythestrangee/pyra/backend/internal/models"
)

// CreateUser inserts u. Usernames and emails are unique.
func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now()
	}

	err := r.db.WithContext(ctx).Create(u).Error
	if database.IsDuplicate(err) {
		return apperrors.Conflict("username or email already taken", err)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *Repository) UserByID(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if database.IsNotFound(err) {
		return nil, apperrors.NotFound("user not found").WithField("user_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (r *Repository) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).Take(&u).Error
	if database.IsNotFound(err) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

// UsersByIDs returns the users that exist among ids, ordered by id.
func (r *Repository) UsersByIDs(ctx context.Context, ids []int) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}

// UpdateUser changes username, email and password hash; empty values are
// left alone. Hashing is the caller's job.
func (r *Repository) UpdateUser(ctx context.Context, id int, req models.UpdateUserRequest, passwordHash string) (*models.User, error) {
	u, err := r.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(req.Username); name != "" {
		updates["username"] = name
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		updates["email"] = email
	}
	if passwordHash != "" {
		updates["password_hash"] = passwordHash
	}
	if len(updates) == 0 {
		return u, nil
	}

	err = r.db.WithContext(ctx).Model(u).Updates(updates).Error
	if database.IsDuplicate(err) {
		return nil, apperrors.Conflict("username or email already taken", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return r.UserByID(ctx, id)
}
