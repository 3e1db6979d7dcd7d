package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/commandes/app/models"
	"github.com/shashiranjanraj/commandes/pkg/metrics"
	"gorm.io/gorm"
)

// PasswordHasher turns a plain password into a storable hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UserInput carries the writable user fields. Password is plain text.
type UserInput struct {
	Username string
	Password string
	Type     string
}

// UserRepository handles database operations for User.
type UserRepository struct {
	db     *gorm.DB
	hasher PasswordHasher
}

func NewUserRepository(db *gorm.DB, hasher PasswordHasher) *UserRepository {
	return &UserRepository{db: db, hasher: hasher}
}

// Create hashes the password and inserts the user.
func (r *UserRepository) Create(ctx context.Context, in UserInput) (*models.User, error) {
	defer metrics.ObserveDBQuery("users.create", time.Now())

	hash, err := r.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	if used, err := r.usernameUsed(ctx, in.Username, 0); err != nil {
		return nil, err
	} else if used {
		return nil, ErrUsernameTaken
	}

	user := &models.User{Username: in.Username, Password: hash, Type: userType(in.Type)}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("repositories: create user: %w", err)
	}
	return user, nil
}

// FindAll returns every user ordered by id.
func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	defer metrics.ObserveDBQuery("users.find_all", time.Now())

	users := []models.User{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("repositories: find users: %w", err)
	}
	return users, nil
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	defer metrics.ObserveDBQuery("users.find_by_id", time.Now())
	return r.first(ctx, "id = ?", id)
}

// FindByUsername looks up a user by login name. The result carries the
// password hash for verification.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	defer metrics.ObserveDBQuery("users.find_by_username", time.Now())
	return r.first(ctx, "username = ?", username)
}

// Update overwrites username, type and password. The password is always
// re-hashed, even when unchanged.
func (r *UserRepository) Update(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	defer metrics.ObserveDBQuery("users.update", time.Now())

	if _, err := r.first(ctx, "id = ?", id); err != nil {
		return nil, err
	}
	if used, err := r.usernameUsed(ctx, in.Username, id); err != nil {
		return nil, err
	} else if used {
		return nil, ErrUsernameTaken
	}
	hash, err := r.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"username": in.Username,
		"password": hash,
		"type":     userType(in.Type),
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("repositories: update user %d: %w", id, err)
	}
	return r.first(ctx, "id = ?", id)
}

// Delete removes the user and reports whether a row was removed.
func (r *UserRepository) Delete(ctx context.Context, id uint) (bool, error) {
	defer metrics.ObserveDBQuery("users.delete", time.Now())

	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("repositories: delete user %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repositories: find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) usernameUsed(ctx context.Context, username string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("repositories: check username: %w", err)
	}
	return n > 0, nil
}

func userType(t string) string {
	if t == "" {
		return models.TypeStaff
	}
	return t
}
