package repository

import (
	"context"
	"errors"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateBio(ctx context.Context, id uint, bio string) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	SetProfileImage(ctx context.Context, id uint, imageID uint) (*models.Image, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	Latest(ctx context.Context, n int) ([]models.User, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// GetByUsername returns nil, nil when no user has the username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no user has the email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return &user, nil
}

// ListByIDs returns the users in the order of ids.
func (r *userRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, dbError(err)
	}
	return orderByIDs(ids, users, func(u models.User) uint { return u.ID }), nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, dbError(err)
	}
	return n > 0, nil
}

// Create inserts the user. A unique violation is reported as a conflict on
// username when the username is taken, otherwise on email.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err == nil {
		r.log.LogCreate(ctx, map[string]any{"id": user.ID})
		return nil
	}
	if !isUniqueConstraintError(err) {
		r.log.LogError(ctx, err, "create")
		return dbError(err)
	}

	taken, lookupErr := r.GetByUsername(ctx, user.Username)
	if lookupErr == nil && taken != nil {
		return models.NewConflictError(models.ReasonDuplicateUsername, "Username is already taken")
	}
	return models.NewConflictError(models.ReasonDuplicateEmail, "Email is already registered")
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return dbError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.log.LogUpdate(ctx, map[string]any{"id": id, "column": column})
	return nil
}

func (r *userRepository) UpdateBio(ctx context.Context, id uint, bio string) error {
	return r.updateColumn(ctx, id, "bio", bio)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateColumn(ctx, id, "password", hash)
}

// SetProfileImage points the user at imageID and removes the metadata row of
// the image it replaces, returning that row so its blobs can be deleted.
func (r *userRepository) SetProfileImage(ctx context.Context, id uint, imageID uint) (*models.Image, error) {
	var replaced *models.Image
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFoundOr(err, "User", id)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", id).Update("profile_image_id", imageID).Error; err != nil {
			return err
		}
		if user.ProfileImageID == nil || *user.ProfileImageID == imageID {
			return nil
		}
		old, err := deleteImageRow(tx, *user.ProfileImageID)
		replaced = old
		return err
	})
	if err != nil {
		return nil, dbError(err)
	}
	return replaced, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := page(r.db.WithContext(ctx).Order("id ASC"), limit, offset).Find(&users).Error; err != nil {
		return nil, dbError(err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, dbError(err)
	}
	return n, nil
}

// Latest returns the n most recently registered users.
func (r *userRepository) Latest(ctx context.Context, n int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("sign_up_date DESC, id DESC").Limit(n).Find(&users).Error; err != nil {
		return nil, dbError(err)
	}
	return users, nil
}
