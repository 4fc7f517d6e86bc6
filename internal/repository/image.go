package repository

import (
	"context"
	"errors"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/observability"

	"gorm.io/gorm"
)

// ImageRepository stores image metadata.
type ImageRepository interface {
	Create(ctx context.Context, img *models.Image) error
	GetByID(ctx context.Context, id uint) (*models.Image, error)
	// InUse reports whether a profile or thumbnail other than the given
	// user's or post's already points at image id. Zero excludes nothing.
	InUse(ctx context.Context, id, exceptUserID, exceptPostID uint) (bool, error)
}

type imageRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewImageRepository creates a new ImageRepository.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db, log: observability.NewRepoLogger("images")}
}

func (r *imageRepository) Create(ctx context.Context, img *models.Image) error {
	if err := r.db.WithContext(ctx).Create(img).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return dbError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"id": img.ID, "owner_id": img.OwnerID})
	return nil
}

func (r *imageRepository) GetByID(ctx context.Context, id uint) (*models.Image, error) {
	var img models.Image
	if err := r.db.WithContext(ctx).First(&img, id).Error; err != nil {
		return nil, notFoundOr(err, "Image", id)
	}
	return &img, nil
}

func (r *imageRepository) InUse(ctx context.Context, id, exceptUserID, exceptPostID uint) (bool, error) {
	db := r.db.WithContext(ctx)
	users := db.Model(&models.User{}).Where("profile_image_id = ?", id)
	if exceptUserID != 0 {
		users = users.Where("id <> ?", exceptUserID)
	}
	var n int64
	if err := users.Count(&n).Error; err != nil {
		return false, dbError(err)
	}
	if n > 0 {
		return true, nil
	}

	posts := db.Model(&models.Post{}).Where("thumbnail_image_id = ?", id)
	if exceptPostID != 0 {
		posts = posts.Where("id <> ?", exceptPostID)
	}
	if err := posts.Count(&n).Error; err != nil {
		return false, dbError(err)
	}
	return n > 0, nil
}

// referencedImages returns the subset of ids some user profile or post
// thumbnail still points at.
func referencedImages(db *gorm.DB, ids []uint) (map[uint]bool, error) {
	refs := make(map[uint]bool)
	if len(ids) == 0 {
		return refs, nil
	}
	var profile, thumb []uint
	if err := db.Model(&models.User{}).Where("profile_image_id IN ?", ids).Pluck("profile_image_id", &profile).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Post{}).Where("thumbnail_image_id IN ?", ids).Pluck("thumbnail_image_id", &thumb).Error; err != nil {
		return nil, err
	}
	for _, id := range append(profile, thumb...) {
		refs[id] = true
	}
	return refs, nil
}

// deleteImageRow deletes image id through db and returns the removed row.
// It returns nil when no such image exists or something still references it.
func deleteImageRow(db *gorm.DB, id uint) (*models.Image, error) {
	var img models.Image
	if err := db.First(&img, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	refs, err := referencedImages(db, []uint{id})
	if err != nil {
		return nil, err
	}
	if refs[id] {
		return nil, nil
	}
	if err := db.Delete(&models.Image{}, id).Error; err != nil {
		return nil, err
	}
	return &img, nil
}
