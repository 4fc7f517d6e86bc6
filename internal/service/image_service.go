package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"strings"

	"github.com/andriinero/inkspace-backend/internal/cache"
	"github.com/andriinero/inkspace-backend/internal/config"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/repository"
	"github.com/andriinero/inkspace-backend/internal/storage"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

const (
	DefaultImageMaxUploadSizeMB = 2
	ThumbnailMaxSize            = 256
	WebPQuality                 = 70
	ThumbnailContentType        = "image/webp"
)

// Image variants served by Read.
const (
	VariantOriginal = "original"
	VariantThumb    = "thumb"
)

type UploadImageInput struct {
	OwnerID     uint
	Filename    string
	ContentType string
	Content     []byte
}

// ImageBlob is a stored image variant ready to serve.
type ImageBlob struct {
	ID          uint
	ContentType string
	Data        []byte
}

type ImageService struct {
	images             repository.ImageRepository
	users              repository.UserRepository
	blobs              storage.BlobStore
	cache              *cache.Store
	maxUploadSizeBytes int64
}

func NewImageService(
	images repository.ImageRepository,
	users repository.UserRepository,
	blobs storage.BlobStore,
	store *cache.Store,
	cfg *config.Config,
) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	return &ImageService{
		images:             images,
		users:              users,
		blobs:              blobs,
		cache:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Upload validates a JPEG or PNG, stores it with a webp thumbnail and
// records its metadata.
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*models.Image, error) {
	if in.OwnerID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if len(in.Content) == 0 {
		return nil, models.NewFieldValidationError(models.FieldError{Field: "image", Message: "is required"})
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewFieldValidationError(models.FieldError{
			Field:   "image",
			Message: fmt.Sprintf("must not exceed %dMB", s.maxUploadSizeBytes/(1024*1024)),
		})
	}

	detected := normalizeContentType(http.DetectContentType(in.Content))
	if !isAllowedImageMIME(detected) {
		return nil, models.NewFieldValidationError(models.FieldError{Field: "image", Message: "must be a jpeg or png image"})
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, detected) {
		return nil, models.NewFieldValidationError(models.FieldError{Field: "image", Message: "content type does not match the file"})
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil || decodedFormatToMime(format) != detected {
		return nil, models.NewFieldValidationError(models.FieldError{Field: "image", Message: "is not a valid image file"})
	}

	thumb, err := encodeWebP(resizeToFit(decoded, ThumbnailMaxSize, ThumbnailMaxSize), WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	key := uuid.NewString()
	record := &models.Image{
		OwnerID:     in.OwnerID,
		Key:         key,
		ThumbKey:    key + "-thumb",
		Filename:    in.Filename,
		ContentType: detected,
		SizeBytes:   int64(len(in.Content)),
		Width:       decoded.Bounds().Dx(),
		Height:      decoded.Bounds().Dy(),
	}

	if err := s.blobs.Put(ctx, record.Key, detected, in.Content); err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.blobs.Put(ctx, record.ThumbKey, ThumbnailContentType, thumb); err != nil {
		deleteImageBlobs(ctx, s.blobs, *record)
		return nil, models.NewInternalError(err)
	}
	if err := s.images.Create(ctx, record); err != nil {
		deleteImageBlobs(ctx, s.blobs, *record)
		return nil, err
	}
	return record, nil
}

// Read loads the requested variant of image id.
func (s *ImageService) Read(ctx context.Context, id uint, variant string) (*ImageBlob, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key, contentType := img.Key, img.ContentType
	switch variant {
	case "", VariantOriginal:
	case VariantThumb:
		if img.ThumbKey == "" {
			return nil, models.NewNotFoundError("Thumbnail of image", id)
		}
		key, contentType = img.ThumbKey, ThumbnailContentType
	default:
		return nil, models.NewFieldValidationError(models.FieldError{Field: "variant", Message: "must be one of original thumb"})
	}

	data, err := s.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, models.NewNotFoundError("Image", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &ImageBlob{ID: id, ContentType: contentType, Data: data}, nil
}

// SetProfileImage points userID's profile at imageID, which the user must
// own and which must not be attached elsewhere, and deletes the image it
// replaces.
func (s *ImageService) SetProfileImage(ctx context.Context, userID, imageID uint) error {
	if imageID == 0 {
		return models.NewFieldValidationError(models.FieldError{Field: "image_id", Message: "is required"})
	}
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img.OwnerID != userID {
		return models.NewForbiddenError("Profile image must be an image you uploaded")
	}
	if err := checkImageFree(ctx, s.images, imageID, userID, 0); err != nil {
		return err
	}

	replaced, err := s.users.SetProfileImage(ctx, userID, imageID)
	if err != nil {
		return err
	}
	s.cache.InvalidateAuthors(ctx)
	s.cache.InvalidateAllPosts(ctx)
	if replaced != nil {
		deleteImageBlobs(ctx, s.blobs, *replaced)
	}
	return nil
}

// checkImageFree rejects imageID when a profile or thumbnail other than the
// excepted user's or post's already uses it.
func checkImageFree(ctx context.Context, images repository.ImageRepository, imageID, exceptUserID, exceptPostID uint) error {
	inUse, err := images.InUse(ctx, imageID, exceptUserID, exceptPostID)
	if err != nil {
		return err
	}
	if inUse {
		return models.NewConflictError(models.ReasonImageInUse, "Image is already attached elsewhere")
	}
	return nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/png":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	default:
		return ""
	}
}
