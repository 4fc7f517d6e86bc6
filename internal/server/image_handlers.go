package server

import (
	"encoding/base64"
	"io"
	"strings"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ImageUploadResponse is the API response after uploading an image.
type ImageUploadResponse struct {
	ID          uint   `json:"id"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SizeBytes   int64  `json:"size_bytes"`
}

// ImageDataResponse carries an image inline as base64.
type ImageDataResponse struct {
	ID          uint   `json:"id"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

// UploadImage handles POST /api/images
// @Summary Upload image
// @Description JPEG or PNG. A webp thumbnail is stored alongside.
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} ImageUploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/images [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(models.FieldError{Field: "image", Message: "is required"}))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}

	img, err := s.imageService.Upload(c.UserContext(), service.UploadImageInput{
		OwnerID:     currentUserID(c),
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ImageUploadResponse{
		ID:          img.ID,
		ContentType: img.ContentType,
		Width:       img.Width,
		Height:      img.Height,
		SizeBytes:   img.SizeBytes,
	})
}

// GetImage handles GET /api/images/:id
// @Summary Get image
// @Tags images
// @Produce image/jpeg,image/png,image/webp,json
// @Param id path int true "Image ID"
// @Param variant query string false "original or thumb"
// @Param format query string false "base64 for a JSON body"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /api/images/{id} [get]
func (s *Server) GetImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	blob, err := s.imageService.Read(c.UserContext(), id, strings.ToLower(strings.TrimSpace(c.Query("variant"))))
	if err != nil {
		return respondError(c, err)
	}

	switch strings.ToLower(c.Query("format")) {
	case "":
	case "base64":
		return c.JSON(ImageDataResponse{
			ID:          blob.ID,
			ContentType: blob.ContentType,
			Data:        base64.StdEncoding.EncodeToString(blob.Data),
		})
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(models.FieldError{Field: "format", Message: "must be base64"}))
	}

	c.Set(fiber.HeaderContentType, blob.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(blob.Data)
}
