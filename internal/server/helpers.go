package server

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/andriinero/inkspace-backend/internal/middleware"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/service"
	"github.com/andriinero/inkspace-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination response headers.
const (
	HeaderTotalCount = "X-Total-Count"
	HeaderPage       = "X-Page"
	HeaderPerPage    = "X-Per-Page"
)

var codeStatus = map[string]int{
	models.CodeValidation:   fiber.StatusBadRequest,
	models.CodeUnauthorized: fiber.StatusUnauthorized,
	models.CodeForbidden:    fiber.StatusForbidden,
	models.CodeNotFound:     fiber.StatusNotFound,
	models.CodeConflict:     fiber.StatusConflict,
	models.CodeTimeout:      fiber.StatusGatewayTimeout,
	models.CodeInternal:     fiber.StatusInternalServerError,
}

// mapServiceError returns the HTTP status for err. Context deadline errors
// map to 504 whatever layer wrapped them.
func mapServiceError(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusGatewayTimeout
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if status, ok := codeStatus[appErr.Code]; ok {
			return status
		}
	}
	return fiber.StatusInternalServerError
}

// statusCode is the inverse of codeStatus for errors raised by Fiber itself.
func statusCode(status int) string {
	for code, s := range codeStatus {
		if s == status {
			return code
		}
	}
	if status == fiber.StatusMethodNotAllowed {
		return models.CodeNotFound
	}
	return models.CodeInternal
}

// respondError writes err with its mapped status. Internal errors are logged
// with their cause and answered without it.
func respondError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	if status == fiber.StatusGatewayTimeout && !models.HasCode(err, models.CodeTimeout) {
		err = models.NewTimeoutError(err)
	}
	if status >= fiber.StatusInternalServerError && status != fiber.StatusGatewayTimeout {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			"path", c.Path(), "error", err.Error())
		if !models.HasCode(err, models.CodeInternal) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(models.FieldError{Field: param, Message: "must be a positive integer"}).
				WithMessage("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userid" -> "user ID", "topicId" -> "topic ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	lower := strings.ToLower(param)
	if strings.HasSuffix(lower, "id") && len(param) > 2 {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// parseBody decodes the JSON body into out. On failure it writes a 400 and
// returns errResponseWritten.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// queryInt reads an optional integer query parameter. A present but
// non-numeric value is a field error.
func queryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, models.NewFieldValidationError(models.FieldError{Field: name, Message: "must be a number"})
	}
	return &v, nil
}

// queryID reads an optional positive id query parameter.
func queryID(c *fiber.Ctx, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return nil, models.NewFieldValidationError(models.FieldError{Field: name, Message: "must be a positive integer"})
	}
	id := uint(v)
	return &id, nil
}

// parsePageRequest reads limit and page. On failure it writes a 400 and
// returns errResponseWritten.
func parsePageRequest(c *fiber.Ctx) (service.PageRequest, error) {
	limit, limitErr := queryInt(c, "limit")
	page, pageErr := queryInt(c, "page")
	if err := validation.Merge(limitErr, pageErr); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, err)
		return service.PageRequest{}, errResponseWritten
	}
	return service.PageRequest{Limit: limit, Page: page}, nil
}

// respondPage writes the items as a JSON array and the page window as
// headers.
func respondPage[T any](c *fiber.Ctx, res *service.PageResult[T]) error {
	c.Set(HeaderTotalCount, strconv.FormatInt(res.Total, 10))
	c.Set(HeaderPage, strconv.Itoa(res.Page.Number()))
	c.Set(HeaderPerPage, strconv.Itoa(res.Page.Limit))
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(items)
}

// currentUserID returns the authenticated caller. Routes using it sit
// behind AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := middleware.UserID(c)
	return id
}
