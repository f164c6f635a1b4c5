package server

import (
	"errors"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts the :id route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseListQuery extracts the browse query parameters. Out-of-range or unknown
// values fall back to defaults rather than erroring.
func parseListQuery(c *fiber.Ctx, currentUserID uint) service.ListPostsInput {
	in := service.ListPostsInput{
		Page:          c.QueryInt("page", 1),
		PageSize:      c.QueryInt("limit", 10),
		Search:        strings.TrimSpace(c.Query("search")),
		SortBy:        c.Query("sortBy", repository.SortByCreatedAt),
		SortOrder:     c.Query("sortOrder", "desc"),
		CurrentUserID: currentUserID,
	}
	return in
}

// mapServiceError translates an application error code into an HTTP status.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "AUTHENTICATION_ERROR":
		return fiber.StatusUnauthorized
	case "UNAUTHORIZED":
		return fiber.StatusForbidden
	case "NOT_FOUND":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
