package server

import (
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. It accepts JSON or multipart form data;
// a multipart request may carry an optional "image" file that is persisted to
// local storage before the post is created.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title   string `json:"title" form:"title"`
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	imagePath, err := s.saveUploadedImage(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		ImagePath: imagePath,
	})
	if err != nil {
		// The post was never created; don't leave the file behind.
		if imagePath != "" {
			_ = s.store.Remove(imagePath)
		}
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts with page/limit/search/sortBy/sortOrder
// query parameters.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := s.optionalUserID(c)

	posts, pagination, err := s.postService.ListPosts(ctx, parseListQuery(c, userID))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"posts":      posts,
		"pagination": pagination,
	})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(ctx, id, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id. Only provided fields are changed;
// the replaced image, if any, is cleaned up after the update persists.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title   string `json:"title" form:"title"`
		Content string `json:"content" form:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	imagePath, err := s.saveUploadedImage(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID:    userID,
		PostID:    postID,
		Title:     req.Title,
		Content:   req.Content,
		ImagePath: imagePath,
	})
	if err != nil {
		if imagePath != "" {
			_ = s.store.Remove(imagePath)
		}
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(ctx, service.DeletePostInput{
		UserID: userID,
		PostID: postID,
	}); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like. The same endpoint both likes and
// unlikes: a second call from the same user reverses the first.
func (s *Server) LikePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	likes, liked, err := s.postService.ToggleLike(ctx, userID, postID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"likes": likes,
		"liked": liked,
	})
}

// saveUploadedImage persists the optional "image" multipart file and returns
// its public reference. A request without a file yields "" and no error.
func (s *Server) saveUploadedImage(c *fiber.Ctx) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		// Not a multipart request, or no image part: nothing to save.
		return "", nil
	}

	maxBytes := int64(s.config.MaxUploadSizeMB) * 1024 * 1024
	if maxBytes > 0 && file.Size > maxBytes {
		return "", models.NewValidationError("Image exceeds the maximum upload size")
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", models.NewValidationError("Only image uploads are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return "", models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	ref, err := s.store.Save(file.Filename, src)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return ref, nil
}
