package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
// @Summary Publish a post with a mandatory cover image
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData string true "Category"
// @Param image formData file true "Cover image"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	image, contentType, err := readFormFile(c, "image")
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:           currentUserID(c),
		Title:            c.FormValue("title"),
		Description:      c.FormValue("description"),
		Category:         c.FormValue("category"),
		Image:            image,
		ImageContentType: contentType,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ListPosts handles GET /api/posts
// Three modes: ?pageNumber=N pages newest-first, ?category=X filters,
// otherwise all posts. Anonymous callers get liked=false everywhere.
// @Summary List posts
// @Tags posts
// @Produce json
// @Param pageNumber query int false "Page number"
// @Param category query string false "Category filter"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	viewerID, _ := middleware.OptionalUserID(c)

	page := c.QueryInt("pageNumber", 0)
	if page < 0 {
		page = 0
	}

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Page:     page,
		Category: c.Query("category"),
		ViewerID: viewerID,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(posts)
}

// CountPosts handles GET /api/posts/count (admin only)
// @Summary Count posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{count=int64}
// @Router /posts/count [get]
func (s *Server) CountPosts(c *fiber.Ctx) error {
	count, err := s.postService.CountPosts(c.Context())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post with its comments
// @Tags posts
// @Produce json
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID, _ := middleware.OptionalUserID(c)
	post, err := s.postService.GetPost(c.Context(), id, viewerID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id (owner only)
// @Summary Update a post's text fields
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,description=string,category=string} true "Fields to update"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:      currentUserID(c),
		PostID:      id,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(post)
}

// UpdatePostImage handles PUT /api/posts/update-image/:id (owner only)
// @Summary Replace a post's cover image
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "New cover image"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/update-image/{id} [put]
func (s *Server) UpdatePostImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	image, contentType, err := readFormFile(c, "image")
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	post, err := s.postService.UpdatePostImage(c.Context(), service.UpdatePostImageInput{
		UserID:           currentUserID(c),
		PostID:           id,
		Image:            image,
		ImageContentType: contentType,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id (owner or admin)
// @Summary Delete a post and its comments, likes and image
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// ToggleLike handles PUT /api/posts/like/:id
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/like/{id} [put]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.ToggleLike(c.Context(), currentUserID(c), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(post)
}
