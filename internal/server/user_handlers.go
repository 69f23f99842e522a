package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfiles handles GET /api/users/profile (admin only)
// @Summary List all user profiles
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /users/profile [get]
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := s.userService.GetProfiles(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(users)
}

// CountUsers handles GET /api/users/count (admin only)
// @Summary Count registered users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{count=int64}
// @Router /users/count [get]
func (s *Server) CountUsers(c *fiber.Ctx) error {
	count, err := s.userService.CountUsers(c.Context())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// GetProfile handles GET /api/users/profile/:id
// @Summary Get a public profile with the user's posts
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/profile/{id} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// UpdateProfile handles PUT /api/users/profile/:id (self only)
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{username=string,bio=string,password=string} true "Fields to update"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/profile/{id} [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
		Password *string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:   id,
		Username: req.Username,
		Bio:      req.Bio,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// UploadProfilePhoto handles POST /api/users/profile/profile-photo-upload
// @Summary Upload a profile photo
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Profile photo"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/profile/profile-photo-upload [post]
func (s *Server) UploadProfilePhoto(c *fiber.Ctx) error {
	content, contentType, err := readFormFile(c, "image")
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if len(content) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image is required"))
	}

	user, err := s.userService.UploadProfilePhoto(c.Context(), service.UploadProfilePhotoInput{
		UserID:      currentUserID(c),
		Content:     content,
		ContentType: contentType,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// DeleteProfile handles DELETE /api/users/profile/:id (self or admin)
// @Summary Delete an account and everything it owns
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/profile/{id} [delete]
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteProfile(c.Context(), id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "your profile account has been deleted"})
}
