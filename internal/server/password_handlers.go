package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SendResetLink handles POST /api/password/reset-password-link
// @Summary Email a password reset link
// @Tags password
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account email"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /password/reset-password-link [post]
func (s *Server) SendResetLink(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.passwordService.SendResetLink(c.Context(), req.Email); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Password reset link sent to your email account"})
}

// ValidateResetLink handles GET /api/password/reset-password/:userId/:token
// @Summary Check that a reset link is still valid
// @Tags password
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /password/reset-password/{userId}/{token} [get]
func (s *Server) ValidateResetLink(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.passwordService.ValidateResetLink(c.Context(), userID, c.Params("token")); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{"message": "valid url"})
}

// ResetPassword handles POST /api/password/reset-password/:userId/:token
// @Summary Set a new password using a reset link
// @Tags password
// @Accept json
// @Produce json
// @Param request body object{password=string} true "New password"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /password/reset-password/{userId}/{token} [post]
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.passwordService.ResetPassword(c.Context(), service.ResetPasswordInput{
		UserID:   userID,
		Token:    c.Params("token"),
		Password: req.Password,
	}); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}
