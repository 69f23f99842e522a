package service

import (
	"context"

	"inkwell/internal/mailer"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// PasswordService implements the password reset flow: request a link,
// validate it, then set the new password.
type PasswordService struct {
	userRepo     repository.UserRepository
	tokenRepo    repository.TokenRepository
	mail         mailer.Mailer
	clientDomain string
}

type ResetPasswordInput struct {
	UserID   uint
	Token    string
	Password string
}

func NewPasswordService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	mail mailer.Mailer,
	clientDomain string,
) *PasswordService {
	return &PasswordService{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		mail:         mail,
		clientDomain: clientDomain,
	}
}

// SendResetLink emails a password reset link. Reuses the user's live token
// if one exists so repeated requests don't invalidate an in-flight link.
func (s *PasswordService) SendResetLink(ctx context.Context, email string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User with given email", email)
	}

	token, err := s.tokenRepo.GetByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if token == nil {
		raw, err := generateToken()
		if err != nil {
			return models.NewInternalError(err)
		}
		token = &models.VerificationToken{UserID: user.ID, Token: raw}
		if err := s.tokenRepo.Create(ctx, token); err != nil {
			return err
		}
	}

	link := mailer.PasswordResetLink(s.clientDomain, user.ID, token.Token)
	if err := s.mail.SendPasswordResetEmail(ctx, user.Email, link); err != nil {
		return models.NewUpstreamError("Failed to send password reset email", err)
	}
	return nil
}

// ValidateResetLink checks that the (user, token) pair names a live link.
func (s *PasswordService) ValidateResetLink(ctx context.Context, userID uint, token string) error {
	vt, err := s.tokenRepo.GetByUserAndToken(ctx, userID, token)
	if err != nil {
		return err
	}
	if vt == nil {
		return models.NewValidationError("invalid link")
	}
	return nil
}

// ResetPassword sets a new password for a valid link. Completing a reset
// also verifies the account, since the user has proven control of the inbox.
func (s *PasswordService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if err := validation.ValidatePassword(in.Password); err != nil {
		return models.NewValidationError(err.Error())
	}

	vt, err := s.tokenRepo.GetByUserAndToken(ctx, in.UserID, in.Token)
	if err != nil {
		return err
	}
	if vt == nil {
		return models.NewValidationError("invalid link")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	user.Password = string(hashed)
	user.IsAccountVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return s.tokenRepo.DeleteByUser(ctx, in.UserID)
}
