// Package service contains the business logic of the application. Services
// validate input, enforce ownership rules and orchestrate repositories,
// blob storage and outbound email.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"inkwell/internal/mailer"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo     repository.UserRepository
	tokenRepo    repository.TokenRepository
	mail         mailer.Mailer
	clientDomain string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the authenticated user back to the handler, which
// signs the session token.
type LoginResult struct {
	User *models.User
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	mail mailer.Mailer,
	clientDomain string,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		mail:         mail,
		clientDomain: clientDomain,
	}
}

// Register creates an unverified account and emails a verification link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return models.NewValidationError(err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewConflictError("User already exist")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	user := &models.User{
		Username:        strings.TrimSpace(in.Username),
		Email:           email,
		Password:        string(hashed),
		ProfilePhotoURL: models.DefaultProfilePhotoURL,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	return s.issueVerificationEmail(ctx, user)
}

// Login authenticates credentials. An unverified account gets a fresh
// verification email and a validation error so the client prompts the user
// to check their inbox.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewValidationError("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewValidationError("invalid email or password")
	}

	if !user.IsAccountVerified {
		// Resend the link on every blocked login so the promise in the
		// message below is kept even while an earlier token is still live.
		if err := s.issueVerificationEmail(ctx, user); err != nil {
			return nil, err
		}
		return nil, models.NewValidationError("We sent to you an email, please verify your email address")
	}

	return &LoginResult{User: user}, nil
}

// VerifyEmail consumes a (user, token) pair, marking the account verified.
// Both halves of the link must match or the whole link is treated as invalid.
func (s *AuthService) VerifyEmail(ctx context.Context, userID uint, token string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return models.NewValidationError("invalid link")
		}
		return err
	}

	vt, err := s.tokenRepo.GetByUserAndToken(ctx, user.ID, token)
	if err != nil {
		return err
	}
	if vt == nil {
		return models.NewValidationError("invalid link")
	}

	user.IsAccountVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return s.tokenRepo.DeleteByUser(ctx, user.ID)
}

// issueVerificationEmail mails the user their verification link. An
// unconsumed token is reused so repeated sends all carry the same link.
func (s *AuthService) issueVerificationEmail(ctx context.Context, user *models.User) error {
	vt, err := s.tokenRepo.GetByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if vt == nil {
		token, err := generateToken()
		if err != nil {
			return models.NewInternalError(err)
		}
		vt = &models.VerificationToken{UserID: user.ID, Token: token}
		if err := s.tokenRepo.Create(ctx, vt); err != nil {
			return err
		}
	}

	link := mailer.VerificationLink(s.clientDomain, user.ID, vt.Token)
	if err := s.mail.SendVerificationEmail(ctx, user.Email, link); err != nil {
		return models.NewUpstreamError("Failed to send verification email", err)
	}
	return nil
}

// generateToken returns 32 random bytes hex-encoded.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
