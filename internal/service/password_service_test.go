package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService_SendResetLink(t *testing.T) {
	t.Parallel()

	t.Run("unknown email is not found", func(t *testing.T) {
		t.Parallel()
		svc := NewPasswordService(noopUserRepo(), noopTokenRepo(), &mailerStub{}, testClientDomain)
		err := svc.SendResetLink(context.Background(), "ghost@example.com")
		assertErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("reuses live token", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 3, Email: "a@example.com"}, nil
		}
		tokenRepo := noopTokenRepo()
		tokenRepo.getByUserFn = func(_ context.Context, _ uint) (*models.VerificationToken, error) {
			return &models.VerificationToken{UserID: 3, Token: "existing"}, nil
		}
		created := false
		tokenRepo.createFn = func(_ context.Context, _ *models.VerificationToken) error {
			created = true
			return nil
		}
		mail := &mailerStub{}
		svc := NewPasswordService(userRepo, tokenRepo, mail, testClientDomain)

		require.NoError(t, svc.SendResetLink(context.Background(), "a@example.com"))
		assert.False(t, created)
		require.Len(t, mail.resets, 1)
		assert.Contains(t, mail.resets[0], "existing")
	})

	t.Run("mints token when none live", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 3, Email: "a@example.com"}, nil
		}
		var issued *models.VerificationToken
		tokenRepo := noopTokenRepo()
		tokenRepo.createFn = func(_ context.Context, vt *models.VerificationToken) error {
			issued = vt
			return nil
		}
		mail := &mailerStub{}
		svc := NewPasswordService(userRepo, tokenRepo, mail, testClientDomain)

		require.NoError(t, svc.SendResetLink(context.Background(), "a@example.com"))
		require.NotNil(t, issued)
		assert.Len(t, issued.Token, 64)
		require.Len(t, mail.resets, 1)
	})

	t.Run("mailer failure surfaces as upstream error", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 3, Email: "a@example.com"}, nil
		}
		svc := NewPasswordService(userRepo, noopTokenRepo(), &mailerStub{failWith: errStub}, testClientDomain)
		err := svc.SendResetLink(context.Background(), "a@example.com")
		assertErrorCode(t, err, models.CodeUpstream)
	})
}

func TestPasswordService_ValidateResetLink(t *testing.T) {
	t.Parallel()

	t.Run("no token is invalid", func(t *testing.T) {
		t.Parallel()
		svc := NewPasswordService(noopUserRepo(), noopTokenRepo(), &mailerStub{}, testClientDomain)
		err := svc.ValidateResetLink(context.Background(), 1, "whatever")
		assertValidationError(t, err)
	})

	t.Run("matching pair is valid", func(t *testing.T) {
		t.Parallel()
		tokenRepo := noopTokenRepo()
		tokenRepo.getByUserAndTokenFn = func(_ context.Context, userID uint, token string) (*models.VerificationToken, error) {
			return &models.VerificationToken{UserID: userID, Token: token}, nil
		}
		svc := NewPasswordService(noopUserRepo(), tokenRepo, &mailerStub{}, testClientDomain)
		assert.NoError(t, svc.ValidateResetLink(context.Background(), 1, "goodtoken"))
	})
}

func TestPasswordService_ResetPassword(t *testing.T) {
	t.Parallel()

	t.Run("weak password rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewPasswordService(noopUserRepo(), noopTokenRepo(), &mailerStub{}, testClientDomain)
		err := svc.ResetPassword(context.Background(), ResetPasswordInput{UserID: 1, Token: "tok", Password: "weak"})
		assertValidationError(t, err)
	})

	t.Run("invalid link rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewPasswordService(noopUserRepo(), noopTokenRepo(), &mailerStub{}, testClientDomain)
		err := svc.ResetPassword(context.Background(), ResetPasswordInput{UserID: 1, Token: "bad", Password: "GoodPass12"})
		assertValidationError(t, err)
	})

	t.Run("success rehashes, verifies and consumes token", func(t *testing.T) {
		t.Parallel()
		var saved *models.User
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Password: "oldhash"}, nil
		}
		userRepo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		tokenRepo := noopTokenRepo()
		tokenRepo.getByUserAndTokenFn = func(_ context.Context, userID uint, token string) (*models.VerificationToken, error) {
			return &models.VerificationToken{UserID: userID, Token: token}, nil
		}
		consumed := false
		tokenRepo.deleteByUserFn = func(_ context.Context, _ uint) error {
			consumed = true
			return nil
		}

		svc := NewPasswordService(userRepo, tokenRepo, &mailerStub{}, testClientDomain)
		err := svc.ResetPassword(context.Background(), ResetPasswordInput{UserID: 1, Token: "tok", Password: "FreshPass12"})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.True(t, saved.IsAccountVerified)
		assert.True(t, consumed)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("FreshPass12")))
	})
}
