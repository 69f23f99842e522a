package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"inkwell/internal/imaging"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/storage"
	"inkwell/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	tokenRepo   repository.TokenRepository
	blobs       storage.BlobStorage
}

type UpdateProfileInput struct {
	UserID   uint
	Username *string
	Bio      *string
	Password *string
}

type UploadProfilePhotoInput struct {
	UserID      uint
	Content     []byte
	ContentType string
}

func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	tokenRepo repository.TokenRepository,
	blobs storage.BlobStorage,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		tokenRepo:   tokenRepo,
		blobs:       blobs,
	}
}

// GetProfiles returns all user profiles. Admin-only, enforced by routing.
func (s *UserService) GetProfiles(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.userRepo.List(ctx, limit, offset)
}

// GetProfile returns a single public profile with the user's posts. Posts
// come through the post repository so they carry their like counts.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.GetByUserID(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	user.Posts = make([]models.Post, 0, len(posts))
	for _, p := range posts {
		user.Posts = append(user.Posts, *p)
	}
	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

// UpdateProfile applies partial updates to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = strings.TrimSpace(*in.Username)
	}
	if in.Bio != nil {
		if err := validation.ValidateBio(*in.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Bio = *in.Bio
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadProfilePhoto normalizes the uploaded image, stores it and replaces
// the previous photo blob if one exists.
func (s *UserService) UploadProfilePhoto(ctx context.Context, in UploadProfilePhotoInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	processed, err := imaging.Process(in.Content, in.ContentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("profiles/%d/%s.webp", user.ID, uuid.NewString())
	res, err := s.blobs.Upload(ctx, key, processed.ContentType, bytes.NewReader(processed.Data))
	if err != nil {
		return nil, models.NewUpstreamError("Failed to store profile photo", err)
	}

	oldID := user.ProfilePhotoID
	user.ProfilePhotoURL = res.URL
	user.ProfilePhotoID = &res.StorageID
	if err := s.userRepo.Update(ctx, user); err != nil {
		// Roll back the orphaned blob
		_ = s.blobs.Delete(ctx, res.StorageID)
		return nil, err
	}

	if oldID != nil {
		_ = s.blobs.Delete(ctx, *oldID)
	}
	return user, nil
}

// DeleteProfile removes the user and everything they own: blobs first, then
// comments, likes, posts, verification tokens and finally the user row.
// Routing enforces that only the user or an admin reaches this.
func (s *UserService) DeleteProfile(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByIDWithPosts(ctx, userID)
	if err != nil {
		return err
	}

	storageIDs := make([]string, 0, len(user.Posts)+1)
	for _, post := range user.Posts {
		if post.ImageStorageID != "" {
			storageIDs = append(storageIDs, post.ImageStorageID)
		}
	}
	if user.ProfilePhotoID != nil {
		storageIDs = append(storageIDs, *user.ProfilePhotoID)
	}
	if err := s.blobs.DeleteMany(ctx, storageIDs); err != nil {
		return models.NewUpstreamError("Failed to delete stored images", err)
	}

	for _, post := range user.Posts {
		if err := s.commentRepo.DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		if err := s.postRepo.DeleteLikesByPost(ctx, post.ID); err != nil {
			return err
		}
		if err := s.postRepo.Delete(ctx, post.ID); err != nil {
			return err
		}
	}

	if err := s.commentRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.postRepo.DeleteLikesByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.tokenRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, userID)
}
