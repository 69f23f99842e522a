package service

import (
	"bytes"
	"context"
	"fmt"

	"inkwell/internal/imaging"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/storage"
	"inkwell/internal/validation"

	"github.com/google/uuid"
)

// PostPageSize is the number of posts per page in paginated listings.
const PostPageSize = 3

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	blobs       storage.BlobStorage
	isAdmin     adminCheck
}

type CreatePostInput struct {
	UserID           uint
	Title            string
	Description      string
	Category         string
	Image            []byte
	ImageContentType string
}

type ListPostsInput struct {
	// Page selects paginated mode when > 0.
	Page int
	// Category selects category-filter mode when non-empty.
	Category string
	ViewerID uint
}

type UpdatePostInput struct {
	UserID      uint
	PostID      uint
	Title       *string
	Description *string
	Category    *string
}

type UpdatePostImageInput struct {
	UserID           uint
	PostID           uint
	Image            []byte
	ImageContentType string
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	blobs storage.BlobStorage,
	isAdmin adminCheck,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		blobs:       blobs,
		isAdmin:     isAdmin,
	}
}

// CreatePost validates input, stores the mandatory cover image and creates
// the post.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostDescription(in.Description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostCategory(in.Category); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len(in.Image) == 0 {
		return nil, models.NewValidationError("Image is required")
	}

	processed, err := imaging.Process(in.Image, in.ImageContentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("posts/%d/%s.webp", in.UserID, uuid.NewString())
	res, err := s.blobs.Upload(ctx, key, processed.ContentType, bytes.NewReader(processed.Data))
	if err != nil {
		return nil, models.NewUpstreamError("Failed to store post image", err)
	}

	post := &models.Post{
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		UserID:         in.UserID,
		ImageURL:       res.URL,
		ImageStorageID: res.StorageID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		_ = s.blobs.Delete(ctx, res.StorageID)
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// ListPosts returns posts in one of three modes: a page of PostPageSize
// newest-first, all posts in a category, or all posts.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	switch {
	case in.Page > 0:
		offset := (in.Page - 1) * PostPageSize
		return s.postRepo.List(ctx, PostPageSize, offset, in.ViewerID)
	case in.Category != "":
		return s.postRepo.GetByCategory(ctx, in.Category, in.ViewerID)
	default:
		return s.postRepo.ListAll(ctx, in.ViewerID)
	}
}

// GetPost returns a single post with its comments and viewer-specific liked flag.
func (s *PostService) GetPost(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Comments = make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		post.Comments = append(post.Comments, *c)
	}
	return post, nil
}

// CountPosts returns the total number of posts.
func (s *PostService) CountPosts(ctx context.Context) (int64, error) {
	return s.postRepo.Count(ctx)
}

// UpdatePost applies partial updates. Only the post owner may update; admins
// deliberately cannot edit other people's words.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(in.UserID, post.UserID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := validation.ValidatePostTitle(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Title = *in.Title
	}
	if in.Description != nil {
		if err := validation.ValidatePostDescription(*in.Description); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Description = *in.Description
	}
	if in.Category != nil {
		if err := validation.ValidatePostCategory(*in.Category); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Category = *in.Category
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// UpdatePostImage replaces the cover image. Owner only. The old blob is
// deleted only after the row points at the new one.
func (s *PostService) UpdatePostImage(ctx context.Context, in UpdatePostImageInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(in.UserID, post.UserID); err != nil {
		return nil, err
	}

	if len(in.Image) == 0 {
		return nil, models.NewValidationError("Image is required")
	}

	processed, err := imaging.Process(in.Image, in.ImageContentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("posts/%d/%s.webp", post.UserID, uuid.NewString())
	res, err := s.blobs.Upload(ctx, key, processed.ContentType, bytes.NewReader(processed.Data))
	if err != nil {
		return nil, models.NewUpstreamError("Failed to store post image", err)
	}

	oldID := post.ImageStorageID
	post.ImageURL = res.URL
	post.ImageStorageID = res.StorageID
	if err := s.postRepo.Update(ctx, post); err != nil {
		_ = s.blobs.Delete(ctx, res.StorageID)
		return nil, err
	}

	if oldID != "" {
		_ = s.blobs.Delete(ctx, oldID)
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// DeletePost removes a post, its comments, its likes and its image blob.
// Owner or admin.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}

	if err := requireOwnerOrAdmin(ctx, userID, post.UserID, s.isAdmin); err != nil {
		return err
	}

	if post.ImageStorageID != "" {
		if err := s.blobs.Delete(ctx, post.ImageStorageID); err != nil {
			return models.NewUpstreamError("Failed to delete post image", err)
		}
	}

	if err := s.commentRepo.DeleteByPost(ctx, postID); err != nil {
		return err
	}
	if err := s.postRepo.DeleteLikesByPost(ctx, postID); err != nil {
		return err
	}

	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike likes the post if the caller hasn't liked it, unlikes otherwise.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if liked {
		err = s.postRepo.Unlike(ctx, userID, postID)
	} else {
		err = s.postRepo.Like(ctx, userID, postID)
	}
	if err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}
