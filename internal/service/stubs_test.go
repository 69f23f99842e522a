package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByIDWithPostsFn func(context.Context, uint) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
	updateFn           func(context.Context, *models.User) error
	deleteFn           func(context.Context, uint) error
	listFn             func(context.Context, int, int) ([]models.User, error)
	countFn            func(context.Context) (int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithPosts(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDWithPostsFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Count(ctx context.Context) (int64, error) { return s.countFn(ctx) }

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "testuser"}, nil
		},
		getByIDWithPostsFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "testuser"}, nil
		},
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
		updateFn:     func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		listFn:       func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		countFn:      func(_ context.Context) (int64, error) { return 0, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn            func(context.Context, *models.Post) error
	getByIDFn           func(context.Context, uint, uint) (*models.Post, error)
	getByUserIDFn       func(context.Context, uint, uint) ([]*models.Post, error)
	getByCategoryFn     func(context.Context, string, uint) ([]*models.Post, error)
	listFn              func(context.Context, int, int, uint) ([]*models.Post, error)
	listAllFn           func(context.Context, uint) ([]*models.Post, error)
	updateFn            func(context.Context, *models.Post) error
	deleteFn            func(context.Context, uint) error
	countFn             func(context.Context) (int64, error)
	isLikedFn           func(context.Context, uint, uint) (bool, error)
	likeFn              func(context.Context, uint, uint) error
	unlikeFn            func(context.Context, uint, uint) error
	deleteLikesByPostFn func(context.Context, uint) error
	deleteLikesByUserFn func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID, viewerID uint) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, viewerID)
}
func (s *postRepoStub) GetByCategory(ctx context.Context, category string, viewerID uint) ([]*models.Post, error) {
	return s.getByCategoryFn(ctx, category, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, viewerID)
}
func (s *postRepoStub) ListAll(ctx context.Context, viewerID uint) ([]*models.Post, error) {
	return s.listAllFn(ctx, viewerID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *postRepoStub) Count(ctx context.Context) (int64, error)  { return s.countFn(ctx) }
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) DeleteLikesByPost(ctx context.Context, postID uint) error {
	return s.deleteLikesByPostFn(ctx, postID)
}
func (s *postRepoStub) DeleteLikesByUser(ctx context.Context, userID uint) error {
	return s.deleteLikesByUserFn(ctx, userID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		},
		getByUserIDFn:       func(_ context.Context, _, _ uint) ([]*models.Post, error) { return nil, nil },
		getByCategoryFn:     func(_ context.Context, _ string, _ uint) ([]*models.Post, error) { return nil, nil },
		listFn:              func(_ context.Context, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listAllFn:           func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		updateFn:            func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:            func(_ context.Context, _ uint) error { return nil },
		countFn:             func(_ context.Context) (int64, error) { return 0, nil },
		isLikedFn:           func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeFn:              func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:            func(_ context.Context, _, _ uint) error { return nil },
		deleteLikesByPostFn: func(_ context.Context, _ uint) error { return nil },
		deleteLikesByUserFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	listAllFn      func(context.Context) ([]*models.Comment, error)
	listByPostFn   func(context.Context, uint) ([]*models.Comment, error)
	updateFn       func(context.Context, *models.Comment) error
	deleteFn       func(context.Context, uint) error
	deleteByPostFn func(context.Context, uint) error
	deleteByUserFn func(context.Context, uint) error
	countFn        func(context.Context) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListAll(ctx context.Context) ([]*models.Comment, error) {
	return s.listAllFn(ctx)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *commentRepoStub) DeleteByPost(ctx context.Context, postID uint) error {
	return s.deleteByPostFn(ctx, postID)
}
func (s *commentRepoStub) DeleteByUser(ctx context.Context, userID uint) error {
	return s.deleteByUserFn(ctx, userID)
}
func (s *commentRepoStub) Count(ctx context.Context) (int64, error) { return s.countFn(ctx) }

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listAllFn:      func(_ context.Context) ([]*models.Comment, error) { return nil, nil },
		listByPostFn:   func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		deleteByPostFn: func(_ context.Context, _ uint) error { return nil },
		deleteByUserFn: func(_ context.Context, _ uint) error { return nil },
		countFn:        func(_ context.Context) (int64, error) { return 0, nil },
	}
}

// tokenRepoStub is a stub for repository.TokenRepository.
type tokenRepoStub struct {
	getByUserFn         func(context.Context, uint) (*models.VerificationToken, error)
	getByUserAndTokenFn func(context.Context, uint, string) (*models.VerificationToken, error)
	createFn            func(context.Context, *models.VerificationToken) error
	deleteByUserFn      func(context.Context, uint) error
}

func (s *tokenRepoStub) GetByUser(ctx context.Context, userID uint) (*models.VerificationToken, error) {
	return s.getByUserFn(ctx, userID)
}
func (s *tokenRepoStub) GetByUserAndToken(ctx context.Context, userID uint, token string) (*models.VerificationToken, error) {
	return s.getByUserAndTokenFn(ctx, userID, token)
}
func (s *tokenRepoStub) Create(ctx context.Context, token *models.VerificationToken) error {
	return s.createFn(ctx, token)
}
func (s *tokenRepoStub) DeleteByUser(ctx context.Context, userID uint) error {
	return s.deleteByUserFn(ctx, userID)
}

func noopTokenRepo() *tokenRepoStub {
	return &tokenRepoStub{
		getByUserFn: func(_ context.Context, _ uint) (*models.VerificationToken, error) { return nil, nil },
		getByUserAndTokenFn: func(_ context.Context, _ uint, _ string) (*models.VerificationToken, error) {
			return nil, nil
		},
		createFn:       func(_ context.Context, _ *models.VerificationToken) error { return nil },
		deleteByUserFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// blobStub records storage calls.
type blobStub struct {
	uploads  []string
	deletes  []string
	uploadFn func(context.Context, string, string, io.Reader) (*storage.UploadResult, error)
}

func (s *blobStub) Upload(ctx context.Context, key, contentType string, body io.Reader) (*storage.UploadResult, error) {
	s.uploads = append(s.uploads, key)
	if s.uploadFn != nil {
		return s.uploadFn(ctx, key, contentType, body)
	}
	return &storage.UploadResult{URL: "http://blobs.test/" + key, StorageID: key}, nil
}
func (s *blobStub) Delete(_ context.Context, storageID string) error {
	s.deletes = append(s.deletes, storageID)
	return nil
}
func (s *blobStub) DeleteMany(ctx context.Context, storageIDs []string) error {
	for _, id := range storageIDs {
		if id == "" {
			continue
		}
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// mailerStub records outbound mail.
type mailerStub struct {
	verifications []string
	resets        []string
	failWith      error
}

func (s *mailerStub) SendVerificationEmail(_ context.Context, to string, link string) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.verifications = append(s.verifications, to+" "+link)
	return nil
}
func (s *mailerStub) SendPasswordResetEmail(_ context.Context, to string, link string) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.resets = append(s.resets, to+" "+link)
	return nil
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertErrorCode(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertErrorCode(t, err, models.CodeForbidden)
}

var errStub = errors.New("stub failure")
