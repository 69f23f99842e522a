package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func validCreatePostInput(t *testing.T) CreatePostInput {
	return CreatePostInput{
		UserID:           1,
		Title:            "A valid title",
		Description:      "A long enough description",
		Category:         "travel",
		Image:            testImage(t),
		ImageContentType: "image/png",
	}
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopCommentRepo(), &blobStub{}, nil)
	ctx := context.Background()

	t.Run("short title", func(t *testing.T) {
		in := validCreatePostInput(t)
		in.Title = "short"
		_, err := svc.CreatePost(ctx, in)
		assertValidationError(t, err)
	})

	t.Run("short description", func(t *testing.T) {
		in := validCreatePostInput(t)
		in.Description = "tiny"
		_, err := svc.CreatePost(ctx, in)
		assertValidationError(t, err)
	})

	t.Run("missing category", func(t *testing.T) {
		in := validCreatePostInput(t)
		in.Category = ""
		_, err := svc.CreatePost(ctx, in)
		assertValidationError(t, err)
	})

	t.Run("missing image", func(t *testing.T) {
		in := validCreatePostInput(t)
		in.Image = nil
		_, err := svc.CreatePost(ctx, in)
		assertValidationError(t, err)
		assert.Contains(t, err.Error(), "Image is required")
	})
}

func TestPostService_CreatePost_Success(t *testing.T) {
	t.Parallel()

	blobs := &blobStub{}
	var created *models.Post
	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 11
		created = p
		return nil
	}
	postRepo.getByIDFn = func(_ context.Context, id, viewerID uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: viewerID}, nil
	}

	svc := NewPostService(postRepo, noopCommentRepo(), blobs, nil)
	post, err := svc.CreatePost(context.Background(), validCreatePostInput(t))
	require.NoError(t, err)
	assert.Equal(t, uint(11), post.ID)

	require.NotNil(t, created)
	assert.NotEmpty(t, created.ImageURL)
	assert.NotEmpty(t, created.ImageStorageID)
	require.Len(t, blobs.uploads, 1)
	assert.Contains(t, blobs.uploads[0], "posts/1/")
}

func TestPostService_CreatePost_CleansUpBlobOnRepoError(t *testing.T) {
	t.Parallel()

	blobs := &blobStub{}
	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, _ *models.Post) error {
		return models.NewInternalError(errStub)
	}

	svc := NewPostService(postRepo, noopCommentRepo(), blobs, nil)
	_, err := svc.CreatePost(context.Background(), validCreatePostInput(t))
	require.Error(t, err)
	require.Len(t, blobs.uploads, 1)
	assert.Equal(t, blobs.uploads, blobs.deletes)
}

func TestPostService_ListPosts_Modes(t *testing.T) {
	t.Parallel()

	t.Run("paginated mode uses page size", func(t *testing.T) {
		t.Parallel()
		var gotLimit, gotOffset int
		postRepo := noopPostRepo()
		postRepo.listFn = func(_ context.Context, limit, offset int, _ uint) ([]*models.Post, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		}
		svc := NewPostService(postRepo, noopCommentRepo(), &blobStub{}, nil)

		_, err := svc.ListPosts(context.Background(), ListPostsInput{Page: 3})
		require.NoError(t, err)
		assert.Equal(t, PostPageSize, gotLimit)
		assert.Equal(t, 2*PostPageSize, gotOffset)
	})

	t.Run("category mode filters", func(t *testing.T) {
		t.Parallel()
		var gotCategory string
		postRepo := noopPostRepo()
		postRepo.getByCategoryFn = func(_ context.Context, category string, _ uint) ([]*models.Post, error) {
			gotCategory = category
			return nil, nil
		}
		svc := NewPostService(postRepo, noopCommentRepo(), &blobStub{}, nil)

		_, err := svc.ListPosts(context.Background(), ListPostsInput{Category: "travel"})
		require.NoError(t, err)
		assert.Equal(t, "travel", gotCategory)
	})

	t.Run("default mode lists all", func(t *testing.T) {
		t.Parallel()
		called := false
		postRepo := noopPostRepo()
		postRepo.listAllFn = func(_ context.Context, _ uint) ([]*models.Post, error) {
			called = true
			return nil, nil
		}
		svc := NewPostService(postRepo, noopCommentRepo(), &blobStub{}, nil)

		_, err := svc.ListPosts(context.Background(), ListPostsInput{})
		require.NoError(t, err)
		assert.True(t, called)
	})
}

func TestPostService_GetPost_AttachesComments(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.listByPostFn = func(_ context.Context, postID uint) ([]*models.Comment, error) {
		return []*models.Comment{
			{ID: 2, PostID: postID, Text: "second"},
			{ID: 1, PostID: postID, Text: "first"},
		}, nil
	}
	svc := NewPostService(noopPostRepo(), commentRepo, &blobStub{}, nil)

	post, err := svc.GetPost(context.Background(), 5, 0)
	require.NoError(t, err)
	require.Len(t, post.Comments, 2)
	assert.Equal(t, "second", post.Comments[0].Text)
}

func TestPostService_UpdatePost_OwnerOnly(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 10}, nil
	}
	svc := NewPostService(postRepo, noopCommentRepo(), &blobStub{}, nil)

	title := "A brand new title"
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 1, Title: &title})
	assertForbiddenError(t, err)
}

func TestPostService_DeletePost_Authorization(t *testing.T) {
	t.Parallel()

	ownedByOther := func() *postRepoStub {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 10, ImageStorageID: "posts/10/cover.webp"}, nil
		}
		return repo
	}

	t.Run("non-owner forbidden", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(ownedByOther(), noopCommentRepo(), &blobStub{}, nil)
		err := svc.DeletePost(context.Background(), 1, 1)
		assertForbiddenError(t, err)
	})

	t.Run("admin may delete", func(t *testing.T) {
		t.Parallel()
		blobs := &blobStub{}
		commentsDeleted := false
		commentRepo := noopCommentRepo()
		commentRepo.deleteByPostFn = func(_ context.Context, _ uint) error {
			commentsDeleted = true
			return nil
		}
		isAdmin := func(_ context.Context, _ uint) (bool, error) { return true, nil }
		svc := NewPostService(ownedByOther(), commentRepo, blobs, isAdmin)

		require.NoError(t, svc.DeletePost(context.Background(), 1, 1))
		assert.True(t, commentsDeleted)
		assert.Equal(t, []string{"posts/10/cover.webp"}, blobs.deletes)
	})

	t.Run("owner may delete", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		}
		svc := NewPostService(repo, noopCommentRepo(), &blobStub{}, nil)
		assert.NoError(t, svc.DeletePost(context.Background(), 1, 1))
	})
}

func TestPostService_UpdatePostImage_ReplacesOldBlob(t *testing.T) {
	t.Parallel()

	blobs := &blobStub{}
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 1, ImageStorageID: "posts/1/old.webp"}, nil
	}

	svc := NewPostService(postRepo, noopCommentRepo(), blobs, nil)
	_, err := svc.UpdatePostImage(context.Background(), UpdatePostImageInput{
		UserID:           1,
		PostID:           1,
		Image:            testImage(t),
		ImageContentType: "image/png",
	})
	require.NoError(t, err)
	require.Len(t, blobs.uploads, 1)
	assert.Equal(t, []string{"posts/1/old.webp"}, blobs.deletes)
}

func TestPostService_ToggleLike(t *testing.T) {
	t.Parallel()

	t.Run("likes when not yet liked", func(t *testing.T) {
		t.Parallel()
		liked := false
		postRepo := noopPostRepo()
		postRepo.likeFn = func(_ context.Context, _, _ uint) error {
			liked = true
			return nil
		}
		svc := NewPostService(postRepo, noopCommentRepo(), &blobStub{}, nil)

		_, err := svc.ToggleLike(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.True(t, liked)
	})

	t.Run("unlikes when already liked", func(t *testing.T) {
		t.Parallel()
		unliked := false
		postRepo := noopPostRepo()
		postRepo.isLikedFn = func(_ context.Context, _, _ uint) (bool, error) { return true, nil }
		postRepo.unlikeFn = func(_ context.Context, _, _ uint) error {
			unliked = true
			return nil
		}
		svc := NewPostService(postRepo, noopCommentRepo(), &blobStub{}, nil)

		_, err := svc.ToggleLike(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.True(t, unliked)
	})

	t.Run("missing post propagates", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		svc := NewPostService(postRepo, noopCommentRepo(), &blobStub{}, nil)

		_, err := svc.ToggleLike(context.Background(), 1, 99)
		assertErrorCode(t, err, models.CodeNotFound)
	})
}
