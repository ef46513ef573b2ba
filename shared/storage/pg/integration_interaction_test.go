package pg

import (
	"context"
	"testing"
	"time"

	"github.com/itchan-dev/blogfeed/shared/domain"
	internal_errors "github.com/itchan-dev/blogfeed/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLike(t *testing.T) {
	ctx := context.Background()
	postId := createTestPost(t, "u1", "likeable", time.Now().UTC())

	id, err := storage.CreateLike(ctx, domain.LikeCreationData{PostId: postId, OwnerId: "u2", OwnerUsername: "bob"})
	require.NoError(t, err)

	like, err := storage.GetLike(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, postId, like.PostId)
	assert.Equal(t, "u2", like.OwnerId)
	assert.Equal(t, "bob", like.OwnerUsername)
	assert.Equal(t, 1, like.NumberLikes)

	t.Run("duplicate like is stored", func(t *testing.T) {
		_, err := storage.CreateLike(ctx, domain.LikeCreationData{PostId: postId, OwnerId: "u2", OwnerUsername: "bob"})
		require.NoError(t, err)
		post, err := storage.GetPost(ctx, postId)
		require.NoError(t, err)
		assert.Len(t, post.Likes, 2)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := storage.CreateLike(ctx, domain.LikeCreationData{PostId: "00000000-0000-0000-0000-000000000000", OwnerId: "u2", OwnerUsername: "bob"})
		require.Error(t, err)
		assert.Equal(t, 404, internal_errors.StatusCode(err))
	})
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()
	postId := createTestPost(t, "u1", "commentable", time.Now().UTC())

	id, err := storage.CreateComment(ctx, domain.CommentCreationData{PostId: postId, AuthorId: "u2", AuthorUsername: "bob", Content: "nice"})
	require.NoError(t, err)

	comment, err := storage.GetComment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, postId, comment.PostId)
	assert.Equal(t, "bob", comment.AuthorUsername)
	assert.Equal(t, "nice", comment.Content)
	assert.False(t, comment.CreatedAt.IsZero())

	_, err = storage.CreateComment(ctx, domain.CommentCreationData{PostId: "00000000-0000-0000-0000-000000000000", AuthorId: "u2", AuthorUsername: "bob", Content: "lost"})
	require.Error(t, err)
	assert.Equal(t, 404, internal_errors.StatusCode(err))
}
