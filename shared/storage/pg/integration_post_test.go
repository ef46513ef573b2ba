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

func createTestPost(t *testing.T, owner, title string, createdAt time.Time) domain.PostId {
	t.Helper()
	id, err := storage.CreatePost(context.Background(), domain.PostCreationData{
		OwnerId:       owner,
		OwnerUsername: owner + "-name",
		Title:         title,
		Body:          "body of " + title,
		CreatedAt:     createdAt,
	})
	require.NoError(t, err, "CreatePost should not return an error")
	require.NotEmpty(t, id)
	return id
}

func indexOfPost(posts []domain.Post, id domain.PostId) int {
	for i, p := range posts {
		if p.Id == id {
			return i
		}
	}
	return -1
}

func TestCreateAndGetPost(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id := createTestPost(t, "u1", "first", createdAt)

	post, err := storage.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, post.Id)
	assert.Equal(t, "u1", post.OwnerId)
	assert.Equal(t, "u1-name", post.OwnerUsername)
	assert.Equal(t, "first", post.Title)
	assert.Equal(t, "body of first", post.Body)
	assert.True(t, createdAt.Equal(post.CreatedAt), "created at should round trip, got %s", post.CreatedAt)
	assert.Empty(t, post.Comments)
	assert.Empty(t, post.Likes)

	_, err = storage.GetPost(ctx, "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.Equal(t, 404, internal_errors.StatusCode(err))
}

func TestListPostsNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Now().UTC().Add(time.Hour)
	older := createTestPost(t, "u1", "older", base)
	newer := createTestPost(t, "u2", "newer", base.Add(time.Minute))

	posts, err := storage.ListPosts(ctx)
	require.NoError(t, err)
	iOlder, iNewer := indexOfPost(posts, older), indexOfPost(posts, newer)
	require.NotEqual(t, -1, iOlder)
	require.NotEqual(t, -1, iNewer)
	assert.Less(t, iNewer, iOlder, "newer post should be listed first")
}

func TestListPostsWithCommentsAndLikes(t *testing.T) {
	ctx := context.Background()
	id := createTestPost(t, "u1", "with interactions", time.Now().UTC())

	_, err := storage.CreateComment(ctx, domain.CommentCreationData{PostId: id, AuthorId: "u2", AuthorUsername: "bob", Content: "one"})
	require.NoError(t, err)
	_, err = storage.CreateComment(ctx, domain.CommentCreationData{PostId: id, AuthorId: "u3", AuthorUsername: "carol", Content: "two"})
	require.NoError(t, err)
	_, err = storage.CreateLike(ctx, domain.LikeCreationData{PostId: id, OwnerId: "u2", OwnerUsername: "bob"})
	require.NoError(t, err)
	_, err = storage.CreateLike(ctx, domain.LikeCreationData{PostId: id, OwnerId: "u3", OwnerUsername: "carol"})
	require.NoError(t, err)

	posts, err := storage.ListPosts(ctx)
	require.NoError(t, err)
	i := indexOfPost(posts, id)
	require.NotEqual(t, -1, i)
	post := posts[i]

	require.Len(t, post.Comments, 2)
	assert.Equal(t, "one", post.Comments[0].Content)
	assert.Equal(t, "two", post.Comments[1].Content)
	assert.Equal(t, id, post.Comments[0].PostId)

	require.Len(t, post.Likes, 2)
	assert.Equal(t, []domain.Username{"bob", "carol"}, post.LikerNames())
	assert.Equal(t, domain.LikeCount, post.Likes[0].NumberLikes)
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	id := createTestPost(t, "u1", "before", time.Now().UTC())

	err := storage.UpdatePost(ctx, domain.PostUpdateData{Id: id, Title: "after", Body: "new body"})
	require.NoError(t, err)

	post, err := storage.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "after", post.Title)
	assert.Equal(t, "new body", post.Body)

	err = storage.UpdatePost(ctx, domain.PostUpdateData{Id: "00000000-0000-0000-0000-000000000000", Title: "x", Body: "y"})
	require.Error(t, err)
	assert.Equal(t, 404, internal_errors.StatusCode(err))
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	id := createTestPost(t, "u1", "doomed", time.Now().UTC())
	commentId, err := storage.CreateComment(ctx, domain.CommentCreationData{PostId: id, AuthorId: "u2", AuthorUsername: "bob", Content: "bye"})
	require.NoError(t, err)

	require.NoError(t, storage.DeletePost(ctx, id))

	_, err = storage.GetPost(ctx, id)
	assert.Equal(t, 404, internal_errors.StatusCode(err))
	_, err = storage.GetComment(ctx, commentId)
	assert.Equal(t, 404, internal_errors.StatusCode(err))

	err = storage.DeletePost(ctx, id)
	require.Error(t, err, "deleting twice should fail")
	assert.Equal(t, 404, internal_errors.StatusCode(err))
}
