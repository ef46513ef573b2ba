package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/blogfeed/shared/domain"
	internal_errors "github.com/itchan-dev/blogfeed/shared/errors"
	"github.com/lib/pq"
)

const (
	commentColumns = `id::text, post_id::text, author_id, author_username, content, created_at`
	likeColumns    = `id::text, post_id::text, owner_id, owner_username, number_likes`

	foreignKeyViolation = "23503"
)

func scanComment(row interface{ Scan(...any) error }, c *domain.Comment) error {
	return row.Scan(&c.Id, &c.PostId, &c.AuthorId, &c.AuthorUsername, &c.Content, &c.CreatedAt)
}

func scanLike(row interface{ Scan(...any) error }, l *domain.Like) error {
	return row.Scan(&l.Id, &l.PostId, &l.OwnerId, &l.OwnerUsername, &l.NumberLikes)
}

// missingPost maps a foreign key violation on post_id to a 404.
func missingPost(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return internal_errors.NotFound("Post not found")
	}
	return err
}

// CreateLike stores a like. Duplicate (post, user) pairs are not rejected:
// the backend does not enforce the one-like-per-user rule.
func (s *Storage) CreateLike(ctx context.Context, data domain.LikeCreationData) (domain.LikeId, error) {
	var id domain.LikeId
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO likes(post_id, owner_id, owner_username, number_likes)
	VALUES($1, $2, $3, $4)
	RETURNING id::text`,
		data.PostId, data.OwnerId, data.OwnerUsername, domain.LikeCount).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create like: %w", missingPost(err))
	}
	return id, nil
}

func (s *Storage) GetLike(ctx context.Context, id domain.LikeId) (domain.Like, error) {
	var l domain.Like
	err := scanLike(s.db.QueryRowContext(ctx, `SELECT `+likeColumns+` FROM likes WHERE id = $1`, id), &l)
	if errors.Is(err, sql.ErrNoRows) {
		return l, internal_errors.NotFound("Like not found")
	}
	return l, err
}

func (s *Storage) CreateComment(ctx context.Context, data domain.CommentCreationData) (domain.CommentId, error) {
	var id domain.CommentId
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO comments(post_id, author_id, author_username, content)
	VALUES($1, $2, $3, $4)
	RETURNING id::text`,
		data.PostId, data.AuthorId, data.AuthorUsername, data.Content).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create comment: %w", missingPost(err))
	}
	return id, nil
}

func (s *Storage) GetComment(ctx context.Context, id domain.CommentId) (domain.Comment, error) {
	var c domain.Comment
	err := scanComment(s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id), &c)
	if errors.Is(err, sql.ErrNoRows) {
		return c, internal_errors.NotFound("Comment not found")
	}
	return c, err
}
