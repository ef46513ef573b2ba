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

const postColumns = `id::text, owner_id, owner_username, title, body, created_at`

func scanPost(row interface{ Scan(...any) error }, p *domain.Post) error {
	return row.Scan(&p.Id, &p.OwnerId, &p.OwnerUsername, &p.Title, &p.Body, &p.CreatedAt)
}

// ListPosts returns every post with its comments and likes, newest first.
func (s *Storage) ListPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.enrichPosts(ctx, s.db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Storage) GetPost(ctx context.Context, id domain.PostId) (domain.Post, error) {
	var p domain.Post
	err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, internal_errors.NotFound("Post not found")
		}
		return p, fmt.Errorf("failed to get post: %w", err)
	}
	posts := []domain.Post{p}
	if err := s.enrichPosts(ctx, s.db, posts); err != nil {
		return p, err
	}
	return posts[0], nil
}

// enrichPosts attaches comments and likes to posts in two queries.
func (s *Storage) enrichPosts(ctx context.Context, q Querier, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	index := make(map[domain.PostId]int, len(posts))
	for i, p := range posts {
		ids[i] = p.Id
		index[p.Id] = i
	}

	comments, err := q.QueryContext(ctx, `
	SELECT `+commentColumns+`
	FROM comments
	WHERE post_id = ANY($1::uuid[])
	ORDER BY created_at, id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query comments: %w", err)
	}
	defer comments.Close()
	for comments.Next() {
		var c domain.Comment
		if err := scanComment(comments, &c); err != nil {
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		p := &posts[index[c.PostId]]
		p.Comments = append(p.Comments, c)
	}
	if err := comments.Err(); err != nil {
		return err
	}

	likes, err := q.QueryContext(ctx, `
	SELECT `+likeColumns+`
	FROM likes
	WHERE post_id = ANY($1::uuid[])
	ORDER BY seq`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query likes: %w", err)
	}
	defer likes.Close()
	for likes.Next() {
		var l domain.Like
		if err := scanLike(likes, &l); err != nil {
			return fmt.Errorf("failed to scan like: %w", err)
		}
		p := &posts[index[l.PostId]]
		p.Likes = append(p.Likes, l)
	}
	return likes.Err()
}

func (s *Storage) CreatePost(ctx context.Context, data domain.PostCreationData) (domain.PostId, error) {
	var id domain.PostId
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO posts(owner_id, owner_username, title, body, created_at)
	VALUES($1, $2, $3, $4, $5)
	RETURNING id::text`,
		data.OwnerId, data.OwnerUsername, data.Title, data.Body, data.CreatedAt.UTC()).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create post: %w", err)
	}
	return id, nil
}

func (s *Storage) UpdatePost(ctx context.Context, data domain.PostUpdateData) error {
	result, err := s.db.ExecContext(ctx, `
	UPDATE posts SET title = $1, body = $2
	WHERE id = $3`, data.Title, data.Body, data.Id)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return expectOneRow(result, "Post not found")
}

func (s *Storage) DeletePost(ctx context.Context, id domain.PostId) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE post_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return expectOneRow(result, "Post not found")
	})
}

func expectOneRow(result sql.Result, notFound string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return internal_errors.NotFound(notFound)
	}
	return nil
}
