package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/itchan-dev/blogfeed/shared/api"
	"github.com/itchan-dev/blogfeed/shared/domain"
	"github.com/itchan-dev/blogfeed/shared/utils"
)

func (c *APIClient) ListPosts(ctx context.Context) ([]domain.Post, error) {
	resp, err := c.do(ctx, "GET", "/v1/posts", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp, "list posts")
	}
	var response api.ListPostsResponse
	if err := utils.Decode(resp.Body, &response); err != nil {
		return nil, fmt.Errorf("cannot decode posts response: %w", err)
	}
	return response.Items, nil
}

func postPath(id domain.PostId) string {
	return "/v1/posts/" + url.PathEscape(id)
}

func (c *APIClient) CreatePost(ctx context.Context, data domain.PostCreationData) (domain.PostId, error) {
	return c.create(ctx, "/v1/posts", api.NewCreatePostRequest(data), "create post")
}

func (c *APIClient) UpdatePost(ctx context.Context, data domain.PostUpdateData) error {
	jsonBody, err := json.Marshal(api.UpdatePostRequest{Id: data.Id, Title: data.Title, Body: data.Body})
	if err != nil {
		return fmt.Errorf("failed to marshal post data: %w", err)
	}

	resp, err := c.do(ctx, "PUT", postPath(data.Id), bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp, "update post")
	}
	return nil
}

func (c *APIClient) DeletePost(ctx context.Context, id domain.PostId) error {
	resp, err := c.do(ctx, "DELETE", postPath(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp, "delete post")
	}
	return nil
}

func (c *APIClient) CreateLike(ctx context.Context, data domain.LikeCreationData) (domain.LikeId, error) {
	return c.create(ctx, "/v1/likes", api.NewCreateLikeRequest(data), "like post")
}

func (c *APIClient) CreateComment(ctx context.Context, data domain.CommentCreationData) (domain.CommentId, error) {
	return c.create(ctx, "/v1/comments", api.NewCreateCommentRequest(data), "create comment")
}

// create validates and posts a creation request, returning the new id.
func (c *APIClient) create(ctx context.Context, path string, request any, action string) (string, error) {
	if err := utils.Validate(request); err != nil {
		return "", err
	}
	jsonBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, "POST", path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", responseError(resp, action)
	}
	var created api.CreatedResponse
	if err := utils.Decode(resp.Body, &created); err != nil {
		return "", fmt.Errorf("cannot decode %s response: %w", action, err)
	}
	return created.Id, nil
}
