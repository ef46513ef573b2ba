package api

import (
	"time"

	"github.com/itchan-dev/blogfeed/shared/domain"
)

// Request DTOs shared by the frontend handlers and the backend client.
// Field names follow the managed backend's schema.

type CreatePostRequest struct {
	OwnerId       string    `json:"postOwnerId" validate:"required"`
	OwnerUsername string    `json:"postOwnerUsername" validate:"required"`
	Title         string    `json:"postTitle" validate:"required"`
	Body          string    `json:"postBody" validate:"required"`
	CreatedAt     time.Time `json:"createdAt" validate:"required"`
}

type UpdatePostRequest struct {
	Id    string `json:"id" validate:"required"`
	Title string `json:"postTitle" validate:"required"`
	Body  string `json:"postBody" validate:"required"`
}

type CreateLikeRequest struct {
	NumberLikes   int    `json:"numberLikes" validate:"eq=1"`
	OwnerId       string `json:"likeOwnerId" validate:"required"`
	OwnerUsername string `json:"likeOwnerUsername" validate:"required"`
	PostId        string `json:"likePostId" validate:"required"`
}

type CreateCommentRequest struct {
	PostId         string `json:"commentPostId" validate:"required"`
	AuthorId       string `json:"commentOwnerId" validate:"required"`
	AuthorUsername string `json:"commentOwnerUsername" validate:"required"`
	Content        string `json:"content" validate:"required"`
}

// Response DTOs

type ListPostsResponse struct {
	Items []domain.Post `json:"items"`
}

// CreatedResponse is returned by every create mutation.
type CreatedResponse struct {
	Id string `json:"id"`
}

type UserInfoResponse struct {
	Id        string    `json:"id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LikedByResponse struct {
	Hovering bool     `json:"hovering"`
	Label    string   `json:"label"`
	Names    []string `json:"names"`
}

func NewCreatePostRequest(data domain.PostCreationData) CreatePostRequest {
	return CreatePostRequest{
		OwnerId:       data.OwnerId,
		OwnerUsername: data.OwnerUsername,
		Title:         data.Title,
		Body:          data.Body,
		CreatedAt:     data.CreatedAt.UTC(),
	}
}

func NewCreateLikeRequest(data domain.LikeCreationData) CreateLikeRequest {
	return CreateLikeRequest{
		NumberLikes:   domain.LikeCount,
		OwnerId:       data.OwnerId,
		OwnerUsername: data.OwnerUsername,
		PostId:        data.PostId,
	}
}

func NewCreateCommentRequest(data domain.CommentCreationData) CreateCommentRequest {
	return CreateCommentRequest{
		PostId:         data.PostId,
		AuthorId:       data.AuthorId,
		AuthorUsername: data.AuthorUsername,
		Content:        data.Content,
	}
}
