package domain

import "time"

// Likes are always submitted with a count of one.
const LikeCount = 1

type LikeCreationData struct {
	PostId        PostId
	OwnerId       UserId
	OwnerUsername Username
}

type Like struct {
	Id            LikeId   `json:"id"`
	PostId        PostId   `json:"likePostId"`
	OwnerId       UserId   `json:"likeOwnerId"`
	OwnerUsername Username `json:"likeOwnerUsername"`
	NumberLikes   int      `json:"numberLikes"`
}

type CommentCreationData struct {
	PostId         PostId
	AuthorId       UserId
	AuthorUsername Username
	Content        string
}

type Comment struct {
	Id             CommentId `json:"id"`
	PostId         PostId    `json:"commentPostId"`
	AuthorId       UserId    `json:"commentOwnerId"`
	AuthorUsername Username  `json:"commentOwnerUsername"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}
