package domain

type (
	PostId    = string
	UserId    = string
	LikeId    = string
	CommentId = string

	Username  = string
	PostTitle = string
	PostBody  = string

	Comments = []Comment
	Likes    = []Like
)
