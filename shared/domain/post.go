package domain

import (
	"time"
)

// to iterate thru layers: handler -> composer/controller -> backend
type PostCreationData struct {
	OwnerId       UserId
	OwnerUsername Username
	Title         PostTitle
	Body          PostBody
	CreatedAt     time.Time
}

type PostUpdateData struct {
	Id    PostId
	Title PostTitle
	Body  PostBody
}

type Post struct {
	Id            PostId    `json:"id"`
	OwnerId       UserId    `json:"postOwnerId"`
	OwnerUsername Username  `json:"postOwnerUsername"`
	Title         PostTitle `json:"postTitle"`
	Body          PostBody  `json:"postBody"`
	CreatedAt     time.Time `json:"createdAt"`
	Comments      Comments  `json:"comments"`
	Likes         Likes     `json:"likes"`
}

func (p *Post) IsOwnedBy(userId UserId) bool {
	return userId != "" && p.OwnerId == userId
}

func (p *Post) LikedBy(userId UserId) bool {
	for _, like := range p.Likes {
		if like.OwnerId == userId {
			return true
		}
	}
	return false
}

// LikerNames returns usernames of the users who liked the post, in like order.
func (p *Post) LikerNames() []Username {
	names := make([]Username, 0, len(p.Likes))
	for _, like := range p.Likes {
		names = append(names, like.OwnerUsername)
	}
	return names
}

// Clone returns a copy that shares no slices with p.
func (p Post) Clone() Post {
	p.Comments = append(Comments(nil), p.Comments...)
	p.Likes = append(Likes(nil), p.Likes...)
	return p
}
