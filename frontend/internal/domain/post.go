package frontend_domain

import (
	"html/template"

	"github.com/itchan-dev/blogfeed/shared/domain"
)

// Post is a feed entry prepared for one viewer.
type Post struct {
	domain.Post
	BodyHTML  template.HTML
	Comments  []*Comment
	LikeCount int
	// CanEdit is set for the owner; edit and delete are only rendered then.
	CanEdit bool
	// CanLike mirrors the local eligibility check.
	CanLike bool
}

type Comment struct {
	domain.Comment
	ContentHTML template.HTML
}
