package feed

import "github.com/itchan-dev/blogfeed/shared/domain"

const NoLikesText = "Liked by No one"

// LikePreview is the hover list of users who liked a post.
//
// With Accumulate set, Enter appends to the names gathered by earlier hovers
// until Leave is called. Without it every Enter starts from an empty list.
type LikePreview struct {
	Accumulate bool

	hovering bool
	names    []domain.Username
}

// Enter flips the hovering flag and collects the likers of postId.
func (p *LikePreview) Enter(posts []domain.Post, postId domain.PostId) []domain.Username {
	p.hovering = !p.hovering
	if !p.Accumulate {
		p.names = nil
	}
	if post, ok := Find(posts, postId); ok {
		p.names = append(p.names, post.LikerNames()...)
	}
	return p.Names()
}

// Leave flips the hovering flag and clears the collected names.
func (p *LikePreview) Leave() {
	p.hovering = !p.hovering
	p.names = nil
}

func (p *LikePreview) Hovering() bool {
	return p.hovering
}

func (p *LikePreview) Names() []domain.Username {
	return append([]domain.Username(nil), p.names...)
}

// Label is the heading shown above the names.
func (p *LikePreview) Label() string {
	if len(p.names) == 0 {
		return NoLikesText
	}
	return "Liked by:"
}
