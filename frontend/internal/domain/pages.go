package frontend_domain

type FeedPageData struct {
	Posts []*Post
	// LikeError is the viewer's last rejected-like message.
	LikeError string
	Draft     Draft
}

// Draft refills the composer after a failed submit.
type Draft struct {
	Title string
	Body  string
}
