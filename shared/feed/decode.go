package feed

import (
	"encoding/json"
	"fmt"

	"github.com/itchan-dev/blogfeed/shared/api"
	"github.com/itchan-dev/blogfeed/shared/domain"
)

// Decode turns the payload of one subscription topic into an Event.
func Decode(topic string, payload []byte) (Event, error) {
	switch topic {
	case api.TopicPostCreated, api.TopicPostUpdated, api.TopicPostDeleted:
		var post domain.Post
		if err := json.Unmarshal(payload, &post); err != nil {
			return Event{}, fmt.Errorf("decode %s: %w", topic, err)
		}
		if post.Id == "" {
			return Event{}, fmt.Errorf("decode %s: post without id", topic)
		}
		switch topic {
		case api.TopicPostCreated:
			return NewPostCreated(post), nil
		case api.TopicPostUpdated:
			return NewPostUpdated(post), nil
		default:
			return NewPostDeleted(post), nil
		}
	case api.TopicCommentCreated:
		var comment domain.Comment
		if err := json.Unmarshal(payload, &comment); err != nil {
			return Event{}, fmt.Errorf("decode %s: %w", topic, err)
		}
		return NewCommentAdded(comment), nil
	case api.TopicLikeCreated:
		var like domain.Like
		if err := json.Unmarshal(payload, &like); err != nil {
			return Event{}, fmt.Errorf("decode %s: %w", topic, err)
		}
		return NewLikeAdded(like), nil
	}
	return Event{}, fmt.Errorf("unknown topic %q", topic)
}
