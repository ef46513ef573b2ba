package api

import "encoding/json"

// Subscription topics, one per push stream of the managed backend.
const (
	TopicPostCreated    = "onCreatePost"
	TopicPostUpdated    = "onUpdatePost"
	TopicPostDeleted    = "onDeletePost"
	TopicCommentCreated = "onCreateComment"
	TopicLikeCreated    = "onCreateLike"
)

var Topics = []string{
	TopicPostCreated,
	TopicPostUpdated,
	TopicPostDeleted,
	TopicCommentCreated,
	TopicLikeCreated,
}

// Subscription message types.
const (
	MessageStart     = "start"
	MessageStop      = "stop"
	MessageData      = "data"
	MessageError     = "error"
	MessageKeepAlive = "ka"
)

// SubscriptionMessage is one JSON frame on the subscription websocket.
type SubscriptionMessage struct {
	Type    string          `json:"type"`
	Id      string          `json:"id,omitempty"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Notification is the payload of a pg NOTIFY on the events channel. It only
// names the changed row; NOTIFY payloads are too small to carry post bodies.
type Notification struct {
	Topic string `json:"topic"`
	Id    string `json:"id"`
}
