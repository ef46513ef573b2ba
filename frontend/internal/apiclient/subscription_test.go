package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/itchan-dev/blogfeed/shared/api"
	"github.com/itchan-dev/blogfeed/shared/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubscriptions is a websocket endpoint speaking the subscription protocol.
type fakeSubscriptions struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conns   []*websocket.Conn
	ops     []map[string]string // topic -> op id, per connection
	stopped []string

	started chan int      // connection index, once all topics started
	closed  chan struct{} // a connection read its close frame or failed
}

func newFakeSubscriptions(t *testing.T) *fakeSubscriptions {
	return &fakeSubscriptions{
		t:       t,
		started: make(chan int, 4),
		closed:  make(chan struct{}, 4),
	}
}

func (f *fakeSubscriptions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/v1/posts" {
		io.WriteString(w, `{"items":[{"id":"s1","postTitle":"from snapshot","createdAt":"2024-01-01T00:00:00Z"}]}`)
		return
	}
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	f.mu.Lock()
	index := len(f.conns)
	f.conns = append(f.conns, conn)
	f.ops = append(f.ops, map[string]string{})
	f.mu.Unlock()

	defer func() { f.closed <- struct{}{} }()
	for {
		var msg api.SubscriptionMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		f.mu.Lock()
		switch msg.Type {
		case api.MessageStart:
			f.ops[index][msg.Topic] = msg.Id
			if len(f.ops[index]) == len(api.Topics) {
				f.started <- index
			}
		case api.MessageStop:
			f.stopped = append(f.stopped, msg.Id)
		}
		f.mu.Unlock()
	}
}

func (f *fakeSubscriptions) push(index int, msg api.SubscriptionMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NoError(f.t, f.conns[index].WriteJSON(msg))
}

func (f *fakeSubscriptions) pushData(index int, topic string, payload string) {
	f.mu.Lock()
	id := f.ops[index][topic]
	f.mu.Unlock()
	f.push(index, api.SubscriptionMessage{Type: api.MessageData, Id: id, Payload: json.RawMessage(payload)})
}

func waitStarted(t *testing.T, f *fakeSubscriptions) int {
	t.Helper()
	select {
	case i := <-f.started:
		return i
	case <-time.After(5 * time.Second):
		t.Fatal("subscription was not started")
		return -1
	}
}

func receive(t *testing.T, events <-chan feed.Event) feed.Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
		return feed.Event{}
	}
}

func TestSubscribe_MapsTopicsToEvents(t *testing.T) {
	fake := newFakeSubscriptions(t)
	client := newTestClient(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := client.Subscribe(ctx)
	require.NoError(t, err)
	conn := waitStarted(t, fake)

	fake.push(conn, api.SubscriptionMessage{Type: api.MessageKeepAlive})
	fake.pushData(conn, api.TopicPostCreated, `{"id":"1","postTitle":"A"}`)
	fake.pushData(conn, api.TopicPostUpdated, `{"id":"1","postTitle":"B"}`)
	fake.pushData(conn, api.TopicCommentCreated, `{"id":"c1","commentPostId":"1","content":"hi"}`)
	fake.pushData(conn, api.TopicLikeCreated, `{"id":"l1","likePostId":"1","likeOwnerId":"u2","numberLikes":1}`)
	fake.push(conn, api.SubscriptionMessage{Type: api.MessageData, Id: "unknown-op", Payload: json.RawMessage(`{"id":"x"}`)})
	fake.pushData(conn, api.TopicPostCreated, `{"id":""}`)
	fake.pushData(conn, api.TopicPostDeleted, `{"id":"1"}`)

	want := []feed.EventKind{feed.PostCreated, feed.PostUpdated, feed.CommentAdded, feed.LikeAdded, feed.PostDeleted}
	for _, kind := range want {
		ev := receive(t, events)
		assert.Equal(t, kind, ev.Kind)
		assert.Equal(t, "1", ev.PostId())
	}
}

func TestSubscribe_StopsOperationsOnTeardown(t *testing.T) {
	fake := newFakeSubscriptions(t)
	client := newTestClient(t, fake)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := client.Subscribe(ctx)
	require.NoError(t, err)
	conn := waitStarted(t, fake)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "no event was pushed")
	case <-time.After(5 * time.Second):
		t.Fatal("events channel was not closed")
	}
	select {
	case <-fake.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("server connection was not closed")
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	var ids []string
	for _, id := range fake.ops[conn] {
		ids = append(ids, id)
	}
	assert.ElementsMatch(t, ids, fake.stopped)
}

func TestSubscribe_ReconnectEmitsSnapshot(t *testing.T) {
	fake := newFakeSubscriptions(t)
	client := newTestClient(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := client.Subscribe(ctx)
	require.NoError(t, err)
	first := waitStarted(t, fake)

	fake.mu.Lock()
	fake.conns[first].Close()
	fake.mu.Unlock()

	second := waitStarted(t, fake)
	assert.NotEqual(t, first, second)

	ev := receive(t, events)
	require.Equal(t, feed.Snapshot, ev.Kind)
	require.Len(t, ev.Posts, 1)
	assert.Equal(t, "s1", ev.Posts[0].Id)

	fake.pushData(second, api.TopicPostCreated, `{"id":"2","postTitle":"after reconnect"}`)
	ev = receive(t, events)
	assert.Equal(t, feed.PostCreated, ev.Kind)
	assert.Equal(t, "2", ev.PostId())
}

func TestSubscribe_DialFailure(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	_, err := client.Subscribe(context.Background())
	assert.Error(t, err)
}
