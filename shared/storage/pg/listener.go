package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/itchan-dev/blogfeed/shared/api"
	"github.com/itchan-dev/blogfeed/shared/domain"
	internal_errors "github.com/itchan-dev/blogfeed/shared/errors"
	"github.com/itchan-dev/blogfeed/shared/feed"
	"github.com/itchan-dev/blogfeed/shared/logger"
	"github.com/lib/pq"
)

// errGone marks a notification whose row was removed before it could be read.
var errGone = errors.New("row no longer exists")

// Subscribe listens on EventsChannel and returns one channel carrying the
// events of all five topics. The channel is closed when ctx is done.
//
// After the listener loses and re-establishes its connection a Snapshot is
// emitted, since notifications sent in between are lost.
func (s *Storage) Subscribe(ctx context.Context) (<-chan feed.Event, error) {
	log := logger.Component("pg")
	l := pq.NewListener(s.connStr, s.listener.MinReconnectInterval, s.listener.MaxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			switch ev {
			case pq.ListenerEventDisconnected:
				log.Warn("listener disconnected", "error", err)
			case pq.ListenerEventReconnected:
				log.Info("listener reconnected")
			case pq.ListenerEventConnectionAttemptFailed:
				log.Warn("listener connection attempt failed", "error", err)
			}
		})
	if err := l.Listen(EventsChannel); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", EventsChannel, err)
	}

	out := make(chan feed.Event, s.listener.BufferSize)
	go s.listen(ctx, l, out)
	return out, nil
}

func (s *Storage) listen(ctx context.Context, l *pq.Listener, out chan<- feed.Event) {
	log := logger.Component("pg")
	defer close(out)
	defer l.Close()

	ping := time.NewTicker(s.listener.PingInterval)
	defer ping.Stop()

	send := func(ev feed.Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-l.Notify:
			if !ok {
				return
			}
			if n == nil {
				posts, err := s.ListPosts(ctx)
				if err != nil {
					log.Error("failed to reload posts after reconnect", "error", err)
					continue
				}
				if !send(feed.NewSnapshot(posts)) {
					return
				}
				continue
			}
			ev, err := s.resolve(ctx, []byte(n.Extra))
			if err != nil {
				if errors.Is(err, errGone) {
					log.Debug("skipping notification", "payload", n.Extra, "reason", err)
				} else {
					log.Error("failed to resolve notification", "payload", n.Extra, "error", err)
				}
				continue
			}
			if !send(ev) {
				return
			}
		case <-ping.C:
			if err := l.Ping(); err != nil {
				log.Warn("listener ping failed", "error", err)
			}
		}
	}
}

// resolve reads back the row a notification points at.
func (s *Storage) resolve(ctx context.Context, payload []byte) (feed.Event, error) {
	var n api.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return feed.Event{}, fmt.Errorf("decode notification: %w", err)
	}
	if n.Id == "" {
		return feed.Event{}, fmt.Errorf("notification without id")
	}

	switch n.Topic {
	case api.TopicPostCreated, api.TopicPostUpdated:
		post, err := s.GetPost(ctx, n.Id)
		if err != nil {
			return feed.Event{}, gone(err)
		}
		if n.Topic == api.TopicPostCreated {
			return feed.NewPostCreated(post), nil
		}
		return feed.NewPostUpdated(post), nil
	case api.TopicPostDeleted:
		return feed.NewPostDeleted(domain.Post{Id: n.Id}), nil
	case api.TopicCommentCreated:
		comment, err := s.GetComment(ctx, n.Id)
		if err != nil {
			return feed.Event{}, gone(err)
		}
		return feed.NewCommentAdded(comment), nil
	case api.TopicLikeCreated:
		like, err := s.GetLike(ctx, n.Id)
		if err != nil {
			return feed.Event{}, gone(err)
		}
		return feed.NewLikeAdded(like), nil
	}
	return feed.Event{}, fmt.Errorf("unknown topic %q", n.Topic)
}

func gone(err error) error {
	if internal_errors.StatusCode(err) == 404 {
		return fmt.Errorf("%w: %v", errGone, err)
	}
	return err
}
