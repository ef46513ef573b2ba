package apiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/itchan-dev/blogfeed/shared/api"
	"github.com/itchan-dev/blogfeed/shared/feed"
	"github.com/itchan-dev/blogfeed/shared/logger"
	"golang.org/x/time/rate"
)

// Subscribe opens the subscription websocket, starts one operation per topic
// and returns a single channel carrying the events of all of them.
//
// The first dial happens before Subscribe returns, so events published after
// that are not missed by a caller that loads the feed afterwards. Lost
// connections are re-dialed at most once per ReconnectInterval and followed
// by a Snapshot. Cancelling ctx stops every operation, closes the socket and
// then closes the channel.
func (c *APIClient) Subscribe(ctx context.Context) (<-chan feed.Event, error) {
	s := &subscription{
		client: c,
		out:    make(chan feed.Event, c.Subscription.BufferSize),
		log:    logger.Component("subscription"),
	}
	conn, ops, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	go s.run(ctx, conn, ops)
	return s.out, nil
}

type subscription struct {
	client *APIClient
	out    chan feed.Event
	log    *slog.Logger
}

// operations maps operation ids to topics for one connection.
type operations map[string]string

func (s *subscription) connect(ctx context.Context) (*websocket.Conn, operations, error) {
	conn, resp, err := s.client.Dialer.DialContext(ctx, s.client.SubscriptionURL, s.client.authHeader(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, nil, fmt.Errorf("failed to open subscription: status %d: %w", resp.StatusCode, err)
		}
		return nil, nil, fmt.Errorf("failed to open subscription: %w", err)
	}

	ops := make(operations, len(api.Topics))
	for _, topic := range api.Topics {
		id := uuid.NewString()
		ops[id] = topic
		conn.SetWriteDeadline(time.Now().Add(s.client.Subscription.WriteTimeout))
		if err := conn.WriteJSON(api.SubscriptionMessage{Type: api.MessageStart, Id: id, Topic: topic}); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("failed to start %s: %w", topic, err)
		}
	}
	s.log.Debug("subscription started", "url", s.client.SubscriptionURL, "topics", len(ops))
	return conn, ops, nil
}

func (s *subscription) run(ctx context.Context, conn *websocket.Conn, ops operations) {
	defer close(s.out)

	limiter := rate.NewLimiter(rate.Every(s.client.Subscription.ReconnectInterval), 1)
	limiter.Allow() // spent by the first dial

	for {
		err := s.serve(ctx, conn, ops)
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("subscription lost", "error", err)

		for {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			conn, ops, err = s.connect(ctx)
			if err == nil {
				break
			}
			s.log.Warn("reconnect failed", "error", err)
		}
		s.log.Info("subscription reconnected")

		posts, err := s.client.ListPosts(ctx)
		if err != nil {
			s.log.Error("failed to reload posts after reconnect", "error", err)
			continue
		}
		if !s.send(ctx, feed.NewSnapshot(posts)) {
			// serve was not entered for this connection
			s.stop(conn, ops)
			return
		}
	}
}

func (s *subscription) send(ctx context.Context, ev feed.Event) bool {
	select {
	case s.out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// serve reads frames until the connection fails or ctx is done.
func (s *subscription) serve(ctx context.Context, conn *websocket.Conn, ops operations) error {
	settings := s.client.Subscription
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var writeMu sync.Mutex
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(settings.ReadTimeout))
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(settings.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-connCtx.Done():
				if ctx.Err() != nil {
					writeMu.Lock()
					s.stop(conn, ops)
					writeMu.Unlock()
					return
				}
				conn.Close()
				return
			case <-ticker.C:
				writeMu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(settings.WriteTimeout))
				writeMu.Unlock()
				if err != nil {
					// a write deadline cannot be recovered on a websocket
					cancel()
				}
			}
		}
	}()

	err := s.read(ctx, conn, ops)
	cancel()
	<-writerDone
	return err
}

func (s *subscription) read(ctx context.Context, conn *websocket.Conn, ops operations) error {
	settings := s.client.Subscription
	for {
		conn.SetReadDeadline(time.Now().Add(settings.ReadTimeout))
		var msg api.SubscriptionMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		switch msg.Type {
		case api.MessageKeepAlive:
		case api.MessageData:
			topic, ok := ops[msg.Id]
			if !ok {
				s.log.Debug("data for unknown operation", "id", msg.Id)
				continue
			}
			ev, err := feed.Decode(topic, msg.Payload)
			if err != nil {
				s.log.Warn("dropping malformed event", "topic", topic, "error", err)
				continue
			}
			if !s.send(ctx, ev) {
				return ctx.Err()
			}
		case api.MessageError:
			s.log.Error("subscription error", "topic", ops[msg.Id], "payload", string(msg.Payload))
		default:
			s.log.Debug("ignoring frame", "type", msg.Type)
		}
	}
}

// stop ends every operation and closes the connection. The caller must hold
// exclusive write access to conn.
func (s *subscription) stop(conn *websocket.Conn, ops operations) {
	deadline := time.Now().Add(s.client.Subscription.WriteTimeout)
	conn.SetWriteDeadline(deadline)
	for id, topic := range ops {
		if err := conn.WriteJSON(api.SubscriptionMessage{Type: api.MessageStop, Id: id}); err != nil {
			s.log.Debug("failed to stop operation", "topic", topic, "error", err)
			break
		}
	}
	err := conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		s.log.Debug("failed to send close", "error", err)
	}
	conn.Close()
	s.log.Debug("subscription stopped", "topics", len(ops))
}
