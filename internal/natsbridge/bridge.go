// Package natsbridge republishes auth events on NATS subjects.
package natsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/example/internship-portal/internal/application"
)

// SubjectPrefix is prepended to the event type to form the subject.
const SubjectPrefix = "portal.auth."

// Publisher sends one message.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Client is a Publisher over a core NATS connection.
type Client struct {
	conn *nats.Conn
}

// Connect dials url with reconnects enabled.
func Connect(url string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name("internship-portal"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Publish sends data on subject. Core NATS publishes are fire-and-forget, so
// ctx is only checked before sending.
func (c *Client) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.conn.Publish(subject, data)
}

// Close flushes pending messages and closes the connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	err := c.conn.Drain()
	if err != nil {
		c.conn.Close()
	}
	return err
}

// Message is the JSON payload published per event. The password hash is
// never included.
type Message struct {
	Type       application.AuthEventType `json:"type"`
	IsLoggedIn bool                      `json:"isLoggedIn"`
	UserID     string                    `json:"userId,omitempty"`
	Name       string                    `json:"name,omitempty"`
	Email      string                    `json:"email,omitempty"`
	Scope      string                    `json:"scope,omitempty"`
	At         int64                     `json:"at"`
}

// Bridge forwards auth events to a Publisher.
type Bridge struct {
	publisher Publisher
	logger    *slog.Logger
}

// New constructs a Bridge.
func New(publisher Publisher, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{publisher: publisher, logger: logger.With("component", "natsbridge")}
}

// Attach subscribes the bridge to manager and returns the unsubscribe func.
func (b *Bridge) Attach(manager *application.SessionManager) func() {
	return manager.OnAuthChange(b.Forward)
}

// Forward publishes event. Failures are logged and never returned to the
// session manager.
func (b *Bridge) Forward(ctx context.Context, event application.AuthEvent) {
	subject := SubjectPrefix + string(event.Type)
	data, err := json.Marshal(newMessage(event))
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to encode auth event", "subject", subject, "error", err)
		return
	}
	if err := b.publisher.Publish(ctx, subject, data); err != nil {
		b.logger.WarnContext(ctx, "failed to publish auth event", "subject", subject, "error", err)
		return
	}
	b.logger.DebugContext(ctx, "auth event published", "subject", subject)
}

func newMessage(event application.AuthEvent) Message {
	msg := Message{
		Type:       event.Type,
		IsLoggedIn: event.IsLoggedIn,
		Scope:      event.Scope,
		At:         event.At.UnixMilli(),
	}
	if event.User != nil {
		msg.UserID = event.User.ID
		msg.Name = event.User.Name
		msg.Email = event.User.Email
	}
	return msg
}
