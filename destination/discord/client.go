// Package discord implements destination.Client on Discord webhooks.
//
// Posts go through webhook execution, which needs no bot identity. Publishing
// an announcement-channel message (crossposting) is a bot action and requires
// a bot token.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/message"
	"github.com/xraph/herald/ratelimit"
)

// ErrNoBotToken is returned by Publish when the client has no bot token.
var ErrNoBotToken = errors.New("discord: publish requires a bot token")

// Client posts to Discord webhooks through a discordgo session.
type Client struct {
	session  *discordgo.Session
	limiter  *ratelimit.Limiter
	logger   *slog.Logger
	hasToken bool
}

// compile-time interface check
var _ destination.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLimiter throttles posts per webhook.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the session's HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.session.Client = hc }
}

// New creates a client. botToken may be empty when Publish is never used.
func New(botToken string, opts ...Option) (*Client, error) {
	auth := ""
	if botToken != "" {
		auth = "Bot " + botToken
	}
	s, err := discordgo.New(auth)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}

	c := &Client{
		session:  s,
		logger:   slog.Default(),
		hasToken: botToken != "",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Post executes the webhook without waiting for the created message.
func (c *Client) Post(ctx context.Context, to destination.Target, msg *message.Message) error {
	_, err := c.execute(ctx, to, msg, false)
	return err
}

// PostWait executes the webhook with wait=true and maps the returned message
// to an Ack. For a message that opened a forum thread, or one posted into a
// thread, the message's channel is the thread.
func (c *Client) PostWait(ctx context.Context, to destination.Target, msg *message.Message) (destination.Ack, error) {
	m, err := c.execute(ctx, to, msg, true)
	if err != nil {
		return destination.Ack{}, err
	}
	if m == nil {
		return destination.Ack{}, nil
	}

	ack := destination.Ack{MessageID: m.ID, ChannelID: m.ChannelID}
	switch {
	case to.ThreadID != "":
		ack.ThreadID = to.ThreadID
	case msg.ThreadName != "":
		ack.ThreadID = m.ChannelID
		if m.Thread != nil && m.Thread.ID != "" {
			ack.ThreadID = m.Thread.ID
		}
	}
	return ack, nil
}

// Publish crossposts a message from an announcement channel to its followers.
func (c *Client) Publish(ctx context.Context, channelID, messageID string) error {
	if !c.hasToken {
		return ErrNoBotToken
	}
	if _, err := c.session.ChannelMessageCrosspost(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: crosspost %s/%s: %w", channelID, messageID, err)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, to destination.Target, msg *message.Message, wait bool) (*discordgo.Message, error) {
	if to.IsZero() {
		return nil, destination.ErrNoWebhook
	}
	if err := c.limiter.Wait(ctx, to.WebhookID); err != nil {
		return nil, fmt.Errorf("discord: rate limit wait: %w", err)
	}

	params := ToWebhookParams(msg)
	if to.ThreadID != "" {
		// Thread names are only valid when creating a forum post.
		params.ThreadName = ""
	}

	var (
		m   *discordgo.Message
		err error
	)
	if to.ThreadID != "" {
		m, err = c.session.WebhookThreadExecute(to.WebhookID, to.Token, wait, to.ThreadID, params, discordgo.WithContext(ctx))
	} else {
		m, err = c.session.WebhookExecute(to.WebhookID, to.Token, wait, params, discordgo.WithContext(ctx))
	}
	if err != nil {
		c.logger.Warn("discord webhook execute failed",
			"webhook_id", to.WebhookID,
			"thread_id", to.ThreadID,
			"error", err,
		)
		return nil, fmt.Errorf("discord: execute webhook %s: %w", to.WebhookID, err)
	}
	return m, nil
}
