// Package mediainfo wraps the mediainfo CLI that produces the technical text
// embedded in .nfo notes.
package mediainfo

import (
	"context"
	"errors"
	"strings"

	"mediatorr/internal/services"
	"mediatorr/internal/services/command"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec command.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client runs mediainfo.
type Client struct {
	binary string
	exec   command.Executor
}

// New constructs a mediainfo client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("mediainfo binary required")
	}
	client := &Client{binary: binary, exec: command.OSExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Inspect returns the free-form mediainfo report for path.
func (c *Client) Inspect(ctx context.Context, path string) (string, error) {
	out, err := c.exec.Output(ctx, c.binary, []string{path})
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "mediainfo", "inspect", path, err)
	}
	return strings.TrimRight(string(out), "\r\n\t "), nil
}
