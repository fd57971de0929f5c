package mkbrr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"mediatorr/internal/services"
	"mediatorr/internal/services/command"
)

var sizeLine = regexp.MustCompile(`(?mi)^\s*(?:total\s+)?size\s*:\s*(.+?)\s*$`)

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

// Client wraps mkbrr CLI interactions.
type Client struct {
	binary string
	exec   command.Executor
}

// New constructs an mkbrr client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("mkbrr binary required")
	}
	client := &Client{binary: binary, exec: command.OSExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Create packages path (file or folder) into a private torrent at output.
func (c *Client) Create(ctx context.Context, path, output string, trackers []string) (string, error) {
	args := []string{"create", path, "--output", output, "--private"}
	args = appendTrackers(args, trackers)
	if _, err := c.exec.Output(ctx, c.binary, args); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "mkbrr", "create", path, err)
	}
	return output, nil
}

// Modify rewrites the announce list of torrent in place and returns its path.
func (c *Client) Modify(ctx context.Context, torrent string, trackers []string) (string, error) {
	args := []string{"modify", torrent}
	args = appendTrackers(args, trackers)
	// mkbrr appends the .torrent extension to --output itself.
	args = append(args, "--output", strings.TrimSuffix(torrent, ".torrent"))
	if _, err := c.exec.Output(ctx, c.binary, args); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "mkbrr", "modify", torrent, err)
	}
	return torrent, nil
}

// Inspect returns the payload size recorded in torrent.
func (c *Client) Inspect(ctx context.Context, torrent string) (int64, error) {
	out, err := c.exec.Output(ctx, c.binary, []string{"inspect", torrent})
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "mkbrr", "inspect", torrent, err)
	}
	size, err := ParseSize(string(out))
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "mkbrr", "inspect", torrent, err)
	}
	return size, nil
}

// ParseSize extracts the payload size from mkbrr inspect output.
func ParseSize(output string) (int64, error) {
	match := sizeLine.FindStringSubmatch(output)
	if match == nil {
		return 0, errors.New("no size line in inspect output")
	}
	value := match[1]
	// Some versions print "4.4 GiB (4724464025 bytes)"; prefer the exact figure.
	if open := strings.Index(value, "("); open >= 0 {
		inner := strings.ToLower(strings.Trim(value[open:], "() "))
		if exact, err := humanize.ParseBytes(strings.TrimSuffix(inner, "bytes")); err == nil {
			return int64(exact), nil
		}
		value = strings.TrimSpace(value[:open])
	}
	size, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", value, err)
	}
	return int64(size), nil
}

func appendTrackers(args, trackers []string) []string {
	for _, tracker := range trackers {
		args = append(args, "--tracker", tracker)
	}
	return args
}
