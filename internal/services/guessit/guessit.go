package guessit

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/bogem/id3v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediatorr/internal/logging"
	"mediatorr/internal/services/command"
)

const script = `
import json, sys
from guessit import guessit
f = guessit(sys.argv[1])
year = f.get('year')
print(json.dumps({
    'title': str(f.get('title', '') or ''),
    'artist': str(f.get('artist', '') or ''),
    'year': year if isinstance(year, int) else 0,
}))
`

// Guess is the best-effort identity of a media file.
type Guess struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
	Year   int    `json:"year"`
}

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

// Client guesses titles.
type Client struct {
	python string
	exec   command.Executor
	logger *slog.Logger
}

// New constructs a guesser that shells out to python.
func New(python string, logger *slog.Logger, opts ...Option) *Client {
	python = strings.TrimSpace(python)
	if python == "" {
		python = "python3"
	}
	client := &Client{
		python: python,
		exec:   command.OSExecutor{},
		logger: logging.NewComponentLogger(logger, "guessit"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Guess never fails: the stem of path is the last resort title.
func (c *Client) Guess(ctx context.Context, path string) Guess {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		if tags, ok := readID3(path); ok {
			return tags
		}
	}

	out, err := c.exec.Output(ctx, c.python, []string{"-c", script, path})
	if err == nil {
		var g Guess
		if jsonErr := json.Unmarshal([]byte(strings.TrimSpace(string(out))), &g); jsonErr == nil && strings.TrimSpace(g.Title) != "" {
			g.Title = strings.TrimSpace(g.Title)
			g.Artist = strings.TrimSpace(g.Artist)
			return g
		} else if jsonErr != nil {
			err = jsonErr
		}
	}
	if err != nil {
		c.logger.Debug("guessit unavailable, using file name",
			logging.String("path", path),
			logging.Error(err),
		)
	}
	return Guess{Title: TitleFromName(path)}
}

func readID3(path string) (Guess, bool) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Guess{}, false
	}
	defer tag.Close()

	g := Guess{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
		Album:  strings.TrimSpace(tag.Album()),
	}
	if year, err := strconv.Atoi(strings.TrimSpace(tag.Year())); err == nil {
		g.Year = year
	}
	if g.Title == "" && g.Album == "" {
		return Guess{}, false
	}
	if g.Title == "" {
		g.Title = g.Album
	}
	return g, true
}

// TitleFromName turns a release-style file name into a title:
// "the.movie_2020.mkv" becomes "The Movie 2020".
func TitleFromName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var cleaned strings.Builder
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return base
	}
	return cases.Title(language.Und, cases.NoLower).String(title)
}
