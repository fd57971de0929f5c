package unit

import (
	"fmt"
	"strings"
)

// Library is one of the three independent media libraries.
type Library string

const (
	LibraryMovies Library = "movies"
	LibrarySeries Library = "series"
	LibraryMusic  Library = "music"
)

// Libraries lists every library in processing order.
func Libraries() []Library {
	return []Library{LibraryMovies, LibrarySeries, LibraryMusic}
}

// Subtree is the destination directory name for the library.
func (l Library) Subtree() string {
	switch l {
	case LibraryMovies:
		return "films"
	case LibrarySeries:
		return "series"
	case LibraryMusic:
		return "musiques"
	default:
		return string(l)
	}
}

// Label is the operator-facing name used in logs and tables.
func (l Library) Label() string {
	switch l {
	case LibraryMovies:
		return "Movies"
	case LibrarySeries:
		return "Series"
	case LibraryMusic:
		return "Music"
	default:
		return string(l)
	}
}

// ParseLibrary accepts a library name or its destination subtree name.
func ParseLibrary(value string) (Library, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movies", "movie", "films", "film":
		return LibraryMovies, nil
	case "series", "serie", "tv":
		return LibrarySeries, nil
	case "music", "musiques", "musique":
		return LibraryMusic, nil
	default:
		return "", fmt.Errorf("unknown library %q (want movies, series or music)", value)
	}
}
