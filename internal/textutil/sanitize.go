package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonTitleChars = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// SafeName maps every space to '.', the separator used in release names.
func SafeName(name string) string {
	return strings.ReplaceAll(name, " ", ".")
}

// CleanTitle folds accents and then drops everything but ASCII letters,
// digits and spaces.
func CleanTitle(title string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(title) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(nonTitleChars.ReplaceAllString(b.String(), ""))
}

var pathChars = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_", "..", "_")

// CacheKey derives a lowercase file-name-safe key from parts joined by '_'.
// Path separators and ".." never survive, so the key is a single path element.
func CacheKey(parts ...string) string {
	return strings.ToLower(pathChars.Replace(SafeName(strings.Join(parts, "_"))))
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}
