package unit

import (
	"path/filepath"
	"regexp"

	"mediatorr/internal/textutil"
)

var (
	episodePattern = regexp.MustCompile(`[Ss](\d{1,2})[Ee](\d{1,3})`)
	// episodeSuffix matches the first marker plus any chained episodes
	// (S01E01E02, S01E01-E03) so only the season part survives.
	episodeSuffix = regexp.MustCompile(`([Ss]\d{1,2})[Ee]\d{1,3}(?:[-Ee]*\d{1,3})*`)
)

// FileKey derives the key of a single-file unit from its file name.
func FileKey(path string) string {
	return textutil.SafeName(textutil.Stem(path))
}

// FolderKey derives the key of a folder aggregate. When collapse is set and
// the folder is a season pack, the episode suffix is stripped so the key
// keeps only the season marker.
func FolderKey(folder string, files []string, collapse bool) string {
	raw := textutil.SafeName(filepath.Base(folder))
	if collapse && IsSeasonPack(files) {
		return SeasonName(raw)
	}
	return raw
}

// IsSeasonPack reports whether files hold more than one distinct episode of a
// single season.
func IsSeasonPack(files []string) bool {
	if len(files) < 2 {
		return false
	}
	episodes := make(map[string]struct{})
	seasons := make(map[string]struct{})
	for _, file := range files {
		for _, match := range episodePattern.FindAllStringSubmatch(filepath.Base(file), -1) {
			season := trimLeadingZeros(match[1])
			seasons[season] = struct{}{}
			episodes[season+"x"+trimLeadingZeros(match[2])] = struct{}{}
		}
	}
	return len(episodes) > 1 && len(seasons) == 1
}

// SeasonName strips the first episode marker down to its season part.
func SeasonName(name string) string {
	loc := episodeSuffix.FindStringSubmatchIndex(name)
	if loc == nil {
		return name
	}
	return name[:loc[0]] + name[loc[2]:loc[3]] + name[loc[1]:]
}

func trimLeadingZeros(value string) string {
	for len(value) > 1 && value[0] == '0' {
		value = value[1:]
	}
	return value
}
