package notes

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	rule        = "============================================================"
	generatedBy = "Generated by Mediatorr"
	addedLayout = "2006-01-02 15:04:05"
)

var completeNameLine = regexp.MustCompile(`(?m)^(\s*Complete name\s*:\s*).*$`)

// FolderStats describes an aggregate unit in its technical note header.
type FolderStats struct {
	Files      int
	TotalBytes int64
}

// Technical builds the technical note for release name. mediainfo is the
// probe output for reference; its "Complete name" line is rewritten to the
// file's base name so no local path leaks. folder is nil for single files.
func Technical(name string, added time.Time, reference, mediainfo string, folder *FolderStats) string {
	var b strings.Builder
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Release Name : %s\n", name)
	fmt.Fprintf(&b, "Added On    : %s\n", added.UTC().Format(addedLayout))
	if folder != nil {
		fmt.Fprintf(&b, "Files       : %d\n", folder.Files)
		fmt.Fprintf(&b, "Total Size  : %s\n", FormatSize(folder.TotalBytes))
	}
	b.WriteString(rule + "\n\n")
	b.WriteString(strings.TrimSpace(RewriteCompleteName(mediainfo, filepath.Base(reference))))
	b.WriteString("\n\n" + rule + "\n")
	b.WriteString(generatedBy + "\n")
	b.WriteString(rule)
	return b.String()
}

// RewriteCompleteName replaces the value of the first "Complete name" line.
func RewriteCompleteName(text, base string) string {
	loc := completeNameLine.FindStringSubmatchIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[3]] + base + text[loc[1]:]
}

// FormatSize renders bytes with decimal units and two decimals.
func FormatSize(bytes int64) string {
	value := float64(bytes)
	switch {
	case value >= 1e9:
		return fmt.Sprintf("%.2f GB", value/1e9)
	case value >= 1e6:
		return fmt.Sprintf("%.2f MB", value/1e6)
	default:
		return fmt.Sprintf("%.2f KB", value/1e3)
	}
}

// Summary holds the handful of technical values quoted in a release note.
type Summary struct {
	Container string
	Duration  string
	Bitrate   string
	Video     string
	Audio     []string
	Subtitles []string
}

// Summarize extracts key values from mediainfo text. Sections are the
// unindented lines without a colon ("General", "Video", "Audio #1", ...).
func Summarize(mediainfo string) Summary {
	type section struct {
		name   string
		fields map[string]string
	}
	var sections []*section
	var current *section
	for _, line := range strings.Split(mediainfo, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			current = &section{name: strings.TrimSpace(line), fields: map[string]string{}}
			sections = append(sections, current)
			continue
		}
		if current == nil {
			continue
		}
		key = strings.TrimSpace(key)
		if _, seen := current.fields[key]; !seen {
			current.fields[key] = strings.TrimSpace(value)
		}
	}

	var s Summary
	for _, sec := range sections {
		kind, _, _ := strings.Cut(sec.name, " ")
		f := sec.fields
		switch kind {
		case "General":
			s.Container = f["Format"]
			s.Duration = f["Duration"]
			s.Bitrate = f["Overall bit rate"]
		case "Video":
			if s.Video != "" {
				continue
			}
			parts := []string{f["Format"]}
			if w, h := digits(f["Width"]), digits(f["Height"]); w != "" && h != "" {
				parts = append(parts, w+"x"+h)
			}
			s.Video = joinNonEmpty(parts, " ")
		case "Audio":
			s.Audio = append(s.Audio, joinNonEmpty([]string{f["Language"], f["Format"], f["Channel(s)"]}, " "))
		case "Text":
			s.Subtitles = append(s.Subtitles, joinNonEmpty([]string{f["Language"], f["Format"]}, " "))
		}
	}
	return s
}

func digits(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ':
		default:
			return b.String()
		}
	}
	return b.String()
}

func joinNonEmpty(parts []string, sep string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
