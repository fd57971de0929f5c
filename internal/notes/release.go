package notes

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	"mediatorr/internal/metadata"
)

// Images are the banner pictures embedded in release notes.
type Images struct {
	Info     string
	Synopsis string
	Movie    string
	Serie    string
	Download string
	Link     string
}

// Release is the input of a release note.
type Release struct {
	Name string
	// Series selects the series banner instead of the movie one.
	Series       bool
	Record       *metadata.Record
	Technical    Summary
	PayloadBytes int64
	Files        int
}

var releaseTemplate = template.Must(template.New("release").Funcs(template.FuncMap{
	"size":   func(b int64) string { return humanize.Bytes(uint64(max(b, 0))) },
	"rating": func(r float64) string { return fmt.Sprintf("%.1f/10", r) },
	"join":   strings.Join,
}).Parse(`[center]
{{- with .Record}}
[size=6][b]{{.Title}}{{if .Year}} ({{.Year}}){{end}}[/b][/size]
{{- if .Artist}}
[size=4]{{.Artist}}[/size]
{{- end}}
{{- if .PosterURL}}

[img]{{.PosterURL}}[/img]
{{- end}}

{{- if $.Kind}}

[img]{{$.Kind}}[/img]
{{- end}}
{{- if $.Images.Info}}

[img]{{$.Images.Info}}[/img]
{{- end}}
{{- if and .OriginalTitle (ne .OriginalTitle .Title)}}
[b]Original title:[/b] {{.OriginalTitle}}
{{- end}}
{{- if .Genres}}
[b]Genres:[/b] {{join .Genres ", "}}
{{- end}}
{{- if .Rating}}
[b]Rating:[/b] {{rating .Rating}}
{{- end}}
{{- if .Seasons}}
[b]Seasons:[/b] {{.Seasons}}
{{- end}}
{{- if .TrackCount}}
[b]Tracks:[/b] {{.TrackCount}}
{{- end}}
{{- if .Overview}}
{{- if $.Images.Synopsis}}

[img]{{$.Images.Synopsis}}[/img]
{{- end}}
{{.Overview}}
{{- end}}
{{- else}}
[size=6][b]{{.Name}}[/b][/size]
{{- end}}
{{- if $.Images.Download}}

[img]{{$.Images.Download}}[/img]
{{- end}}
[b]Release:[/b] {{.Name}}
{{- with .Technical}}
{{- if .Container}}
[b]Container:[/b] {{.Container}}
{{- end}}
{{- if .Duration}}
[b]Duration:[/b] {{.Duration}}
{{- end}}
{{- if .Video}}
[b]Video:[/b] {{.Video}}
{{- end}}
{{- if .Bitrate}}
[b]Bit rate:[/b] {{.Bitrate}}
{{- end}}
{{- if .Audio}}
[b]Audio:[/b] {{join .Audio " / "}}
{{- end}}
{{- if .Subtitles}}
[b]Subtitles:[/b] {{join .Subtitles " / "}}
{{- end}}
{{- end}}
{{- if gt .Files 1}}
[b]Files:[/b] {{.Files}}
{{- end}}
[b]Size:[/b] {{size .PayloadBytes}}
{{- if $.Images.Link}}

[img]{{$.Images.Link}}[/img]
{{- end}}
[/center]
`))

// Renderer renders release notes with a fixed image set.
type Renderer struct {
	images Images
}

// NewRenderer builds a Renderer.
func NewRenderer(images Images) *Renderer {
	return &Renderer{images: images}
}

// Render renders r. A nil Record omits the metadata section.
func (r *Renderer) Render(release Release) (string, error) {
	kind := r.images.Movie
	if release.Series {
		kind = r.images.Serie
	}
	if release.Record != nil && release.Record.Provider == metadata.ProviderITunes {
		kind = ""
	}
	data := struct {
		Release
		Images Images
		Kind   string
	}{Release: release, Images: r.images, Kind: kind}

	var buf bytes.Buffer
	if err := releaseTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render release note: %w", err)
	}
	return buf.String(), nil
}
