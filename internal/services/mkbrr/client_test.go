package mkbrr_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mediatorr/internal/services"
	"mediatorr/internal/services/mkbrr"
)

type stubExecutor struct {
	output string
	err    error
	calls  [][]string
}

func (s *stubExecutor) Output(_ context.Context, binary string, args []string) ([]byte, error) {
	s.calls = append(s.calls, append([]string{binary}, args...))
	return []byte(s.output), s.err
}

func TestCreateArguments(t *testing.T) {
	exec := &stubExecutor{}
	client, err := mkbrr.New("mkbrr", mkbrr.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := client.Create(context.Background(), "/films/Film.mkv", "/dest/Film/Film.torrent", []string{"https://a/ann", "https://b/ann"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if out != "/dest/Film/Film.torrent" {
		t.Fatalf("unexpected output path %q", out)
	}
	want := "mkbrr create /films/Film.mkv --output /dest/Film/Film.torrent --private --tracker https://a/ann --tracker https://b/ann"
	if got := strings.Join(exec.calls[0], " "); got != want {
		t.Fatalf("args = %q\nwant  %q", got, want)
	}
}

func TestModifyWritesInPlace(t *testing.T) {
	exec := &stubExecutor{}
	client, _ := mkbrr.New("mkbrr", mkbrr.WithExecutor(exec))
	out, err := client.Modify(context.Background(), "/dest/X/X.torrent", []string{"https://a/ann"})
	if err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if out != "/dest/X/X.torrent" {
		t.Fatalf("unexpected output %q", out)
	}
	want := "mkbrr modify /dest/X/X.torrent --tracker https://a/ann --output /dest/X/X"
	if got := strings.Join(exec.calls[0], " "); got != want {
		t.Fatalf("args = %q\nwant  %q", got, want)
	}
}

func TestFailuresAreExternalToolErrors(t *testing.T) {
	exec := &stubExecutor{err: errors.New("exit status 1")}
	client, _ := mkbrr.New("mkbrr", mkbrr.WithExecutor(exec))
	_, err := client.Create(context.Background(), "/x", "/x.torrent", nil)
	if !errors.Is(err, services.ErrExternalTool) || !services.IsUnitFatal(err) {
		t.Fatalf("expected fatal external tool error, got %v", err)
	}
}

func TestInspectParsesSize(t *testing.T) {
	exec := &stubExecutor{output: "Torrent info:\n  Name:         Film.mkv\n  Size:         1.5 GB\n  Pieces:       1432\n"}
	client, _ := mkbrr.New("mkbrr", mkbrr.WithExecutor(exec))
	size, err := client.Inspect(context.Background(), "/x.torrent")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if size != 1_500_000_000 {
		t.Fatalf("size = %d", size)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"Size: 4.0 GiB", 4 << 30, true},
		{"  Total Size:  700 MB", 700_000_000, true},
		{"Size: 4.4 GiB (4724464000 bytes)", 4724464000, true},
		{"Name: nothing", 0, false},
		{"Size: lots", 0, false},
	}
	for _, tc := range tests {
		got, err := mkbrr.ParseSize(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("ParseSize(%q) err = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := mkbrr.New("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
