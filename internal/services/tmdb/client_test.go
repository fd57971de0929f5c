package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediatorr/internal/services"
	"mediatorr/internal/services/tmdb"
)

func TestSearchSendsQueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tv" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "The Office" || q.Get("api_key") != "key" || q.Get("language") != "fr-FR" || q.Get("first_air_date_year") != "2005" {
			t.Fatalf("unexpected query %v", q)
		}
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":2316,"name":"The Office"}],"total_results":1}`))
	}))
	defer server.Close()

	client, err := tmdb.New("key", server.URL, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := client.Search(context.Background(), tmdb.KindTV, "The Office", 2005, "fr-FR")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != 2316 {
		t.Fatalf("unexpected results %+v", resp.Results)
	}
}

func TestDetailsDecodesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":603,"title":"Matrix","release_date":"1999-03-31","overview":"Neo.","vote_average":8.2,"genres":[{"id":28,"name":"Action"}]}`))
	}))
	defer server.Close()

	client, _ := tmdb.New("key", server.URL, time.Second)
	details, err := client.Details(context.Background(), tmdb.KindMovie, 603, "en-US")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if details.DisplayTitle() != "Matrix" || details.Year() != 1999 || details.MediaType != "movie" {
		t.Fatalf("unexpected details %+v", details)
	}
	if len(details.Genres) != 1 || details.Genres[0].Name != "Action" {
		t.Fatalf("unexpected genres %+v", details.Genres)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		marker error
	}{
		{"not found", http.StatusNotFound, services.ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, services.ErrConfiguration},
		{"server error", http.StatusBadGateway, services.ErrTransient},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client, _ := tmdb.New("key", server.URL, time.Second)
			_, err := client.Details(context.Background(), tmdb.KindTV, 1, "")
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
		})
	}
}

func TestTimeoutIsLookupFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, _ := tmdb.New("key", server.URL, 50*time.Millisecond)
	_, err := client.Search(context.Background(), tmdb.KindMovie, "Slow", 0, "")
	if !errors.Is(err, services.ErrTimeout) || !services.IsLookupFailure(err) {
		t.Fatalf("expected timeout lookup failure, got %v", err)
	}
}

func TestNewRequiresKey(t *testing.T) {
	_, err := tmdb.New(" ", "https://api.themoviedb.org/3", 0)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestEmptyQueryRejected(t *testing.T) {
	client, _ := tmdb.New("key", "http://127.0.0.1:1", time.Second)
	if _, err := client.Search(context.Background(), tmdb.KindMovie, "  ", 0, ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
