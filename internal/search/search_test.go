package search_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/search"
)

func newClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*search.Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.SearchConfig{
		APIKey:  "secret",
		BaseURL: srv.URL + "/",
		Engine:  "google",
		Timeout: timeout,
	}
	return search.NewClient(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil))), &calls
}

func TestSearchSendsQueryAndTruncates(t *testing.T) {
	t.Parallel()

	client, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search" || q.Get("q") != "golang generics" || q.Get("api_key") != "secret" ||
			q.Get("engine") != "google" || q.Get("num") != "2" {
			http.Error(w, "bad request "+r.URL.String(), http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"organic_results":[
			{"title":"A","link":"https://a","snippet":"sa"},
			{"title":"B","link":"https://b"},
			{"title":"C","link":"https://c","snippet":"sc"}]}`)
	}, time.Second)

	got, err := client.Search(context.Background(), "  golang generics ", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []search.Result{
		{Title: "A", Link: "https://a", Snippet: "sa"},
		{Title: "B", Link: "https://b"},
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Search() = %+v, want %+v", got, want)
	}
	if calls.Load() != 1 {
		t.Fatalf("provider called %d times", calls.Load())
	}
}

func TestSearchInputErrors(t *testing.T) {
	t.Parallel()

	client, calls := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	}, time.Second)

	if _, err := client.Search(context.Background(), " \t", 3); !errors.Is(err, search.ErrEmptyQuery) {
		t.Fatalf("empty query error = %v", err)
	}
	if _, err := client.Search(context.Background(), "x", 0); !errors.Is(err, search.ErrInvalidCount) {
		t.Fatalf("zero count error = %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("provider called %d times", calls.Load())
	}
}

func TestSearchFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name:    "missing organic results",
			handler: func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, `{"search_metadata":{}}`) },
			want:    search.ErrNoResults,
		},
		{
			name:    "empty organic results",
			handler: func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, `{"organic_results":[]}`) },
			want:    search.ErrNoResults,
		},
		{
			name: "provider empty result message",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"error":"Google hasn't returned any results for this query."}`)
			},
			want: search.ErrNoResults,
		},
		{
			name:    "provider error field",
			handler: func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, `{"error":"Invalid API key."}`) },
			want:    search.ErrTransport,
		},
		{
			name: "non 2xx",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"Invalid API key."}`)
			},
			want: search.ErrTransport,
		},
		{
			name:    "undecodable body",
			handler: func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, `<html>`) },
			want:    search.ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, _ := newClient(t, tt.handler, time.Second)
			_, err := client.Search(context.Background(), "q", 3)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Search() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSearchTimeout(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		fmt.Fprint(w, `{"organic_results":[{"title":"late"}]}`)
	}, 50*time.Millisecond)

	_, err := client.Search(context.Background(), "slow", 3)
	var transportErr *search.TransportError
	if !errors.As(err, &transportErr) || !errors.Is(err, search.ErrTransport) {
		t.Fatalf("Search() error = %v, want TransportError", err)
	}
}

func TestFormatResults(t *testing.T) {
	t.Parallel()

	got := search.FormatResults([]search.Result{
		{Title: "Go", Link: "https://go.dev", Snippet: "The Go language"},
		{Title: "Tour", Link: "https://go.dev/tour"},
	})
	want := "1. Go\n   https://go.dev\n   The Go language\n2. Tour\n   https://go.dev/tour\n   "
	if got != want {
		t.Fatalf("FormatResults() = %q, want %q", got, want)
	}
	if search.FormatResults(nil) != "" {
		t.Fatal("FormatResults(nil) not empty")
	}
}
