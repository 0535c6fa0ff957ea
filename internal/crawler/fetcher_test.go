package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linkpatrol/linkpatrol/internal/model"
	"github.com/linkpatrol/linkpatrol/internal/useragent"
)

func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("success response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html><body>ok</body></html>`))
		}))
		defer server.Close()

		f := NewFetcher(server.Client())
		outcome := f.Fetch(context.Background(), model.WorkItem{Target: server.URL})

		if !outcome.Responded {
			t.Fatal("Responded = false, want true")
		}
		if outcome.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, want 200", outcome.StatusCode)
		}
		if outcome.Broken() {
			t.Error("Broken() = true, want false")
		}
		if !strings.Contains(string(outcome.Body), "ok") {
			t.Errorf("Body = %q, want page content", outcome.Body)
		}
	})

	t.Run("404 is a responded outcome", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.NotFound(w, nil)
		}))
		defer server.Close()

		f := NewFetcher(server.Client())
		outcome := f.Fetch(context.Background(), model.WorkItem{Target: server.URL + "/missing"})

		if !outcome.Responded {
			t.Fatal("Responded = false, want true: a 404 is still a response")
		}
		if outcome.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want 404", outcome.StatusCode)
		}
		if !outcome.Broken() {
			t.Error("Broken() = false, want true")
		}
		if outcome.StatusLabel() != "404" {
			t.Errorf("StatusLabel() = %q, want %q", outcome.StatusLabel(), "404")
		}
	})

	t.Run("500 is a responded outcome", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		f := NewFetcher(server.Client())
		outcome := f.Fetch(context.Background(), model.WorkItem{Target: server.URL})

		if !outcome.Responded || outcome.StatusCode != http.StatusInternalServerError {
			t.Errorf("outcome = %+v, want responded 500", outcome)
		}
		if !outcome.Broken() {
			t.Error("Broken() = false, want true")
		}
	})

	t.Run("transport failure has no status", func(t *testing.T) {
		t.Parallel()

		// Closing the server makes its address refuse connections.
		server := httptest.NewServer(http.NotFoundHandler())
		target := server.URL
		server.Close()

		f := NewFetcher(&http.Client{Timeout: 2 * time.Second})
		outcome := f.Fetch(context.Background(), model.WorkItem{Target: target, Referrer: "http://ref.test"})

		if outcome.Responded {
			t.Fatal("Responded = true, want false for refused connection")
		}
		if outcome.StatusCode != 0 {
			t.Errorf("StatusCode = %d, want 0", outcome.StatusCode)
		}
		if !outcome.Broken() {
			t.Error("Broken() = false, want true")
		}
		if outcome.StatusLabel() != model.StatusError {
			t.Errorf("StatusLabel() = %q, want %q", outcome.StatusLabel(), model.StatusError)
		}
		if outcome.Referrer != "http://ref.test" {
			t.Errorf("Referrer = %q, want preserved", outcome.Referrer)
		}
	})

	t.Run("invalid URL has no status", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(&http.Client{Timeout: time.Second})
		outcome := f.Fetch(context.Background(), model.WorkItem{Target: "http://bad url with spaces"})

		if outcome.Responded {
			t.Error("Responded = true, want false for unbuildable request")
		}
	})
}

func TestFetchRequestHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotCookie, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCookie = r.Header.Get("Cookie")
		gotCustom = r.Header.Get("X-Scan-Token")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewFetcher(server.Client(),
		WithUserAgents(useragent.NewRotator("test-agent/1.0")),
		WithCookie("session=abc123"),
		WithHeaders(map[string]string{"X-Scan-Token": "secret"}),
	)
	f.Fetch(context.Background(), model.WorkItem{Target: server.URL})

	if gotUA != "test-agent/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "test-agent/1.0")
	}
	if gotCookie != "session=abc123" {
		t.Errorf("Cookie = %q, want %q", gotCookie, "session=abc123")
	}
	if gotCustom != "secret" {
		t.Errorf("X-Scan-Token = %q, want %q", gotCustom, "secret")
	}
}

func TestFetchBodyCap(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 1024))
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), WithMaxBodySize(64))
	outcome := f.Fetch(context.Background(), model.WorkItem{Target: server.URL})

	if !outcome.Responded {
		t.Fatal("Responded = false, want true")
	}
	if len(outcome.Body) != 64 {
		t.Errorf("len(Body) = %d, want capped at 64", len(outcome.Body))
	}
}

func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewFetcher(&http.Client{Timeout: 50 * time.Millisecond})
	outcome := f.Fetch(context.Background(), model.WorkItem{Target: server.URL})

	if outcome.Responded {
		t.Error("Responded = true, want false for timed-out fetch")
	}
	if outcome.StatusLabel() != model.StatusError {
		t.Errorf("StatusLabel() = %q, want %q", outcome.StatusLabel(), model.StatusError)
	}
}
