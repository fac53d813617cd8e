package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
)

func TestFetchConversations_AllPagesInOrder(t *testing.T) {
	const totalPages = 3

	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %q, want 10", got)
		}
		fmt.Fprintf(w, `{
			"data": [{"id": "c%d", "summary": "page %d", "startTime": "2025-01-0%dT10:00:00Z"}],
			"meta": {"currentPage": %d, "totalPages": %d}
		}`, page, page, page, page, totalPages)
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "key", 10, nil)
	convs, err := c.FetchConversations(context.Background())
	if err != nil {
		t.Fatalf("FetchConversations: %v", err)
	}

	if requests.Load() != totalPages {
		t.Errorf("requests = %d, want %d", requests.Load(), totalPages)
	}
	if len(convs) != totalPages {
		t.Fatalf("got %d conversations, want %d", len(convs), totalPages)
	}
	for i, cv := range convs {
		want := fmt.Sprintf("c%d", i+1)
		if cv.ID != want {
			t.Errorf("convs[%d].ID = %q, want %q (page order)", i, cv.ID, want)
		}
	}
}

func TestFetchConversations_SinglePage(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"data":[],"meta":{"currentPage":1,"totalPages":1}}`)
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "key", 10, nil)
	convs, err := c.FetchConversations(context.Background())
	if err != nil {
		t.Fatalf("FetchConversations: %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("requests = %d, want 1", requests.Load())
	}
	if len(convs) != 0 {
		t.Errorf("got %d conversations, want 0", len(convs))
	}
}

// A server echoing a stale currentPage must not cause extra requests or an
// infinite loop; the loop advances on its own counter.
func TestFetchConversations_StaleCurrentPageEcho(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		page := r.URL.Query().Get("page")
		// currentPage always echoes 1, regardless of the requested page.
		fmt.Fprintf(w, `{"data":[{"id":"c%s","startTime":"2025-01-01T10:00:00Z"}],"meta":{"currentPage":1,"totalPages":3}}`, page)
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "key", 10, nil)
	convs, err := c.FetchConversations(context.Background())
	if err != nil {
		t.Fatalf("FetchConversations: %v", err)
	}
	if requests.Load() != 3 {
		t.Errorf("requests = %d, want 3", requests.Load())
	}
	if len(convs) != 3 {
		t.Errorf("got %d conversations, want 3", len(convs))
	}
}

func TestFetchConversations_MissingDataField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"meta":{"currentPage":1,"totalPages":1}}`)
	}))
	defer ts.Close()

	sink := &recordingSink{}
	c, _ := New(ts.URL, "key", 10, sink)
	_, err := c.FetchConversations(context.Background())

	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}

	kinds := sink.kinds()
	if len(kinds) == 0 || kinds[len(kinds)-1] != "error" {
		t.Errorf("expected a trailing error audit entry, got %v", kinds)
	}
}

func TestFetchConversations_MissingMeta(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "key", 10, nil)
	_, err := c.FetchConversations(context.Background())

	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
}

func TestFetchConversations_FailureReturnsNothing(t *testing.T) {
	// Page 2 fails; no partial results may come back.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":"c1","startTime":"2025-01-01T10:00:00Z"}],"meta":{"currentPage":1,"totalPages":2}}`)
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "key", 10, nil)
	convs, err := c.FetchConversations(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if convs != nil {
		t.Errorf("got %d partial conversations, want none", len(convs))
	}
}

func TestPing(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "1" {
				t.Errorf("limit = %q, want 1", got)
			}
			fmt.Fprint(w, `{"data":[],"meta":{"currentPage":1,"totalPages":1}}`)
		}))
		defer ts.Close()

		c, _ := New(ts.URL, "key", 10, nil)
		if err := c.Ping(context.Background()); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer ts.Close()

		c, _ := New(ts.URL, "key", 10, nil)
		if err := c.Ping(context.Background()); err == nil {
			t.Error("expected error for 401")
		}
	})
}
