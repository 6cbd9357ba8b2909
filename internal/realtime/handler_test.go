package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestStreamDeliversChanges(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	p := NewPublisher(hub, nil, quietLogger())

	r := gin.New()
	r.GET("/events", NewHandler(hub).Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type %q", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(prefix string) string {
		t.Helper()
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, lines.Err())
		return ""
	}

	waitFor("event:ready")
	// The subscription exists once the ready event was written.
	p.Notify(ctx, "sales_records", "INSERT")
	waitFor("event:change")
	if data := waitFor("data:"); !strings.Contains(data, `"table":"sales_records"`) {
		t.Fatalf("unexpected payload %q", data)
	}
}
