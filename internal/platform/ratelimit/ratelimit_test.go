package ratelimit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, err := New("2-M", "test:login", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	r := gin.New()
	r.POST("/login", Middleware(l, log), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	want := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("request %d: got %d, want %d (all: %v)", i, codes[i], want[i], codes)
		}
	}
}

func TestNewRejectsBadRate(t *testing.T) {
	if _, err := New("ten per minute", "x", nil); err == nil {
		t.Fatal("expected an error for a malformed rate")
	}
}
