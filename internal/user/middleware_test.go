package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/slingventas/sales-tracker-backend/pkg/token"
)

func newTestRouter(s *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := r.Group("/", AuthMiddleware(s))
	auth.GET("/me", func(c *gin.Context) { c.JSON(http.StatusOK, Current(c)) })
	auth.GET("/owner", RequireOwner(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAuthMiddleware(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if _, err := s.Add(ctx, AddRequest{Username: "ana", Password: "pw"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := s.Add(ctx, AddRequest{Username: "boss", Password: "pw", Role: "owner"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	anaTok, _, _ := token.GenerateToken("ana", "employee", time.Hour)
	bossTok, _, _ := token.GenerateToken("boss", "owner", time.Hour)
	ghostTok, _, _ := token.GenerateToken("ghost", "owner", time.Hour)

	r := newTestRouter(s)
	cases := []struct {
		name   string
		path   string
		header string
		query  string
		want   int
	}{
		{"no token", "/me", "", "", http.StatusUnauthorized},
		{"garbage", "/me", "Bearer nope", "", http.StatusUnauthorized},
		{"employee", "/me", "Bearer " + anaTok, "", http.StatusOK},
		{"query token", "/me", "", "?access_token=" + anaTok, http.StatusOK},
		{"deleted account", "/me", "Bearer " + ghostTok, "", http.StatusUnauthorized},
		{"employee on owner route", "/owner", "Bearer " + anaTok, "", http.StatusForbidden},
		{"owner on owner route", "/owner", "Bearer " + bossTok, "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}
