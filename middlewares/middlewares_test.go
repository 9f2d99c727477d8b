package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/models"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role != "" {
			c.Request = c.Request.WithContext(utils.SetUserRoleInContext(c.Request.Context(), role))
		}
		c.Next()
	}
}

func TestRequirePolicy(t *testing.T) {
	cases := []struct {
		role string
		want int
	}{
		{"", http.StatusUnauthorized},
		{string(models.UserRoleRequester), http.StatusForbidden},
		{string(models.UserRoleAccountant), http.StatusOK},
		{string(models.UserRoleOwner), http.StatusOK},
	}
	for _, tc := range cases {
		r := gin.New()
		r.PUT("/transactions/:id/approve",
			withRole(tc.role),
			RequirePolicy(models.ResourceTransaction, models.ActionApprove),
			func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/transactions/1/approve", nil))
		if w.Code != tc.want {
			t.Errorf("role %q: status %d, want %d", tc.role, w.Code, tc.want)
		}
	}
}

func TestCorrelationId(t *testing.T) {
	r := gin.New()
	r.Use(CorrelationId())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen, _ = utils.GetCorrelationIdFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIdHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if seen != "abc-123" || w.Header().Get(CorrelationIdHeader) != "abc-123" {
		t.Fatalf("correlation id not propagated: ctx=%q header=%q", seen, w.Header().Get(CorrelationIdHeader))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen == "abc-123" {
		t.Fatalf("expected a fresh correlation id, got %q", seen)
	}
}

func TestReadinessGateBeforeConnect(t *testing.T) {
	r := gin.New()
	r.Use(ReadinessGate())
	r.GET("/api/counter", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("/healthz = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/counter", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("/api/counter before connect = %d", w.Code)
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	defer client.Close()

	r := gin.New()
	r.Use(NewRateLimiter(client, 1, time.Minute).RateLimitMiddleware)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d with redis down = %d", i, w.Code)
		}
	}
}
