package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lens-forum/app/content"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const (
	threadAddr    = "0x1111111111111111111111111111111111111111"
	communityAddr = "0x2222222222222222222222222222222222222222"
)

type fakeSource struct {
	content.Source
	err error
}

func (f fakeSource) FetchThread(ctx context.Context, address string) (domain.Thread, error) {
	if f.err != nil {
		return domain.Thread{}, f.err
	}
	return domain.Thread{
		Address:  address,
		Title:    "Release planning",
		Summary:  "What goes into 2.0",
		Author:   domain.Author{Username: "lens/alice"},
		RootPost: domain.RootPost{Id: "root", Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}, nil
}

func (f fakeSource) FetchRepliesPaginated(ctx context.Context, thread string, pageSize int, cursor string) (domain.RepliesPage, error) {
	return domain.RepliesPage{Items: []domain.Reply{
		{Id: "r2", Content: "<p>second</p>", Author: domain.Author{Username: "lens/carol"}, CreatedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
		{Id: "root", Content: "<p>root body</p>"},
		{Id: "r1", Content: "<p>first <script>alert(1)</script></p>", Author: domain.Author{Username: "lens/bob"}, CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
	}}, nil
}

func (f fakeSource) FetchThreads(ctx context.Context, community string, pageSize int, cursor string) (domain.ThreadsPage, error) {
	if f.err != nil {
		return domain.ThreadsPage{}, f.err
	}
	return domain.ThreadsPage{Items: []domain.Thread{
		{Address: threadAddr, Title: "Release planning", Summary: "What goes into 2.0", Tags: []string{"governance"}},
	}}, nil
}

func testConf() *util.AppConfig {
	conf := &util.AppConfig{}
	conf.Conf.Host = "127.0.0.1"
	conf.Conf.HttpPort = 9090
	conf.Conf.PageSize = 50
	conf.Conf.ApiTimeout = time.Second
	return conf
}

func get(t *testing.T, src content.Source, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := Router(testConf(), src)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := get(t, fakeSource{}, "/healthz")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestThreadFeed(t *testing.T) {
	w := get(t, fakeSource{}, "/feed/threads/"+threadAddr)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")

	body := w.Body.String()
	assert.Contains(t, body, "<title>Release planning</title>")
	assert.NotContains(t, body, "root body")
	assert.NotContains(t, body, "<script>")
	first := strings.Index(body, "first")
	second := strings.Index(body, "second")
	require.True(t, first > 0 && second > 0)
	assert.Less(t, first, second, "replies should be oldest first")
}

func TestCommunityFeed(t *testing.T) {
	w := get(t, fakeSource{}, "/feed/communities/"+communityAddr)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Release planning")
	assert.Contains(t, body, "http://127.0.0.1:9090/feed/threads/"+threadAddr)
	assert.Contains(t, body, "#governance")
}

func TestFeedRejectsInvalidAddress(t *testing.T) {
	w := get(t, fakeSource{}, "/feed/threads/not-an-address")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedNotFound(t *testing.T) {
	w := get(t, fakeSource{err: content.ErrNotFound}, "/feed/threads/"+threadAddr)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedUpstreamFailure(t *testing.T) {
	w := get(t, fakeSource{err: errors.New("connection refused")}, "/feed/communities/"+communityAddr)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestBuildURLPrefersPublicURL(t *testing.T) {
	conf := testConf()
	assert.Equal(t, "http://127.0.0.1:9090/feed", buildURL(conf, "/feed"))

	conf.Conf.PublicURL = "https://forum.example/"
	assert.Equal(t, "https://forum.example/feed", buildURL(conf, "/feed"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"), "burst exhausted")
	assert.True(t, rl.Allow("5.6.7.8"), "buckets are per IP")

	now = now.Add(limiterIdleTimeout + time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))
	rl.mu.Lock()
	defer rl.mu.Unlock()
	_, kept := rl.visitors["5.6.7.8"]
	assert.False(t, kept, "idle buckets are dropped")
}

func TestRateLimiterSweepsAtMostOncePerIdleTimeout(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.Equal(t, start, rl.lastSweep)

	now = start.Add(time.Minute)
	assert.True(t, rl.Allow("5.6.7.8"))
	assert.Equal(t, start, rl.lastSweep, "no sweep inside the idle window")

	now = start.Add(limiterIdleTimeout + 2*time.Minute)
	assert.True(t, rl.Allow("9.9.9.9"))
	assert.Equal(t, now, rl.lastSweep)
	_, kept := rl.visitors["1.2.3.4"]
	assert.False(t, kept, "idle bucket dropped on the next sweep")
	_, kept = rl.visitors["5.6.7.8"]
	assert.False(t, kept)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	g.Use(RateLimitMiddleware(NewRateLimiter(rate.Limit(0.001), 1)))
	g.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = w.Code
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
