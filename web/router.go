package web

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/lens-forum/app/content"
	"github.com/lens-forum/app/util"
	"golang.org/x/time/rate"
)

// Router builds the HTTP surface: a health check and RSS exports of
// threads and communities read through src.
func Router(conf *util.AppConfig, src content.Source) *gin.Engine {
	// Set Gin to use the same log writer as the rest of the application
	gin.DefaultWriter = util.GetLogWriter()
	gin.DefaultErrorWriter = util.GetLogWriter()

	g := gin.Default()
	g.Use(gzip.Gzip(gzip.DefaultCompression))

	// Global rate limiter: 10 requests per second per IP, burst of 20
	globalLimiter := NewRateLimiter(rate.Limit(10), 20)
	g.Use(RateLimitMiddleware(globalLimiter))

	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": util.GetVersion()})
	})

	g.GET("/feed/threads/:address", func(c *gin.Context) {
		address := c.Param("address")
		if ok, msg := util.IsValidAddress(address); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		ctx, cancel := requestContext(c, conf)
		defer cancel()
		rss, err := GetThreadRSS(ctx, src, conf, address)
		renderFeed(c, rss, err)
	})

	g.GET("/feed/communities/:address", func(c *gin.Context) {
		address := c.Param("address")
		if ok, msg := util.IsValidAddress(address); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		ctx, cancel := requestContext(c, conf)
		defer cancel()
		rss, err := GetCommunityRSS(ctx, src, conf, address)
		renderFeed(c, rss, err)
	})

	return g
}

func requestContext(c *gin.Context, conf *util.AppConfig) (context.Context, context.CancelFunc) {
	if conf.Conf.ApiTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), conf.Conf.ApiTimeout)
}

func renderFeed(c *gin.Context, rss string, err error) {
	if err != nil {
		log.Printf("Failed to build feed for %s: %v", c.Request.URL.Path, err)
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Content API unavailable"})
		return
	}
	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Render(http.StatusOK, render.String{Format: rss})
}
