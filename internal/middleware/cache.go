package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/bookish/account-service/internal/config"
)

// cachedResponse is the envelope stored in Redis.
type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// captureWriter captures the response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

// cacheKey builds a stable key from the request path, so parameterized
// routes cache per target resource.
func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Request().Method + ":" + c.Request().URL.Path))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// CacheResponse returns a middleware that serves GET responses from
// Redis when possible and stores fresh 200 responses with the
// configured TTL.  With a nil client or caching disabled the middleware
// is a passthrough.  Only body and status are cached; the handlers
// behind it produce identical JSON for every authenticated caller.
func CacheResponse(client *redis.Client, cfg config.CacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if client == nil || !cfg.Enabled || c.Request().Method != http.MethodGet {
				return next(c)
			}

			key := cacheKey(cfg.Prefix, c)
			if raw, err := client.Get(c.Request().Context(), key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil && cached.Status != 0 {
					return c.JSONBlob(cached.Status, cached.Body)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && cw.buf.Len() > 0 {
				raw, err := json.Marshal(cachedResponse{Status: cw.status, Body: cw.buf.Bytes()})
				if err == nil {
					// Best effort; a failed SET just means a cache miss next time.
					setCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = client.Set(setCtx, key, raw, cfg.TTL).Err()
				}
			}
			return nil
		}
	}
}
