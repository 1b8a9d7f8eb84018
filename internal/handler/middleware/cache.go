package middleware

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type cachedWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cachedWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// ResponseCache serves successful GET responses from Redis for ttl. With a
// nil client it is a no-op, so the server runs without Redis configured.
// Only the read-only garage views go through here; booking mutations never do.
func ResponseCache(client *redis.Client, ttl time.Duration) gin.HandlerFunc {
	if client == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c.Request.URL.RequestURI())

		if cached, err := client.Get(c.Request.Context(), key).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			c.Abort()
			return
		} else if err != redis.Nil {
			slog.Warn("response cache read failed", "key", key, "error", err)
		}

		writer := &cachedWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() == http.StatusOK && writer.body.Len() > 0 {
			if err := client.Set(c.Request.Context(), key, writer.body.Bytes(), ttl).Err(); err != nil {
				slog.Warn("response cache write failed", "key", key, "error", err)
			}
		}
	}
}

func cacheKey(uri string) string {
	sum := sha1.Sum([]byte(uri))
	return "rcache:" + hex.EncodeToString(sum[:])
}
