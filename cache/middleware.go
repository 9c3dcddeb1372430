package cache

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pastelaria-api/utils"
)

const HeaderCache = "X-Cache"

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// WriteHeader marks cacheable responses before the status line goes out.
func (w *bodyCaptureWriter) WriteHeader(code int) {
	if code == http.StatusOK {
		w.Header().Set(HeaderCache, "MISS")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware serves cached GET bodies and stores fresh 200 responses for ttl.
// Store failures are logged and treated as a miss.
func Middleware(store Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := RequestKey(c)

		cached, ok, err := store.Get(ctx, key)
		if err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{"key": key, "error": err}).Error("cache read failed")
		}
		if ok {
			c.Header(HeaderCache, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			c.Abort()
			return
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		if writer.Status() != http.StatusOK {
			return
		}
		if err := store.Set(ctx, key, writer.body.String(), ttl); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{"key": key, "error": err}).Error("cache write failed")
		}
	}
}

// Invalidate drops every cached GET under the given paths.
func Invalidate(ctx context.Context, store Store, paths ...string) {
	if store == nil {
		return
	}
	for _, path := range paths {
		n, err := store.DeletePattern(ctx, EntityPattern(path))
		if err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{"path": path, "error": err}).Error("cache invalidation failed")
			continue
		}
		if n > 0 {
			utils.InfoLogger.WithFields(logrus.Fields{"path": path, "entries": n}).Debug("cache invalidated")
		}
	}
}
