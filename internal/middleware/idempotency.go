package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// storedReply is the replayable copy of a mutating response. Client
// retries of accept/decline/complete carry the same key and get the
// original outcome back instead of re-running the transition.
type storedReply struct {
	StatusCode  int             `json:"status_code"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
}

// replyCapture wraps gin.ResponseWriter to keep a copy of the body.
type replyCapture struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *replyCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays stored responses for retried mutating
// requests that carry an Idempotency-Key header.
func IdempotencyMiddleware(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !mutating(c.Request.Method) {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := "idempotency:" + key

		stored, err := loadReply(ctx, redisClient, cacheKey)
		if err != nil && err != redis.Nil {
			// Redis trouble degrades to non-idempotent handling.
			c.Next()
			return
		}

		if stored != nil {
			contentType := stored.ContentType
			if contentType == "" {
				contentType = "application/json"
			}
			c.Data(stored.StatusCode, contentType, stored.Body)
			c.Abort()
			return
		}

		w := &replyCapture{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		// Server errors are retryable, so only settled outcomes are stored.
		if c.Writer.Status() >= 200 && c.Writer.Status() < 500 {
			_ = storeReply(ctx, redisClient, cacheKey, &storedReply{
				StatusCode:  c.Writer.Status(),
				ContentType: c.Writer.Header().Get("Content-Type"),
				Body:        w.body.Bytes(),
			})
		}
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

func loadReply(ctx context.Context, client *redis.Client, key string) (*storedReply, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var stored storedReply
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func storeReply(ctx context.Context, client *redis.Client, key string, reply *storedReply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, idempotencyTTL).Err()
}
