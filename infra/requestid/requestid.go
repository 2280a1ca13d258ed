package requestid

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const Header = "X-Request-ID"

type ctxKey struct{}

var key = ctxKey{}

func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key, id)
}

func Generate() string {
	return uuid.NewString()
}

// Middleware reuses the caller's X-Request-ID when it is sane, or mints one,
// and echoes it on the response.
func Middleware(c *gin.Context) {
	id := c.GetHeader(Header)
	if id == "" || len(id) > 128 {
		id = Generate()
	}
	c.Request = c.Request.WithContext(NewContext(c.Request.Context(), id))
	c.Header(Header, id)
	c.Next()
}
