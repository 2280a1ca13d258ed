package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "auth.claims"

const maxPeekBody = 1 << 20

type verifier interface {
	Verify(raw string) (Claims, error)
}

// Authenticate stores verified claims on the context when the request carries a
// token, either as a Bearer header or as "_token" in a JSON body. Requests
// without a valid token pass through anonymous.
func Authenticate(tokens verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c.GetHeader("Authorization"))
		if raw == "" {
			raw = bodyToken(c)
		}
		if raw != "" {
			if claims, err := tokens.Verify(raw); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

func bearer(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// bodyToken peeks at a JSON body for "_token" and restores the body for the handler.
func bodyToken(c *gin.Context) string {
	if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPeekBody))
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	var body struct {
		Token string `json:"_token"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.Token
}

func ClaimsFrom(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

func RequireLoggedIn(c *gin.Context) {
	if _, ok := ClaimsFrom(c); !ok {
		unauthorized(c, "Must be logged in.")
		return
	}
	c.Next()
}

func RequireAdmin(c *gin.Context) {
	if claims, ok := ClaimsFrom(c); !ok || !claims.IsAdmin {
		unauthorized(c, "Must be admin.")
		return
	}
	c.Next()
}

// RequireCorrectUserOrAdmin guards routes keyed by :username.
func RequireCorrectUserOrAdmin(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok || !(claims.IsAdmin || claims.Username == c.Param("username")) {
		unauthorized(c, "Unauthorized")
		return
	}
	c.Next()
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"message": message, "status": http.StatusUnauthorized},
	})
}
