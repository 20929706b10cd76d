// internal/api/middleware/auth.go
package middleware

import (
	"strings"

	"waste-docket-api-server/internal/resolvers"

	"github.com/gin-gonic/gin"
)

const (
	credentialsKey = "credentials"
	APIKeyHeader   = "x-api-key"
)

// Credentials extracts the bearer token and backend API key from the request
// and stores them in the context. It never aborts: each operation's guard
// decides whether missing credentials are acceptable.
func Credentials() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(credentialsKey, resolvers.Credentials{
			Token:  BearerToken(c.GetHeader("Authorization")),
			APIKey: strings.TrimSpace(c.GetHeader(APIKeyHeader)),
		})
		c.Next()
	}
}

// BearerToken returns the token of an "Authorization: Bearer <t>" header, or "".
func BearerToken(header string) string {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return strings.TrimSpace(token)
}

// CredentialsFrom returns what Credentials stored, or the zero value.
func CredentialsFrom(c *gin.Context) resolvers.Credentials {
	v, exists := c.Get(credentialsKey)
	if !exists {
		return resolvers.Credentials{}
	}
	creds, _ := v.(resolvers.Credentials)
	return creds
}
