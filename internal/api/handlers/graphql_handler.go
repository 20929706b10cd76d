// internal/api/handlers/graphql_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"waste-docket-api-server/internal/api/middleware"
	"waste-docket-api-server/internal/resolvers"

	"github.com/gin-gonic/gin"
)

// Operations is the resolver surface the transport calls into.
type Operations interface {
	Execute(ctx context.Context, name string, creds resolvers.Credentials, variables json.RawMessage) (resolvers.Enveloped, bool)
	Invoke(ctx context.Context, name string, creds resolvers.Credentials, input any) (resolvers.Enveloped, bool)
}

// OperationRequest is a GraphQL style request body. Query is accepted for
// client compatibility only; OperationName selects what runs.
type OperationRequest struct {
	OperationName string          `json:"operationName"`
	Variables     json.RawMessage `json:"variables"`
	Query         string          `json:"query"`
}

type GraphQLHandler struct {
	Ops Operations
}

// ServeGraphQL answers 200 with {"data": {name: envelope}} for every known
// operation. The domain status travels inside the envelope.
func (h *GraphQLHandler) ServeGraphQL(c *gin.Context) {
	var req OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid request body: "+err.Error()))
		return
	}
	name := strings.TrimSpace(req.OperationName)
	if name == "" {
		c.JSON(http.StatusBadRequest, errorBody("operationName is required"))
		return
	}

	out, known := h.Ops.Execute(c.Request.Context(), name, middleware.CredentialsFrom(c), req.Variables)
	respond(c, name, out, known)
}

func respond(c *gin.Context, name string, out resolvers.Enveloped, known bool) {
	if !known {
		c.JSON(http.StatusNotFound, errorBody(out.Envelope().Message))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{name: out}})
}

func errorBody(message string) gin.H {
	return gin.H{"errors": []gin.H{{"message": message}}}
}
