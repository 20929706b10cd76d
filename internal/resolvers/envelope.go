// internal/resolvers/envelope.go
package resolvers

import (
	"errors"
	"net/http"

	"waste-docket-api-server/internal/repository"
)

// Response is the status pair carried by every operation result. Status
// mirrors HTTP semantics but is never sent as the HTTP status.
type Response struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (r Response) Envelope() Response { return r }

// Enveloped is implemented by every result through its embedded Response.
type Enveloped interface {
	Envelope() Response
}

// Failure is the result of an operation that could not produce a payload.
type Failure struct {
	Response `json:"response"`
}

type PageResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Response   `json:"response"`
}

type DeleteResult struct {
	ID       string `json:"id"`
	Response `json:"response"`
}

var errNotFound = repository.ErrNotFound

func ok(message string) Response {
	return Response{Message: message, Status: http.StatusOK}
}

func fail(status int, message string) Response {
	return Response{Message: message, Status: status}
}

func badRequest(message string) Response { return fail(http.StatusBadRequest, message) }

// internal surfaces the raw error text.
func internal(err error) Response {
	return Response{Message: err.Error(), Status: http.StatusInternalServerError}
}

// lookup turns a repository error into 404 with message, or 500.
func lookup(err error, message string) Response {
	if errors.Is(err, errNotFound) {
		return fail(http.StatusNotFound, message)
	}
	return internal(err)
}

func notAuthenticated() Response { return fail(http.StatusUnauthorized, "Not Authenticated") }

func isNotFound(err error) bool { return errors.Is(err, errNotFound) }
