// internal/resolvers/guard.go
package resolvers

import (
	"context"
	"net/http"

	"waste-docket-api-server/internal/auth"
	"waste-docket-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Access uint8

const (
	Public Access = iota
	Token
	APIKey
)

// Guard is the per-operation authentication policy. DeniedStatus is the
// status returned when the caller lacks Role; operations differ on it.
type Guard struct {
	Access       Access
	Role         models.AccountType
	DeniedStatus int
}

var (
	public   = Guard{Access: Public}
	apiKey   = Guard{Access: APIKey}
	signed   = Guard{Access: Token}
	admin401 = Guard{Access: Token, Role: models.AccountTypeAdmin, DeniedStatus: http.StatusUnauthorized}
	admin403 = Guard{Access: Token, Role: models.AccountTypeAdmin, DeniedStatus: http.StatusForbidden}
)

func (r *Resolver) authorize(ctx context.Context, op *Operation, creds Credentials) (*Call, *Response) {
	call := &Call{Operation: op.Name}
	if op.Guard.Access == Public {
		return call, nil
	}

	if r.Secrets == nil {
		resp := internal(auth.ErrMissingSecret)
		return nil, &resp
	}
	bundle, err := r.Secrets.GetInstance(ctx)
	if err != nil {
		resp := internal(err)
		return nil, &resp
	}
	call.Bundle = bundle

	if op.Guard.Access == APIKey {
		if creds.APIKey == "" || creds.APIKey != bundle.BackendAPIKey {
			resp := notAuthenticated()
			return nil, &resp
		}
		return call, nil
	}

	claims, err := auth.Verify(creds.Token, bundle.JWTSecret)
	if err != nil {
		resp := internal(err)
		if auth.IsAuthFailure(err) {
			resp = notAuthenticated()
		}
		return nil, &resp
	}
	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		resp := notAuthenticated()
		return nil, &resp
	}
	user, err := r.Users.FindByID(ctx, userID)
	if err != nil {
		resp := lookup(err, "User not found")
		return nil, &resp
	}
	if op.Guard.Role != "" && user.AccountType != op.Guard.Role {
		resp := fail(op.Guard.DeniedStatus, "Not authorized")
		return nil, &resp
	}
	call.User = user
	return call, nil
}

// fleetAccess is the membership rule a fleet-scoped operation applies.
type fleetAccess struct {
	OwnerOnly    bool
	DeniedStatus int
}

var (
	ownerOr403  = fleetAccess{OwnerOnly: true, DeniedStatus: http.StatusForbidden}
	ownerOr401  = fleetAccess{OwnerOnly: true, DeniedStatus: http.StatusUnauthorized}
	memberOr401 = fleetAccess{DeniedStatus: http.StatusUnauthorized}
	memberOr403 = fleetAccess{DeniedStatus: http.StatusForbidden}
	memberOr404 = fleetAccess{DeniedStatus: http.StatusNotFound}
)

func (a fleetAccess) allows(fleet *models.Fleet, user *models.User) bool {
	if a.OwnerOnly {
		return auth.IsOwner(fleet, user)
	}
	return auth.IsOwnerOrMember(fleet, user)
}

// fleet loads the fleet named by a hex id and applies a.
func (r *Resolver) fleet(ctx context.Context, call *Call, rawID string, a fleetAccess) (*models.Fleet, *Response) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		resp := badRequest("Invalid fleet id")
		return nil, &resp
	}
	return r.fleetByID(ctx, call, id, a)
}

func (r *Resolver) fleetByID(ctx context.Context, call *Call, id primitive.ObjectID, a fleetAccess) (*models.Fleet, *Response) {
	f, err := r.Fleets.FindByID(ctx, id)
	if err != nil {
		resp := lookup(err, "Fleet not found")
		return nil, &resp
	}
	if !a.allows(f, call.User) {
		resp := fail(a.DeniedStatus, "Not authorized to access this fleet")
		return nil, &resp
	}
	return f, nil
}

func parseID(raw, what string) (primitive.ObjectID, *Response) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		resp := badRequest("Invalid " + what + " id")
		return primitive.NilObjectID, &resp
	}
	return id, nil
}
