// internal/resolvers/users.go
package resolvers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"waste-docket-api-server/internal/auth"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/patch"
	"waste-docket-api-server/internal/search"
)

func (r *Resolver) userOperations() []*Operation {
	return []*Operation{
		mutation("signIn", apiKey, r.signIn),
		query("getUser", signed, r.getUser),
		mutation("updateUserProfile", signed, r.updateUserProfile),
		mutation("changeSelectedFleet", signed, r.changeSelectedFleet),
		query("getAllUsersForAdminWithSorting", admin401, r.getAllUsersForAdminWithSorting),
		mutation("changeUserAccountTypeByAdmin", admin403, r.changeUserAccountTypeByAdmin),
		mutation("deleteUserByAdmin", admin403, r.deleteUserByAdmin),
	}
}

type UserResult struct {
	User     *models.User `json:"user"`
	Response `json:"response"`
}

type SignInResult struct {
	User     *models.User `json:"user"`
	Token    string       `json:"token"`
	Response `json:"response"`
}

// SearchInput is the shared free-text, sort and paging input of list operations.
type SearchInput struct {
	Search         string `json:"search"`
	SortColumn     string `json:"sortColumn"`
	SortDirection  string `json:"sortDirection"`
	PageNumber     *int64 `json:"pageNumber"`
	ResultsPerPage *int64 `json:"resultsPerPage"`
}

func (s SearchInput) page() search.Page { return search.NewPage(s.PageNumber, s.ResultsPerPage) }

type SignInInput struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// signIn finds or creates the user for an email and issues a token.
func (r *Resolver) signIn(ctx context.Context, call *Call, in SignInInput) SignInResult {
	email := strings.TrimSpace(in.Email)
	user, err := r.Users.FindByEmail(ctx, email)
	created := false
	switch {
	case errors.Is(err, errNotFound):
		now := r.now()
		user = &models.User{
			PersonalDetails: models.PersonalDetails{Name: strings.TrimSpace(in.Name), Email: email},
			AccountType:     models.AccountTypeUser,
			AccountSubType:  models.AccountSubTypeNone,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := r.Users.Create(ctx, user); err != nil {
			return SignInResult{Response: internal(err)}
		}
		created = true
	case err != nil:
		return SignInResult{Response: internal(err)}
	}

	token, err := auth.GenerateJWT(call.Bundle.JWTSecret, user.ID.Hex(), email, r.Options.TokenTTL)
	if err != nil {
		return SignInResult{Response: internal(err)}
	}
	msg := "Signed in"
	if created {
		msg = "User created"
	}
	return SignInResult{User: user, Token: token, Response: ok(msg)}
}

func (r *Resolver) getUser(_ context.Context, call *Call, _ struct{}) UserResult {
	return UserResult{User: call.User, Response: ok("User found")}
}

type UpdateUserProfileInput struct {
	Name           patch.Field[string]                `json:"name"`
	PhoneNumber    patch.Field[string]                `json:"phoneNumber"`
	AccountSubType patch.Field[models.AccountSubType] `json:"accountSubType"`
}

func (r *Resolver) updateUserProfile(ctx context.Context, call *Call, in UpdateUserProfileInput) UserResult {
	if in.AccountSubType.State == patch.Set && !in.AccountSubType.Value.Valid() {
		return UserResult{Response: badRequest("Invalid account sub-type")}
	}
	user := *call.User
	in.Name.Apply(&user.PersonalDetails.Name)
	in.PhoneNumber.Apply(&user.PersonalDetails.PhoneNumber)
	in.AccountSubType.Apply(&user.AccountSubType)
	user.SignUpCompleted = true
	user.UpdatedAt = r.now()

	if err := r.Users.UpdateProfile(ctx, &user); err != nil {
		return UserResult{Response: lookup(err, "User not found")}
	}
	return UserResult{User: &user, Response: ok("Profile updated")}
}

type FleetIDInput struct {
	FleetID string `json:"fleetId" validate:"required"`
}

func (r *Resolver) changeSelectedFleet(ctx context.Context, call *Call, in FleetIDInput) UserResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, memberOr403)
	if denied != nil {
		return UserResult{Response: *denied}
	}
	if err := r.Users.SetSelectedFleet(ctx, call.User.ID, &fleet.ID); err != nil {
		return UserResult{Response: lookup(err, "User not found")}
	}
	user := *call.User
	user.SelectedFleet = &fleet.ID
	return UserResult{User: &user, Response: ok("Selected fleet changed")}
}

func (r *Resolver) getAllUsersForAdminWithSorting(ctx context.Context, _ *Call, in SearchInput) PageResult[models.User] {
	items, total, err := r.Users.Search(ctx, search.Query{
		Term:   in.Search,
		Fields: search.UserFieldsForAdmin,
		Sort:   search.Sort(search.UserSortColumns, in.SortColumn, in.SortDirection),
		Page:   in.page(),
	})
	if err != nil {
		return PageResult[models.User]{Response: internal(err)}
	}
	return PageResult[models.User]{Items: items, TotalCount: total, Response: ok("Users found")}
}

type ChangeAccountTypeInput struct {
	UserID      string             `json:"userId" validate:"required"`
	AccountType models.AccountType `json:"accountType" validate:"required,oneof=ADMIN USER"`
}

func (r *Resolver) changeUserAccountTypeByAdmin(ctx context.Context, _ *Call, in ChangeAccountTypeInput) UserResult {
	id, bad := parseID(in.UserID, "user")
	if bad != nil {
		return UserResult{Response: *bad}
	}
	user, err := r.Users.FindByID(ctx, id)
	if err != nil {
		return UserResult{Response: lookup(err, "User not found")}
	}
	if err := r.Users.SetAccountType(ctx, id, in.AccountType); err != nil {
		return UserResult{Response: lookup(err, "User not found")}
	}
	user.AccountType = in.AccountType
	return UserResult{User: user, Response: ok("Account type changed")}
}

type UserIDInput struct {
	UserID string `json:"userId" validate:"required"`
}

func (r *Resolver) deleteUserByAdmin(ctx context.Context, call *Call, in UserIDInput) DeleteResult {
	id, bad := parseID(in.UserID, "user")
	if bad != nil {
		return DeleteResult{Response: *bad}
	}
	if id == call.User.ID {
		return DeleteResult{Response: fail(http.StatusBadRequest, "Admins cannot delete themselves")}
	}
	user, err := r.Users.FindByID(ctx, id)
	if err != nil {
		return DeleteResult{Response: lookup(err, "User not found")}
	}
	if err := r.removeUser(ctx, user, false); err != nil {
		return DeleteResult{Response: internal(err)}
	}
	return DeleteResult{ID: id.Hex(), Response: ok("User deleted")}
}

// removeUser deletes the user and drops their email from every member list.
// With ownedFleets set, fleets they own are deleted with the full cascade.
func (r *Resolver) removeUser(ctx context.Context, user *models.User, ownedFleets bool) error {
	email := user.PersonalDetails.Email
	if ownedFleets {
		fleets, err := r.Fleets.ListOwnedBy(ctx, email)
		if err != nil {
			return err
		}
		for i := range fleets {
			if err := r.cascadeFleet(ctx, &fleets[i]); err != nil {
				return err
			}
		}
	}
	if err := r.Fleets.RemoveMemberEverywhere(ctx, email); err != nil {
		return err
	}
	if err := r.Users.Delete(ctx, user.ID); err != nil && !errors.Is(err, errNotFound) {
		return err
	}
	return nil
}
