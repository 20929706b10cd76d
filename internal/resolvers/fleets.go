// internal/resolvers/fleets.go
package resolvers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/patch"
	"waste-docket-api-server/internal/search"
	"waste-docket-api-server/internal/socket"

	"go.uber.org/zap"
)

func (r *Resolver) fleetOperations() []*Operation {
	return []*Operation{
		mutation("addFleet", signed, r.addFleet),
		query("getFleets", signed, r.getFleets),
		query("getFleetById", signed, r.getFleetByID),
		mutation("updateFleet", signed, r.updateFleet),
		mutation("deleteFleet", signed, r.deleteFleet),
		mutation("deleteFleetByAdmin", admin401, r.deleteFleetByAdmin),
		query("getAllFleetsForAdmin", admin401, r.getAllFleetsForAdmin),
		mutation("removeFleetMember", signed, r.removeFleetMember),
		mutation("leaveFleet", signed, r.leaveFleet),
	}
}

type FleetResult struct {
	Fleet    *models.Fleet `json:"fleet"`
	Response `json:"response"`
}

type FleetsResult struct {
	Fleets   []models.Fleet `json:"fleets"`
	Response `json:"response"`
}

type AddFleetInput struct {
	models.FleetDetails
}

func (r *Resolver) addFleet(ctx context.Context, call *Call, in AddFleetInput) FleetResult {
	details := in.FleetDetails
	details.Name = strings.TrimSpace(details.Name)
	if details.Name == "" {
		return FleetResult{Response: badRequest("Fleet name is required")}
	}
	owner := call.User.PersonalDetails.Email

	exists, err := r.Fleets.OwnerHasFleetNamed(ctx, owner, details.Name)
	if err != nil {
		return FleetResult{Response: internal(err)}
	}
	if exists {
		return FleetResult{Response: fail(http.StatusConflict, "Fleet with this name already exists")}
	}

	now := r.now()
	fleet := &models.Fleet{
		OwnerEmail:   owner,
		FleetDetails: details,
		DocketNumber: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.Fleets.Create(ctx, fleet); err != nil {
		return FleetResult{Response: internal(err)}
	}
	if err := r.Users.AddFleet(ctx, call.User.ID, fleet.ID, true); err != nil {
		return FleetResult{Fleet: fleet, Response: internal(err)}
	}
	return FleetResult{Fleet: fleet, Response: ok("Fleet created")}
}

func (r *Resolver) getFleets(ctx context.Context, call *Call, _ struct{}) FleetsResult {
	fleets, err := r.Fleets.ListForMember(ctx, call.User.PersonalDetails.Email)
	if err != nil {
		return FleetsResult{Response: internal(err)}
	}
	return FleetsResult{Fleets: fleets, Response: ok("Fleets found")}
}

func (r *Resolver) getFleetByID(ctx context.Context, call *Call, in FleetIDInput) FleetResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, memberOr404)
	if denied != nil {
		return FleetResult{Response: *denied}
	}
	return FleetResult{Fleet: fleet, Response: ok("Fleet found")}
}

type UpdateFleetInput struct {
	FleetID                   string                           `json:"fleetId" validate:"required"`
	Name                      patch.Field[string]              `json:"name"`
	IsIndividual              patch.Field[bool]                `json:"isIndividual"`
	PrefixDocketNumber        patch.Field[string]              `json:"prefixDocketNumber"`
	PermitNumber              patch.Field[string]              `json:"permitNumber"`
	VATNumber                 patch.Field[string]              `json:"vatNumber"`
	CompanyRegistrationNumber patch.Field[string]              `json:"companyRegistrationNumber"`
	LegalName                 patch.Field[string]              `json:"legalName"`
	CompanyPhone              patch.Field[string]              `json:"companyPhone"`
	CompanyEmail              patch.Field[string]              `json:"companyEmail"`
	CompanyAddress            patch.Field[models.Address]      `json:"companyAddress"`
	AllowedWaste              patch.Field[[]models.LabelValue] `json:"allowedWaste"`
}

func (in UpdateFleetInput) apply(d *models.FleetDetails) {
	in.Name.Apply(&d.Name)
	in.IsIndividual.Apply(&d.IsIndividual)
	in.PrefixDocketNumber.Apply(&d.PrefixDocketNumber)
	in.PermitNumber.Apply(&d.PermitNumber)
	in.VATNumber.Apply(&d.VATNumber)
	in.CompanyRegistrationNumber.Apply(&d.CompanyRegistrationNumber)
	in.LegalName.Apply(&d.LegalName)
	in.CompanyPhone.Apply(&d.CompanyPhone)
	in.CompanyEmail.Apply(&d.CompanyEmail)
	in.CompanyAddress.Apply(&d.CompanyAddress)
	in.AllowedWaste.Apply(&d.AllowedWaste)
	if d.AllowedWaste == nil {
		d.AllowedWaste = []models.LabelValue{}
	}
}

func (r *Resolver) updateFleet(ctx context.Context, call *Call, in UpdateFleetInput) FleetResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, ownerOr403)
	if denied != nil {
		return FleetResult{Response: *denied}
	}
	if in.Name.State == patch.Clear || (in.Name.State == patch.Set && strings.TrimSpace(in.Name.Value) == "") {
		return FleetResult{Response: badRequest("Fleet name is required")}
	}
	if in.Name.State == patch.Set {
		in.Name.Value = strings.TrimSpace(in.Name.Value)
	}
	if patch.ChangesFold(in.Name, fleet.Name) {
		exists, err := r.Fleets.OwnerHasFleetNamed(ctx, fleet.OwnerEmail, in.Name.Value)
		if err != nil {
			return FleetResult{Response: internal(err)}
		}
		if exists {
			return FleetResult{Response: fail(http.StatusConflict, "Fleet with this name already exists")}
		}
	}

	in.apply(&fleet.FleetDetails)
	if err := r.Fleets.UpdateDetails(ctx, fleet.ID, fleet.FleetDetails); err != nil {
		return FleetResult{Response: lookup(err, "Fleet not found")}
	}
	fleet.UpdatedAt = r.now()
	return FleetResult{Fleet: fleet, Response: ok("Fleet updated")}
}

func (r *Resolver) deleteFleet(ctx context.Context, call *Call, in FleetIDInput) DeleteResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, ownerOr403)
	if denied != nil {
		return DeleteResult{Response: *denied}
	}
	if err := r.cascadeFleet(ctx, fleet); err != nil {
		return DeleteResult{Response: internal(err)}
	}
	return DeleteResult{ID: fleet.ID.Hex(), Response: ok("Fleet deleted")}
}

func (r *Resolver) deleteFleetByAdmin(ctx context.Context, _ *Call, in FleetIDInput) DeleteResult {
	id, bad := parseID(in.FleetID, "fleet")
	if bad != nil {
		return DeleteResult{Response: *bad}
	}
	fleet, err := r.Fleets.FindByID(ctx, id)
	if err != nil {
		return DeleteResult{Response: lookup(err, "Fleet not found")}
	}
	if err := r.cascadeFleet(ctx, fleet); err != nil {
		return DeleteResult{Response: internal(err)}
	}
	return DeleteResult{ID: id.Hex(), Response: ok("Fleet deleted")}
}

// cascadeFleet removes a fleet with everything scoped to it. Pending
// invitations are kept as FLEET_DELETED. Each step is its own write.
func (r *Resolver) cascadeFleet(ctx context.Context, fleet *models.Fleet) error {
	log := r.Log.With(zap.String("fleetId", fleet.ID.Hex()))

	if _, err := r.Dockets.DeleteByFleet(ctx, fleet.ID); err != nil {
		return err
	}
	if _, err := r.Customers.DeleteByFleet(ctx, fleet.ID); err != nil {
		return err
	}
	if _, err := r.Facilities.DeleteByFleet(ctx, fleet.ID); err != nil {
		return err
	}

	permits, err := r.Permits.ListByFleet(ctx, fleet.ID)
	if err != nil {
		return err
	}
	if r.Storage != nil {
		for _, p := range permits {
			if err := r.Storage.DeleteObject(ctx, p.ObjectKey); err != nil {
				log.Warn("permit object left behind", zap.String("key", p.ObjectKey), zap.Error(err))
			}
		}
	}
	if _, err := r.Permits.DeleteByFleet(ctx, fleet.ID); err != nil {
		return err
	}

	if _, err := r.Invitations.MarkFleetDeleted(ctx, fleet.ID); err != nil {
		return err
	}
	if err := r.Users.DetachFleet(ctx, fleet.ID); err != nil {
		return err
	}
	if err := r.Fleets.Delete(ctx, fleet.ID); err != nil && !errors.Is(err, errNotFound) {
		return err
	}

	for _, email := range fleet.MembersEmails {
		r.notify(email, socket.EventFleetDeleted, map[string]string{"fleetId": fleet.ID.Hex(), "fleetName": fleet.Name})
	}
	log.Info("fleet deleted", zap.Int("permits", len(permits)))
	return nil
}

func (r *Resolver) getAllFleetsForAdmin(ctx context.Context, _ *Call, in SearchInput) PageResult[models.Fleet] {
	items, total, err := r.Fleets.Search(ctx, search.Query{
		Term:   in.Search,
		Fields: search.FleetFieldsForAdmin,
		Sort:   search.Sort(search.FleetSortColumns, in.SortColumn, in.SortDirection),
		Page:   in.page(),
	})
	if err != nil {
		return PageResult[models.Fleet]{Response: internal(err)}
	}
	return PageResult[models.Fleet]{Items: items, TotalCount: total, Response: ok("Fleets found")}
}

type FleetMemberInput struct {
	FleetID string `json:"fleetId" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

func (r *Resolver) removeFleetMember(ctx context.Context, call *Call, in FleetMemberInput) FleetResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, ownerOr403)
	if denied != nil {
		return FleetResult{Response: *denied}
	}
	if !containsString(fleet.MembersEmails, in.Email) {
		return FleetResult{Response: fail(http.StatusNotFound, "Member not found")}
	}
	if err := r.Fleets.RemoveMember(ctx, fleet.ID, in.Email); err != nil {
		return FleetResult{Response: lookup(err, "Fleet not found")}
	}
	if member, err := r.Users.FindByEmail(ctx, in.Email); err == nil {
		if err := r.Users.RemoveFleet(ctx, member.ID, fleet.ID); err != nil {
			return FleetResult{Response: internal(err)}
		}
	} else if !errors.Is(err, errNotFound) {
		return FleetResult{Response: internal(err)}
	}

	fleet.MembersEmails = removeString(fleet.MembersEmails, in.Email)
	r.notify(in.Email, socket.EventRemovedFromFleet, map[string]string{"fleetId": fleet.ID.Hex(), "fleetName": fleet.Name})
	return FleetResult{Fleet: fleet, Response: ok("Member removed")}
}

func (r *Resolver) leaveFleet(ctx context.Context, call *Call, in FleetIDInput) FleetResult {
	id, bad := parseID(in.FleetID, "fleet")
	if bad != nil {
		return FleetResult{Response: *bad}
	}
	email := call.User.PersonalDetails.Email
	fleet, err := r.Fleets.FindByID(ctx, id)
	if err != nil {
		return FleetResult{Response: lookup(err, "Fleet not found")}
	}
	if fleet.OwnerEmail == email {
		return FleetResult{Response: badRequest("Fleet owner cannot leave the fleet")}
	}
	if !containsString(fleet.MembersEmails, email) {
		return FleetResult{Response: fail(http.StatusNotFound, "Fleet not found")}
	}
	if err := r.Fleets.RemoveMember(ctx, id, email); err != nil {
		return FleetResult{Response: lookup(err, "Fleet not found")}
	}
	if err := r.Users.RemoveFleet(ctx, call.User.ID, id); err != nil {
		return FleetResult{Response: internal(err)}
	}
	fleet.MembersEmails = removeString(fleet.MembersEmails, email)
	return FleetResult{Fleet: fleet, Response: ok("Left fleet")}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// notify pushes to a connected user; failures are logged by the hub.
func (r *Resolver) notify(email, eventType string, payload any) {
	if r.Notifier == nil || email == "" {
		return
	}
	_ = r.Notifier.Notify(email, socket.Event{Type: eventType, Payload: payload})
}
