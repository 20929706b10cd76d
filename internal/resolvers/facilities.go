// internal/resolvers/facilities.go
package resolvers

import (
	"context"
	"net/http"
	"strings"

	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/patch"
)

func (r *Resolver) facilityOperations() []*Operation {
	return []*Operation{
		mutation("addDestinationFacility", signed, r.addDestinationFacility),
		query("getDestinationFacilities", signed, r.getDestinationFacilities),
		mutation("updateDestinationFacility", signed, r.updateDestinationFacility),
		mutation("deleteDestinationFacility", signed, r.deleteDestinationFacility),
	}
}

type FacilityResult struct {
	Facility *models.DestinationFacility `json:"facility"`
	Response `json:"response"`
}

type FacilitiesResult struct {
	Facilities []models.DestinationFacility `json:"facilities"`
	Response   `json:"response"`
}

type AddFacilityInput struct {
	FleetID  string                         `json:"fleetId" validate:"required"`
	Facility models.DestinationFacilityData `json:"facility"`
}

func (r *Resolver) addDestinationFacility(ctx context.Context, call *Call, in AddFacilityInput) FacilityResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, memberOr401)
	if denied != nil {
		return FacilityResult{Response: *denied}
	}
	f, resp := r.createFacility(ctx, fleet, in.Facility)
	return FacilityResult{Facility: f, Response: resp}
}

// createFacility inserts data into fleet unless its external id is taken.
func (r *Resolver) createFacility(ctx context.Context, fleet *models.Fleet, data models.DestinationFacilityData) (*models.DestinationFacility, Response) {
	data.DestinationFacilityID = strings.TrimSpace(data.DestinationFacilityID)
	if data.DestinationFacilityID == "" {
		return nil, badRequest("Destination facility id is required")
	}
	if _, err := r.Facilities.FindByExternalID(ctx, fleet.ID, data.DestinationFacilityID); err == nil {
		return nil, fail(http.StatusConflict, "Destination facility with this id already exists")
	} else if !isNotFound(err) {
		return nil, internal(err)
	}
	now := r.now()
	f := &models.DestinationFacility{
		FleetID:                 fleet.ID,
		DestinationFacilityData: data,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := r.Facilities.Create(ctx, f); err != nil {
		return nil, internal(err)
	}
	return f, ok("Destination facility created")
}

type GetFacilitiesInput struct {
	FleetID               string `json:"fleetId" validate:"required"`
	Search                string `json:"search"`
	DestinationFacilityID string `json:"destinationFacilityId"`
}

func (r *Resolver) getDestinationFacilities(ctx context.Context, call *Call, in GetFacilitiesInput) FacilitiesResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, memberOr404)
	if denied != nil {
		return FacilitiesResult{Response: *denied}
	}
	list, err := r.Facilities.List(ctx, fleet.ID, in.Search, strings.TrimSpace(in.DestinationFacilityID))
	if err != nil {
		return FacilitiesResult{Response: internal(err)}
	}
	return FacilitiesResult{Facilities: list, Response: ok("Destination facilities found")}
}

type UpdateFacilityInput struct {
	ID                         string                      `json:"id" validate:"required"`
	DestinationFacilityID      patch.Field[string]         `json:"destinationFacilityId"`
	DestinationFacilityName    patch.Field[string]         `json:"destinationFacilityName"`
	DestinationFacilityLicense patch.Field[string]         `json:"destinationFacilityLicense"`
	DestinationFacilityEmail   patch.Field[string]         `json:"destinationFacilityEmail"`
	DestinationFacilityPhone   patch.Field[string]         `json:"destinationFacilityPhone"`
	DestinationFacilityAddress patch.Field[models.Address] `json:"destinationFacilityAddress"`
}

func (r *Resolver) facilityInFleet(ctx context.Context, call *Call, rawID string) (*models.DestinationFacility, *Response) {
	id, bad := parseID(rawID, "destination facility")
	if bad != nil {
		return nil, bad
	}
	f, err := r.Facilities.FindByID(ctx, id)
	if err != nil {
		resp := lookup(err, "Destination facility not found")
		return nil, &resp
	}
	if _, denied := r.fleetByID(ctx, call, f.FleetID, memberOr401); denied != nil {
		return nil, denied
	}
	return f, nil
}

func (r *Resolver) updateDestinationFacility(ctx context.Context, call *Call, in UpdateFacilityInput) FacilityResult {
	f, denied := r.facilityInFleet(ctx, call, in.ID)
	if denied != nil {
		return FacilityResult{Response: *denied}
	}
	ext := in.DestinationFacilityID
	if ext.State == patch.Clear || (ext.State == patch.Set && strings.TrimSpace(ext.Value) == "") {
		return FacilityResult{Response: badRequest("Destination facility id is required")}
	}
	if ext.State == patch.Set {
		ext.Value = strings.TrimSpace(ext.Value)
		if patch.Changes(ext, f.DestinationFacilityData.DestinationFacilityID) {
			if other, err := r.Facilities.FindByExternalID(ctx, f.FleetID, ext.Value); err == nil && other.ID != f.ID {
				return FacilityResult{Response: fail(http.StatusConflict, "Destination facility with this id already exists")}
			} else if err != nil && !isNotFound(err) {
				return FacilityResult{Response: internal(err)}
			}
		}
	}

	d := &f.DestinationFacilityData
	ext.Apply(&d.DestinationFacilityID)
	in.DestinationFacilityName.Apply(&d.DestinationFacilityName)
	in.DestinationFacilityLicense.Apply(&d.DestinationFacilityLicense)
	in.DestinationFacilityEmail.Apply(&d.DestinationFacilityEmail)
	in.DestinationFacilityPhone.Apply(&d.DestinationFacilityPhone)
	in.DestinationFacilityAddress.Apply(&d.DestinationFacilityAddress)
	if err := r.Facilities.Update(ctx, f); err != nil {
		return FacilityResult{Response: lookup(err, "Destination facility not found")}
	}
	return FacilityResult{Facility: f, Response: ok("Destination facility updated")}
}

type FacilityIDInput struct {
	ID string `json:"id" validate:"required"`
}

func (r *Resolver) deleteDestinationFacility(ctx context.Context, call *Call, in FacilityIDInput) DeleteResult {
	f, denied := r.facilityInFleet(ctx, call, in.ID)
	if denied != nil {
		return DeleteResult{Response: *denied}
	}
	if err := r.Facilities.Delete(ctx, f.ID); err != nil {
		return DeleteResult{Response: lookup(err, "Destination facility not found")}
	}
	return DeleteResult{ID: f.ID.Hex(), Response: ok("Destination facility deleted")}
}
