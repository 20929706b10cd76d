// internal/resolvers/dockets.go
package resolvers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"waste-docket-api-server/internal/auditlog"
	"waste-docket-api-server/internal/mailer"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/patch"
	"waste-docket-api-server/internal/pdf"
	"waste-docket-api-server/internal/s3"
	"waste-docket-api-server/internal/search"
	"waste-docket-api-server/internal/upload"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func (r *Resolver) docketOperations() []*Operation {
	return []*Operation{
		mutation("addDocket", signed, r.addDocket),
		mutation("updateDocketById", signed, r.updateDocketByID),
		mutation("updateDocketSignatures", signed, r.updateDocketSignatures),
		query("getDocketsForFleet", signed, r.getDocketsForFleet),
		query("getAllDocketsForAdmin", admin401, r.getAllDocketsForAdmin),
		query("getDocketById", signed, r.getDocketByID),
		mutation("deleteDocketById", signed, r.deleteDocketByID),
		mutation("sendDocketEmail", signed, r.sendDocketEmail),
	}
}

type DocketResult struct {
	Docket   *models.DocketView `json:"docket"`
	Response `json:"response"`
}

// SignaturesInput carries each signature either inline (a URL or data URL)
// or, when its Is*Chunked flag is set, as the id of a chunked upload.
type SignaturesInput struct {
	DriverSignature                    string `json:"driverSignature"`
	IsDriverSignatureChunked           bool   `json:"isDriverSignatureChunked"`
	CustomerSignature                  string `json:"customerSignature"`
	IsCustomerSignatureChunked         bool   `json:"isCustomerSignatureChunked"`
	WasteFacilityRepSignature          string `json:"wasteFacilityRepSignature"`
	IsWasteFacilityRepSignatureChunked bool   `json:"isWasteFacilityRepSignatureChunked"`
}

// Email modes. Attach renders the docket and attaches it. Stored also
// uploads the rendered PDF and attaches the client's chunked PDF instead.
const (
	EmailModeAttach = "attach"
	EmailModeStored = "stored"
)

type DocketEmailInput struct {
	Emails []string `json:"emails" validate:"omitempty,dive,email"`
	Mode   string   `json:"mode" validate:"omitempty,oneof=attach stored"`
	PdfID  string   `json:"pdfId"`
}

// DocketCustomerInput names the docket's customer. A blank name leaves the
// docket without one.
type DocketCustomerInput struct {
	CustomerName    string         `json:"customerName"`
	CustomerEmail   string         `json:"customerEmail"`
	CustomerPhone   string         `json:"customerPhone"`
	CustomerAddress models.Address `json:"customerAddress"`
}

type AddDocketInput struct {
	FleetID    string                          `json:"fleetId" validate:"required"`
	DocketData models.DocketData               `json:"docketData"`
	Customer   *DocketCustomerInput            `json:"customer"`
	Facility   *models.DestinationFacilityData `json:"facility"`
	Signatures SignaturesInput                 `json:"signatures"`
	Email      *DocketEmailInput               `json:"email"`
}

var errSignatureExpired = errors.New("signature upload not found or expired")

// addDocket mints the next docket number for the fleet. The insert and the
// counter write are separate, so concurrent creators can share a number and
// a crash in between skips one.
func (r *Resolver) addDocket(ctx context.Context, call *Call, in AddDocketInput) DocketResult {
	fleetID, bad := parseID(in.FleetID, "fleet")
	if bad != nil {
		return DocketResult{Response: *bad}
	}
	fleet, err := r.Fleets.FindForMember(ctx, fleetID, call.User.PersonalDetails.Email)
	if err != nil {
		return DocketResult{Response: lookup(err, "Fleet not found")}
	}
	params := []auditlog.Param{auditlog.P("fleetId", fleet.ID.Hex())}

	docket := &models.Docket{
		FleetID:         fleet.ID,
		UserID:          call.User.ID,
		CreatorEmail:    call.User.PersonalDetails.Email,
		FleetOwnerEmail: fleet.OwnerEmail,
		DocketData:      in.DocketData,
	}
	view := &models.DocketView{}

	if err := r.processing(ctx, "addDocket.resolveCustomer", params, func() error {
		c, err := r.resolveCustomer(ctx, fleet, in.Customer)
		if c != nil {
			docket.CustomerContactID, view.CustomerContact = &c.ID, c
		}
		return err
	}); err != nil {
		return DocketResult{Response: internal(err)}
	}
	if err := r.processing(ctx, "addDocket.resolveFacility", params, func() error {
		f, err := r.resolveFacility(ctx, fleet, in.Facility)
		if f != nil {
			docket.DestinationFacilityID, view.DestinationFacility = &f.ID, f
		}
		return err
	}); err != nil {
		return DocketResult{Response: internal(err)}
	}
	if err := r.processing(ctx, "addDocket.resolveSignatures", params, func() error {
		return r.resolveSignatures(ctx, fleet, in.Signatures, &docket.DocketData)
	}); err != nil {
		return DocketResult{Response: signatureFailure(err)}
	}

	next := fleet.DocketNumber + 1
	docket.DocketData.IndividualDocketNumber = fleet.PrefixDocketNumber + strconv.FormatInt(next, 10)
	if docket.DocketData.WasteLines == nil {
		docket.DocketData.WasteLines = []models.WasteLine{}
	}
	now := r.now()
	docket.CreatedAt, docket.UpdatedAt = now, now

	if err := r.processing(ctx, "addDocket.persist", params, func() error {
		if err := r.Dockets.Create(ctx, docket); err != nil {
			return err
		}
		return r.Fleets.SetDocketNumber(ctx, fleet.ID, next)
	}); err != nil {
		return DocketResult{Response: internal(err)}
	}
	fleet.DocketNumber = next
	view.Docket = *docket

	if in.Email != nil {
		if err := r.processing(ctx, "addDocket.email", params, func() error {
			return r.emailDocket(ctx, fleet, view, *in.Email)
		}); err != nil {
			return DocketResult{Docket: view, Response: fail(http.StatusInternalServerError, "Docket created but email failed: "+err.Error())}
		}
		return DocketResult{Docket: view, Response: ok("Docket created and email sent")}
	}
	return DocketResult{Docket: view, Response: ok("Docket created")}
}

func signatureFailure(err error) Response {
	if errors.Is(err, errSignatureExpired) {
		return badRequest(err.Error())
	}
	return internal(err)
}

// resolveCustomer finds the fleet's customer by name or creates it.
func (r *Resolver) resolveCustomer(ctx context.Context, fleet *models.Fleet, in *DocketCustomerInput) (*models.CustomerContact, error) {
	if in == nil || strings.TrimSpace(in.CustomerName) == "" {
		return nil, nil
	}
	name := strings.TrimSpace(in.CustomerName)
	c, err := r.Customers.FindByName(ctx, fleet.ID, name)
	if err == nil {
		return c, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	now := r.now()
	c = &models.CustomerContact{
		FleetID:         fleet.ID,
		CustomerName:    name,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		CustomerAddress: in.CustomerAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := r.Customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// resolveFacility finds the fleet's facility by external id or creates it.
func (r *Resolver) resolveFacility(ctx context.Context, fleet *models.Fleet, in *models.DestinationFacilityData) (*models.DestinationFacility, error) {
	if in == nil || strings.TrimSpace(in.DestinationFacilityID) == "" {
		return nil, nil
	}
	data := *in
	data.DestinationFacilityID = strings.TrimSpace(data.DestinationFacilityID)
	f, err := r.Facilities.FindByExternalID(ctx, fleet.ID, data.DestinationFacilityID)
	if err == nil {
		return f, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	now := r.now()
	f = &models.DestinationFacility{FleetID: fleet.ID, DestinationFacilityData: data, CreatedAt: now, UpdatedAt: now}
	if err := r.Facilities.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

type signatureSlot struct {
	kind    models.ChunkKind
	value   string
	chunked bool
	dst     *string
}

func (s SignaturesInput) slots(d *models.DocketData) []signatureSlot {
	return []signatureSlot{
		{models.ChunkDriverSignature, s.DriverSignature, s.IsDriverSignatureChunked, &d.DriverSignature},
		{models.ChunkCustomerSignature, s.CustomerSignature, s.IsCustomerSignatureChunked, &d.CustomerSignature},
		{models.ChunkWasteFacilityRepSignature, s.WasteFacilityRepSignature, s.IsWasteFacilityRepSignatureChunked, &d.WasteFacilityRepSignature},
	}
}

// resolveSignatures writes each supplied signature into d. Chunked ones are
// uploaded to object storage and their temporary upload deleted; empty
// values leave the field as it is.
func (r *Resolver) resolveSignatures(ctx context.Context, fleet *models.Fleet, s SignaturesInput, d *models.DocketData) error {
	for _, slot := range s.slots(d) {
		if slot.value == "" {
			continue
		}
		if !slot.chunked {
			*slot.dst = slot.value
			continue
		}
		acc := r.Chunks[slot.kind]
		if acc == nil || r.Storage == nil {
			return fmt.Errorf("%s uploads are not configured", slot.kind)
		}
		err := acc.Consume(ctx, slot.value, fleet.ID, func(payload string) error {
			data, contentType, err := upload.DecodeBase64(payload, "image/png")
			if err != nil {
				return err
			}
			key := s3.ObjectKey("signatures/"+fleet.ID.Hex(), string(slot.kind)+imageExt(contentType))
			url, err := r.Storage.UploadFile(ctx, bytes.NewReader(data), key, contentType)
			if err != nil {
				return err
			}
			*slot.dst = url
			return nil
		})
		if errors.Is(err, upload.ErrUnknownChunk) {
			return fmt.Errorf("%s: %w", slot.kind, errSignatureExpired)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func imageExt(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	case "image/webp":
		return ".webp"
	}
	return ".png"
}

// emailDocket renders the docket and mails it to the requested recipients,
// falling back to the customer's address.
func (r *Resolver) emailDocket(ctx context.Context, fleet *models.Fleet, view *models.DocketView, in DocketEmailInput) error {
	if r.Mailer == nil {
		return mailer.ErrNotConfigured
	}
	if r.RenderPDF == nil {
		return errors.New("pdf rendering is not configured")
	}
	to := in.Emails
	if len(to) == 0 && view.CustomerContact != nil && view.CustomerContact.CustomerEmail != "" {
		to = []string{view.CustomerContact.CustomerEmail}
	}
	if len(to) == 0 {
		return mailer.ErrNoRecipients
	}

	rendered, err := r.RenderPDF(fleet, view)
	if err != nil {
		return fmt.Errorf("render docket: %w", err)
	}
	number := view.DocketData.IndividualDocketNumber
	msg := mailer.Message{
		To:      to,
		Subject: fmt.Sprintf("Waste docket %s from %s", number, fleet.Name),
		Text:    fmt.Sprintf("Please find attached waste docket %s issued by %s.", number, fleet.Name),
	}
	attachment := mailer.Attachment{FileName: pdf.FileName(view), ContentType: pdf.ContentType, Content: rendered}

	if in.Mode == EmailModeStored {
		if r.Storage == nil {
			return errors.New("object storage is not configured")
		}
		key := s3.ObjectKey("dockets/"+fleet.ID.Hex(), pdf.FileName(view))
		url, err := r.Storage.UploadFile(ctx, bytes.NewReader(rendered), key, pdf.ContentType)
		if err != nil {
			return err
		}
		r.Log.Info("docket pdf stored", zap.String("docketId", view.ID.Hex()), zap.String("key", key))
		msg.Text += "\n\nA copy is stored at " + url

		acc := r.Chunks[models.ChunkPdf]
		if in.PdfID == "" || acc == nil {
			return errors.New("stored mode needs a pdf upload id")
		}
		err = acc.Consume(ctx, in.PdfID, fleet.ID, func(payload string) error {
			data, contentType, err := upload.DecodeBase64(payload, pdf.ContentType)
			if err != nil {
				return err
			}
			attachment.Content, attachment.ContentType = data, contentType
			return nil
		})
		if err != nil {
			return fmt.Errorf("pdf upload: %w", err)
		}
	}
	msg.Attachments = []mailer.Attachment{attachment}
	return r.Mailer.Send(ctx, msg)
}

type UpdateDocketInput struct {
	DocketID string `json:"docketId" validate:"required"`

	JobID                   patch.Field[string]             `json:"jobId"`
	Date                    patch.Field[string]             `json:"date"`
	Time                    patch.Field[string]             `json:"time"`
	VehicleRegistration     patch.Field[string]             `json:"vehicleRegistration"`
	DriverName              patch.Field[string]             `json:"driverName"`
	GeneralPickup           patch.Field[bool]               `json:"generalPickup"`
	CollectionPointName     patch.Field[string]             `json:"collectionPointName"`
	CollectionPointAddress  patch.Field[models.Address]     `json:"collectionPointAddress"`
	WasteLines              patch.Field[[]models.WasteLine] `json:"wasteLines"`
	AdditionalInformation   patch.Field[string]             `json:"additionalInformation"`
	IsExport                patch.Field[string]             `json:"isExport"`
	PortOfExport            patch.Field[string]             `json:"portOfExport"`
	CountryOfDestination    patch.Field[string]             `json:"countryOfDestination"`
	FacilityAtDestination   patch.Field[string]             `json:"facilityAtDestination"`
	TFSReferenceNumber      patch.Field[string]             `json:"tfsReferenceNumber"`
	AdditionalNotesOnExport patch.Field[string]             `json:"additionalNotesOnExport"`

	Customer   *DocketCustomerInput            `json:"customer"`
	Facility   *models.DestinationFacilityData `json:"facility"`
	Signatures SignaturesInput                 `json:"signatures"`
	Email      *DocketEmailInput               `json:"email"`
}

// apply merges the fields into d. The docket number is never patched.
func (in UpdateDocketInput) apply(d *models.DocketData) {
	in.JobID.Apply(&d.JobID)
	in.Date.Apply(&d.Date)
	in.Time.Apply(&d.Time)
	in.VehicleRegistration.Apply(&d.VehicleRegistration)
	in.DriverName.Apply(&d.DriverName)
	in.GeneralPickup.Apply(&d.GeneralPickup)
	in.CollectionPointName.Apply(&d.CollectionPointName)
	in.CollectionPointAddress.Apply(&d.CollectionPointAddress)
	in.WasteLines.Apply(&d.WasteLines)
	in.AdditionalInformation.Apply(&d.AdditionalInformation)
	in.IsExport.Apply(&d.IsExport)
	in.PortOfExport.Apply(&d.PortOfExport)
	in.CountryOfDestination.Apply(&d.CountryOfDestination)
	in.FacilityAtDestination.Apply(&d.FacilityAtDestination)
	in.TFSReferenceNumber.Apply(&d.TFSReferenceNumber)
	in.AdditionalNotesOnExport.Apply(&d.AdditionalNotesOnExport)
	if d.WasteLines == nil {
		d.WasteLines = []models.WasteLine{}
	}
}

// docketInFleet loads the joined docket and applies a to its fleet.
func (r *Resolver) docketInFleet(ctx context.Context, call *Call, rawID string, a fleetAccess) (*models.DocketView, *models.Fleet, *Response) {
	id, bad := parseID(rawID, "docket")
	if bad != nil {
		return nil, nil, bad
	}
	view, err := r.Dockets.FindView(ctx, id)
	if err != nil {
		resp := lookup(err, "Docket not found")
		return nil, nil, &resp
	}
	fleet, denied := r.fleetByID(ctx, call, view.FleetID, a)
	if denied != nil {
		return nil, nil, denied
	}
	return view, fleet, nil
}

func (r *Resolver) updateDocketByID(ctx context.Context, call *Call, in UpdateDocketInput) DocketResult {
	view, fleet, denied := r.docketInFleet(ctx, call, in.DocketID, memberOr401)
	if denied != nil {
		return DocketResult{Response: *denied}
	}
	params := []auditlog.Param{auditlog.P("docketId", view.ID.Hex())}

	in.apply(&view.DocketData)
	if in.Customer != nil {
		c, err := r.resolveCustomer(ctx, fleet, in.Customer)
		if err != nil {
			return DocketResult{Response: internal(err)}
		}
		if c != nil {
			view.CustomerContactID, view.CustomerContact = &c.ID, c
		}
	}
	if in.Facility != nil {
		f, err := r.resolveFacility(ctx, fleet, in.Facility)
		if err != nil {
			return DocketResult{Response: internal(err)}
		}
		if f != nil {
			view.DestinationFacilityID, view.DestinationFacility = &f.ID, f
		}
	}
	if err := r.processing(ctx, "updateDocketById.resolveSignatures", params, func() error {
		return r.resolveSignatures(ctx, fleet, in.Signatures, &view.DocketData)
	}); err != nil {
		return DocketResult{Response: signatureFailure(err)}
	}

	if err := r.Dockets.Update(ctx, &view.Docket); err != nil {
		return DocketResult{Response: lookup(err, "Docket not found")}
	}
	if in.Email != nil {
		if err := r.processing(ctx, "updateDocketById.email", params, func() error {
			return r.emailDocket(ctx, fleet, view, *in.Email)
		}); err != nil {
			return DocketResult{Docket: view, Response: fail(http.StatusInternalServerError, "Docket updated but email failed: "+err.Error())}
		}
		return DocketResult{Docket: view, Response: ok("Docket updated and email sent")}
	}
	return DocketResult{Docket: view, Response: ok("Docket updated")}
}

type UpdateSignaturesInput struct {
	DocketID   string          `json:"docketId" validate:"required"`
	Signatures SignaturesInput `json:"signatures"`
}

func (r *Resolver) updateDocketSignatures(ctx context.Context, call *Call, in UpdateSignaturesInput) DocketResult {
	view, fleet, denied := r.docketInFleet(ctx, call, in.DocketID, memberOr401)
	if denied != nil {
		return DocketResult{Response: *denied}
	}
	if err := r.resolveSignatures(ctx, fleet, in.Signatures, &view.DocketData); err != nil {
		return DocketResult{Response: signatureFailure(err)}
	}
	if err := r.Dockets.Update(ctx, &view.Docket); err != nil {
		return DocketResult{Response: lookup(err, "Docket not found")}
	}
	return DocketResult{Docket: view, Response: ok("Signatures updated")}
}

type DocketSearchInput struct {
	SearchInput
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

type FleetDocketsInput struct {
	FleetID string `json:"fleetId" validate:"required"`
	DocketSearchInput
}

func (in DocketSearchInput) query(scope bson.D, fields []string) search.Query {
	return search.Query{
		Scope:     scope,
		Term:      in.Search,
		Fields:    fields,
		DateField: "docketData.date",
		DateFrom:  strings.TrimSpace(in.DateFrom),
		DateTo:    strings.TrimSpace(in.DateTo),
		Sort:      search.Sort(search.DocketSortColumns, in.SortColumn, in.SortDirection),
		Page:      in.page(),
	}
}

func (r *Resolver) getDocketsForFleet(ctx context.Context, call *Call, in FleetDocketsInput) PageResult[models.DocketView] {
	fleet, denied := r.fleet(ctx, call, in.FleetID, memberOr404)
	if denied != nil {
		return PageResult[models.DocketView]{Response: *denied}
	}
	q := in.query(bson.D{{Key: "fleetId", Value: fleet.ID}}, search.DocketFieldsForFleet)
	items, total, err := r.Dockets.Search(ctx, q)
	if err != nil {
		return PageResult[models.DocketView]{Response: internal(err)}
	}
	return PageResult[models.DocketView]{Items: items, TotalCount: total, Response: ok("Dockets found")}
}

func (r *Resolver) getAllDocketsForAdmin(ctx context.Context, _ *Call, in DocketSearchInput) PageResult[models.DocketView] {
	items, total, err := r.Dockets.Search(ctx, in.query(nil, search.DocketFieldsForAdmin))
	if err != nil {
		return PageResult[models.DocketView]{Response: internal(err)}
	}
	return PageResult[models.DocketView]{Items: items, TotalCount: total, Response: ok("Dockets found")}
}

type DocketIDInput struct {
	DocketID string `json:"docketId" validate:"required"`
}

func (r *Resolver) getDocketByID(ctx context.Context, call *Call, in DocketIDInput) DocketResult {
	view, _, denied := r.docketInFleet(ctx, call, in.DocketID, memberOr404)
	if denied != nil {
		return DocketResult{Response: *denied}
	}
	return DocketResult{Docket: view, Response: ok("Docket found")}
}

func (r *Resolver) deleteDocketByID(ctx context.Context, call *Call, in DocketIDInput) DeleteResult {
	id, bad := parseID(in.DocketID, "docket")
	if bad != nil {
		return DeleteResult{Response: *bad}
	}
	d, err := r.Dockets.FindByID(ctx, id)
	if err != nil {
		return DeleteResult{Response: lookup(err, "Docket not found")}
	}
	if _, denied := r.fleetByID(ctx, call, d.FleetID, ownerOr401); denied != nil {
		return DeleteResult{Response: *denied}
	}
	if err := r.Dockets.Delete(ctx, id); err != nil {
		return DeleteResult{Response: lookup(err, "Docket not found")}
	}
	return DeleteResult{ID: id.Hex(), Response: ok("Docket deleted")}
}

type SendDocketEmailInput struct {
	DocketID string   `json:"docketId" validate:"required"`
	Emails   []string `json:"emails" validate:"required,min=1,dive,email"`
}

func (r *Resolver) sendDocketEmail(ctx context.Context, call *Call, in SendDocketEmailInput) DocketResult {
	view, fleet, denied := r.docketInFleet(ctx, call, in.DocketID, memberOr401)
	if denied != nil {
		return DocketResult{Response: *denied}
	}
	err := r.processing(ctx, "sendDocketEmail.email", []auditlog.Param{auditlog.P("docketId", view.ID.Hex())}, func() error {
		return r.emailDocket(ctx, fleet, view, DocketEmailInput{Emails: in.Emails, Mode: EmailModeAttach})
	})
	if err != nil {
		return DocketResult{Docket: view, Response: internal(err)}
	}
	return DocketResult{Docket: view, Response: ok("Email sent")}
}
