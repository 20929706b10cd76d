// internal/resolvers/permits.go
package resolvers

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/s3"

	"go.uber.org/zap"
)

func (r *Resolver) permitOperations() []*Operation {
	return []*Operation{
		mutation("uploadPermitDocument", signed, r.uploadPermitDocument),
		query("getPermitDocuments", signed, r.getPermitDocuments),
		mutation("deletePermitDocument", signed, r.deletePermitDocument),
	}
}

var errStorageNotConfigured = errors.New("object storage is not configured")

type PermitResult struct {
	Permit   *models.WasteCollectionPermitDocument `json:"permit"`
	Response `json:"response"`
}

type PermitsResult struct {
	Permits  []models.WasteCollectionPermitDocument `json:"permits"`
	Response `json:"response"`
}

type UploadPermitInput struct {
	FleetID      string `json:"fleetId" validate:"required"`
	PermitNumber string `json:"permitNumber" validate:"required"`
	PermitHolder string `json:"permitHolder"`
	ExpiryDate   string `json:"expiryDate"`
	FileName     string `json:"fileName" validate:"required"`
	ContentType  string `json:"contentType"`
	File         []byte `json:"file" validate:"required"`
}

func (r *Resolver) uploadPermitDocument(ctx context.Context, call *Call, in UploadPermitInput) PermitResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, ownerOr403)
	if denied != nil {
		return PermitResult{Response: *denied}
	}
	if r.Storage == nil {
		return PermitResult{Response: internal(errStorageNotConfigured)}
	}
	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = "application/pdf"
	}
	key := s3.ObjectKey("permits/"+fleet.ID.Hex(), in.FileName)
	url, err := r.Storage.UploadFile(ctx, bytes.NewReader(in.File), key, contentType)
	if err != nil {
		return PermitResult{Response: internal(err)}
	}

	p := &models.WasteCollectionPermitDocument{
		FleetID:      fleet.ID,
		PermitNumber: strings.TrimSpace(in.PermitNumber),
		PermitHolder: strings.TrimSpace(in.PermitHolder),
		ExpiryDate:   strings.TrimSpace(in.ExpiryDate),
		File:         models.MediaPointer{URL: url, FileName: in.FileName, ContentType: contentType},
		ObjectKey:    key,
		UploadedBy:   call.User.PersonalDetails.Email,
		CreatedAt:    r.now(),
	}
	if err := r.Permits.Create(ctx, p); err != nil {
		if derr := r.Storage.DeleteObject(ctx, key); derr != nil {
			r.Log.Warn("orphaned permit object", zap.String("key", key), zap.Error(derr))
		}
		return PermitResult{Response: internal(err)}
	}
	return PermitResult{Permit: p, Response: ok("Permit document uploaded")}
}

func (r *Resolver) getPermitDocuments(ctx context.Context, call *Call, in FleetIDInput) PermitsResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, memberOr404)
	if denied != nil {
		return PermitsResult{Response: *denied}
	}
	if r.Storage == nil {
		return PermitsResult{Response: internal(errStorageNotConfigured)}
	}
	permits, err := r.Permits.ListByFleet(ctx, fleet.ID)
	if err != nil {
		return PermitsResult{Response: internal(err)}
	}
	for i := range permits {
		ref := permits[i].ObjectKey
		if ref == "" {
			ref = permits[i].File.URL
		}
		link, err := r.Storage.GenerateDownloadLink(ctx, ref, permits[i].File.ContentType)
		if err != nil {
			return PermitsResult{Response: internal(err)}
		}
		permits[i].DownloadURL = link
	}
	return PermitsResult{Permits: permits, Response: ok("Permit documents found")}
}

type PermitIDInput struct {
	PermitDocumentID string `json:"permitDocumentId" validate:"required"`
}

func (r *Resolver) deletePermitDocument(ctx context.Context, call *Call, in PermitIDInput) DeleteResult {
	id, bad := parseID(in.PermitDocumentID, "permit document")
	if bad != nil {
		return DeleteResult{Response: *bad}
	}
	p, err := r.Permits.FindByID(ctx, id)
	if err != nil {
		return DeleteResult{Response: lookup(err, "Permit document not found")}
	}
	if _, denied := r.fleetByID(ctx, call, p.FleetID, ownerOr403); denied != nil {
		return DeleteResult{Response: *denied}
	}
	if r.Storage == nil {
		return DeleteResult{Response: internal(errStorageNotConfigured)}
	}
	ref := p.ObjectKey
	if ref == "" {
		ref = p.File.URL
	}
	if err := r.Storage.DeleteObject(ctx, ref); err != nil {
		return DeleteResult{Response: internal(err)}
	}
	if err := r.Permits.Delete(ctx, id); err != nil {
		return DeleteResult{Response: lookup(err, "Permit document not found")}
	}
	return DeleteResult{ID: id.Hex(), Response: ok("Permit document deleted")}
}
