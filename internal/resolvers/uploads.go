// internal/resolvers/uploads.go
package resolvers

import (
	"context"
	"errors"

	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/upload"
)

func (r *Resolver) uploadOperations() []*Operation {
	return []*Operation{
		mutation("uploadDriverSignatureChunk", signed, r.chunkUploader(models.ChunkDriverSignature)),
		mutation("uploadCustomerSignatureChunk", signed, r.chunkUploader(models.ChunkCustomerSignature)),
		mutation("uploadWasteFacilityRepSignatureChunk", signed, r.chunkUploader(models.ChunkWasteFacilityRepSignature)),
		mutation("uploadPdfChunk", signed, r.chunkUploader(models.ChunkPdf)),
	}
}

type ChunkInput struct {
	ID      string `json:"id"`
	Chunk   string `json:"chunk"`
	FleetID string `json:"fleetId" validate:"required"`
}

type ChunkResult struct {
	ID       string `json:"id"`
	Response `json:"response"`
}

// chunkUploader appends to an upload of one kind. Chunks must arrive in
// order; nothing checks sequence.
func (r *Resolver) chunkUploader(kind models.ChunkKind) func(context.Context, *Call, ChunkInput) ChunkResult {
	return func(ctx context.Context, call *Call, in ChunkInput) ChunkResult {
		acc := r.Chunks[kind]
		if acc == nil {
			return ChunkResult{Response: internal(errors.New(string(kind) + " uploads are not configured"))}
		}
		fleet, denied := r.fleet(ctx, call, in.FleetID, memberOr401)
		if denied != nil {
			return ChunkResult{Response: *denied}
		}
		id, err := acc.Append(ctx, in.ID, in.Chunk, fleet.ID, call.User.ID)
		if errors.Is(err, upload.ErrEmptyChunk) {
			return ChunkResult{Response: badRequest("Chunk is required")}
		}
		if err != nil {
			return ChunkResult{Response: internal(err)}
		}
		return ChunkResult{ID: id.Hex(), Response: ok("Chunk uploaded")}
	}
}
