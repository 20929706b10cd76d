// internal/models/chunk.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChunkKind string

const (
	ChunkDriverSignature           ChunkKind = "driverSignature"
	ChunkCustomerSignature         ChunkKind = "customerSignature"
	ChunkWasteFacilityRepSignature ChunkKind = "wasteFacilityRepSignature"
	ChunkPdf                       ChunkKind = "pdf"
)

// ChunkedUpload is a temporary holder for a base64 payload assembled from
// ordered chunks. The store purges it at ExpireAt whether complete or not.
type ChunkedUpload struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Payload   string             `bson:"payload" json:"payload"`
	FleetID   primitive.ObjectID `bson:"fleetId" json:"fleetId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	ExpireAt  time.Time          `bson:"expireAt" json:"expireAt"`
}
