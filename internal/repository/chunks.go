// internal/repository/chunks.go
package repository

import (
	"context"
	"fmt"

	"waste-docket-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var chunkCollections = map[models.ChunkKind]string{
	models.ChunkDriverSignature:           DriverSignaturesCollection,
	models.ChunkCustomerSignature:         CustomerSignaturesCollection,
	models.ChunkWasteFacilityRepSignature: WasteFacilityRepSignaturesCollection,
	models.ChunkPdf:                       PdfsCollection,
}

// ChunkCollectionFor returns the temporary collection holding uploads of kind.
func ChunkCollectionFor(kind models.ChunkKind) (string, bool) {
	name, ok := chunkCollections[kind]
	return name, ok
}

// ChunkRepository stores partial uploads of one kind. Documents expire
// through the TTL index on expireAt.
type ChunkRepository struct {
	coll *mongo.Collection
}

func NewChunkRepository(db *mongo.Database, kind models.ChunkKind) (*ChunkRepository, error) {
	name, ok := ChunkCollectionFor(kind)
	if !ok {
		return nil, fmt.Errorf("unknown chunk kind %q", kind)
	}
	return &ChunkRepository{coll: db.Collection(name)}, nil
}

func (r *ChunkRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ChunkedUpload, error) {
	return findOne[models.ChunkedUpload](ctx, r.coll, bson.M{"_id": id})
}

func (r *ChunkRepository) Create(ctx context.Context, c *models.ChunkedUpload) error {
	res, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	c.ID = insertedID(res)
	return nil
}

func (r *ChunkRepository) SetPayload(ctx context.Context, id primitive.ObjectID, payload string) error {
	return updateByID(ctx, r.coll, id, bson.M{"$set": bson.M{"payload": payload}})
}

func (r *ChunkRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}
