// internal/repository/dockets.go
package repository

import (
	"context"
	"fmt"
	"time"

	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type DocketRepository struct {
	coll *mongo.Collection
}

func NewDocketRepository(db *mongo.Database) *DocketRepository {
	return &DocketRepository{coll: db.Collection(DocketsCollection)}
}

// DocketJoins left-joins the customer contact and destination facility.
func DocketJoins() []bson.D {
	joins := search.LeftJoin(CustomerContactsCollection, "customerContactId", "customerContact")
	return append(joins, search.LeftJoin(DestinationFacilitiesCollection, "destinationFacilityId", "destinationFacility")...)
}

func (r *DocketRepository) Create(ctx context.Context, docket *models.Docket) error {
	res, err := r.coll.InsertOne(ctx, docket)
	if err != nil {
		return fmt.Errorf("insert docket: %w", err)
	}
	docket.ID = insertedID(res)
	return nil
}

func (r *DocketRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Docket, error) {
	return findOne[models.Docket](ctx, r.coll, bson.M{"_id": id})
}

// FindView loads a docket with its joined customer and facility.
func (r *DocketRepository) FindView(ctx context.Context, id primitive.ObjectID) (*models.DocketView, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}}}
	pipeline = append(pipeline, DocketJoins()...)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate docket: %w", err)
	}
	var views []models.DocketView
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("decode docket: %w", err)
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return &views[0], nil
}

// Update replaces the mutable part of a docket.
func (r *DocketRepository) Update(ctx context.Context, docket *models.Docket) error {
	docket.UpdatedAt = time.Now()
	set := bson.M{
		"docketData":            docket.DocketData,
		"customerContactId":     docket.CustomerContactID,
		"destinationFacilityId": docket.DestinationFacilityID,
		"updatedAt":             docket.UpdatedAt,
	}
	return updateByID(ctx, r.coll, docket.ID, bson.M{"$set": set})
}

func (r *DocketRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *DocketRepository) DeleteByFleet(ctx context.Context, fleetID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"fleetId": fleetID})
	if err != nil {
		return 0, fmt.Errorf("delete dockets: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *DocketRepository) Search(ctx context.Context, q search.Query) ([]models.DocketView, int64, error) {
	return aggregatePage[models.DocketView](ctx, r.coll, q, DocketJoins()...)
}
