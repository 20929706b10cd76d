// internal/repository/facilities.go
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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FacilityRepository struct {
	coll *mongo.Collection
}

func NewFacilityRepository(db *mongo.Database) *FacilityRepository {
	return &FacilityRepository{coll: db.Collection(DestinationFacilitiesCollection)}
}

const externalIDField = "destinationFacilityData.destinationFacilityId"

func (r *FacilityRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DestinationFacility, error) {
	return findOne[models.DestinationFacility](ctx, r.coll, bson.M{"_id": id})
}

// FindByExternalID matches the external facility id exactly within the fleet.
func (r *FacilityRepository) FindByExternalID(ctx context.Context, fleetID primitive.ObjectID, externalID string) (*models.DestinationFacility, error) {
	return findOne[models.DestinationFacility](ctx, r.coll, bson.M{"fleetId": fleetID, externalIDField: exact(externalID)})
}

// List returns the facilities of a fleet, narrowed by a free-text term
// and by an exact external id when either is non-empty.
func (r *FacilityRepository) List(ctx context.Context, fleetID primitive.ObjectID, term, externalID string) ([]models.DestinationFacility, error) {
	filter := bson.D{{Key: "fleetId", Value: fleetID}}
	if externalID != "" {
		filter = append(filter, bson.E{Key: externalIDField, Value: exact(externalID)})
	}
	if tf := search.TermFilter(term, search.FacilityFieldsForFleet); len(tf) > 0 {
		filter = append(filter, tf...)
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetCollation(search.CaseInsensitive)
	return findAll[models.DestinationFacility](ctx, r.coll, filter, opts)
}

func (r *FacilityRepository) Create(ctx context.Context, f *models.DestinationFacility) error {
	res, err := r.coll.InsertOne(ctx, f)
	if err != nil {
		return fmt.Errorf("insert facility: %w", err)
	}
	f.ID = insertedID(res)
	return nil
}

func (r *FacilityRepository) Update(ctx context.Context, f *models.DestinationFacility) error {
	f.UpdatedAt = time.Now()
	return updateByID(ctx, r.coll, f.ID, bson.M{"$set": bson.M{
		"destinationFacilityData": f.DestinationFacilityData,
		"updatedAt":               f.UpdatedAt,
	}})
}

func (r *FacilityRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *FacilityRepository) DeleteByFleet(ctx context.Context, fleetID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"fleetId": fleetID})
	if err != nil {
		return 0, fmt.Errorf("delete facilities: %w", err)
	}
	return res.DeletedCount, nil
}
