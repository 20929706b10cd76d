// internal/repository/records.go
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

// --- Permit documents ---

type PermitRepository struct {
	coll *mongo.Collection
}

func NewPermitRepository(db *mongo.Database) *PermitRepository {
	return &PermitRepository{coll: db.Collection(PermitDocumentsCollection)}
}

func (r *PermitRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.WasteCollectionPermitDocument, error) {
	return findOne[models.WasteCollectionPermitDocument](ctx, r.coll, bson.M{"_id": id})
}

func (r *PermitRepository) ListByFleet(ctx context.Context, fleetID primitive.ObjectID) ([]models.WasteCollectionPermitDocument, error) {
	return findAll[models.WasteCollectionPermitDocument](ctx, r.coll, bson.M{"fleetId": fleetID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *PermitRepository) Create(ctx context.Context, p *models.WasteCollectionPermitDocument) error {
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert permit document: %w", err)
	}
	p.ID = insertedID(res)
	return nil
}

func (r *PermitRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *PermitRepository) DeleteByFleet(ctx context.Context, fleetID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"fleetId": fleetID})
	if err != nil {
		return 0, fmt.Errorf("delete permit documents: %w", err)
	}
	return res.DeletedCount, nil
}

// --- Suggestions ---

type SuggestionRepository struct {
	coll *mongo.Collection
}

func NewSuggestionRepository(db *mongo.Database) *SuggestionRepository {
	return &SuggestionRepository{coll: db.Collection(SuggestionsCollection)}
}

func (r *SuggestionRepository) Create(ctx context.Context, s *models.Suggestion) error {
	res, err := r.coll.InsertOne(ctx, s)
	if err != nil {
		return fmt.Errorf("insert suggestion: %w", err)
	}
	s.ID = insertedID(res)
	return nil
}

func (r *SuggestionRepository) List(ctx context.Context, page search.Page) ([]models.Suggestion, int64, error) {
	q := search.Query{Sort: bson.D{{Key: "createdAt", Value: -1}}, Page: page}
	return aggregatePage[models.Suggestion](ctx, r.coll, q)
}

// --- App version ---

type AppVersionRepository struct {
	coll *mongo.Collection
}

func NewAppVersionRepository(db *mongo.Database) *AppVersionRepository {
	return &AppVersionRepository{coll: db.Collection(AppVersionsCollection)}
}

func (r *AppVersionRepository) Get(ctx context.Context) (*models.AppVersion, error) {
	return findOne[models.AppVersion](ctx, r.coll, bson.M{})
}

// Upsert writes the singleton version document.
func (r *AppVersionRepository) Upsert(ctx context.Context, v *models.AppVersion) error {
	v.UpdatedAt = time.Now()
	_, err := r.coll.UpdateOne(ctx, bson.M{},
		bson.M{"$set": bson.M{
			"version":        v.Version,
			"minimumVersion": v.MinimumVersion,
			"updatedAt":      v.UpdatedAt,
		}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert app version: %w", err)
	}
	return nil
}

// --- Subscriptions ---

type SubscriptionRepository struct {
	coll *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{coll: db.Collection(SubscriptionsCollection)}
}

func (r *SubscriptionRepository) FindByFleet(ctx context.Context, fleetID primitive.ObjectID) (*models.Subscription, error) {
	return findOne[models.Subscription](ctx, r.coll, bson.M{"fleetId": fleetID})
}
