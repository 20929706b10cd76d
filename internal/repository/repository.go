// internal/repository/repository.go
// Package repository holds one MongoDB repository per entity.
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"waste-docket-api-server/internal/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection                      = "users"
	FleetsCollection                     = "fleets"
	DocketsCollection                    = "dockets"
	CustomerContactsCollection           = "customerContacts"
	DestinationFacilitiesCollection      = "destinationFacilities"
	DriverSignaturesCollection           = "driverSignatures"
	CustomerSignaturesCollection         = "customerSignatures"
	WasteFacilityRepSignaturesCollection = "wasteFacilityRepSignatures"
	PdfsCollection                       = "pdfs"
	FleetInvitationsCollection           = "fleetInvitations"
	PermitDocumentsCollection            = "wasteCollectionPermitDocuments"
	SuggestionsCollection                = "suggestions"
	AppVersionsCollection                = "appVersions"
	SubscriptionsCollection              = "subscriptions"
	ApiLogsCollection                    = "apiLogs"
)

var ErrNotFound = errors.New("document not found")

// exactCI matches the whole string, ignoring case.
func exactCI(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

// exact matches the whole string through an anchored regex.
func exact(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$"}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOneOptions) (*T, error) {
	var out T
	err := coll.FindOne(ctx, filter, opts...).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

// aggregatePage runs the page pipeline and the count pipeline of q.
func aggregatePage[T any](ctx context.Context, coll *mongo.Collection, q search.Query, joins ...bson.D) ([]T, int64, error) {
	itemsPipeline, countPipeline := q.Pipelines(joins...)
	opts := options.Aggregate().SetCollation(search.CaseInsensitive)

	cursor, err := coll.Aggregate(ctx, itemsPipeline, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate %s: %w", coll.Name(), err)
	}
	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}

	countCursor, err := coll.Aggregate(ctx, countPipeline, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", coll.Name(), err)
	}
	var counts []struct {
		TotalCount int64 `bson:"totalCount"`
	}
	if err := countCursor.All(ctx, &counts); err != nil {
		return nil, 0, fmt.Errorf("decode count %s: %w", coll.Name(), err)
	}
	var total int64
	if len(counts) > 0 {
		total = counts[0].TotalCount
	}
	return items, total, nil
}

func insertedID(res *mongo.InsertOneResult) primitive.ObjectID {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid
	}
	return primitive.NilObjectID
}

// toDoc flattens a struct into a document for $set.
func toDoc(v any) (bson.D, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func updateByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, update any) error {
	res, err := coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("update %s: %w", coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
