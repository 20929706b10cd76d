// internal/database/database.go
package database

import (
	"context"
	"fmt"
	"time"

	"waste-docket-api-server/config"
	"waste-docket-api-server/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// Connect opens the client and pings the primary.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, client.Database(cfg.DBName), nil
}

// TTLCollections expire documents at their expireAt value.
var TTLCollections = []string{
	repository.DriverSignaturesCollection,
	repository.CustomerSignaturesCollection,
	repository.WasteFacilityRepSignaturesCollection,
	repository.PdfsCollection,
	repository.ApiLogsCollection,
}

// IndexModels lists the indexes per collection. None of them is unique;
// uniqueness checks stay query-then-insert.
func IndexModels() map[string][]mongo.IndexModel {
	ttl := mongo.IndexModel{
		Keys:    bson.D{{Key: "expireAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	byFleet := mongo.IndexModel{Keys: bson.D{{Key: "fleetId", Value: 1}}}

	m := map[string][]mongo.IndexModel{
		repository.UsersCollection:  {{Keys: bson.D{{Key: "personalDetails.email", Value: 1}}}},
		repository.FleetsCollection: {{Keys: bson.D{{Key: "ownerEmail", Value: 1}}}, {Keys: bson.D{{Key: "membersEmails", Value: 1}}}},
		repository.DocketsCollection: {
			byFleet,
			{Keys: bson.D{{Key: "fleetId", Value: 1}, {Key: "docketData.date", Value: -1}}},
		},
		repository.CustomerContactsCollection:      {byFleet},
		repository.DestinationFacilitiesCollection: {byFleet},
		repository.FleetInvitationsCollection:      {{Keys: bson.D{{Key: "inviteeEmail", Value: 1}, {Key: "status", Value: 1}}}},
		repository.PermitDocumentsCollection:       {byFleet},
	}
	for _, name := range TTLCollections {
		m[name] = append(m[name], ttl)
	}
	return m
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, idx := range IndexModels() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
