// internal/database/seeder.go
package database

import (
	"context"
	"time"

	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SeedAdmin makes sure the configured email exists as an ADMIN user.
// An existing USER with that email is promoted.
func SeedAdmin(ctx context.Context, db *mongo.Database, email string, log *zap.Logger) error {
	if email == "" {
		return nil
	}
	users := db.Collection(repository.UsersCollection)

	count, err := users.CountDocuments(ctx, bson.M{"personalDetails.email": email, "accountType": models.AccountTypeAdmin})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info("admin user already exists, seeding skipped", zap.String("email", email))
		return nil
	}

	res, err := users.UpdateOne(ctx,
		bson.M{"personalDetails.email": email},
		bson.M{"$set": bson.M{"accountType": models.AccountTypeAdmin, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		log.Info("existing user promoted to admin", zap.String("email", email))
		return nil
	}

	now := time.Now()
	admin := models.User{
		PersonalDetails: models.PersonalDetails{Name: "Admin", Email: email},
		AccountType:     models.AccountTypeAdmin,
		SignUpCompleted: true,
		Fleets:          []primitive.ObjectID{},
		Invitations:     []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := users.InsertOne(ctx, admin); err != nil {
		return err
	}
	log.Info("admin user seeded", zap.String("email", email))
	return nil
}

// SeedAppVersion inserts the version singleton when the collection is empty.
func SeedAppVersion(ctx context.Context, db *mongo.Database, version string, log *zap.Logger) error {
	coll := db.Collection(repository.AppVersionsCollection)
	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = coll.InsertOne(ctx, models.AppVersion{Version: version, MinimumVersion: version, UpdatedAt: time.Now()})
	if err != nil {
		return err
	}
	log.Info("app version seeded", zap.String("version", version))
	return nil
}
