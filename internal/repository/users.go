// internal/repository/users.go
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

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.M{"personalDetails.email": email})
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Fleets == nil {
		user.Fleets = []primitive.ObjectID{}
	}
	if user.Invitations == nil {
		user.Invitations = []primitive.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = insertedID(res)
	return nil
}

// UpdateProfile rewrites the editable part of the user document.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return updateByID(ctx, r.coll, user.ID, bson.M{"$set": bson.M{
		"personalDetails": user.PersonalDetails,
		"accountSubType":  user.AccountSubType,
		"signUpCompleted": user.SignUpCompleted,
		"updatedAt":       time.Now(),
	}})
}

func (r *UserRepository) SetSelectedFleet(ctx context.Context, userID primitive.ObjectID, fleetID *primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"selectedFleet": fleetID, "updatedAt": time.Now()}}
	if fleetID == nil {
		update = bson.M{"$unset": bson.M{"selectedFleet": ""}, "$set": bson.M{"updatedAt": time.Now()}}
	}
	return updateByID(ctx, r.coll, userID, update)
}

// AddFleet appends a fleet reference and makes it the selected fleet.
func (r *UserRepository) AddFleet(ctx context.Context, userID, fleetID primitive.ObjectID, selectIt bool) error {
	set := bson.M{"updatedAt": time.Now()}
	if selectIt {
		set["selectedFleet"] = fleetID
	}
	return updateByID(ctx, r.coll, userID, bson.M{
		"$addToSet": bson.M{"fleets": fleetID},
		"$set":      set,
	})
}

// RemoveFleet drops the fleet reference from one user, clearing the selection if it pointed there.
func (r *UserRepository) RemoveFleet(ctx context.Context, userID, fleetID primitive.ObjectID) error {
	if err := updateByID(ctx, r.coll, userID, bson.M{"$pull": bson.M{"fleets": fleetID}}); err != nil {
		return err
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "selectedFleet": fleetID},
		bson.M{"$unset": bson.M{"selectedFleet": ""}})
	if err != nil {
		return fmt.Errorf("unselect fleet: %w", err)
	}
	return nil
}

// DetachFleet removes every reference to a deleted fleet.
func (r *UserRepository) DetachFleet(ctx context.Context, fleetID primitive.ObjectID) error {
	if _, err := r.coll.UpdateMany(ctx,
		bson.M{"fleets": fleetID},
		bson.M{"$pull": bson.M{"fleets": fleetID}}); err != nil {
		return fmt.Errorf("detach fleet: %w", err)
	}
	if _, err := r.coll.UpdateMany(ctx,
		bson.M{"selectedFleet": fleetID},
		bson.M{"$unset": bson.M{"selectedFleet": ""}}); err != nil {
		return fmt.Errorf("unselect fleet: %w", err)
	}
	return nil
}

func (r *UserRepository) AddInvitation(ctx context.Context, userID, invitationID primitive.ObjectID) error {
	return updateByID(ctx, r.coll, userID, bson.M{"$addToSet": bson.M{"invitations": invitationID}})
}

func (r *UserRepository) SetAccountType(ctx context.Context, userID primitive.ObjectID, t models.AccountType) error {
	return updateByID(ctx, r.coll, userID, bson.M{"$set": bson.M{"accountType": t, "updatedAt": time.Now()}})
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *UserRepository) Search(ctx context.Context, q search.Query) ([]models.User, int64, error) {
	return aggregatePage[models.User](ctx, r.coll, q)
}
