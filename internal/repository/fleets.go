// internal/repository/fleets.go
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

type FleetRepository struct {
	coll *mongo.Collection
}

func NewFleetRepository(db *mongo.Database) *FleetRepository {
	return &FleetRepository{coll: db.Collection(FleetsCollection)}
}

func memberFilter(email string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"ownerEmail": email},
		bson.M{"membersEmails": email},
	}}
}

func (r *FleetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Fleet, error) {
	return findOne[models.Fleet](ctx, r.coll, bson.M{"_id": id})
}

// FindForMember loads the fleet only when email owns it or is among its members.
func (r *FleetRepository) FindForMember(ctx context.Context, id primitive.ObjectID, email string) (*models.Fleet, error) {
	filter := memberFilter(email)
	filter["_id"] = id
	return findOne[models.Fleet](ctx, r.coll, filter)
}

func (r *FleetRepository) ListForMember(ctx context.Context, email string) ([]models.Fleet, error) {
	return findAll[models.Fleet](ctx, r.coll, memberFilter(email), options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *FleetRepository) ListOwnedBy(ctx context.Context, email string) ([]models.Fleet, error) {
	return findAll[models.Fleet](ctx, r.coll, bson.M{"ownerEmail": email})
}

// OwnerHasFleetNamed matches the name case-insensitively.
func (r *FleetRepository) OwnerHasFleetNamed(ctx context.Context, ownerEmail, name string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"ownerEmail": ownerEmail, "name": exactCI(name)})
	if err != nil {
		return false, fmt.Errorf("count fleets: %w", err)
	}
	return n > 0, nil
}

func (r *FleetRepository) Create(ctx context.Context, fleet *models.Fleet) error {
	if fleet.MembersEmails == nil {
		fleet.MembersEmails = []string{}
	}
	if fleet.Invitations == nil {
		fleet.Invitations = []primitive.ObjectID{}
	}
	if fleet.AllowedWaste == nil {
		fleet.AllowedWaste = []models.LabelValue{}
	}
	res, err := r.coll.InsertOne(ctx, fleet)
	if err != nil {
		return fmt.Errorf("insert fleet: %w", err)
	}
	fleet.ID = insertedID(res)
	return nil
}

func (r *FleetRepository) UpdateDetails(ctx context.Context, id primitive.ObjectID, details models.FleetDetails) error {
	set, err := toDoc(details)
	if err != nil {
		return fmt.Errorf("encode fleet details: %w", err)
	}
	set = append(set, bson.E{Key: "updatedAt", Value: time.Now()})
	return updateByID(ctx, r.coll, id, bson.D{{Key: "$set", Value: set}})
}

// SetDocketNumber stores the counter read and incremented by the caller.
// This is a plain write, not an atomic increment.
func (r *FleetRepository) SetDocketNumber(ctx context.Context, id primitive.ObjectID, n int64) error {
	return updateByID(ctx, r.coll, id, bson.M{"$set": bson.M{"docketNumber": n, "updatedAt": time.Now()}})
}

func (r *FleetRepository) AddMember(ctx context.Context, id primitive.ObjectID, email string) error {
	return updateByID(ctx, r.coll, id, bson.M{"$addToSet": bson.M{"membersEmails": email}})
}

func (r *FleetRepository) RemoveMember(ctx context.Context, id primitive.ObjectID, email string) error {
	return updateByID(ctx, r.coll, id, bson.M{"$pull": bson.M{"membersEmails": email}})
}

// RemoveMemberEverywhere drops email from the member list of every fleet.
func (r *FleetRepository) RemoveMemberEverywhere(ctx context.Context, email string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"membersEmails": email},
		bson.M{"$pull": bson.M{"membersEmails": email}})
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (r *FleetRepository) AddInvitation(ctx context.Context, id, invitationID primitive.ObjectID) error {
	return updateByID(ctx, r.coll, id, bson.M{"$addToSet": bson.M{"invitations": invitationID}})
}

func (r *FleetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *FleetRepository) Search(ctx context.Context, q search.Query) ([]models.Fleet, int64, error) {
	return aggregatePage[models.Fleet](ctx, r.coll, q)
}
