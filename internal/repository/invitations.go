// internal/repository/invitations.go
package repository

import (
	"context"
	"fmt"
	"time"

	"waste-docket-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InvitationRepository struct {
	coll *mongo.Collection
}

func NewInvitationRepository(db *mongo.Database) *InvitationRepository {
	return &InvitationRepository{coll: db.Collection(FleetInvitationsCollection)}
}

func (r *InvitationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.FleetInvitation, error) {
	return findOne[models.FleetInvitation](ctx, r.coll, bson.M{"_id": id})
}

func (r *InvitationRepository) HasPending(ctx context.Context, fleetID primitive.ObjectID, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"fleetId":      fleetID,
		"inviteeEmail": email,
		"status":       models.InvitationPending,
	})
	if err != nil {
		return false, fmt.Errorf("count invitations: %w", err)
	}
	return n > 0, nil
}

func (r *InvitationRepository) Create(ctx context.Context, inv *models.FleetInvitation) error {
	res, err := r.coll.InsertOne(ctx, inv)
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	inv.ID = insertedID(res)
	return nil
}

// ListByInvitee returns the invitations addressed to email, newest first.
// An empty status returns every status.
func (r *InvitationRepository) ListByInvitee(ctx context.Context, email string, status models.InvitationStatus) ([]models.FleetInvitation, error) {
	filter := bson.M{"inviteeEmail": email}
	if status != "" {
		filter["status"] = status
	}
	return findAll[models.FleetInvitation](ctx, r.coll, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *InvitationRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.InvitationStatus) error {
	return updateByID(ctx, r.coll, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
}

// MarkFleetDeleted moves every pending invitation of the fleet to FLEET_DELETED.
func (r *InvitationRepository) MarkFleetDeleted(ctx context.Context, fleetID primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"fleetId": fleetID, "status": models.InvitationPending},
		bson.M{"$set": bson.M{"status": models.InvitationFleetDeleted, "updatedAt": time.Now()}})
	if err != nil {
		return 0, fmt.Errorf("mark invitations: %w", err)
	}
	return res.ModifiedCount, nil
}

// DeleteResolvedBefore removes non-pending invitations last touched before cutoff.
func (r *InvitationRepository) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{
		"status":    bson.M{"$ne": models.InvitationPending},
		"updatedAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("delete invitations: %w", err)
	}
	return res.DeletedCount, nil
}
