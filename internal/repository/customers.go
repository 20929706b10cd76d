// internal/repository/customers.go
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

type CustomerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{coll: db.Collection(CustomerContactsCollection)}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CustomerContact, error) {
	return findOne[models.CustomerContact](ctx, r.coll, bson.M{"_id": id})
}

// FindByName matches the whole name case-insensitively within the fleet.
func (r *CustomerRepository) FindByName(ctx context.Context, fleetID primitive.ObjectID, name string) (*models.CustomerContact, error) {
	return findOne[models.CustomerContact](ctx, r.coll, bson.M{"fleetId": fleetID, "customerName": exactCI(name)})
}

// NamesInFleet returns every customer name of the fleet.
func (r *CustomerRepository) NamesInFleet(ctx context.Context, fleetID primitive.ObjectID) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"customerName": 1})
	contacts, err := findAll[models.CustomerContact](ctx, r.coll, bson.M{"fleetId": fleetID}, opts)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(contacts))
	for _, c := range contacts {
		names = append(names, c.CustomerName)
	}
	return names, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.CustomerContact) error {
	res, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	c.ID = insertedID(res)
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.CustomerContact) error {
	c.UpdatedAt = time.Now()
	return updateByID(ctx, r.coll, c.ID, bson.M{"$set": bson.M{
		"customerName":    c.CustomerName,
		"customerEmail":   c.CustomerEmail,
		"customerPhone":   c.CustomerPhone,
		"customerAddress": c.CustomerAddress,
		"updatedAt":       c.UpdatedAt,
	}})
}

func (r *CustomerRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *CustomerRepository) DeleteByFleet(ctx context.Context, fleetID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"fleetId": fleetID})
	if err != nil {
		return 0, fmt.Errorf("delete customers: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *CustomerRepository) Search(ctx context.Context, q search.Query) ([]models.CustomerContact, int64, error) {
	return aggregatePage[models.CustomerContact](ctx, r.coll, q)
}
