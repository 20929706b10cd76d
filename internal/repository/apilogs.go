// internal/repository/apilogs.go
package repository

import (
	"context"
	"fmt"

	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ApiLogRepository backs the audit log writer and its admin listing.
type ApiLogRepository struct {
	coll *mongo.Collection
}

func NewApiLogRepository(db *mongo.Database) *ApiLogRepository {
	return &ApiLogRepository{coll: db.Collection(ApiLogsCollection)}
}

func (r *ApiLogRepository) Insert(ctx context.Context, log *models.ApiLog) (string, error) {
	res, err := r.coll.InsertOne(ctx, log)
	if err != nil {
		return "", fmt.Errorf("insert api log: %w", err)
	}
	log.ID = insertedID(res)
	return log.ID.Hex(), nil
}

type ApiLogFilter struct {
	Type         string
	Level        string
	FunctionName string
}

func (f ApiLogFilter) scope() bson.D {
	d := bson.D{}
	if f.Type != "" {
		d = append(d, bson.E{Key: "type", Value: f.Type})
	}
	if f.Level != "" {
		d = append(d, bson.E{Key: "level", Value: f.Level})
	}
	if f.FunctionName != "" {
		d = append(d, bson.E{Key: "functionName", Value: f.FunctionName})
	}
	return d
}

func (r *ApiLogRepository) List(ctx context.Context, f ApiLogFilter, page search.Page) ([]models.ApiLog, int64, error) {
	q := search.Query{
		Scope: f.scope(),
		Sort:  bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		Page:  page,
	}
	return aggregatePage[models.ApiLog](ctx, r.coll, q)
}
