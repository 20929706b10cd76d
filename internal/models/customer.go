// internal/models/customer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomerContact belongs to one fleet. CustomerName is unique per fleet,
// compared case-insensitively on the whole string.
type CustomerContact struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FleetID         primitive.ObjectID `bson:"fleetId" json:"fleetId"`
	CustomerName    string             `bson:"customerName" json:"customerName"`
	CustomerEmail   string             `bson:"customerEmail" json:"customerEmail"`
	CustomerPhone   string             `bson:"customerPhone" json:"customerPhone"`
	CustomerAddress Address            `bson:"customerAddress" json:"customerAddress"`
	IsAutoImported  bool               `bson:"isAutoImported" json:"isAutoImported"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
