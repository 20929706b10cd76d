// internal/models/facility.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DestinationFacilityData struct {
	DestinationFacilityID      string  `bson:"destinationFacilityId" json:"destinationFacilityId"` // external id, unique per fleet
	DestinationFacilityName    string  `bson:"destinationFacilityName" json:"destinationFacilityName"`
	DestinationFacilityLicense string  `bson:"destinationFacilityLicense" json:"destinationFacilityLicense"`
	DestinationFacilityEmail   string  `bson:"destinationFacilityEmail" json:"destinationFacilityEmail"`
	DestinationFacilityPhone   string  `bson:"destinationFacilityPhone" json:"destinationFacilityPhone"`
	DestinationFacilityAddress Address `bson:"destinationFacilityAddress" json:"destinationFacilityAddress"`
}

type DestinationFacility struct {
	ID                      primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	FleetID                 primitive.ObjectID      `bson:"fleetId" json:"fleetId"`
	DestinationFacilityData DestinationFacilityData `bson:"destinationFacilityData" json:"destinationFacilityData"`
	CreatedAt               time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time               `bson:"updatedAt" json:"updatedAt"`
}
