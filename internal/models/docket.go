// internal/models/docket.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WasteLine struct {
	Description string  `bson:"description" json:"description"`
	LoWCode     string  `bson:"lowCode" json:"lowCode"` // European List of Waste code
	Quantity    float64 `bson:"quantity" json:"quantity"`
	Unit        string  `bson:"unit" json:"unit"`
	IsHazardous bool    `bson:"isHazardous" json:"isHazardous"`
}

// DocketData is the free-form body of a docket. Date is stored as a
// "YYYY-MM-DD" string and compared lexically.
type DocketData struct {
	JobID                  string      `bson:"jobId" json:"jobId"`
	IndividualDocketNumber string      `bson:"individualDocketNumber" json:"individualDocketNumber"`
	Date                   string      `bson:"date" json:"date"`
	Time                   string      `bson:"time" json:"time"`
	VehicleRegistration    string      `bson:"vehicleRegistration" json:"vehicleRegistration"`
	DriverName             string      `bson:"driverName" json:"driverName"`
	GeneralPickup          bool        `bson:"generalPickup" json:"generalPickup"`
	CollectionPointName    string      `bson:"collectionPointName" json:"collectionPointName"`
	CollectionPointAddress Address     `bson:"collectionPointAddress" json:"collectionPointAddress"`
	WasteLines             []WasteLine `bson:"wasteLines" json:"wasteLines"`
	AdditionalInformation  string      `bson:"additionalInformation" json:"additionalInformation"`

	DriverSignature           string `bson:"driverSignature" json:"driverSignature"`
	CustomerSignature         string `bson:"customerSignature" json:"customerSignature"`
	WasteFacilityRepSignature string `bson:"wasteFacilityRepSignature" json:"wasteFacilityRepSignature"`

	// export / customs
	IsExport                string `bson:"isExport" json:"isExport"`
	PortOfExport            string `bson:"portOfExport" json:"portOfExport"`
	CountryOfDestination    string `bson:"countryOfDestination" json:"countryOfDestination"`
	FacilityAtDestination   string `bson:"facilityAtDestination" json:"facilityAtDestination"`
	TFSReferenceNumber      string `bson:"tfsReferenceNumber" json:"tfsReferenceNumber"`
	AdditionalNotesOnExport string `bson:"additionalNotesOnExport" json:"additionalNotesOnExport"`
}

// Docket records one waste-collection event. CreatorEmail and FleetOwnerEmail
// are copies kept for querying.
type Docket struct {
	ID                    primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FleetID               primitive.ObjectID  `bson:"fleetId" json:"fleetId"`
	UserID                primitive.ObjectID  `bson:"userId" json:"userId"`
	CustomerContactID     *primitive.ObjectID `bson:"customerContactId,omitempty" json:"customerContactId,omitempty"`
	DestinationFacilityID *primitive.ObjectID `bson:"destinationFacilityId,omitempty" json:"destinationFacilityId,omitempty"`
	CreatorEmail          string              `bson:"creatorEmail" json:"creatorEmail"`
	FleetOwnerEmail       string              `bson:"fleetOwnerEmail" json:"fleetOwnerEmail"`
	DocketData            DocketData          `bson:"docketData" json:"docketData"`
	CreatedAt             time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// DocketView is a docket with its customer and facility joined in. Either
// side is nil when the referenced record is absent.
type DocketView struct {
	Docket              `bson:",inline"`
	CustomerContact     *CustomerContact     `bson:"customerContact,omitempty" json:"customerContact"`
	DestinationFacility *DestinationFacility `bson:"destinationFacility,omitempty" json:"destinationFacility"`
}
