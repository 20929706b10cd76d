// internal/models/fleet.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FleetDetails holds the owner-editable metadata of a fleet.
type FleetDetails struct {
	Name                      string       `bson:"name" json:"name"`
	IsIndividual              bool         `bson:"isIndividual" json:"isIndividual"`
	PrefixDocketNumber        string       `bson:"prefixDocketNumber" json:"prefixDocketNumber"`
	PermitNumber              string       `bson:"permitNumber" json:"permitNumber"`
	VATNumber                 string       `bson:"vatNumber" json:"vatNumber"`
	CompanyRegistrationNumber string       `bson:"companyRegistrationNumber" json:"companyRegistrationNumber"`
	LegalName                 string       `bson:"legalName" json:"legalName"`
	CompanyPhone              string       `bson:"companyPhone" json:"companyPhone"`
	CompanyEmail              string       `bson:"companyEmail" json:"companyEmail"`
	CompanyAddress            Address      `bson:"companyAddress" json:"companyAddress"`
	AllowedWaste              []LabelValue `bson:"allowedWaste" json:"allowedWaste"`
}

// Fleet is a tenant. OwnerEmail is the authoritative owner identity.
// DocketNumber is the last minted sequence number; the next docket gets DocketNumber+1.
type Fleet struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OwnerEmail    string               `bson:"ownerEmail" json:"ownerEmail"`
	FleetDetails  `bson:",inline"`
	DocketNumber  int64                `bson:"docketNumber" json:"docketNumber"`
	MembersEmails []string             `bson:"membersEmails" json:"membersEmails"`
	Invitations   []primitive.ObjectID `bson:"invitations" json:"invitations"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}
