// internal/models/invitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InvitationStatus string

const (
	InvitationPending      InvitationStatus = "PENDING"
	InvitationAccepted     InvitationStatus = "ACCEPTED"
	InvitationRejected     InvitationStatus = "REJECTED"
	InvitationFleetDeleted InvitationStatus = "FLEET_DELETED"
)

type FleetInvitation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FleetID      primitive.ObjectID `bson:"fleetId" json:"fleetId"`
	FleetName    string             `bson:"fleetName" json:"fleetName"`
	InviterEmail string             `bson:"inviterEmail" json:"inviterEmail"`
	InviteeEmail string             `bson:"inviteeEmail" json:"inviteeEmail"`
	Status       InvitationStatus   `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
