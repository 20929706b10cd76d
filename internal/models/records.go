// internal/models/records.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WasteCollectionPermitDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FleetID      primitive.ObjectID `bson:"fleetId" json:"fleetId"`
	PermitNumber string             `bson:"permitNumber" json:"permitNumber"`
	PermitHolder string             `bson:"permitHolder" json:"permitHolder"`
	ExpiryDate   string             `bson:"expiryDate" json:"expiryDate"`
	File         MediaPointer       `bson:"file" json:"file"`
	ObjectKey    string             `bson:"objectKey" json:"-"`
	UploadedBy   string             `bson:"uploadedBy" json:"uploadedBy"`
	DownloadURL  string             `bson:"-" json:"downloadUrl,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

type Suggestion struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Email     string             `bson:"email" json:"email"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// AppVersion is a singleton document read by the mobile client on start-up.
type AppVersion struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Version        string             `bson:"version" json:"version"`
	MinimumVersion string             `bson:"minimumVersion" json:"minimumVersion"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Subscription struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FleetID              primitive.ObjectID `bson:"fleetId" json:"fleetId"`
	OwnerEmail           string             `bson:"ownerEmail" json:"ownerEmail"`
	StripeCustomerID     string             `bson:"stripeCustomerId" json:"stripeCustomerId"`
	StripeSubscriptionID string             `bson:"stripeSubscriptionId" json:"stripeSubscriptionId"`
	Status               string             `bson:"status" json:"status"`
	CurrentPeriodEnd     time.Time          `bson:"currentPeriodEnd" json:"currentPeriodEnd"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type FunctionParam struct {
	ParamName  string `bson:"paramName" json:"paramName"`
	ParamValue string `bson:"paramValue" json:"paramValue"`
	ParamType  string `bson:"paramType" json:"paramType"`
}

// ApiLog is one audit record. StartLogID links an *_END record to its *_START.
type ApiLog struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type              string             `bson:"type" json:"type"`
	Level             string             `bson:"level" json:"level"`
	FunctionName      string             `bson:"functionName" json:"functionName"`
	FunctionParams    []FunctionParam    `bson:"functionParams" json:"functionParams"`
	AdditionalMessage string             `bson:"additionalMessage,omitempty" json:"additionalMessage,omitempty"`
	StartLogID        string             `bson:"startLogId,omitempty" json:"startLogId,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	ExpireAt          time.Time          `bson:"expireAt" json:"expireAt"`
}
