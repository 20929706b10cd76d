// internal/models/common.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// LabelValue is a selectable option, e.g. an allowed waste type on a fleet.
type LabelValue struct {
	Label string `bson:"label" json:"label"`
	Value string `bson:"value" json:"value"`
}

// Address is the postal address shape shared by fleets, customers and facilities.
type Address struct {
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string `bson:"addressLine2" json:"addressLine2"`
	Town         string `bson:"town" json:"town"`
	County       string `bson:"county" json:"county"`
	Eircode      string `bson:"eircode" json:"eircode"`
	Country      string `bson:"country" json:"country"`
}

// MediaPointer references a file held in object storage.
type MediaPointer struct {
	URL         string `bson:"url" json:"url"`
	FileName    string `bson:"fileName" json:"fileName"`
	ContentType string `bson:"contentType" json:"contentType"`
}

// ContainsID reports whether id is in ids.
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
