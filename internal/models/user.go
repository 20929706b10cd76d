// internal/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AccountType string

const (
	AccountTypeAdmin AccountType = "ADMIN"
	AccountTypeUser  AccountType = "USER"
)

type AccountSubType string

const (
	AccountSubTypeNone          AccountSubType = ""
	AccountSubTypeBusinessAdmin AccountSubType = "BUSINESS_ADMIN"
	AccountSubTypeDriver        AccountSubType = "DRIVER"
)

// Valid reports whether s is a known sub-type (the empty sub-type included).
func (s AccountSubType) Valid() bool {
	switch s {
	case AccountSubTypeNone, AccountSubTypeBusinessAdmin, AccountSubTypeDriver:
		return true
	}
	return false
}

type PersonalDetails struct {
	Name        string `bson:"name" json:"name"`
	Email       string `bson:"email" json:"email"`
	PhoneNumber string `bson:"phoneNumber" json:"phoneNumber"`
}

// User is created on first sign-in for a given email.
type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	PersonalDetails PersonalDetails      `bson:"personalDetails" json:"personalDetails"`
	AccountType     AccountType          `bson:"accountType" json:"accountType"`
	AccountSubType  AccountSubType       `bson:"accountSubType" json:"accountSubType"`
	SignUpCompleted bool                 `bson:"signUpCompleted" json:"signUpCompleted"`
	SelectedFleet   *primitive.ObjectID  `bson:"selectedFleet,omitempty" json:"selectedFleet,omitempty"`
	Fleets          []primitive.ObjectID `bson:"fleets" json:"fleets"`
	Invitations     []primitive.ObjectID `bson:"invitations" json:"invitations"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool { return u.AccountType == AccountTypeAdmin }
