package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultLogoColor is used when a registration does not pick a logo color.
const DefaultLogoColor = "#3B404C"

// User represents a registered account. The verification code is never serialised.
type User struct {
	ID               bson.ObjectID `bson:"_id,omitempty"              json:"id"`
	FullName         string        `bson:"fullName"                   json:"fullName"    validate:"required,min=2,max=100"`
	CompanyName      string        `bson:"companyName"                json:"companyName" validate:"required,min=2,max=100"`
	Logo             string        `bson:"logo"                       json:"logo"        validate:"required"`
	LogoColor        string        `bson:"logoColor"                  json:"logoColor"   validate:"required"`
	Phone            string        `bson:"phone"                      json:"phone"       validate:"required,phone"`
	FirstName        string        `bson:"firstName,omitempty"        json:"firstName,omitempty"`
	LastName         string        `bson:"lastName,omitempty"         json:"lastName,omitempty"`
	VerificationCode string        `bson:"verificationCode,omitempty" json:"-"`
	Verified         bool          `bson:"verified"                   json:"verified"`
	CreatedAt        time.Time     `bson:"createdAt"                  json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt"                  json:"updatedAt"`
}

// UserSummary is returned after registration.
type UserSummary struct {
	Phone       string `json:"phone"`
	FullName    string `json:"fullName"`
	CompanyName string `json:"companyName"`
}
