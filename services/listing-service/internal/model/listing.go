package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Status tags which listing family a record belongs to.
type Status string

const (
	StatusPublic         Status = "public"
	StatusPrivate        Status = "private"
	StatusCompanyWebsite Status = "company-website"
)

// Owner reference field names.
const (
	OwnerFieldCompany = "companyId"
	OwnerFieldUser    = "userId"
)

// Variant describes one listing family: the collection it lives in, the status tag its
// records carry and the field holding the owner reference.
type Variant struct {
	Name       string
	Collection string
	Status     Status
	OwnerField string
}

var (
	CompanyListings = Variant{
		Name:       "company",
		Collection: "companyproperties",
		Status:     StatusCompanyWebsite,
		OwnerField: OwnerFieldCompany,
	}
	PrivateListings = Variant{
		Name:       "private",
		Collection: "privateproperties",
		Status:     StatusPrivate,
		OwnerField: OwnerFieldUser,
	}
)

// Listing represents a stored real-estate listing. Field names follow the wire format
// clients already use, including the capitalised Area, TotalArea and Bath keys.
type Listing struct {
	ID                  bson.ObjectID  `bson:"_id,omitempty"       json:"_id"`
	Title               string         `bson:"title"               json:"title"`
	Area                string         `bson:"Area,omitempty"      json:"Area,omitempty"`
	AreaUnit            string         `bson:"areaUnit,omitempty"  json:"areaUnit,omitempty"`
	TotalArea           string         `bson:"TotalArea,omitempty" json:"TotalArea,omitempty"`
	Description         string         `bson:"description,omitempty" json:"description,omitempty"`
	Image               string         `bson:"image"               json:"image"`
	Images              []string       `bson:"images"              json:"images"`
	Video               string         `bson:"video"               json:"video"`
	Price               string         `bson:"price,omitempty"     json:"price,omitempty"`
	PriceUnit           string         `bson:"priceUnit,omitempty" json:"priceUnit,omitempty"`
	MinPrice            string         `bson:"minPrice"            json:"minPrice"`
	MaxPrice            string         `bson:"maxPrice"            json:"maxPrice"`
	PortionCategory     string         `bson:"portionCategory"     json:"portionCategory"`
	Location            string         `bson:"location,omitempty"  json:"location,omitempty"`
	Category            string         `bson:"category,omitempty"  json:"category,omitempty"`
	Beds                *int           `bson:"beds,omitempty"      json:"beds,omitempty"`
	Bath                *int           `bson:"Bath,omitempty"      json:"Bath,omitempty"`
	City                string         `bson:"city,omitempty"      json:"city,omitempty"`
	Status              Status         `bson:"status"              json:"status"`
	BuyOrRent           string         `bson:"buyOrRent,omitempty" json:"buyOrRent,omitempty"`
	TimeRequirement     string         `bson:"timeRequirement,omitempty" json:"timeRequirement,omitempty"`
	SenderName          string         `bson:"senderName"          json:"senderName"`
	PropertyDealerName  string         `bson:"propertyDealerName,omitempty"  json:"propertyDealerName,omitempty"`
	PropertyDealerEmail string         `bson:"propertyDealerEmail,omitempty" json:"propertyDealerEmail,omitempty"`
	Phone               string         `bson:"phone"               json:"phone"`
	CompanyID           *bson.ObjectID `bson:"companyId,omitempty" json:"companyId,omitempty"`
	UserID              *bson.ObjectID `bson:"userId,omitempty"    json:"userId,omitempty"`
	CreatedAt           time.Time      `bson:"createdAt"           json:"createdAt"`
	UpdatedAt           time.Time      `bson:"updatedAt"           json:"updatedAt"`
}

// OwnerRef returns the owner reference stored under field.
func (l *Listing) OwnerRef(field string) *bson.ObjectID {
	switch field {
	case OwnerFieldCompany:
		return l.CompanyID
	case OwnerFieldUser:
		return l.UserID
	}
	return nil
}

// SetOwnerRef stores id under field. Unknown fields are ignored.
func (l *Listing) SetOwnerRef(field string, id *bson.ObjectID) {
	switch field {
	case OwnerFieldCompany:
		l.CompanyID = id
	case OwnerFieldUser:
		l.UserID = id
	}
}

// ListingView is the public projection of a listing served by read endpoints.
// Timestamps are rendered as text and media fields are never empty.
type ListingView struct {
	ID                  string         `json:"_id"`
	Area                string         `json:"Area,omitempty"`
	AreaUnit            string         `json:"areaUnit,omitempty"`
	TotalArea           string         `json:"TotalArea,omitempty"`
	Description         string         `json:"description,omitempty"`
	Image               string         `json:"image"`
	Images              []string       `json:"images"`
	Video               string         `json:"video"`
	Price               string         `json:"price,omitempty"`
	PriceUnit           string         `json:"priceUnit,omitempty"`
	Location            string         `json:"location,omitempty"`
	Category            string         `json:"category,omitempty"`
	Beds                *int           `json:"beds,omitempty"`
	Bath                *int           `json:"Bath,omitempty"`
	Title               string         `json:"title"`
	City                string         `json:"city,omitempty"`
	TimeRequirement     string         `json:"timeRequirement,omitempty"`
	MinPrice            string         `json:"minPrice"`
	MaxPrice            string         `json:"maxPrice"`
	BuyOrRent           string         `json:"buyOrRent,omitempty"`
	SenderName          string         `json:"senderName"`
	PortionCategory     string         `json:"portionCategory"`
	PropertyDealerName  string         `json:"propertyDealerName,omitempty"`
	PropertyDealerEmail string         `json:"propertyDealerEmail,omitempty"`
	Phone               string         `json:"phone"`
	Status              Status         `json:"status"`
	CompanyID           *bson.ObjectID `json:"companyId,omitempty"`
	UserID              *bson.ObjectID `json:"userId,omitempty"`
	CreatedAt           string         `json:"createdAt,omitempty"`
	UpdatedAt           string         `json:"updatedAt,omitempty"`
}
