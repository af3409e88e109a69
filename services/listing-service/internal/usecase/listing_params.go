package usecase

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
)

// ListingParams carries client-supplied listing fields. A nil field was not supplied.
// Keys mirror the stored field names, including the capitalised Area, TotalArea and Bath.
type ListingParams struct {
	Title               *string   `json:"title"               form:"title"`
	Area                *string   `json:"Area"                form:"Area"`
	AreaUnit            *string   `json:"areaUnit"            form:"areaUnit"`
	TotalArea           *string   `json:"TotalArea"           form:"TotalArea"`
	Description         *string   `json:"description"         form:"description"`
	Image               *string   `json:"image"               form:"image"`
	Images              *[]string `json:"images"              form:"images"`
	Video               *string   `json:"video"               form:"video"`
	Price               *string   `json:"price"               form:"price"`
	PriceUnit           *string   `json:"priceUnit"           form:"priceUnit"`
	MinPrice            *string   `json:"minPrice"            form:"minPrice"`
	MaxPrice            *string   `json:"maxPrice"            form:"maxPrice"`
	PortionCategory     *string   `json:"portionCategory"     form:"portionCategory"`
	Location            *string   `json:"location"            form:"location"`
	Category            *string   `json:"category"            form:"category"`
	Beds                *int      `json:"beds"                form:"beds"                validate:"omitempty,gte=0"`
	Bath                *int      `json:"Bath"                form:"Bath"                validate:"omitempty,gte=0"`
	City                *string   `json:"city"                form:"city"`
	BuyOrRent           *string   `json:"buyOrRent"           form:"buyOrRent"`
	TimeRequirement     *string   `json:"timeRequirement"     form:"timeRequirement"`
	SenderName          *string   `json:"senderName"          form:"senderName"`
	PropertyDealerName  *string   `json:"propertyDealerName"  form:"propertyDealerName"  validate:"omitempty,fullname"`
	PropertyDealerEmail *string   `json:"propertyDealerEmail" form:"propertyDealerEmail" validate:"omitempty,looseemail"`
	Phone               *string   `json:"phone"               form:"phone"`
	CompanyID           *string   `json:"companyId"           form:"companyId"           validate:"omitempty,mongodb"`
	UserID              *string   `json:"userId"              form:"userId"              validate:"omitempty,mongodb"`
}

// ownerRef resolves the owner id supplied for the variant's owner field. A blank or
// missing value yields nil. Callers validate the params first.
func (p ListingParams) ownerRef(variant model.Variant) (*bson.ObjectID, bool) {
	var raw *string
	switch variant.OwnerField {
	case model.OwnerFieldCompany:
		raw = p.CompanyID
	case model.OwnerFieldUser:
		raw = p.UserID
	}

	if raw == nil {
		return nil, false
	}

	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, true
	}

	id, err := bson.ObjectIDFromHex(value)
	if err != nil {
		return nil, true
	}

	return &id, true
}

// forValidation clears blank optional fields whose format is checked, so a blank
// form value counts as not supplied.
func (p ListingParams) forValidation() ListingParams {
	for _, f := range []**string{&p.PropertyDealerName, &p.PropertyDealerEmail, &p.CompanyID, &p.UserID} {
		if *f != nil && strings.TrimSpace(**f) == "" {
			*f = nil
		}
	}

	return p
}

// toListing copies every supplied field onto a fresh listing. Owner and status are left unset.
func (p ListingParams) toListing() *model.Listing {
	listing := &model.Listing{
		Title:               deref(p.Title),
		Area:                deref(p.Area),
		AreaUnit:            deref(p.AreaUnit),
		TotalArea:           deref(p.TotalArea),
		Description:         deref(p.Description),
		Image:               deref(p.Image),
		Video:               deref(p.Video),
		Price:               deref(p.Price),
		PriceUnit:           deref(p.PriceUnit),
		MinPrice:            deref(p.MinPrice),
		MaxPrice:            deref(p.MaxPrice),
		PortionCategory:     deref(p.PortionCategory),
		Location:            deref(p.Location),
		Category:            deref(p.Category),
		Beds:                p.Beds,
		Bath:                p.Bath,
		City:                deref(p.City),
		BuyOrRent:           deref(p.BuyOrRent),
		TimeRequirement:     deref(p.TimeRequirement),
		SenderName:          titleCaseName(deref(p.SenderName)),
		PropertyDealerName:  deref(p.PropertyDealerName),
		PropertyDealerEmail: deref(p.PropertyDealerEmail),
		Phone:               deref(p.Phone),
	}
	if p.Images != nil {
		listing.Images = append([]string(nil), (*p.Images)...)
	}

	return listing
}

// setFields returns the $set document for a partial update.
func (p ListingParams) setFields(variant model.Variant, uploads Uploads) bson.M {
	fields := bson.M{}

	setString := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}

	setString("title", p.Title)
	setString("Area", p.Area)
	setString("areaUnit", p.AreaUnit)
	setString("TotalArea", p.TotalArea)
	setString("description", p.Description)
	setString("image", p.Image)
	setString("video", p.Video)
	setString("price", p.Price)
	setString("priceUnit", p.PriceUnit)
	setString("minPrice", p.MinPrice)
	setString("maxPrice", p.MaxPrice)
	setString("portionCategory", p.PortionCategory)
	setString("location", p.Location)
	setString("category", p.Category)
	setString("city", p.City)
	setString("buyOrRent", p.BuyOrRent)
	setString("timeRequirement", p.TimeRequirement)
	setString("propertyDealerName", p.PropertyDealerName)
	setString("propertyDealerEmail", p.PropertyDealerEmail)
	setString("phone", p.Phone)

	if p.SenderName != nil {
		fields["senderName"] = titleCaseName(*p.SenderName)
	}
	if p.Images != nil {
		fields["images"] = append([]string{}, (*p.Images)...)
	}
	if p.Beds != nil {
		fields["beds"] = *p.Beds
	}
	if p.Bath != nil {
		fields["Bath"] = *p.Bath
	}
	if owner, ok := p.ownerRef(variant); ok {
		if owner == nil {
			fields[variant.OwnerField] = nil
		} else {
			fields[variant.OwnerField] = *owner
		}
	}

	if uploads.HasImages() {
		fields["images"] = append([]string(nil), uploads.Images...)
		fields["image"] = uploads.Images[0]
	}
	if uploads.Video != "" {
		fields["video"] = uploads.Video
	}

	return fields
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
