package usecase

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/media"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
)

// TimestampLayout is the textual timestamp format of served listings.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Uploads carries the public paths of files stored for the current request.
type Uploads struct {
	Images []string
	Video  string
}

func (u Uploads) HasImages() bool { return len(u.Images) > 0 }

// NormalizeForRead projects a stored listing onto its public view. A blank image is
// replaced by a default pick and an empty image list by the resolved image. The stored
// listing is left untouched.
func NormalizeForRead(listing *model.Listing, defaults media.DefaultImages) *model.ListingView {
	image := listing.Image
	if strings.TrimSpace(image) == "" {
		image = defaults.Pick()
	}

	images := listing.Images
	if len(images) == 0 {
		images = []string{image}
	} else {
		images = append([]string(nil), images...)
	}

	return &model.ListingView{
		ID:                  listing.ID.Hex(),
		Area:                listing.Area,
		AreaUnit:            listing.AreaUnit,
		TotalArea:           listing.TotalArea,
		Description:         listing.Description,
		Image:               image,
		Images:              images,
		Video:               listing.Video,
		Price:               listing.Price,
		PriceUnit:           listing.PriceUnit,
		Location:            listing.Location,
		Category:            listing.Category,
		Beds:                listing.Beds,
		Bath:                listing.Bath,
		Title:               listing.Title,
		City:                listing.City,
		TimeRequirement:     listing.TimeRequirement,
		MinPrice:            listing.MinPrice,
		MaxPrice:            listing.MaxPrice,
		BuyOrRent:           listing.BuyOrRent,
		SenderName:          listing.SenderName,
		PortionCategory:     listing.PortionCategory,
		PropertyDealerName:  listing.PropertyDealerName,
		PropertyDealerEmail: listing.PropertyDealerEmail,
		Phone:               listing.Phone,
		Status:              listing.Status,
		CompanyID:           listing.CompanyID,
		UserID:              listing.UserID,
		CreatedAt:           formatTimestamp(listing.CreatedAt),
		UpdatedAt:           formatTimestamp(listing.UpdatedAt),
	}
}

// NormalizeForWrite builds the record persisted on create. Status is forced to the
// variant tag, media comes only from uploads (a default image otherwise) and the owner
// reference is attached under the variant's owner field.
func NormalizeForWrite(
	params ListingParams,
	variant model.Variant,
	owner *bson.ObjectID,
	uploads Uploads,
	defaults media.DefaultImages,
) *model.Listing {
	listing := params.toListing()
	listing.Status = variant.Status

	if uploads.HasImages() {
		listing.Images = append([]string(nil), uploads.Images...)
		listing.Image = listing.Images[0]
	} else {
		listing.Image = defaults.Pick()
		listing.Images = []string{listing.Image}
	}
	listing.Video = uploads.Video

	listing.CompanyID = nil
	listing.UserID = nil
	listing.SetOwnerRef(variant.OwnerField, owner)

	return listing
}

// applyUploads overwrites media fields with freshly uploaded files.
func applyUploads(listing *model.Listing, uploads Uploads) {
	if uploads.HasImages() {
		listing.Images = append([]string(nil), uploads.Images...)
		listing.Image = listing.Images[0]
	}
	if uploads.Video != "" {
		listing.Video = uploads.Video
	}
}

// titleCaseName upper-cases the first letter of each space-separated word and lower-cases the rest.
// Letters after a hyphen or apostrophe are lower-cased too.
func titleCaseName(name string) string {
	// Casers are stateful, so each call gets its own.
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)
	words := strings.Split(name, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}
