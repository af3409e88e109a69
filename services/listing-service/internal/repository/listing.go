package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
)

// ErrInvalidID is returned when an identifier is not a valid ObjectID hex string.
var ErrInvalidID = errors.New("invalid object id")

// ListingRepository defines the interface for listing-related database operations.
// One instance serves exactly one listing variant.
type ListingRepository interface {
	ListListings(ctx context.Context, params FilterListingsParams) ([]*model.Listing, error)
	GetListing(ctx context.Context, id string) (*model.Listing, error)
	CreateListing(ctx context.Context, listing *model.Listing) (*model.Listing, error)
	ReplaceListing(ctx context.Context, id string, listing *model.Listing) (*model.Listing, error)
	UpdateListing(ctx context.Context, id string, fields bson.M) (*model.Listing, error)
	DeleteListing(ctx context.Context, id string) (*model.Listing, error)
}

// FilterListingsParams narrows a listing query. A nil OwnerID returns every listing of the variant.
type FilterListingsParams struct {
	OwnerID *bson.ObjectID
}

type listingMongoRepository struct {
	db      *mongo.Database
	variant model.Variant
}

func NewListingMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
	variant model.Variant,
) ListingRepository {
	collection := db.Collection(variant.Collection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: variant.OwnerField, Value: 1}}},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Str("collection", variant.Collection).Msg("failed to create listing indexes")
	}

	return &listingMongoRepository{db: db, variant: variant}
}

func (r *listingMongoRepository) collection() *mongo.Collection {
	return r.db.Collection(r.variant.Collection)
}

func (r *listingMongoRepository) ListListings(
	ctx context.Context,
	params FilterListingsParams,
) ([]*model.Listing, error) {
	filter := bson.M{"status": r.variant.Status}
	if params.OwnerID != nil {
		filter[r.variant.OwnerField] = *params.OwnerID
	}

	// Natural order: results come back as the store returns them.
	cursor, err := r.collection().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	listings := []*model.Listing{}
	for cursor.Next(ctx) {
		var listing model.Listing
		if err := cursor.Decode(&listing); err != nil {
			return nil, err
		}
		listings = append(listings, &listing)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return listings, nil
}

func (r *listingMongoRepository) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	return decodeListing(r.collection().FindOne(ctx, bson.M{"_id": objectID}))
}

func (r *listingMongoRepository) CreateListing(ctx context.Context, listing *model.Listing) (*model.Listing, error) {
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	listing.Status = r.variant.Status

	result, err := r.collection().InsertOne(ctx, listing)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		listing.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return listing, nil
}

// ReplaceListing swaps the whole document. The caller is responsible for carrying over
// CreatedAt; _id is kept by the store and status is forced to the variant tag.
func (r *listingMongoRepository) ReplaceListing(
	ctx context.Context,
	id string,
	listing *model.Listing,
) (*model.Listing, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	listing.ID = objectID
	listing.Status = r.variant.Status
	listing.UpdatedAt = time.Now().UTC()

	return decodeListing(r.collection().FindOneAndReplace(
		ctx,
		bson.M{"_id": objectID},
		listing,
		options.FindOneAndReplace().SetReturnDocument(options.After),
	))
}

func (r *listingMongoRepository) UpdateListing(ctx context.Context, id string, fields bson.M) (*model.Listing, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	for key, value := range fields {
		switch key {
		case "_id", "status", "createdAt", "updatedAt":
			continue
		}
		updateMap[key] = value
	}
	updateMap["updatedAt"] = time.Now().UTC()

	return decodeListing(r.collection().FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	))
}

func (r *listingMongoRepository) DeleteListing(ctx context.Context, id string) (*model.Listing, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	return decodeListing(r.collection().FindOneAndDelete(ctx, bson.M{"_id": objectID}))
}

func decodeListing(result *mongo.SingleResult) (*model.Listing, error) {
	if result.Err() != nil {
		return nil, result.Err()
	}

	var listing model.Listing
	if err := result.Decode(&listing); err != nil {
		return nil, err
	}

	return &listing, nil
}

func parseObjectID(id string) (bson.ObjectID, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	return objectID, nil
}
