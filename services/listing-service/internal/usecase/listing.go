package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/media"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/notifier"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/repository"
	"github.com/vasapolrittideah/property-listing-api/shared/cache"
	"github.com/vasapolrittideah/property-listing-api/shared/events"
)

// ListingUsecase defines the operations available on one listing variant.
type ListingUsecase interface {
	Variant() model.Variant
	List(ctx context.Context, ownerID string) ([]*model.ListingView, error)
	GetByID(ctx context.Context, id string) (*model.ListingView, error)
	Create(ctx context.Context, params ListingParams, uploads Uploads) (*model.Listing, error)
	Replace(ctx context.Context, id string, params ListingParams, uploads Uploads) (*model.Listing, error)
	Patch(ctx context.Context, id string, params ListingParams, uploads Uploads) (*model.Listing, error)
	Delete(ctx context.Context, id string) (*model.Listing, error)
}

// StructValidator validates tagged structs.
type StructValidator interface {
	Struct(s any) error
}

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrInvalidListing  = errors.New("invalid listing")
)

// ListingDeps bundles the optional collaborators of a listing use case.
// Nil fields fall back to no-op implementations.
type ListingDeps struct {
	Cache     cache.Cache[model.Listing]
	Publisher events.Publisher
	Notifier  notifier.DealerNotifier
}

type listingUsecase struct {
	variant   model.Variant
	repo      repository.ListingRepository
	defaults  media.DefaultImages
	validator StructValidator
	cache     cache.Cache[model.Listing]
	publisher events.Publisher
	notifier  notifier.DealerNotifier
	logger    *zerolog.Logger
}

func NewListingUsecase(
	variant model.Variant,
	repo repository.ListingRepository,
	defaults media.DefaultImages,
	validator StructValidator,
	deps ListingDeps,
	logger *zerolog.Logger,
) ListingUsecase {
	u := &listingUsecase{
		variant:   variant,
		repo:      repo,
		defaults:  defaults,
		validator: validator,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		notifier:  deps.Notifier,
		logger:    logger,
	}

	if u.cache == nil {
		u.cache = cache.Nop[model.Listing]{}
	}
	if u.publisher == nil {
		u.publisher = events.Nop{}
	}
	if u.notifier == nil {
		u.notifier = notifier.NopDealerNotifier{}
	}

	return u
}

func (u *listingUsecase) Variant() model.Variant {
	return u.variant
}

func (u *listingUsecase) List(ctx context.Context, ownerID string) ([]*model.ListingView, error) {
	params := repository.FilterListingsParams{}

	if ownerID = strings.TrimSpace(ownerID); ownerID != "" {
		id, err := bson.ObjectIDFromHex(ownerID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a valid id", ErrInvalidListing, u.variant.OwnerField)
		}
		params.OwnerID = &id
	}

	listings, err := u.repo.ListListings(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s listings: %w", u.variant.Name, err)
	}

	views := make([]*model.ListingView, 0, len(listings))
	for _, listing := range listings {
		views = append(views, NormalizeForRead(listing, u.defaults))
	}

	return views, nil
}

func (u *listingUsecase) GetByID(ctx context.Context, id string) (*model.ListingView, error) {
	listing, err := u.get(ctx, id)
	if err != nil {
		return nil, err
	}

	return NormalizeForRead(listing, u.defaults), nil
}

func (u *listingUsecase) Create(ctx context.Context, params ListingParams, uploads Uploads) (*model.Listing, error) {
	if err := u.validate(params); err != nil {
		return nil, err
	}

	owner, _ := params.ownerRef(u.variant)
	listing := NormalizeForWrite(params, u.variant, owner, uploads, u.defaults)

	created, err := u.repo.CreateListing(ctx, listing)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s listing: %w", u.variant.Name, err)
	}

	u.publish(ctx, events.ListingCreated, created)

	if err := u.notifier.ListingCreated(ctx, u.variant, created); err != nil {
		u.logger.Warn().Err(err).Str("listing_id", created.ID.Hex()).Msg("failed to notify dealer")
	}

	return created, nil
}

func (u *listingUsecase) Replace(
	ctx context.Context,
	id string,
	params ListingParams,
	uploads Uploads,
) (*model.Listing, error) {
	if err := u.validate(params); err != nil {
		return nil, err
	}

	existing, err := u.get(ctx, id)
	if err != nil {
		return nil, err
	}

	listing := params.toListing()
	owner, _ := params.ownerRef(u.variant)
	listing.SetOwnerRef(u.variant.OwnerField, owner)
	listing.CreatedAt = existing.CreatedAt
	applyUploads(listing, uploads)

	replaced, err := u.repo.ReplaceListing(ctx, id, listing)
	if err != nil {
		return nil, u.translateError(err, "replace")
	}

	u.cache.Delete(ctx, id)
	u.publish(ctx, events.ListingReplaced, replaced)

	return replaced, nil
}

func (u *listingUsecase) Patch(
	ctx context.Context,
	id string,
	params ListingParams,
	uploads Uploads,
) (*model.Listing, error) {
	if err := u.validate(params); err != nil {
		return nil, err
	}

	patched, err := u.repo.UpdateListing(ctx, id, params.setFields(u.variant, uploads))
	if err != nil {
		return nil, u.translateError(err, "patch")
	}

	u.cache.Delete(ctx, id)
	u.publish(ctx, events.ListingPatched, patched)

	return patched, nil
}

func (u *listingUsecase) Delete(ctx context.Context, id string) (*model.Listing, error) {
	deleted, err := u.repo.DeleteListing(ctx, id)
	if err != nil {
		return nil, u.translateError(err, "delete")
	}

	u.cache.Delete(ctx, id)
	u.publish(ctx, events.ListingDeleted, deleted)

	return deleted, nil
}

// get loads a stored listing through the cache.
func (u *listingUsecase) get(ctx context.Context, id string) (*model.Listing, error) {
	if listing, ok := u.cache.Get(ctx, id); ok {
		return listing, nil
	}

	listing, err := u.repo.GetListing(ctx, id)
	if err != nil {
		return nil, u.translateError(err, "get")
	}

	u.cache.Set(ctx, id, listing)

	return listing, nil
}

func (u *listingUsecase) validate(params ListingParams) error {
	if err := u.validator.Struct(params.forValidation()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidListing, err)
	}

	return nil
}

func (u *listingUsecase) translateError(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, repository.ErrInvalidID) {
		return ErrListingNotFound
	}

	return fmt.Errorf("failed to %s %s listing: %w", op, u.variant.Name, err)
}

func (u *listingUsecase) publish(ctx context.Context, eventType string, listing *model.Listing) {
	data := map[string]any{
		"id":      listing.ID.Hex(),
		"variant": u.variant.Name,
		"status":  listing.Status,
	}
	if owner := listing.OwnerRef(u.variant.OwnerField); owner != nil {
		data[u.variant.OwnerField] = owner.Hex()
	}

	if err := u.publisher.Publish(ctx, events.ListingStream, eventType, data); err != nil {
		u.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish listing event")
	}
}
