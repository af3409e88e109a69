package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/repository"
)

// memListingRepo is an in-memory ListingRepository for one variant.
type memListingRepo struct {
	mu       sync.Mutex
	variant  model.Variant
	order    []bson.ObjectID
	listings map[bson.ObjectID]model.Listing
	err      error
}

func newMemListingRepo(variant model.Variant) *memListingRepo {
	return &memListingRepo{variant: variant, listings: map[bson.ObjectID]model.Listing{}}
}

// seed stores a listing as-is, bypassing status assignment.
func (r *memListingRepo) seed(l model.Listing) bson.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.ID.IsZero() {
		l.ID = bson.NewObjectID()
	}
	r.order = append(r.order, l.ID)
	r.listings[l.ID] = l
	return l.ID
}

func (r *memListingRepo) lookup(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, repository.ErrInvalidID
	}
	if _, ok := r.listings[oid]; !ok {
		return bson.NilObjectID, mongo.ErrNoDocuments
	}
	return oid, nil
}

func (r *memListingRepo) ListListings(_ context.Context, params repository.FilterListingsParams) ([]*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	out := []*model.Listing{}
	for _, id := range r.order {
		l, ok := r.listings[id]
		if !ok || l.Status != r.variant.Status {
			continue
		}
		if params.OwnerID != nil {
			owner := l.OwnerRef(r.variant.OwnerField)
			if owner == nil || *owner != *params.OwnerID {
				continue
			}
		}
		out = append(out, &l)
	}
	return out, nil
}

func (r *memListingRepo) GetListing(_ context.Context, id string) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	oid, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	l := r.listings[oid]
	return &l, nil
}

func (r *memListingRepo) CreateListing(_ context.Context, listing *model.Listing) (*model.Listing, error) {
	if r.err != nil {
		return nil, r.err
	}
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	listing.Status = r.variant.Status
	listing.ID = r.seed(*listing)
	return listing, nil
}

func (r *memListingRepo) ReplaceListing(_ context.Context, id string, listing *model.Listing) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	oid, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	listing.ID = oid
	listing.Status = r.variant.Status
	listing.UpdatedAt = time.Now().UTC()
	r.listings[oid] = *listing
	out := *listing
	return &out, nil
}

func (r *memListingRepo) UpdateListing(_ context.Context, id string, fields bson.M) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	oid, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	l := r.listings[oid]
	for key, value := range fields {
		switch key {
		case "title":
			l.Title = value.(string)
		case "price":
			l.Price = value.(string)
		case "senderName":
			l.SenderName = value.(string)
		case "image":
			l.Image = value.(string)
		case "images":
			l.Images = value.([]string)
		case "video":
			l.Video = value.(string)
		case "city":
			l.City = value.(string)
		case "beds":
			v := value.(int)
			l.Beds = &v
		case "propertyDealerName":
			l.PropertyDealerName = value.(string)
		case model.OwnerFieldCompany, model.OwnerFieldUser:
			var ref *bson.ObjectID
			if id, ok := value.(bson.ObjectID); ok {
				ref = &id
			}
			l.SetOwnerRef(key, ref)
		}
	}
	l.UpdatedAt = time.Now().UTC()
	r.listings[oid] = l
	return &l, nil
}

func (r *memListingRepo) DeleteListing(_ context.Context, id string) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	oid, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	l := r.listings[oid]
	delete(r.listings, oid)
	return &l, nil
}

// memUserRepo is an in-memory UserRepository keyed by phone.
type memUserRepo struct {
	mu        sync.Mutex
	users     map[string]model.User
	createErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]model.User{}}
}

func (r *memUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.users[user.Phone]; ok {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}}
	}
	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.Phone] = *user
	out := *user
	return &out, nil
}

func (r *memUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	for _, u := range r.users {
		if u.ID == oid {
			u := u
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memUserRepo) GetUserByPhone(_ context.Context, phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[phone]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (r *memUserRepo) ListUsers(context.Context) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*model.User{}
	for _, u := range r.users {
		u := u
		out = append(out, &u)
	}
	return out, nil
}

func (r *memUserRepo) UpdateUserByPhone(_ context.Context, phone string, params repository.UpdateUserParams) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[phone]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	changed := false
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
			changed = true
		}
	}
	set(&u.FullName, params.FullName)
	set(&u.CompanyName, params.CompanyName)
	set(&u.Logo, params.Logo)
	set(&u.LogoColor, params.LogoColor)
	set(&u.FirstName, params.FirstName)
	set(&u.LastName, params.LastName)
	if params.Verified != nil {
		u.Verified = *params.Verified
		changed = true
	}
	if params.ClearVerificationCode {
		u.VerificationCode = ""
		changed = true
	}
	if params.Phone != nil {
		if _, taken := r.users[*params.Phone]; taken && *params.Phone != phone {
			return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
		delete(r.users, phone)
		u.Phone = *params.Phone
		changed = true
	}
	if !changed {
		return nil, repository.ErrNoUserFields
	}

	u.UpdatedAt = time.Now().UTC()
	r.users[u.Phone] = u
	return &u, nil
}

func (r *memUserRepo) DeleteUserByPhone(_ context.Context, phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[phone]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(r.users, phone)
	return &u, nil
}

// recordingPublisher captures published event types.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

// mapCache is an in-memory cache.Cache.
type mapCache struct {
	mu    sync.Mutex
	items map[string]model.Listing
}

func newMapCache() *mapCache { return &mapCache{items: map[string]model.Listing{}} }

func (c *mapCache) Get(_ context.Context, key string) (*model.Listing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.items[key]
	if !ok {
		return nil, false
	}
	return &l, true
}

func (c *mapCache) Set(_ context.Context, key string, value *model.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = *value
}

func (c *mapCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

var errStore = errors.New("store unavailable")
