package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/repository"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/storage"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/usecase"
)

// pngBytes is the smallest prefix mimetype recognises as image/png.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

var testLogger = zerolog.Nop()

type mockListingUsecase struct {
	variant     model.Variant
	listFunc    func(ctx context.Context, ownerID string) ([]*model.ListingView, error)
	getFunc     func(ctx context.Context, id string) (*model.ListingView, error)
	createFunc  func(ctx context.Context, params usecase.ListingParams, uploads usecase.Uploads) (*model.Listing, error)
	replaceFunc func(ctx context.Context, id string, params usecase.ListingParams, uploads usecase.Uploads) (*model.Listing, error)
	patchFunc   func(ctx context.Context, id string, params usecase.ListingParams, uploads usecase.Uploads) (*model.Listing, error)
	deleteFunc  func(ctx context.Context, id string) (*model.Listing, error)
}

func (m *mockListingUsecase) Variant() model.Variant { return m.variant }

func (m *mockListingUsecase) List(ctx context.Context, ownerID string) ([]*model.ListingView, error) {
	return m.listFunc(ctx, ownerID)
}

func (m *mockListingUsecase) GetByID(ctx context.Context, id string) (*model.ListingView, error) {
	return m.getFunc(ctx, id)
}

func (m *mockListingUsecase) Create(
	ctx context.Context,
	params usecase.ListingParams,
	uploads usecase.Uploads,
) (*model.Listing, error) {
	return m.createFunc(ctx, params, uploads)
}

func (m *mockListingUsecase) Replace(
	ctx context.Context,
	id string,
	params usecase.ListingParams,
	uploads usecase.Uploads,
) (*model.Listing, error) {
	return m.replaceFunc(ctx, id, params, uploads)
}

func (m *mockListingUsecase) Patch(
	ctx context.Context,
	id string,
	params usecase.ListingParams,
	uploads usecase.Uploads,
) (*model.Listing, error) {
	return m.patchFunc(ctx, id, params, uploads)
}

func (m *mockListingUsecase) Delete(ctx context.Context, id string) (*model.Listing, error) {
	return m.deleteFunc(ctx, id)
}

type mockUserUsecase struct {
	registerFunc      func(ctx context.Context, params usecase.RegisterParams) (*model.UserSummary, error)
	verifyFunc        func(ctx context.Context, params usecase.VerifyParams) (*usecase.VerifyResult, error)
	updateProfileFunc func(ctx context.Context, phone string, params usecase.UpdateProfileParams) (*model.User, error)
	patchFunc         func(ctx context.Context, phone string, params usecase.PatchUserParams) (*model.User, error)
	getAllFunc        func(ctx context.Context) ([]*model.User, error)
	getByIDFunc       func(ctx context.Context, id string) (*model.User, error)
	getByPhoneFunc    func(ctx context.Context, phone string) (*model.User, error)
	deleteFunc        func(ctx context.Context, phone string) (*model.User, error)
}

func (m *mockUserUsecase) Register(ctx context.Context, params usecase.RegisterParams) (*model.UserSummary, error) {
	return m.registerFunc(ctx, params)
}

func (m *mockUserUsecase) Verify(ctx context.Context, params usecase.VerifyParams) (*usecase.VerifyResult, error) {
	return m.verifyFunc(ctx, params)
}

func (m *mockUserUsecase) UpdateProfile(
	ctx context.Context,
	phone string,
	params usecase.UpdateProfileParams,
) (*model.User, error) {
	return m.updateProfileFunc(ctx, phone, params)
}

func (m *mockUserUsecase) Patch(ctx context.Context, phone string, params usecase.PatchUserParams) (*model.User, error) {
	return m.patchFunc(ctx, phone, params)
}

func (m *mockUserUsecase) GetAll(ctx context.Context) ([]*model.User, error) {
	return m.getAllFunc(ctx)
}

func (m *mockUserUsecase) GetByID(ctx context.Context, id string) (*model.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserUsecase) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	return m.getByPhoneFunc(ctx, phone)
}

func (m *mockUserUsecase) DeleteByPhone(ctx context.Context, phone string) (*model.User, error) {
	return m.deleteFunc(ctx, phone)
}

// memListingRepo keeps listings of one variant in memory.
type memListingRepo struct {
	mu       sync.Mutex
	variant  model.Variant
	listings map[bson.ObjectID]model.Listing
}

func newMemListingRepo(variant model.Variant) *memListingRepo {
	return &memListingRepo{variant: variant, listings: map[bson.ObjectID]model.Listing{}}
}

func (r *memListingRepo) find(id string) (model.Listing, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return model.Listing{}, repository.ErrInvalidID
	}
	l, ok := r.listings[oid]
	if !ok {
		return model.Listing{}, mongo.ErrNoDocuments
	}
	return l, nil
}

func (r *memListingRepo) ListListings(context.Context, repository.FilterListingsParams) ([]*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*model.Listing{}
	for _, l := range r.listings {
		if l.Status == r.variant.Status {
			l := l
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *memListingRepo) GetListing(_ context.Context, id string) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.find(id)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *memListingRepo) CreateListing(_ context.Context, listing *model.Listing) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing.ID = bson.NewObjectID()
	listing.Status = r.variant.Status
	listing.CreatedAt = time.Now().UTC()
	listing.UpdatedAt = listing.CreatedAt
	r.listings[listing.ID] = *listing
	return listing, nil
}

func (r *memListingRepo) ReplaceListing(_ context.Context, id string, listing *model.Listing) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, err := r.find(id)
	if err != nil {
		return nil, err
	}
	listing.ID = old.ID
	listing.Status = r.variant.Status
	r.listings[old.ID] = *listing
	return listing, nil
}

func (r *memListingRepo) UpdateListing(_ context.Context, id string, _ bson.M) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.find(id)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *memListingRepo) DeleteListing(_ context.Context, id string) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.find(id)
	if err != nil {
		return nil, err
	}
	delete(r.listings, l.ID)
	return &l, nil
}

// memUserRepo keeps accounts in memory keyed by phone.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]model.User{}}
}

func (r *memUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Phone]; ok {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
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

	for _, u := range r.users {
		if u.ID.Hex() == id {
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

func (r *memUserRepo) UpdateUserByPhone(
	_ context.Context,
	phone string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[phone]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if params.Verified != nil {
		u.Verified = *params.Verified
	}
	if params.ClearVerificationCode {
		u.VerificationCode = ""
	}
	if params.FullName != nil {
		u.FullName = *params.FullName
	}
	if params.CompanyName != nil {
		u.CompanyName = *params.CompanyName
	}
	if params.Logo != nil {
		u.Logo = *params.Logo
	}
	if params.FirstName != nil {
		u.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		u.LastName = *params.LastName
	}
	r.users[phone] = u
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

func newMemAssets() (*storage.LocalStore, afero.Fs) {
	fs := afero.NewMemMapFs()
	return storage.NewLocalStoreFs(fs), fs
}

type multipartFile struct {
	field   string
	name    string
	content []byte
}

// newMultipartRequest builds a multipart/form-data request from text fields and files.
func newMultipartRequest(
	t *testing.T,
	method, target string,
	fields map[string]string,
	files []multipartFile,
) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(f.content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeBody decodes a JSON response into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

// countFiles returns the number of regular files under dir of fs.
func countFiles(t *testing.T, fs afero.Fs, dir string) int {
	t.Helper()

	n := 0
	err := afero.Walk(fs, dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			n++
		}
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return n
}
