package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	assets, _ := newMemAssets()
	if err := assets.Store("photo.png", strings.NewReader("png")); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := assets.Store("logos/acme.png", strings.NewReader("logo")); err != nil {
		t.Fatalf("store: %v", err)
	}

	listings := func(variant model.Variant) *mockListingUsecase {
		return &mockListingUsecase{
			variant: variant,
			listFunc: func(context.Context, string) ([]*model.ListingView, error) {
				return []*model.ListingView{}, nil
			},
		}
	}
	users := &mockUserUsecase{
		getAllFunc: func(context.Context) ([]*model.User, error) { return []*model.User{}, nil },
	}

	return NewRouter(RouterDeps{
		CompanyListings: NewListingHandler(listings(model.CompanyListings), assets, ListingLabels{Plural: "Company properties"}, &testLogger),
		PrivateListings: NewListingHandler(listings(model.PrivateListings), assets, ListingLabels{Plural: "Private properties"}, &testLogger),
		Users:           NewUserHandler(users, assets, &testLogger),
		Uploads:         assets.FileSystem("/"),
		Logos:           assets.FileSystem("/logos"),
		Logger:          &testLogger,
	})
}

func TestRouter(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/health", http.StatusOK, `"ok"`},
		{"/api/company-properties", http.StatusOK, "Company properties fetched successfully"},
		{"/api/private-properties", http.StatusOK, "Private properties fetched successfully"},
		{"/api/users", http.StatusOK, "Users fetched successfully"},
		{"/uploads/photo.png", http.StatusOK, "png"},
		{"/uploads/logos/acme.png", http.StatusOK, "logo"},
		{"/logos/acme.png", http.StatusOK, "logo"},
		{"/uploads/missing.png", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		req.Header.Set("Origin", "http://example.com")
		router.ServeHTTP(rec, req)

		if rec.Code != tt.wantStatus {
			t.Errorf("[%s] expected status %d, got %d", tt.path, tt.wantStatus, rec.Code)
			continue
		}
		body, _ := io.ReadAll(rec.Body)
		if !strings.Contains(string(body), tt.wantBody) {
			t.Errorf("[%s] expected body to contain %q, got %q", tt.path, tt.wantBody, body)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("[%s] expected CORS header", tt.path)
		}
	}
}
