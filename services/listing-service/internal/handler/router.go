package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/property-listing-api/shared/middleware"
)

// RouterDeps holds everything the HTTP surface is built from. Tokens may be nil,
// in which case bearer tokens are not inspected.
type RouterDeps struct {
	CompanyListings *ListingHandler
	PrivateListings *ListingHandler
	Users           *UserHandler
	Uploads         http.FileSystem
	Logos           http.FileSystem
	Tokens          middleware.TokenParser
	Logger          *zerolog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{Message: "ok"})
	})

	r.Handle("/uploads/*", http.StripPrefix("/uploads", http.FileServer(deps.Uploads)))
	r.Handle("/logos/*", http.StripPrefix("/logos", http.FileServer(deps.Logos)))

	r.Route("/api", func(r chi.Router) {
		if deps.Tokens != nil {
			r.Use(middleware.OptionalJWT(deps.Tokens))
		}

		r.Mount("/company-properties", deps.CompanyListings.Routes())
		r.Mount("/private-properties", deps.PrivateListings.Routes())
		r.Mount("/users", deps.Users.Routes())
	})

	return r
}
