package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/storage"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/usecase"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/validation"
	"github.com/vasapolrittideah/property-listing-api/shared/middleware"
)

var listingUploadRules = []uploadRule{
	{field: "images", maxCount: maxListingImages, maxSize: maxListingFileSize, allow: imageOrVideo},
	{field: "video", maxCount: maxListingVideos, maxSize: maxListingFileSize, allow: imageOrVideo},
}

// ListingLabels names a listing family in response messages.
type ListingLabels struct {
	Singular string
	Plural   string
}

// ListingHandler serves one listing family over HTTP.
type ListingHandler struct {
	usecase usecase.ListingUsecase
	assets  storage.AssetStore
	labels  ListingLabels
	logger  *zerolog.Logger
}

func NewListingHandler(
	listingUsecase usecase.ListingUsecase,
	assets storage.AssetStore,
	labels ListingLabels,
	logger *zerolog.Logger,
) *ListingHandler {
	return &ListingHandler{
		usecase: listingUsecase,
		assets:  assets,
		labels:  labels,
		logger:  logger,
	}
}

// Routes returns the listing routes, to be mounted under the family's path.
func (h *ListingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Replace)
	r.Patch("/{id}", h.Patch)
	r.Delete("/{id}", h.Delete)
	return r
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ownerID := query.Get(h.usecase.Variant().OwnerField)
	if ownerID == "" {
		ownerID = query.Get("ownerId")
	}

	views, err := h.usecase.List(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, r, err, "failed to list listings")
		return
	}

	writeJSON(w, http.StatusOK, response{
		Message: h.labels.Plural + " fetched successfully",
		Data:    views,
	})
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.usecase.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err, "failed to get listing")
		return
	}

	writeJSON(w, http.StatusOK, response{
		Message: h.labels.Singular + " fetched successfully",
		Data:    view,
	})
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	params, uploads, ok := h.readWrite(w, r)
	if !ok {
		return
	}

	if h.usecase.Variant().OwnerField == model.OwnerFieldUser && params.UserID == nil {
		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			params.UserID = &claims.UserID
		}
	}

	listing, err := h.usecase.Create(r.Context(), params, uploads)
	if err != nil {
		h.discard(uploads)
		h.writeError(w, r, err, "failed to create listing")
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Message: h.labels.Singular + " created successfully",
		Data:    listing,
	})
}

func (h *ListingHandler) Replace(w http.ResponseWriter, r *http.Request) {
	params, uploads, ok := h.readWrite(w, r)
	if !ok {
		return
	}

	listing, err := h.usecase.Replace(r.Context(), chi.URLParam(r, "id"), params, uploads)
	if err != nil {
		h.discard(uploads)
		h.writeError(w, r, err, "failed to replace listing")
		return
	}

	writeJSON(w, http.StatusOK, response{
		Message: h.labels.Singular + " updated successfully",
		Data:    listing,
	})
}

func (h *ListingHandler) Patch(w http.ResponseWriter, r *http.Request) {
	params, uploads, ok := h.readWrite(w, r)
	if !ok {
		return
	}

	listing, err := h.usecase.Patch(r.Context(), chi.URLParam(r, "id"), params, uploads)
	if err != nil {
		h.discard(uploads)
		h.writeError(w, r, err, "failed to patch listing")
		return
	}

	writeJSON(w, http.StatusOK, response{
		Message: h.labels.Singular + " patched successfully",
		Data:    listing,
	})
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listing, err := h.usecase.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err, "failed to delete listing")
		return
	}

	writeJSON(w, http.StatusOK, response{
		Message: h.labels.Singular + " deleted successfully",
		Data:    listing,
	})
}

// readWrite parses the body of a create, replace or patch request and stores its files.
// It writes the error response itself and reports false when the request cannot proceed.
func (h *ListingHandler) readWrite(w http.ResponseWriter, r *http.Request) (usecase.ListingParams, usecase.Uploads, bool) {
	var params usecase.ListingParams
	var uploads usecase.Uploads

	maxBytes := int64(maxListingImages+maxListingVideos)*maxListingFileSize + multipartMemory
	if err := parseMultipart(w, r, maxBytes); err != nil {
		h.writeUploadError(w, err)
		return params, uploads, false
	}

	if err := bind(r, &params); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "Invalid request body"})
		return params, uploads, false
	}

	var saved []string
	for _, rule := range listingUploadRules {
		files, err := uploadedFiles(r, rule)
		if err != nil {
			removeFiles(h.assets, saved)
			h.writeUploadError(w, err)
			return params, uploads, false
		}

		paths, err := saveFiles(h.assets, "", files, mediaFileName)
		if err != nil {
			removeFiles(h.assets, saved)
			writeInternalError(w, r, h.logger, err, "failed to store upload", nil)
			return params, uploads, false
		}
		saved = append(saved, paths...)

		for _, p := range paths {
			if rule.field == "video" {
				uploads.Video = publicUploadPath(p)
			} else {
				uploads.Images = append(uploads.Images, publicUploadPath(p))
			}
		}
	}

	return params, uploads, true
}

// discard removes the files stored for a request whose write failed.
func (h *ListingHandler) discard(uploads usecase.Uploads) {
	paths := append([]string(nil), uploads.Images...)
	if uploads.Video != "" {
		paths = append(paths, uploads.Video)
	}

	for _, p := range paths {
		if err := h.assets.Delete(p); err != nil {
			h.logger.Warn().Err(err).Str("path", p).Msg("failed to delete upload")
		}
	}
}

func (h *ListingHandler) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verrs *validation.Errors

	switch {
	case errors.Is(err, usecase.ErrListingNotFound):
		writeJSON(w, http.StatusNotFound, response{Message: h.labels.Singular + " not found"})
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, response{Message: "Validation error", Errors: verrs.Fields})
	case errors.Is(err, usecase.ErrInvalidListing):
		writeJSON(w, http.StatusBadRequest, response{Message: err.Error()})
	default:
		writeInternalError(w, r, h.logger, err, msg, nil)
	}
}

func (h *ListingHandler) writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errFileTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, response{Message: "File too large"})
	case errors.Is(err, errUnsupportedMedia):
		writeJSON(w, http.StatusBadRequest, response{Message: "Only image and video files are allowed!"})
	case errors.Is(err, errTooManyFiles):
		writeJSON(w, http.StatusBadRequest, response{Message: err.Error()})
	default:
		writeJSON(w, http.StatusBadRequest, response{Message: "Invalid request body"})
	}
}
