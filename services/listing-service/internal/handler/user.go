package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/storage"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/usecase"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/validation"
)

var logoUploadRule = uploadRule{field: "logo", maxCount: 1, maxSize: maxLogoFileSize, allow: imageOnly}

const logoDir = "logos"

type UserHandler struct {
	usecase usecase.UserUsecase
	assets  storage.AssetStore
	logger  *zerolog.Logger
}

func NewUserHandler(userUsecase usecase.UserUsecase, assets storage.AssetStore, logger *zerolog.Logger) *UserHandler {
	return &UserHandler{
		usecase: userUsecase,
		assets:  assets,
		logger:  logger,
	}
}

// Routes returns the account routes, to be mounted under /api/users.
func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Register)
	r.Post("/verify", h.Verify)
	r.Get("/", h.List)
	r.Get("/id/{id}", h.GetByID)
	r.Get("/{phone}", h.GetByPhone)
	r.Put("/{phone}", h.UpdateProfile)
	r.Patch("/{phone}", h.Patch)
	r.Delete("/{phone}", h.Delete)
	return r
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var params usecase.RegisterParams

	logo, ok := h.readWrite(w, r, &params)
	if !ok {
		return
	}
	params.Logo = logo

	summary, err := h.usecase.Register(r.Context(), params)
	if err != nil {
		var verrs *validation.Errors

		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			writeJSON(w, http.StatusBadRequest, response{Success: boolPtr(false), Message: "All fields are required"})
		case errors.Is(err, usecase.ErrPhoneAlreadyRegistered):
			writeJSON(w, http.StatusConflict, response{Success: boolPtr(false), Message: "Phone number already registered"})
		case errors.As(err, &verrs):
			writeJSON(w, http.StatusBadRequest, response{
				Success: boolPtr(false),
				Message: "Validation error",
				Errors:  verrs.Fields,
			})
		default:
			writeInternalError(w, r, h.logger, err, "failed to register user", boolPtr(false))
		}
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Success: boolPtr(true),
		Message: "User created successfully. Verification code sent.",
		Data:    summary,
	})
}

func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var params usecase.VerifyParams
	if err := bind(r, &params); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "Invalid request body"})
		return
	}

	result, err := h.usecase.Verify(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingVerificationInput):
			writeJSON(w, http.StatusBadRequest, response{Message: "Phone and verification code are required"})
		case errors.Is(err, usecase.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, response{Message: "User not found"})
		case errors.Is(err, usecase.ErrInvalidVerificationCode):
			writeJSON(w, http.StatusUnauthorized, response{Message: "Invalid verification code"})
		default:
			writeInternalError(w, r, h.logger, err, "failed to verify user", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, response{
		Message: "User verified successfully",
		Data:    result.User,
		Token:   result.AccessToken,
	})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.usecase.GetAll(r.Context())
	if err != nil {
		writeInternalError(w, r, h.logger, err, "failed to list users", nil)
		return
	}

	writeJSON(w, http.StatusOK, response{Message: "Users fetched successfully", Data: users})
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.usecase.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err, "failed to get user", nil)
		return
	}

	writeJSON(w, http.StatusOK, response{Message: "User fetched successfully", Data: user})
}

func (h *UserHandler) GetByPhone(w http.ResponseWriter, r *http.Request) {
	user, err := h.usecase.GetByPhone(r.Context(), phoneParam(r))
	if err != nil {
		h.writeError(w, r, err, "failed to get user", nil)
		return
	}

	writeJSON(w, http.StatusOK, response{Message: "User fetched successfully", Data: user})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var params usecase.UpdateProfileParams
	if err := bind(r, &params); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "Invalid request body"})
		return
	}

	user, err := h.usecase.UpdateProfile(r.Context(), phoneParam(r), params)
	if err != nil {
		h.writeError(w, r, err, "failed to update profile", nil)
		return
	}

	writeJSON(w, http.StatusOK, response{Message: "Profile updated successfully", Data: user})
}

func (h *UserHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var params usecase.PatchUserParams

	logo, ok := h.readWrite(w, r, &params)
	if !ok {
		return
	}
	params.Logo = logo

	user, err := h.usecase.Patch(r.Context(), phoneParam(r), params)
	if err != nil {
		h.writeError(w, r, err, "failed to patch user", boolPtr(false))
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: boolPtr(true),
		Message: "User updated successfully",
		Data:    user,
	})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.usecase.DeleteByPhone(r.Context(), phoneParam(r))
	if err != nil {
		h.writeError(w, r, err, "failed to delete user", nil)
		return
	}

	writeJSON(w, http.StatusOK, response{Message: "User deleted successfully", Data: user})
}

// readWrite binds the text fields of a register or patch request into dst and stores
// an uploaded logo, returning its store path. It writes the error response itself and
// reports false when the request cannot proceed.
func (h *UserHandler) readWrite(w http.ResponseWriter, r *http.Request, dst any) (string, bool) {
	if err := parseMultipart(w, r, maxLogoFileSize+multipartMemory); err != nil {
		h.writeUploadError(w, err)
		return "", false
	}

	if err := bind(r, dst); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: boolPtr(false), Message: "Invalid request body"})
		return "", false
	}

	files, err := uploadedFiles(r, logoUploadRule)
	if err != nil {
		h.writeUploadError(w, err)
		return "", false
	}

	paths, err := saveFiles(h.assets, logoDir, files, logoFileName)
	if err != nil {
		writeInternalError(w, r, h.logger, err, "failed to store logo", boolPtr(false))
		return "", false
	}
	if len(paths) == 0 {
		return "", true
	}

	return paths[0], true
}

func (h *UserHandler) writeError(w http.ResponseWriter, r *http.Request, err error, msg string, success *bool) {
	var verrs *validation.Errors

	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, response{Success: success, Message: "User not found"})
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, response{Success: success, Message: "Validation error", Errors: verrs.Fields})
	case errors.Is(err, usecase.ErrPhoneAlreadyRegistered):
		writeJSON(w, http.StatusConflict, response{Success: success, Message: "Phone number already registered"})
	default:
		writeInternalError(w, r, h.logger, err, msg, success)
	}
}

func (h *UserHandler) writeUploadError(w http.ResponseWriter, err error) {
	fail := boolPtr(false)

	switch {
	case errors.Is(err, errFileTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, response{Success: fail, Message: "File too large"})
	case errors.Is(err, errUnsupportedMedia):
		writeJSON(w, http.StatusBadRequest, response{Success: fail, Message: "Only image files are allowed!"})
	case errors.Is(err, errTooManyFiles):
		writeJSON(w, http.StatusBadRequest, response{Success: fail, Message: err.Error()})
	default:
		writeJSON(w, http.StatusBadRequest, response{Success: fail, Message: "Invalid request body"})
	}
}

// phoneParam returns the unescaped phone path segment, so "%2B1415..." and "+1415..." match.
func phoneParam(r *http.Request) string {
	raw := chi.URLParam(r, "phone")
	if phone, err := url.PathUnescape(raw); err == nil {
		return phone
	}
	return raw
}
