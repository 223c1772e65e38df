package handlers

import (
	"errors"
	"net/http"

	"github.com/avelichko/matchbook/internal/domain/model"
	authsvc "github.com/avelichko/matchbook/internal/services/auth"
	mediasvc "github.com/avelichko/matchbook/internal/services/media"
	profilessvc "github.com/avelichko/matchbook/internal/services/profiles"
	"github.com/avelichko/matchbook/internal/transport/http/dto"
	httperrors "github.com/avelichko/matchbook/internal/transport/http/errors"
)

const photoUploadMemoryLimit = 12 << 20

type ProfileHandler struct {
	service *profilessvc.Service
	media   *mediasvc.Service
}

func NewProfileHandler(service *profilessvc.Service, media *mediasvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service, media: media}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILES_SERVICE_UNAVAILABLE", "profiles service is unavailable")
		return
	}

	view, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		h.writeProfileError(w, err, "failed to load profile")
		return
	}

	// Opening the own profile counts as activity. Best effort.
	_ = h.service.TouchActivity(r.Context(), identity.UserID)

	httperrors.Write(w, http.StatusOK, mapProfile(view))
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILES_SERVICE_UNAVAILABLE", "profiles service is unavailable")
		return
	}

	var req dto.SaveProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "BAD_JSON", "failed to parse request body")
		return
	}

	profile := model.Profile{
		UserID:         identity.UserID,
		DisplayName:    req.DisplayName,
		Age:            req.Age,
		Bio:            req.Bio,
		City:           req.City,
		State:          req.State,
		Lat:            req.Lat,
		Lon:            req.Lon,
		Photos:         req.PhotoKeys,
		Ethnicities:    req.Ethnicities,
		Interests:      req.Interests,
		IsDiscoverable: true,
	}
	if req.IsDiscoverable != nil {
		profile.IsDiscoverable = *req.IsDiscoverable
	}

	view, err := h.service.Save(r.Context(), profile)
	if err != nil {
		h.writeProfileError(w, err, "failed to save profile")
		return
	}

	httperrors.Write(w, http.StatusOK, mapProfile(view))
}

func (h *ProfileHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILES_SERVICE_UNAVAILABLE", "profiles service is unavailable")
		return
	}

	if err := h.service.Terminate(r.Context(), identity.UserID); err != nil {
		h.writeProfileError(w, err, "failed to terminate account")
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *ProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.media == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	if err := r.ParseMultipartForm(photoUploadMemoryLimit); err != nil {
		writeBadRequest(w, "BAD_MULTIPART", "failed to parse multipart body")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "photo file is required")
		return
	}
	defer func() { _ = file.Close() }()

	photo, err := h.media.UploadPhoto(r.Context(), identity.UserID, header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, mediasvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid photo upload")
		default:
			writeUnavailable(w, "STORAGE_UNAVAILABLE", "failed to store photo")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UploadPhotoResponse{
		Key: photo.Key,
		URL: photo.URL,
	})
}

func (h *ProfileHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.media == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	var req dto.DeletePhotoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "BAD_JSON", "failed to parse request body")
		return
	}

	if err := h.media.DeletePhoto(r.Context(), identity.UserID, req.Key); err != nil {
		switch {
		case errors.Is(err, mediasvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid photo key")
		default:
			writeUnavailable(w, "STORAGE_UNAVAILABLE", "failed to delete photo")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *ProfileHandler) writeProfileError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, profilessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile payload")
	case errors.Is(err, profilessvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "profile not found")
	default:
		writeUnavailable(w, "STORE_UNAVAILABLE", fallback)
	}
}

func mapProfile(view profilessvc.View) dto.ProfileResponse {
	p := view.Profile
	return dto.ProfileResponse{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Age:         p.Age,
		Bio:         p.Bio,
		City:        p.City,
		State:       p.State,
		PhotoURLs:   view.PhotoURLs,
		Ethnicities: p.Ethnicities,
		Interests:   p.Interests,
		IsPremium:   p.IsPremium,
	}
}
