package handlers

import (
	"errors"
	"net/http"

	"github.com/avelichko/matchbook/internal/domain/model"
	authsvc "github.com/avelichko/matchbook/internal/services/auth"
	profilessvc "github.com/avelichko/matchbook/internal/services/profiles"
	"github.com/avelichko/matchbook/internal/transport/http/dto"
	httperrors "github.com/avelichko/matchbook/internal/transport/http/errors"
)

type FiltersHandler struct {
	service *profilessvc.Service
}

func NewFiltersHandler(service *profilessvc.Service) *FiltersHandler {
	return &FiltersHandler{service: service}
}

func (h *FiltersHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILES_SERVICE_UNAVAILABLE", "profiles service is unavailable")
		return
	}

	filters, err := h.service.GetFilters(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, profilessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid filters request")
		default:
			writeUnavailable(w, "STORE_UNAVAILABLE", "failed to load filters")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, mapFilters(filters))
}

func (h *FiltersHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILES_SERVICE_UNAVAILABLE", "profiles service is unavailable")
		return
	}

	var req dto.SaveFiltersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "BAD_JSON", "failed to parse request body")
		return
	}

	saved, err := h.service.SaveFilters(r.Context(), model.FilterSettings{
		UserID:           identity.UserID,
		AgeMin:           req.AgeMin,
		AgeMax:           req.AgeMax,
		MaxDistanceMiles: req.MaxDistanceMiles,
		Ethnicities:      req.Ethnicities,
	})
	if err != nil {
		switch {
		case errors.Is(err, profilessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid filter values")
		default:
			writeUnavailable(w, "STORE_UNAVAILABLE", "failed to save filters")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, mapFilters(saved))
}

func mapFilters(f model.FilterSettings) dto.FiltersResponse {
	ethnicities := f.Ethnicities
	if ethnicities == nil {
		ethnicities = []string{}
	}
	return dto.FiltersResponse{
		AgeMin:           f.AgeMin,
		AgeMax:           f.AgeMax,
		MaxDistanceMiles: f.MaxDistanceMiles,
		Ethnicities:      ethnicities,
	}
}
