package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/avelichko/matchbook/internal/services/auth"
	discoverysvc "github.com/avelichko/matchbook/internal/services/discovery"
	"github.com/avelichko/matchbook/internal/transport/http/dto"
	httperrors "github.com/avelichko/matchbook/internal/transport/http/errors"
)

type DiscoveryHandler struct {
	service *discoverysvc.Service
}

func NewDiscoveryHandler(service *discoverysvc.Service) *DiscoveryHandler {
	return &DiscoveryHandler{service: service}
}

func (h *DiscoveryHandler) Page(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DISCOVERY_SERVICE_UNAVAILABLE", "discovery service is unavailable")
		return
	}

	result, err := h.service.Select(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, discoverysvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid discovery request")
		case errors.Is(err, discoverysvc.ErrProfileRequired):
			writeBadRequest(w, "PROFILE_REQUIRED", "complete your profile before browsing")
		default:
			writeUnavailable(w, "STORE_UNAVAILABLE", "failed to load discovery page")
		}
		return
	}

	cards := make([]dto.DiscoveryCardResponse, 0, len(result.Cards))
	for _, card := range result.Cards {
		cards = append(cards, dto.DiscoveryCardResponse{
			UserID:        card.UserID,
			DisplayName:   card.DisplayName,
			Age:           card.Age,
			Bio:           card.Bio,
			City:          card.City,
			State:         card.State,
			PhotoURLs:     card.PhotoURLs,
			Ethnicities:   card.Ethnicities,
			Interests:     card.Interests,
			DistanceMiles: card.DistanceMiles,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.DiscoveryResponse{
		Cards:   cards,
		Relaxed: result.Relaxed,
	})
}
