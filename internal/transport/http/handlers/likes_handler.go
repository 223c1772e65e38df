package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/avelichko/matchbook/internal/services/auth"
	likessvc "github.com/avelichko/matchbook/internal/services/likes"
	"github.com/avelichko/matchbook/internal/transport/http/dto"
	httperrors "github.com/avelichko/matchbook/internal/transport/http/errors"
)

const incomingLikesLimit = 50

type LikesHandler struct {
	service *likessvc.Service
}

func NewLikesHandler(service *likessvc.Service) *LikesHandler {
	return &LikesHandler{service: service}
}

func (h *LikesHandler) Record(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "LIKES_SERVICE_UNAVAILABLE", "likes service is unavailable")
		return
	}

	var req dto.RecordLikeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "BAD_JSON", "failed to parse request body")
		return
	}

	result, err := h.service.Record(r.Context(), identity.UserID, req.ToUserID)
	if err != nil {
		if tooFast, ok := likessvc.IsTooFast(err); ok {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_FAST",
				Message:       "slow down",
				RetryAfterSec: tooFast.RetryAfter(),
			})
			return
		}
		switch {
		case errors.Is(err, likessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid like request")
		case errors.Is(err, likessvc.ErrSelfLike):
			writeBadRequest(w, "SELF_LIKE", "cannot like yourself")
		case errors.Is(err, likessvc.ErrTargetNotFound):
			writeNotFound(w, "NOT_FOUND", "target profile not found")
		default:
			writeUnavailable(w, "STORE_UNAVAILABLE", "failed to record like")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RecordLikeResponse{
		Liked:      result.Liked,
		IsNewMatch: result.IsNewMatch,
		MatchID:    result.MatchID,
	})
}

func (h *LikesHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "LIKES_SERVICE_UNAVAILABLE", "likes service is unavailable")
		return
	}

	likes, err := h.service.Incoming(r.Context(), identity.UserID, incomingLikesLimit)
	if err != nil {
		switch {
		case errors.Is(err, likessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid likes request")
		default:
			writeUnavailable(w, "STORE_UNAVAILABLE", "failed to load incoming likes")
		}
		return
	}

	items := make([]dto.IncomingLikeResponse, 0, len(likes))
	for _, like := range likes {
		items = append(items, dto.IncomingLikeResponse{
			UserID:      like.UserID,
			DisplayName: like.DisplayName,
			Age:         like.Age,
			City:        like.City,
			State:       like.State,
			PhotoURLs:   like.PhotoURLs,
			LikedAt:     like.LikedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.IncomingLikesResponse{Likes: items})
}
