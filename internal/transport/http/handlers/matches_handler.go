package handlers

import (
	"errors"
	"net/http"

	"github.com/avelichko/matchbook/internal/domain/enums"
	authsvc "github.com/avelichko/matchbook/internal/services/auth"
	matchessvc "github.com/avelichko/matchbook/internal/services/matches"
	"github.com/avelichko/matchbook/internal/transport/http/dto"
	httperrors "github.com/avelichko/matchbook/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	summaries, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
		default:
			writeUnavailable(w, "STORE_UNAVAILABLE", "failed to load matches")
		}
		return
	}

	items := make([]dto.MatchSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, dto.MatchSummaryResponse{
			MatchID:            s.MatchID,
			OtherUserID:        s.OtherUserID,
			OtherDisplayName:   s.OtherDisplayName,
			OtherAge:           s.OtherAge,
			OtherPhotoURL:      s.OtherPhotoURL,
			LastMessagePreview: s.LastMessagePreview,
			LastMessageAt:      s.LastMessageAt,
			UnreadCount:        s.UnreadCount,
			CreatedAt:          s.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Matches: items})
}

func (h *MatchesHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	matchID, ok := matchIDParam(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	if err := h.service.Unmatch(r.Context(), matchID, identity.UserID); err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid unmatch request")
		case errors.Is(err, matchessvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "match not found")
		case errors.Is(err, matchessvc.ErrNotParticipant):
			writeForbidden(w, "FORBIDDEN", "not a participant of this match")
		case errors.Is(err, matchessvc.ErrInactive):
			writeBadRequest(w, "MATCH_INACTIVE", "match is already inactive")
		default:
			writeUnavailable(w, "STORE_UNAVAILABLE", "failed to unmatch")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{
		MatchID: matchID,
		Status:  enums.MatchStatusInactive,
	})
}
