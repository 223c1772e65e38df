package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/avelichko/matchbook/internal/domain/model"
	authsvc "github.com/avelichko/matchbook/internal/services/auth"
	matchessvc "github.com/avelichko/matchbook/internal/services/matches"
	messagessvc "github.com/avelichko/matchbook/internal/services/messages"
	"github.com/avelichko/matchbook/internal/transport/http/dto"
	httperrors "github.com/avelichko/matchbook/internal/transport/http/errors"
)

const subscribeHeartbeat = 25 * time.Second

type MessagesHandler struct {
	service *messagessvc.Service
}

func NewMessagesHandler(service *messagessvc.Service) *MessagesHandler {
	return &MessagesHandler{service: service}
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, matchID, ok := h.requireMatchRequest(w, r)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "BAD_JSON", "failed to parse request body")
		return
	}

	result, err := h.service.Append(r.Context(), matchID, identity.UserID, req.Content, req.ClientToken)
	if err != nil {
		h.writeMessagesError(w, err, "failed to send message")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SendMessageResponse{
		Message:   mapMessage(result.Message),
		Duplicate: result.Duplicate,
	})
}

func (h *MessagesHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, matchID, ok := h.requireMatchRequest(w, r)
	if !ok {
		return
	}

	sinceID := int64(0)
	if raw := r.URL.Query().Get("since_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid since_id")
			return
		}
		sinceID = parsed
	}

	rows, err := h.service.History(r.Context(), matchID, identity.UserID, sinceID)
	if err != nil {
		h.writeMessagesError(w, err, "failed to load history")
		return
	}

	items := make([]dto.MessageResponse, 0, len(rows))
	for _, msg := range rows {
		items = append(items, mapMessage(msg))
	}

	httperrors.Write(w, http.StatusOK, dto.MessageHistoryResponse{Messages: items})
}

func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, matchID, ok := h.requireMatchRequest(w, r)
	if !ok {
		return
	}

	marked, err := h.service.MarkRead(r.Context(), matchID, identity.UserID)
	if err != nil {
		h.writeMessagesError(w, err, "failed to mark messages read")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{Marked: marked})
}

// Subscribe streams conversation events as server-sent events until the
// client goes away.
func (h *MessagesHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	identity, matchID, ok := h.requireMatchRequest(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeInternal(w, "STREAMING_UNSUPPORTED", "response writer does not support streaming")
		return
	}

	events, cancel, err := h.service.Subscribe(r.Context(), matchID, identity.UserID)
	if err != nil {
		h.writeMessagesError(w, err, "failed to subscribe")
		return
	}
	defer cancel()

	// The server write timeout would cut the stream short.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(subscribeHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (h *MessagesHandler) requireMatchRequest(w http.ResponseWriter, r *http.Request) (authsvc.Identity, int64, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, 0, false
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return authsvc.Identity{}, 0, false
	}

	matchID, ok := matchIDParam(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return authsvc.Identity{}, 0, false
	}

	return identity, matchID, true
}

func (h *MessagesHandler) writeMessagesError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, messagessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message request")
	case errors.Is(err, messagessvc.ErrMatchInactive):
		writeBadRequest(w, "MATCH_INACTIVE", "match is inactive")
	case errors.Is(err, matchessvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "match not found")
	case errors.Is(err, matchessvc.ErrNotParticipant):
		writeForbidden(w, "FORBIDDEN", "not a participant of this match")
	case errors.Is(err, matchessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message request")
	default:
		writeUnavailable(w, "STORE_UNAVAILABLE", fallback)
	}
}

func mapMessage(msg model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        msg.ID,
		MatchID:   msg.MatchID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		IsRead:    msg.IsRead,
		CreatedAt: msg.CreatedAt,
	}
}
