package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/avelichko/matchbook/internal/domain/model"
	authsvc "github.com/avelichko/matchbook/internal/services/auth"
	matchessvc "github.com/avelichko/matchbook/internal/services/matches"
	messagessvc "github.com/avelichko/matchbook/internal/services/messages"
)

type messageStoreStub struct {
	inserted []model.Message
}

func (s *messageStoreStub) Insert(_ context.Context, matchID, senderID int64, content, _ string) (model.Message, bool, error) {
	msg := model.Message{ID: int64(len(s.inserted) + 1), MatchID: matchID, SenderID: senderID, Content: content}
	s.inserted = append(s.inserted, msg)
	return msg, false, nil
}

func (s *messageStoreStub) List(context.Context, int64, int64, int) ([]model.Message, error) {
	return s.inserted, nil
}

func (s *messageStoreStub) MarkRead(context.Context, int64, int64) (int64, error) {
	return 0, nil
}

type authorizerStub struct {
	match model.Match
}

func (s authorizerStub) Authorize(_ context.Context, _, userID int64) (model.Match, error) {
	if userID != s.match.UserAID && userID != s.match.UserBID {
		return model.Match{}, matchessvc.ErrNotParticipant
	}
	return s.match, nil
}

func newMessagesRequest(t *testing.T, method, target string, body []byte, userID int64) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: userID}))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("matchID", "5")
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestSendMessageStoresTrimmedContent(t *testing.T) {
	store := &messageStoreStub{}
	svc := messagessvc.NewService(store, authorizerStub{
		match: model.Match{ID: 5, UserAID: 1, UserBID: 2, IsActive: true},
	}, nil, messagessvc.Config{})
	h := NewMessagesHandler(svc)

	body, _ := json.Marshal(map[string]any{"content": "  hello  "})
	rr := httptest.NewRecorder()
	h.Send(rr, newMessagesRequest(t, http.MethodPost, "/v1/matches/5/messages", body, 1))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var payload struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Duplicate bool `json:"duplicate"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Message.Content != "hello" {
		t.Fatalf("expected trimmed content, got %q", payload.Message.Content)
	}
	if payload.Duplicate {
		t.Fatalf("fresh send must not be marked duplicate")
	}
}

func TestSendMessageForbiddenForOutsider(t *testing.T) {
	svc := messagessvc.NewService(&messageStoreStub{}, authorizerStub{
		match: model.Match{ID: 5, UserAID: 1, UserBID: 2, IsActive: true},
	}, nil, messagessvc.Config{})
	h := NewMessagesHandler(svc)

	body, _ := json.Marshal(map[string]any{"content": "hi"})
	rr := httptest.NewRecorder()
	h.Send(rr, newMessagesRequest(t, http.MethodPost, "/v1/matches/5/messages", body, 9))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, http.StatusForbidden, rr.Body.String())
	}
}

func TestSendMessageRejectsInactiveMatch(t *testing.T) {
	svc := messagessvc.NewService(&messageStoreStub{}, authorizerStub{
		match: model.Match{ID: 5, UserAID: 1, UserBID: 2, IsActive: false},
	}, nil, messagessvc.Config{})
	h := NewMessagesHandler(svc)

	body, _ := json.Marshal(map[string]any{"content": "hi"})
	rr := httptest.NewRecorder()
	h.Send(rr, newMessagesRequest(t, http.MethodPost, "/v1/matches/5/messages", body, 1))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "MATCH_INACTIVE" {
		t.Fatalf("unexpected error code: got %q want %q", payload.Code, "MATCH_INACTIVE")
	}
}

func TestSendMessageRequiresAuth(t *testing.T) {
	svc := messagessvc.NewService(&messageStoreStub{}, authorizerStub{}, nil, messagessvc.Config{})
	h := NewMessagesHandler(svc)

	body, _ := json.Marshal(map[string]any{"content": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/v1/matches/5/messages", bytes.NewReader(body))

	rr := httptest.NewRecorder()
	h.Send(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}
