package messages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/matchbook/internal/domain/enums"
	"github.com/avelichko/matchbook/internal/domain/model"
	"github.com/avelichko/matchbook/internal/domain/rules"
	matchessvc "github.com/avelichko/matchbook/internal/services/matches"
)

const defaultHistoryLimit = 100

var (
	ErrValidation      = errors.New("validation error")
	ErrMatchInactive   = errors.New("match is inactive")
	ErrDependenciesNil = errors.New("messages dependencies are not configured")
)

type Store interface {
	Insert(ctx context.Context, matchID, senderID int64, content, clientToken string) (model.Message, bool, error)
	List(ctx context.Context, matchID int64, sinceID int64, limit int) ([]model.Message, error)
	MarkRead(ctx context.Context, matchID, readerID int64) (int64, error)
}

type Authorizer interface {
	Authorize(ctx context.Context, matchID, userID int64) (model.Match, error)
}

type Notifier interface {
	PublishMessage(ctx context.Context, matchID int64, payload []byte) error
	SubscribeMessages(ctx context.Context, matchID int64) (<-chan []byte, func(), error)
}

type Config struct {
	HistoryLimit int
}

// Event is the wire form of a conversation notification. The same shape is
// published to the fanout channel and streamed to subscribers.
type Event struct {
	ID        int64     `json:"id"`
	MatchID   int64     `json:"match_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type AppendResult struct {
	Message   model.Message
	Duplicate bool
}

type Service struct {
	store    Store
	auth     Authorizer
	notifier Notifier
	cfg      Config
}

func NewService(store Store, auth Authorizer, notifier Notifier, cfg Config) *Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}

	return &Service{
		store:    store,
		auth:     auth,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Append stores a message in the sender's match. A client token makes the
// call idempotent: retrying with the same token returns the stored message
// instead of appending twice. Fanout is best effort and never fails the
// append.
func (s *Service) Append(ctx context.Context, matchID, senderID int64, content, clientToken string) (AppendResult, error) {
	if s.store == nil || s.auth == nil {
		return AppendResult{}, ErrDependenciesNil
	}

	m, err := s.auth.Authorize(ctx, matchID, senderID)
	if err != nil {
		return AppendResult{}, err
	}
	if m.Status() != enums.MatchStatusActive {
		return AppendResult{}, ErrMatchInactive
	}

	normalized, ok := rules.NormalizeMessageContent(content)
	if !ok {
		return AppendResult{}, ErrValidation
	}
	if clientToken != "" {
		if _, err := uuid.Parse(clientToken); err != nil {
			return AppendResult{}, ErrValidation
		}
	}

	msg, duplicate, err := s.store.Insert(ctx, matchID, senderID, normalized, clientToken)
	if err != nil {
		return AppendResult{}, fmt.Errorf("append message: %w", err)
	}

	if !duplicate && s.notifier != nil {
		payload, err := json.Marshal(Event{
			ID:        msg.ID,
			MatchID:   msg.MatchID,
			SenderID:  msg.SenderID,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
		if err == nil {
			_ = s.notifier.PublishMessage(ctx, matchID, payload)
		}
	}

	return AppendResult{Message: msg, Duplicate: duplicate}, nil
}

// History returns the conversation in send order. Storage may hand back
// overlapping pages under retry, so rows are deduplicated by id before they
// leave the service.
func (s *Service) History(ctx context.Context, matchID, userID int64, sinceID int64) ([]model.Message, error) {
	if s.store == nil || s.auth == nil {
		return nil, ErrDependenciesNil
	}
	if sinceID < 0 {
		return nil, ErrValidation
	}

	if _, err := s.auth.Authorize(ctx, matchID, userID); err != nil {
		return nil, err
	}

	rows, err := s.store.List(ctx, matchID, sinceID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	seen := make(map[int64]struct{}, len(rows))
	out := rows[:0]
	for _, msg := range rows {
		if _, dup := seen[msg.ID]; dup {
			continue
		}
		seen[msg.ID] = struct{}{}
		out = append(out, msg)
	}

	return out, nil
}

// MarkRead flags everything the other party sent as read and returns how
// many messages changed state.
func (s *Service) MarkRead(ctx context.Context, matchID, readerID int64) (int64, error) {
	if s.store == nil || s.auth == nil {
		return 0, ErrDependenciesNil
	}

	if _, err := s.auth.Authorize(ctx, matchID, readerID); err != nil {
		return 0, err
	}

	n, err := s.store.MarkRead(ctx, matchID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}

	return n, nil
}

// Subscribe opens a live event stream for the match. Events can be lost
// while a subscriber is away; the sinceID parameter of History is the
// catch-up path.
func (s *Service) Subscribe(ctx context.Context, matchID, userID int64) (<-chan Event, func(), error) {
	if s.auth == nil || s.notifier == nil {
		return nil, nil, ErrDependenciesNil
	}

	m, err := s.auth.Authorize(ctx, matchID, userID)
	if err != nil {
		return nil, nil, err
	}
	if m.Status() != enums.MatchStatusActive {
		return nil, nil, ErrMatchInactive
	}

	raw, cancel, err := s.notifier.SubscribeMessages(ctx, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for payload := range raw {
			var ev Event
			if err := json.Unmarshal(payload, &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cancel, nil
}

var _ Authorizer = (*matchessvc.Service)(nil)
