package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelichko/matchbook/internal/domain/enums"
	"github.com/avelichko/matchbook/internal/domain/model"
	"github.com/avelichko/matchbook/internal/domain/rules"
	pgrepo "github.com/avelichko/matchbook/internal/repo/postgres"
)

const (
	matchPhotoURLTTL = 5 * time.Minute
	previewRuneLimit = 80
)

var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("match not found")
	ErrNotParticipant = errors.New("not a participant")
	ErrInactive       = errors.New("match is inactive")
)

type Store interface {
	GetByID(ctx context.Context, matchID int64) (model.Match, error)
	ListActiveForUser(ctx context.Context, userID int64) ([]pgrepo.MatchSummaryRecord, error)
	Deactivate(ctx context.Context, matchID int64) error
}

type PhotoURLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Summary struct {
	MatchID            int64
	OtherUserID        int64
	OtherDisplayName   string
	OtherAge           int
	OtherPhotoURL      *string
	LastMessagePreview string
	LastMessageAt      *time.Time
	UnreadCount        int
	CreatedAt          time.Time
}

type Service struct {
	store     Store
	photoSign PhotoURLSigner
}

func NewService(store Store, photoSign PhotoURLSigner) *Service {
	return &Service{store: store, photoSign: photoSign}
}

// List returns the user's active conversations, most recently active first,
// with a trimmed preview of the latest message.
func (s *Service) List(ctx context.Context, userID int64) ([]Summary, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("matches store is not configured")
	}

	records, err := s.store.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	items := make([]Summary, 0, len(records))
	for _, rec := range records {
		items = append(items, Summary{
			MatchID:            rec.MatchID,
			OtherUserID:        rec.OtherUserID,
			OtherDisplayName:   rec.OtherDisplayName,
			OtherAge:           rec.OtherAge,
			OtherPhotoURL:      s.signFirstPhoto(ctx, rec.OtherPhotos),
			LastMessagePreview: trimPreview(rec.LastMessagePreview),
			LastMessageAt:      rec.LastMessageAt,
			UnreadCount:        rec.UnreadCount,
			CreatedAt:          rec.CreatedAt,
		})
	}

	return items, nil
}

// Authorize loads the match and verifies the user participates in it.
func (s *Service) Authorize(ctx context.Context, matchID, userID int64) (model.Match, error) {
	if matchID <= 0 || userID <= 0 {
		return model.Match{}, ErrValidation
	}
	if s.store == nil {
		return model.Match{}, fmt.Errorf("matches store is not configured")
	}

	m, err := s.store.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	if m.UserAID != userID && m.UserBID != userID {
		return model.Match{}, ErrNotParticipant
	}

	return m, nil
}

// Unmatch turns the match off for both participants. History is preserved
// until the cleanup job collects it.
func (s *Service) Unmatch(ctx context.Context, matchID, userID int64) error {
	m, err := s.Authorize(ctx, matchID, userID)
	if err != nil {
		return err
	}
	if m.Status() != enums.MatchStatusActive {
		return ErrInactive
	}

	if err := s.store.Deactivate(ctx, matchID); err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("unmatch: %w", err)
	}

	return nil
}

func (s *Service) signFirstPhoto(ctx context.Context, keys []string) *string {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if s.photoSign == nil || rules.AbsolutePhotoRef(key) {
			k := key
			return &k
		}
		signed, err := s.photoSign.PresignGet(ctx, key, matchPhotoURLTTL)
		if err != nil {
			continue
		}
		return &signed
	}
	return nil
}

func trimPreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewRuneLimit {
		return content
	}
	return string(runes[:previewRuneLimit])
}
