package likes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelichko/matchbook/internal/domain/rules"
	pgrepo "github.com/avelichko/matchbook/internal/repo/postgres"
	ratesvc "github.com/avelichko/matchbook/internal/services/rate"
)

const incomingPhotoURLTTL = 5 * time.Minute

var (
	ErrValidation      = errors.New("validation error")
	ErrSelfLike        = errors.New("cannot like yourself")
	ErrTargetNotFound  = errors.New("target profile not found")
	ErrDependenciesNil = errors.New("likes dependencies are not configured")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type LedgerStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) error
	Exists(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (bool, error)
	ListIncomingProfiles(ctx context.Context, userID int64, limit int) ([]pgrepo.IncomingLikeRecord, error)
}

type MatchStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, userAID, userBID int64) (int64, bool, error)
}

type ProfileStore interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

type PhotoURLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Result struct {
	Liked      bool
	IsNewMatch bool
	MatchID    *int64
}

type IncomingProfile struct {
	UserID      int64
	DisplayName string
	Age         int
	City        string
	State       string
	PhotoURLs   []string
	LikedAt     time.Time
}

type Service struct {
	ledger      LedgerStore
	matches     MatchStore
	profiles    ProfileStore
	rateLimiter *ratesvc.Limiter
	photoSign   PhotoURLSigner
	runTx       func(ctx context.Context, fn func(tx pgx.Tx) error) error
}

func NewService(pool *pgxpool.Pool, ledger LedgerStore, matches MatchStore, profiles ProfileStore, rateLimiter *ratesvc.Limiter, photoSign PhotoURLSigner) *Service {
	return &Service{
		ledger:      ledger,
		matches:     matches,
		profiles:    profiles,
		rateLimiter: rateLimiter,
		photoSign:   photoSign,
		runTx: func(ctx context.Context, fn func(tx pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
	}
}

// Record registers a like and promotes it to a match when the reverse edge
// already exists. The like commits before the reciprocity check runs: with
// two users liking each other concurrently, whoever checks last is
// guaranteed to see both committed edges, and the canonical pair upsert
// converges double detection to one match row with exactly one
// IsNewMatch=true result. Checking inside the like's own transaction would
// let both sides miss each other's uncommitted edge and create no match
// at all.
func (s *Service) Record(ctx context.Context, fromUserID, toUserID int64) (Result, error) {
	if fromUserID <= 0 || toUserID <= 0 {
		return Result{}, ErrValidation
	}
	if fromUserID == toUserID {
		return Result{}, ErrSelfLike
	}
	if s.runTx == nil || s.ledger == nil || s.matches == nil {
		return Result{}, ErrDependenciesNil
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowLike(ctx, fromUserID)
		if err != nil {
			return Result{}, fmt.Errorf("check like rate: %w", err)
		}
		if !allowed {
			return Result{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	if s.profiles != nil {
		exists, err := s.profiles.Exists(ctx, toUserID)
		if err != nil {
			return Result{}, fmt.Errorf("check target profile: %w", err)
		}
		if !exists {
			return Result{}, ErrTargetNotFound
		}
	}

	err := s.runTx(ctx, func(tx pgx.Tx) error {
		if err := s.ledger.Upsert(ctx, tx, fromUserID, toUserID); err != nil {
			return fmt.Errorf("record like: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	result := Result{Liked: true}
	err = s.runTx(ctx, func(tx pgx.Tx) error {
		mutual, err := s.ledger.Exists(ctx, tx, toUserID, fromUserID)
		if err != nil {
			return fmt.Errorf("check reciprocal like: %w", err)
		}
		if !mutual {
			return nil
		}

		a, b := rules.CanonicalPair(fromUserID, toUserID)
		matchID, isNew, err := s.matches.Upsert(ctx, tx, a, b)
		if err != nil {
			return fmt.Errorf("record match: %w", err)
		}
		result.MatchID = &matchID
		result.IsNewMatch = isNew
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

func (s *Service) Incoming(ctx context.Context, userID int64, limit int) ([]IncomingProfile, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.ledger == nil {
		return nil, ErrDependenciesNil
	}

	records, err := s.ledger.ListIncomingProfiles(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list incoming likes: %w", err)
	}

	items := make([]IncomingProfile, 0, len(records))
	for _, rec := range records {
		items = append(items, IncomingProfile{
			UserID:      rec.FromUserID,
			DisplayName: rec.DisplayName,
			Age:         rec.Age,
			City:        rec.City,
			State:       rec.State,
			PhotoURLs:   s.signPhotos(ctx, rec.Photos),
			LikedAt:     rec.LikedAt,
		})
	}

	return items, nil
}

func (s *Service) signPhotos(ctx context.Context, keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if s.photoSign == nil || rules.AbsolutePhotoRef(key) {
			urls = append(urls, key)
			continue
		}
		signed, err := s.photoSign.PresignGet(ctx, key, incomingPhotoURLTTL)
		if err != nil {
			continue
		}
		urls = append(urls, signed)
	}
	return urls
}
