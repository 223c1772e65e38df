package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avelichko/matchbook/internal/domain/model"
	"github.com/avelichko/matchbook/internal/domain/rules"
	pgrepo "github.com/avelichko/matchbook/internal/repo/postgres"
)

const (
	maxDisplayNameLength = 50
	maxBioLength         = 500
	maxPhotos            = 6
	profilePhotoURLTTL   = 10 * time.Minute
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

type Store interface {
	Get(ctx context.Context, userID int64) (model.Profile, error)
	Upsert(ctx context.Context, p model.Profile) (model.Profile, error)
	TouchLastActive(ctx context.Context, userID int64, at time.Time) error
	MarkTerminated(ctx context.Context, userID int64, at time.Time) (bool, error)
}

type FilterStore interface {
	Get(ctx context.Context, userID int64) (model.FilterSettings, error)
	Upsert(ctx context.Context, f model.FilterSettings) (model.FilterSettings, error)
}

type MatchStore interface {
	DeactivateAllForUser(ctx context.Context, userID int64) (int64, error)
}

type PhotoURLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	DefaultAgeMin   int
	DefaultAgeMax   int
	DefaultDistance int
}

type View struct {
	Profile   model.Profile
	PhotoURLs []string
}

type Service struct {
	store     Store
	filters   FilterStore
	matches   MatchStore
	photoSign PhotoURLSigner
	cfg       Config
	now       func() time.Time
}

func NewService(store Store, filters FilterStore, matches MatchStore, photoSign PhotoURLSigner, cfg Config) *Service {
	if cfg.DefaultAgeMin <= 0 {
		cfg.DefaultAgeMin = rules.DefaultAgeMin
	}
	if cfg.DefaultAgeMax <= 0 {
		cfg.DefaultAgeMax = rules.DefaultAgeMax
	}
	if cfg.DefaultDistance <= 0 {
		cfg.DefaultDistance = rules.DefaultMaxDistanceMiles
	}

	return &Service{
		store:     store,
		filters:   filters,
		matches:   matches,
		photoSign: photoSign,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (View, error) {
	if userID <= 0 {
		return View{}, ErrValidation
	}
	if s.store == nil {
		return View{}, fmt.Errorf("profiles store is not configured")
	}

	p, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return View{}, ErrNotFound
		}
		return View{}, fmt.Errorf("get profile: %w", err)
	}

	return View{Profile: p, PhotoURLs: s.signPhotos(ctx, p.Photos)}, nil
}

func (s *Service) Save(ctx context.Context, p model.Profile) (View, error) {
	if err := validateProfile(&p); err != nil {
		return View{}, err
	}
	if s.store == nil {
		return View{}, fmt.Errorf("profiles store is not configured")
	}

	saved, err := s.store.Upsert(ctx, p)
	if err != nil {
		return View{}, fmt.Errorf("save profile: %w", err)
	}

	return View{Profile: saved, PhotoURLs: s.signPhotos(ctx, saved.Photos)}, nil
}

func (s *Service) TouchActivity(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return nil
	}
	return s.store.TouchLastActive(ctx, userID, s.now().UTC())
}

// GetFilters returns the user's saved preferences, or the defaults when
// nothing was saved yet.
func (s *Service) GetFilters(ctx context.Context, userID int64) (model.FilterSettings, error) {
	if userID <= 0 {
		return model.FilterSettings{}, ErrValidation
	}
	if s.filters == nil {
		return s.defaultFilters(userID), nil
	}

	f, err := s.filters.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrFiltersNotFound) {
			return s.defaultFilters(userID), nil
		}
		return model.FilterSettings{}, fmt.Errorf("get filters: %w", err)
	}

	return f, nil
}

func (s *Service) SaveFilters(ctx context.Context, f model.FilterSettings) (model.FilterSettings, error) {
	if f.UserID <= 0 {
		return model.FilterSettings{}, ErrValidation
	}
	if !rules.ValidAgeRange(f.AgeMin, f.AgeMax) {
		return model.FilterSettings{}, ErrValidation
	}
	if !rules.ValidMaxDistance(f.MaxDistanceMiles) {
		return model.FilterSettings{}, ErrValidation
	}
	if s.filters == nil {
		return model.FilterSettings{}, fmt.Errorf("filters store is not configured")
	}

	for i, e := range f.Ethnicities {
		f.Ethnicities[i] = strings.ToLower(strings.TrimSpace(e))
	}

	saved, err := s.filters.Upsert(ctx, f)
	if err != nil {
		return model.FilterSettings{}, fmt.Errorf("save filters: %w", err)
	}

	return saved, nil
}

// Terminate soft deletes the account and turns off its matches. Purging the
// underlying rows is the cleanup job's business.
func (s *Service) Terminate(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("profiles store is not configured")
	}

	ok, err := s.store.MarkTerminated(ctx, userID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("terminate profile: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	if s.matches != nil {
		if _, err := s.matches.DeactivateAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("deactivate matches: %w", err)
		}
	}

	return nil
}

func (s *Service) defaultFilters(userID int64) model.FilterSettings {
	return model.FilterSettings{
		UserID:           userID,
		AgeMin:           s.cfg.DefaultAgeMin,
		AgeMax:           s.cfg.DefaultAgeMax,
		MaxDistanceMiles: s.cfg.DefaultDistance,
		Ethnicities:      []string{},
	}
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
		signed, err := s.photoSign.PresignGet(ctx, key, profilePhotoURLTTL)
		if err != nil {
			continue
		}
		urls = append(urls, signed)
	}
	return urls
}

func validateProfile(p *model.Profile) error {
	if p.UserID <= 0 {
		return ErrValidation
	}

	p.DisplayName = strings.TrimSpace(p.DisplayName)
	if p.DisplayName == "" || len([]rune(p.DisplayName)) > maxDisplayNameLength {
		return ErrValidation
	}
	if p.Age < rules.AgeFloor || p.Age > rules.AgeCeiling {
		return ErrValidation
	}

	p.Bio = strings.TrimSpace(p.Bio)
	if len([]rune(p.Bio)) > maxBioLength {
		return ErrValidation
	}
	if len(p.Photos) > maxPhotos {
		return ErrValidation
	}
	if (p.Lat != 0 || p.Lon != 0) && !rules.ValidCoordinates(p.Lat, p.Lon) {
		return ErrValidation
	}

	return nil
}
