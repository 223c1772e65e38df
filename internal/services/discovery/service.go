package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/avelichko/matchbook/internal/domain/model"
	"github.com/avelichko/matchbook/internal/domain/rules"
	pgrepo "github.com/avelichko/matchbook/internal/repo/postgres"
)

const (
	candidateFetchLimit = 200
	cardPhotoURLTTL     = 5 * time.Minute
)

var (
	ErrValidation      = errors.New("validation error")
	ErrProfileRequired = errors.New("viewer profile required")
)

type CandidateStore interface {
	ListCandidates(ctx context.Context, viewerID int64, ageMin, ageMax, limit int) ([]model.Profile, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID int64) (model.Profile, error)
}

type FilterStore interface {
	Get(ctx context.Context, userID int64) (model.FilterSettings, error)
}

type PhotoURLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	PageSize        int
	DefaultAgeMin   int
	DefaultAgeMax   int
	DefaultDistance int
}

type Card struct {
	UserID        int64
	DisplayName   string
	Age           int
	Bio           string
	City          string
	State         string
	PhotoURLs     []string
	Ethnicities   []string
	Interests     []string
	DistanceMiles *float64
}

type Result struct {
	Cards []Card
	// Relaxed is true when no candidate sat inside the viewer's distance
	// preference and the page was filled with nearest-first fallbacks.
	Relaxed bool
}

type Service struct {
	candidates CandidateStore
	profiles   ProfileStore
	filters    FilterStore
	photoSign  PhotoURLSigner
	cfg        Config
}

func NewService(candidates CandidateStore, profiles ProfileStore, filters FilterStore, photoSign PhotoURLSigner, cfg Config) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = rules.DiscoveryPageSize
	}
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
		candidates: candidates,
		profiles:   profiles,
		filters:    filters,
		photoSign:  photoSign,
		cfg:        cfg,
	}
}

// Select builds the viewer's discovery page. Candidates inside the distance
// preference win; when none qualify the whole pool is offered instead so the
// page is never empty while candidates exist. Either way the page is sorted
// nearest first and capped at the configured size.
func (s *Service) Select(ctx context.Context, viewerID int64) (Result, error) {
	if viewerID <= 0 {
		return Result{}, ErrValidation
	}
	if s.candidates == nil || s.profiles == nil {
		return Result{}, fmt.Errorf("discovery dependencies are not configured")
	}

	viewer, err := s.profiles.Get(ctx, viewerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return Result{}, ErrProfileRequired
		}
		return Result{}, fmt.Errorf("load viewer profile: %w", err)
	}

	prefs := s.resolveFilters(ctx, viewerID)

	pool, err := s.candidates.ListCandidates(ctx, viewerID, prefs.AgeMin, prefs.AgeMax, candidateFetchLimit)
	if err != nil {
		return Result{}, fmt.Errorf("list candidates: %w", err)
	}

	type scored struct {
		profile  model.Profile
		distance *float64
	}

	viewerLocated := rules.ValidCoordinates(viewer.Lat, viewer.Lon)
	unbounded := rules.DistanceUnbounded(prefs.MaxDistanceMiles)

	all := make([]scored, 0, len(pool))
	inRange := make([]scored, 0, len(pool))
	for _, p := range pool {
		if !rules.SharesEthnicity(p.Ethnicities, prefs.Ethnicities) {
			continue
		}

		var dist *float64
		if viewerLocated && rules.ValidCoordinates(p.Lat, p.Lon) {
			d := rules.DistanceMiles(viewer.Lat, viewer.Lon, p.Lat, p.Lon)
			dist = &d
		}

		item := scored{profile: p, distance: dist}
		all = append(all, item)

		switch {
		case unbounded || !viewerLocated:
			inRange = append(inRange, item)
		case dist != nil && *dist <= float64(prefs.MaxDistanceMiles):
			inRange = append(inRange, item)
		}
	}

	page := inRange
	relaxed := false
	if len(page) == 0 && len(all) > 0 {
		page = all
		relaxed = true
	}

	sort.SliceStable(page, func(i, j int) bool {
		di, dj := page[i].distance, page[j].distance
		switch {
		case di == nil && dj == nil:
			return page[i].profile.UserID < page[j].profile.UserID
		case di == nil:
			return false
		case dj == nil:
			return true
		case *di != *dj:
			return *di < *dj
		default:
			return page[i].profile.UserID < page[j].profile.UserID
		}
	})

	if len(page) > s.cfg.PageSize {
		page = page[:s.cfg.PageSize]
	}

	cards := make([]Card, 0, len(page))
	for _, item := range page {
		cards = append(cards, Card{
			UserID:        item.profile.UserID,
			DisplayName:   item.profile.DisplayName,
			Age:           item.profile.Age,
			Bio:           item.profile.Bio,
			City:          item.profile.City,
			State:         item.profile.State,
			PhotoURLs:     s.signPhotos(ctx, item.profile.Photos),
			Ethnicities:   item.profile.Ethnicities,
			Interests:     item.profile.Interests,
			DistanceMiles: item.distance,
		})
	}

	return Result{Cards: cards, Relaxed: relaxed}, nil
}

func (s *Service) resolveFilters(ctx context.Context, viewerID int64) model.FilterSettings {
	defaults := model.FilterSettings{
		UserID:           viewerID,
		AgeMin:           s.cfg.DefaultAgeMin,
		AgeMax:           s.cfg.DefaultAgeMax,
		MaxDistanceMiles: s.cfg.DefaultDistance,
	}
	if s.filters == nil {
		return defaults
	}

	prefs, err := s.filters.Get(ctx, viewerID)
	if err != nil {
		return defaults
	}
	if !rules.ValidAgeRange(prefs.AgeMin, prefs.AgeMax) {
		prefs.AgeMin = defaults.AgeMin
		prefs.AgeMax = defaults.AgeMax
	}
	if !rules.ValidMaxDistance(prefs.MaxDistanceMiles) {
		prefs.MaxDistanceMiles = defaults.MaxDistanceMiles
	}

	return prefs
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
		signed, err := s.photoSign.PresignGet(ctx, key, cardPhotoURLTTL)
		if err != nil {
			continue
		}
		urls = append(urls, signed)
	}
	return urls
}
