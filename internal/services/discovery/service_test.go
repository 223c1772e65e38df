package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelichko/matchbook/internal/domain/model"
	"github.com/avelichko/matchbook/internal/domain/rules"
	pgrepo "github.com/avelichko/matchbook/internal/repo/postgres"
)

type fakeCandidateStore struct {
	candidates []model.Profile
	gotAgeMin  int
	gotAgeMax  int
}

func (f *fakeCandidateStore) ListCandidates(_ context.Context, _ int64, ageMin, ageMax, _ int) ([]model.Profile, error) {
	f.gotAgeMin = ageMin
	f.gotAgeMax = ageMax
	return f.candidates, nil
}

type fakeProfileStore struct {
	profiles map[int64]model.Profile
}

func (f *fakeProfileStore) Get(_ context.Context, userID int64) (model.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

type fakeFilterStore struct {
	filters model.FilterSettings
	err     error
}

func (f *fakeFilterStore) Get(_ context.Context, _ int64) (model.FilterSettings, error) {
	if f.err != nil {
		return model.FilterSettings{}, f.err
	}
	return f.filters, nil
}

type fakeSigner struct{}

func (fakeSigner) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

// San Francisco viewer; candidates at known distances from it.
func testViewer() model.Profile {
	return model.Profile{UserID: 1, DisplayName: "Viewer", Age: 28, Lat: 37.7749, Lon: -122.4194}
}

func candidateAt(id int64, name string, lat, lon float64) model.Profile {
	return model.Profile{
		UserID:      id,
		DisplayName: name,
		Age:         27,
		Lat:         lat,
		Lon:         lon,
		Photos:      []string{"photos/p.jpg"},
	}
}

func newTestService(cands *fakeCandidateStore, filters *fakeFilterStore) *Service {
	profiles := &fakeProfileStore{profiles: map[int64]model.Profile{1: testViewer()}}
	return NewService(cands, profiles, filters, fakeSigner{}, Config{PageSize: 3})
}

func TestSelectPrefersCandidatesInRange(t *testing.T) {
	cands := &fakeCandidateStore{candidates: []model.Profile{
		candidateAt(10, "Oakland", 37.8044, -122.2712),    // ~10 mi
		candidateAt(11, "San Jose", 37.3382, -121.8863),   // ~42 mi
		candidateAt(12, "Berkeley", 37.8715, -122.2730),   // ~11 mi
		candidateAt(13, "Sacramento", 38.5816, -121.4944), // ~75 mi
	}}
	filters := &fakeFilterStore{filters: model.FilterSettings{
		UserID: 1, AgeMin: 21, AgeMax: 35, MaxDistanceMiles: 25,
	}}

	res, err := newTestService(cands, filters).Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if res.Relaxed {
		t.Fatalf("expected strict page, got relaxed")
	}
	if len(res.Cards) != 2 {
		t.Fatalf("expected 2 in-range cards, got %d", len(res.Cards))
	}
	if res.Cards[0].UserID != 10 || res.Cards[1].UserID != 12 {
		t.Fatalf("expected nearest-first order [10 12], got [%d %d]", res.Cards[0].UserID, res.Cards[1].UserID)
	}
	if cands.gotAgeMin != 21 || cands.gotAgeMax != 35 {
		t.Fatalf("expected age bounds 21..35 pushed to store, got %d..%d", cands.gotAgeMin, cands.gotAgeMax)
	}
}

func TestSelectRelaxesDistanceWhenNobodyIsNear(t *testing.T) {
	cands := &fakeCandidateStore{candidates: []model.Profile{
		candidateAt(20, "Los Angeles", 34.0522, -118.2437), // ~347 mi
		candidateAt(21, "San Jose", 37.3382, -121.8863),    // ~42 mi
	}}
	filters := &fakeFilterStore{filters: model.FilterSettings{
		UserID: 1, AgeMin: 21, AgeMax: 35, MaxDistanceMiles: 25,
	}}

	res, err := newTestService(cands, filters).Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !res.Relaxed {
		t.Fatalf("expected relaxed page")
	}
	if len(res.Cards) != 2 {
		t.Fatalf("expected both fallback cards, got %d", len(res.Cards))
	}
	if res.Cards[0].UserID != 21 || res.Cards[1].UserID != 20 {
		t.Fatalf("expected nearest-first fallbacks [21 20], got [%d %d]", res.Cards[0].UserID, res.Cards[1].UserID)
	}
}

func TestSelectUnboundedDistanceTakesEveryone(t *testing.T) {
	cands := &fakeCandidateStore{candidates: []model.Profile{
		candidateAt(30, "New York", 40.7128, -74.0060),
		candidateAt(31, "Oakland", 37.8044, -122.2712),
	}}
	filters := &fakeFilterStore{filters: model.FilterSettings{
		UserID: 1, AgeMin: 21, AgeMax: 35, MaxDistanceMiles: rules.UnboundedDistanceMiles,
	}}

	res, err := newTestService(cands, filters).Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if res.Relaxed {
		t.Fatalf("unbounded preference must not count as relaxed")
	}
	if len(res.Cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(res.Cards))
	}
}

func TestSelectTightCapKeepsOnlyNearCandidate(t *testing.T) {
	// Due north of the viewer: one degree of latitude is ~69 miles.
	near := candidateAt(60, "Near", 37.8473, -122.4194) // ~5 mi
	far := candidateAt(61, "Far", 38.4987, -122.4194)   // ~50 mi

	cands := &fakeCandidateStore{candidates: []model.Profile{far, near}}
	filters := &fakeFilterStore{filters: model.FilterSettings{
		UserID: 1, AgeMin: 25, AgeMax: 40, MaxDistanceMiles: 10,
	}}

	res, err := newTestService(cands, filters).Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if res.Relaxed {
		t.Fatalf("expected strict page, got relaxed")
	}
	if len(res.Cards) != 1 || res.Cards[0].UserID != 60 {
		t.Fatalf("expected only the 5-mile candidate, got %+v", res.Cards)
	}

	// With both candidates past the cap the page falls back to everyone,
	// still nearest first.
	cands.candidates = []model.Profile{
		candidateAt(62, "Eighty", 38.9329, -122.4194), // ~80 mi
		candidateAt(63, "Fifty", 38.4987, -122.4194),  // ~50 mi
	}
	res, err = newTestService(cands, filters).Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("select fallback: %v", err)
	}
	if !res.Relaxed {
		t.Fatalf("expected relaxed page")
	}
	if len(res.Cards) != 2 || res.Cards[0].UserID != 63 || res.Cards[1].UserID != 62 {
		t.Fatalf("expected [63 62] nearest first, got %+v", res.Cards)
	}
}

func TestSelectFiltersByEthnicityPreference(t *testing.T) {
	a := candidateAt(40, "A", 37.8044, -122.2712)
	a.Ethnicities = []string{"latino"}
	b := candidateAt(41, "B", 37.8715, -122.2730)
	b.Ethnicities = []string{"asian"}

	cands := &fakeCandidateStore{candidates: []model.Profile{a, b}}
	filters := &fakeFilterStore{filters: model.FilterSettings{
		UserID: 1, AgeMin: 21, AgeMax: 35, MaxDistanceMiles: 25,
		Ethnicities: []string{"asian"},
	}}

	res, err := newTestService(cands, filters).Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(res.Cards) != 1 || res.Cards[0].UserID != 41 {
		t.Fatalf("expected only candidate 41, got %+v", res.Cards)
	}
}

func TestSelectEmptyEthnicityPreferenceKeepsTaggedCandidates(t *testing.T) {
	tagged := candidateAt(44, "Tagged", 37.8044, -122.2712)
	tagged.Ethnicities = []string{"latino"}

	cands := &fakeCandidateStore{candidates: []model.Profile{tagged}}
	filters := &fakeFilterStore{filters: model.FilterSettings{
		UserID: 1, AgeMin: 21, AgeMax: 35, MaxDistanceMiles: 25,
	}}

	res, err := newTestService(cands, filters).Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(res.Cards) != 1 || res.Cards[0].UserID != 44 {
		t.Fatalf("empty preference set must not exclude tagged candidates, got %+v", res.Cards)
	}
}

func TestSelectUntaggedCandidateFailsEthnicityPreference(t *testing.T) {
	untagged := candidateAt(45, "Untagged", 37.8044, -122.2712)

	cands := &fakeCandidateStore{candidates: []model.Profile{untagged}}
	filters := &fakeFilterStore{filters: model.FilterSettings{
		UserID: 1, AgeMin: 21, AgeMax: 35, MaxDistanceMiles: 25,
		Ethnicities: []string{"asian"},
	}}

	res, err := newTestService(cands, filters).Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(res.Cards) != 0 {
		t.Fatalf("untagged candidate must not pass a non-empty preference set, got %+v", res.Cards)
	}
}

func TestSelectCapsPageSize(t *testing.T) {
	cands := &fakeCandidateStore{candidates: []model.Profile{
		candidateAt(50, "A", 37.8044, -122.2712),
		candidateAt(51, "B", 37.8715, -122.2730),
		candidateAt(52, "C", 37.6879, -122.4702),
		candidateAt(53, "D", 37.7652, -122.2416),
	}}
	filters := &fakeFilterStore{filters: model.FilterSettings{
		UserID: 1, AgeMin: 21, AgeMax: 35, MaxDistanceMiles: 25,
	}}

	res, err := newTestService(cands, filters).Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(res.Cards) != 3 {
		t.Fatalf("expected page capped at 3, got %d", len(res.Cards))
	}
}

func TestSelectFallsBackToDefaultFilters(t *testing.T) {
	cands := &fakeCandidateStore{candidates: nil}
	filters := &fakeFilterStore{err: errors.New("filters unavailable")}

	if _, err := newTestService(cands, filters).Select(context.Background(), 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if cands.gotAgeMin != rules.DefaultAgeMin || cands.gotAgeMax != rules.DefaultAgeMax {
		t.Fatalf("expected default age bounds %d..%d, got %d..%d",
			rules.DefaultAgeMin, rules.DefaultAgeMax, cands.gotAgeMin, cands.gotAgeMax)
	}
}

func TestSelectRequiresViewerProfile(t *testing.T) {
	svc := NewService(
		&fakeCandidateStore{},
		&fakeProfileStore{profiles: map[int64]model.Profile{}},
		&fakeFilterStore{},
		fakeSigner{},
		Config{},
	)

	if _, err := svc.Select(context.Background(), 1); !errors.Is(err, ErrProfileRequired) {
		t.Fatalf("expected ErrProfileRequired, got %v", err)
	}
	if _, err := svc.Select(context.Background(), 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero id, got %v", err)
	}
}

func TestSelectLeavesAbsolutePhotoURLsUnsigned(t *testing.T) {
	cand := candidateAt(70, "Mixed", 37.8044, -122.2712)
	cand.Photos = []string{"photos/a.jpg", "https://img.example.com/b.jpg"}

	cands := &fakeCandidateStore{candidates: []model.Profile{cand}}
	filters := &fakeFilterStore{filters: model.FilterSettings{
		UserID: 1, AgeMin: 21, AgeMax: 35, MaxDistanceMiles: 25,
	}}

	res, err := newTestService(cands, filters).Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(res.Cards) != 1 {
		t.Fatalf("expected one card, got %d", len(res.Cards))
	}
	want := []string{"https://cdn.test/photos/a.jpg", "https://img.example.com/b.jpg"}
	if got := res.Cards[0].PhotoURLs; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
