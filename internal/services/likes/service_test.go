package likes

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/avelichko/matchbook/internal/repo/postgres"
)

type fakeLedger struct {
	edges map[[2]int64]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{edges: map[[2]int64]bool{}}
}

func (f *fakeLedger) Upsert(_ context.Context, _ pgx.Tx, from, to int64) error {
	f.edges[[2]int64{from, to}] = true
	return nil
}

func (f *fakeLedger) Exists(_ context.Context, _ pgx.Tx, from, to int64) (bool, error) {
	return f.edges[[2]int64{from, to}], nil
}

func (f *fakeLedger) ListIncomingProfiles(_ context.Context, _ int64, _ int) ([]pgrepo.IncomingLikeRecord, error) {
	return nil, nil
}

type fakeMatchRow struct {
	id     int64
	active bool
}

type fakeMatches struct {
	rows   map[[2]int64]*fakeMatchRow
	nextID int64
}

func newFakeMatches() *fakeMatches {
	return &fakeMatches{rows: map[[2]int64]*fakeMatchRow{}, nextID: 1}
}

func (f *fakeMatches) Upsert(_ context.Context, _ pgx.Tx, a, b int64) (int64, bool, error) {
	key := [2]int64{a, b}
	if row, ok := f.rows[key]; ok {
		if row.active {
			return row.id, false, nil
		}
		row.active = true
		return row.id, true, nil
	}
	id := f.nextID
	f.nextID++
	f.rows[key] = &fakeMatchRow{id: id, active: true}
	return id, true, nil
}

func (f *fakeMatches) deactivate(a, b int64) {
	if row, ok := f.rows[[2]int64{a, b}]; ok {
		row.active = false
	}
}

type fakeProfiles struct {
	known map[int64]bool
}

func (f *fakeProfiles) Exists(_ context.Context, userID int64) (bool, error) {
	return f.known[userID], nil
}

func newTestService(ledger *fakeLedger, matches *fakeMatches, profiles *fakeProfiles) *Service {
	svc := NewService(nil, ledger, matches, profiles, nil, nil)
	svc.runTx = func(ctx context.Context, fn func(tx pgx.Tx) error) error {
		return fn(nil)
	}
	return svc
}

func TestRecordOneDirectionalLike(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger, newFakeMatches(), &fakeProfiles{known: map[int64]bool{2: true}})

	res, err := svc.Record(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("record like: %v", err)
	}
	if !res.Liked || res.IsNewMatch || res.MatchID != nil {
		t.Fatalf("one-directional like must not match: %+v", res)
	}
	if !ledger.edges[[2]int64{1, 2}] {
		t.Fatalf("expected like edge 1->2 recorded")
	}
}

func TestRecordReciprocalLikeCreatesExactlyOneMatch(t *testing.T) {
	ledger := newFakeLedger()
	matches := newFakeMatches()
	profiles := &fakeProfiles{known: map[int64]bool{1: true, 2: true}}
	svc := newTestService(ledger, matches, profiles)

	if _, err := svc.Record(context.Background(), 2, 1); err != nil {
		t.Fatalf("record first like: %v", err)
	}

	res, err := svc.Record(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("record reciprocal like: %v", err)
	}
	if !res.IsNewMatch || res.MatchID == nil {
		t.Fatalf("expected new match on reciprocal like: %+v", res)
	}
	if len(matches.rows) != 1 {
		t.Fatalf("expected exactly one match row, got %d", len(matches.rows))
	}
	if _, ok := matches.rows[[2]int64{1, 2}]; !ok {
		t.Fatalf("expected canonical pair key (1,2), got %v", matches.rows)
	}
}

func TestRecordRepeatLikeDoesNotReannounceMatch(t *testing.T) {
	ledger := newFakeLedger()
	matches := newFakeMatches()
	profiles := &fakeProfiles{known: map[int64]bool{1: true, 2: true}}
	svc := newTestService(ledger, matches, profiles)

	if _, err := svc.Record(context.Background(), 2, 1); err != nil {
		t.Fatalf("record first like: %v", err)
	}
	first, err := svc.Record(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("record reciprocal like: %v", err)
	}

	repeat, err := svc.Record(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("record repeated like: %v", err)
	}
	if repeat.IsNewMatch {
		t.Fatalf("repeated like must not report a new match")
	}
	if repeat.MatchID == nil || *repeat.MatchID != *first.MatchID {
		t.Fatalf("repeated like must resolve to the same match id")
	}
	if len(matches.rows) != 1 {
		t.Fatalf("expected a single match row, got %d", len(matches.rows))
	}
}

type tracingLedger struct {
	*fakeLedger
	trace *[]string
}

func (l *tracingLedger) Upsert(ctx context.Context, tx pgx.Tx, from, to int64) error {
	*l.trace = append(*l.trace, "like")
	return l.fakeLedger.Upsert(ctx, tx, from, to)
}

func (l *tracingLedger) Exists(ctx context.Context, tx pgx.Tx, from, to int64) (bool, error) {
	*l.trace = append(*l.trace, "check")
	return l.fakeLedger.Exists(ctx, tx, from, to)
}

// The reciprocal check must run in a transaction of its own, after the like
// has committed. Checking inside the like's transaction lets two concurrent
// mutual likes each miss the other's uncommitted edge and create no match.
func TestRecordCommitsLikeBeforeReciprocalCheck(t *testing.T) {
	var trace []string
	ledger := &tracingLedger{fakeLedger: newFakeLedger(), trace: &trace}
	ledger.fakeLedger.edges[[2]int64{2, 1}] = true

	svc := NewService(nil, ledger, newFakeMatches(), &fakeProfiles{known: map[int64]bool{2: true}}, nil, nil)
	svc.runTx = func(ctx context.Context, fn func(tx pgx.Tx) error) error {
		trace = append(trace, "begin")
		err := fn(nil)
		trace = append(trace, "commit")
		return err
	}

	res, err := svc.Record(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("record like: %v", err)
	}
	if !res.IsNewMatch {
		t.Fatalf("expected match on reciprocal like: %+v", res)
	}

	want := []string{"begin", "like", "commit", "begin", "check", "commit"}
	if len(trace) != len(want) {
		t.Fatalf("expected trace %v, got %v", want, trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("expected trace %v, got %v", want, trace)
		}
	}
}

type lockedLedger struct {
	mu    sync.Mutex
	edges map[[2]int64]bool
}

func (l *lockedLedger) Upsert(_ context.Context, _ pgx.Tx, from, to int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.edges[[2]int64{from, to}] = true
	return nil
}

func (l *lockedLedger) Exists(_ context.Context, _ pgx.Tx, from, to int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.edges[[2]int64{from, to}], nil
}

func (l *lockedLedger) ListIncomingProfiles(_ context.Context, _ int64, _ int) ([]pgrepo.IncomingLikeRecord, error) {
	return nil, nil
}

type lockedMatches struct {
	mu     sync.Mutex
	inner  *fakeMatches
	newers int
}

func (m *lockedMatches) Upsert(ctx context.Context, tx pgx.Tx, a, b int64) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, isNew, err := m.inner.Upsert(ctx, tx, a, b)
	if isNew {
		m.newers++
	}
	return id, isNew, err
}

func TestConcurrentMutualLikesConvergeToOneMatch(t *testing.T) {
	ledger := &lockedLedger{edges: map[[2]int64]bool{}}
	matches := &lockedMatches{inner: newFakeMatches()}
	profiles := &fakeProfiles{known: map[int64]bool{1: true, 2: true}}

	svc := NewService(nil, ledger, matches, profiles, nil, nil)
	svc.runTx = func(ctx context.Context, fn func(tx pgx.Tx) error) error {
		return fn(nil)
	}

	var wg sync.WaitGroup
	for _, pair := range [][2]int64{{1, 2}, {2, 1}} {
		wg.Add(1)
		go func(from, to int64) {
			defer wg.Done()
			if _, err := svc.Record(context.Background(), from, to); err != nil {
				t.Errorf("record %d->%d: %v", from, to, err)
			}
		}(pair[0], pair[1])
	}
	wg.Wait()

	if len(matches.inner.rows) != 1 {
		t.Fatalf("expected exactly one match row, got %d", len(matches.inner.rows))
	}
	if matches.newers != 1 {
		t.Fatalf("expected exactly one new-match transition, got %d", matches.newers)
	}
}

func TestRecordReactivatesMatchAfterUnmatch(t *testing.T) {
	ledger := newFakeLedger()
	matches := newFakeMatches()
	profiles := &fakeProfiles{known: map[int64]bool{1: true, 2: true}}
	svc := newTestService(ledger, matches, profiles)

	if _, err := svc.Record(context.Background(), 2, 1); err != nil {
		t.Fatalf("record first like: %v", err)
	}
	first, err := svc.Record(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("record reciprocal like: %v", err)
	}
	if !first.IsNewMatch || first.MatchID == nil {
		t.Fatalf("expected initial match: %+v", first)
	}

	matches.deactivate(1, 2)

	relike, err := svc.Record(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("record re-like: %v", err)
	}
	if !relike.IsNewMatch {
		t.Fatalf("re-like after unmatch must report a new match transition")
	}
	if relike.MatchID == nil || *relike.MatchID != *first.MatchID {
		t.Fatalf("reactivation must keep the original match id")
	}
	if len(matches.rows) != 1 {
		t.Fatalf("expected the original row reactivated, got %d rows", len(matches.rows))
	}
}

func TestRecordRejectsSelfLike(t *testing.T) {
	svc := newTestService(newFakeLedger(), newFakeMatches(), &fakeProfiles{known: map[int64]bool{1: true}})

	if _, err := svc.Record(context.Background(), 1, 1); !errors.Is(err, ErrSelfLike) {
		t.Fatalf("expected ErrSelfLike, got %v", err)
	}
}

func TestRecordRejectsUnknownTarget(t *testing.T) {
	svc := newTestService(newFakeLedger(), newFakeMatches(), &fakeProfiles{known: map[int64]bool{}})

	if _, err := svc.Record(context.Background(), 1, 99); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
}

func TestRecordRejectsInvalidIDs(t *testing.T) {
	svc := newTestService(newFakeLedger(), newFakeMatches(), &fakeProfiles{known: map[int64]bool{}})

	if _, err := svc.Record(context.Background(), 0, 2); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Record(context.Background(), 1, -5); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTooFastErrorRetryAfter(t *testing.T) {
	var err error = TooFastError{RetryAfterSec: 7}

	tf, ok := IsTooFast(err)
	if !ok {
		t.Fatalf("expected IsTooFast to match")
	}
	if tf.RetryAfter() != 7 {
		t.Fatalf("expected retry after 7, got %d", tf.RetryAfter())
	}

	zero := TooFastError{}
	if zero.RetryAfter() != 1 {
		t.Fatalf("expected floor of 1 second, got %d", zero.RetryAfter())
	}
}
