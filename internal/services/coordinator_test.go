package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"partyplanner/internal/domain"
	"partyplanner/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger discards output so tests don't assert on log lines.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func strPtr(s string) *string { return &s }

// fakeGateway is an in-memory PartyGateway for tests.
type fakeGateway struct {
	mu         sync.Mutex
	parties    []domain.Party
	byID       map[int64]*domain.Party
	guests     []domain.Guest
	rsvps      []domain.Rsvp
	partiesErr error
	partyErr   error
	guestsErr  error
	rsvpsErr   error

	// gates, when set for an id, block GetParty until the channel is closed.
	gates   map[int64]chan struct{}
	started chan int64
	// partiesGate blocks ListParties until closed.
	partiesGate chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{byID: make(map[int64]*domain.Party)}
}

func (f *fakeGateway) ListParties(ctx context.Context) ([]domain.Party, error) {
	if f.partiesGate != nil {
		<-f.partiesGate
	}
	if f.partiesErr != nil {
		return nil, f.partiesErr
	}
	return f.parties, nil
}

func (f *fakeGateway) GetParty(ctx context.Context, id int64) (*domain.Party, error) {
	f.mu.Lock()
	gate := f.gates[id]
	f.mu.Unlock()
	if f.started != nil {
		f.started <- id
	}
	if gate != nil {
		<-gate
	}
	if f.partyErr != nil {
		return nil, f.partyErr
	}
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.NewStatusError(domain.ResourceParty, 404)
}

func (f *fakeGateway) ListRsvps(ctx context.Context) ([]domain.Rsvp, error) {
	if f.rsvpsErr != nil {
		return nil, f.rsvpsErr
	}
	return f.rsvps, nil
}

func (f *fakeGateway) ListGuests(ctx context.Context) ([]domain.Guest, error) {
	if f.guestsErr != nil {
		return nil, f.guestsErr
	}
	return f.guests, nil
}

// fakeObserver records ObserveFetch calls.
type fakeObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *fakeObserver) ObserveFetch(res domain.Resource, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, string(res)+":"+outcome)
}

func newCoordinator(gw domain.PartyGateway) (*Coordinator, *store.Store, *fakeObserver) {
	st := store.New()
	obs := &fakeObserver{}
	return NewCoordinator(gw, st, testLogger, obs, 0), st, obs
}

func TestCoordinator_GetParties(t *testing.T) {
	gw := newFakeGateway()
	gw.parties = []domain.Party{{ID: 1, Name: strPtr("Picnic")}, {ID: 2}}
	c, st, obs := newCoordinator(gw)

	var snaps []store.Snapshot
	st.Subscribe(func(s store.Snapshot) { snaps = append(snaps, s) })

	err := c.GetParties(context.Background())
	require.NoError(t, err)

	snap := st.Snapshot()
	assert.Equal(t, gw.parties, snap.Parties)
	assert.False(t, snap.Loading)
	assert.Equal(t, "", snap.ErrorMessage)
	assert.Equal(t, []string{"parties:ok"}, obs.calls)

	// initial render, loading announcement, commit
	require.Len(t, snaps, 3)
	assert.True(t, snaps[1].Loading)
	assert.Empty(t, snaps[1].Parties)
	assert.False(t, snaps[2].Loading)
	assert.Len(t, snaps[2].Parties, 2)
}

func TestCoordinator_GetParty_SetsSelection(t *testing.T) {
	gw := newFakeGateway()
	gw.byID[5] = &domain.Party{ID: 5, Name: strPtr("Gala")}
	c, st, _ := newCoordinator(gw)

	require.NoError(t, c.GetParty(context.Background(), 5))

	snap := st.Snapshot()
	require.NotNil(t, snap.SelectedParty)
	assert.Equal(t, int64(5), snap.SelectedParty.ID)
	assert.False(t, snap.Loading)
}

func TestCoordinator_GetParty_NilWithoutErrorIsShapeFailure(t *testing.T) {
	gw := &nilPartyGateway{fakeGateway: newFakeGateway()}
	c, st, _ := newCoordinator(gw)
	st.SetState(store.WithSelectedParty(&domain.Party{ID: 1}))

	err := c.GetParty(context.Background(), 9)
	require.Error(t, err)
	assert.Equal(t, "Unexpected response format for party.", err.Error())
	assert.Equal(t, int64(1), st.Snapshot().SelectedParty.ID)
}

type nilPartyGateway struct{ *fakeGateway }

func (g *nilPartyGateway) GetParty(context.Context, int64) (*domain.Party, error) { return nil, nil }

func TestCoordinator_FailureKeepsPreviousValues(t *testing.T) {
	gw := newFakeGateway()
	gw.parties = []domain.Party{{ID: 1}}
	gw.byID[1] = &domain.Party{ID: 1}
	gw.guests = []domain.Guest{{ID: 7}}
	c, st, obs := newCoordinator(gw)

	ctx := context.Background()
	require.NoError(t, c.GetParties(ctx))
	require.NoError(t, c.GetParty(ctx, 1))
	require.NoError(t, c.GetGuests(ctx))

	gw.guestsErr = domain.NewStatusError(domain.ResourceGuests, 500)
	var err error
	require.NotPanics(t, func() { err = c.GetGuests(ctx) })
	require.Error(t, err)

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, domain.KindStatus, fe.Kind)

	snap := st.Snapshot()
	assert.Equal(t, "Failed to fetch guests (500)", snap.ErrorMessage)
	assert.Equal(t, []domain.Party{{ID: 1}}, snap.Parties)
	require.NotNil(t, snap.SelectedParty)
	assert.Equal(t, int64(1), snap.SelectedParty.ID)
	assert.Equal(t, []domain.Guest{{ID: 7}}, snap.Guests)
	assert.False(t, snap.Loading)
	assert.Contains(t, obs.calls, "guests:status")
}

func TestCoordinator_UnknownErrorsBecomeNetworkFailures(t *testing.T) {
	gw := newFakeGateway()
	gw.rsvpsErr = errors.New("connection reset")
	c, st, obs := newCoordinator(gw)

	err := c.GetRsvps(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Error loading rsvps: connection reset", st.Snapshot().ErrorMessage)
	assert.Equal(t, []string{"rsvps:network"}, obs.calls)
}

func TestCoordinator_NextFetchClearsError(t *testing.T) {
	gw := newFakeGateway()
	gw.partiesErr = domain.NewShapeError(domain.ResourceParties, nil)
	c, st, _ := newCoordinator(gw)

	require.Error(t, c.GetParties(context.Background()))
	assert.Equal(t, "Unexpected response format for parties.", st.Snapshot().ErrorMessage)

	gw.partiesErr = nil
	gw.parties = []domain.Party{{ID: 3}}
	require.NoError(t, c.GetParties(context.Background()))
	assert.Equal(t, "", st.Snapshot().ErrorMessage)
	assert.Len(t, st.Snapshot().Parties, 1)
}

func TestCoordinator_Startup(t *testing.T) {
	gw := newFakeGateway()
	gw.parties = []domain.Party{{ID: 10}}
	gw.guests = []domain.Guest{{ID: 1, Name: strPtr("A")}}
	gw.rsvps = []domain.Rsvp{{GuestID: 1, EventID: 10}}
	c, st, obs := newCoordinator(gw)

	require.NoError(t, c.Startup(context.Background()))

	snap := st.Snapshot()
	assert.Equal(t, gw.parties, snap.Parties)
	assert.Equal(t, gw.guests, snap.Guests)
	assert.Equal(t, gw.rsvps, snap.Rsvps)
	assert.False(t, snap.Loading)
	assert.ElementsMatch(t, []string{"parties:ok", "rsvps:ok", "guests:ok"}, obs.calls)
}

func TestCoordinator_StartupPartialFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.parties = []domain.Party{{ID: 10}}
	gw.guestsErr = domain.NewStatusError(domain.ResourceGuests, 502)
	c, st, _ := newCoordinator(gw)

	err := c.Refresh(context.Background())
	require.Error(t, err)
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, domain.ResourceGuests, fe.Resource)

	snap := st.Snapshot()
	assert.Len(t, snap.Parties, 1)
	assert.NotNil(t, snap.Guests)
	assert.Empty(t, snap.Guests)
	assert.False(t, snap.Loading)
}

func TestCoordinator_StartupFailureDoesNotStopOtherLoads(t *testing.T) {
	gw := newFakeGateway()
	gw.partiesErr = domain.NewStatusError(domain.ResourceParties, 500)
	gw.rsvpsErr = domain.NewStatusError(domain.ResourceRsvps, 503)
	gw.guests = []domain.Guest{{ID: 1, Name: strPtr("A")}}
	c, st, obs := newCoordinator(gw)

	err := c.Startup(context.Background())
	require.Error(t, err)
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, []domain.Resource{domain.ResourceParties, domain.ResourceRsvps}, fe.Resource)

	assert.ElementsMatch(t, []string{"parties:status", "rsvps:status", "guests:ok"}, obs.calls)
	assert.Equal(t, gw.guests, st.Snapshot().Guests)
	assert.False(t, st.Snapshot().Loading)
}

func TestCoordinator_LoadingWhileAnyFetchPending(t *testing.T) {
	gw := newFakeGateway()
	gw.partiesGate = make(chan struct{})
	gw.guests = []domain.Guest{{ID: 1}}
	c, st, _ := newCoordinator(gw)

	done := make(chan error, 1)
	go func() { done <- c.GetParties(context.Background()) }()

	require.Eventually(t, func() bool { return st.Snapshot().Loading }, time.Second, time.Millisecond)

	require.NoError(t, c.GetGuests(context.Background()))
	assert.True(t, st.Snapshot().Loading, "parties still in flight")

	close(gw.partiesGate)
	require.NoError(t, <-done)
	assert.False(t, st.Snapshot().Loading)
}

// Overlapping selection fetches are not sequenced. The response that resolves
// last wins even when it belongs to the older request. A sequence guard would
// discard the stale response; the source design accepts the race.
func TestCoordinator_GetParty_LastResolvedWins(t *testing.T) {
	gw := newFakeGateway()
	gw.byID[1] = &domain.Party{ID: 1}
	gw.byID[2] = &domain.Party{ID: 2}
	gw.gates = map[int64]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	gw.started = make(chan int64, 2)
	c, st, _ := newCoordinator(gw)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = c.GetParty(context.Background(), 1) }()
	<-gw.started
	go func() { defer wg.Done(); _ = c.GetParty(context.Background(), 2) }()
	<-gw.started

	close(gw.gates[2])
	require.Eventually(t, func() bool {
		s := st.Snapshot()
		return s.SelectedParty != nil && s.SelectedParty.ID == 2
	}, time.Second, time.Millisecond)

	close(gw.gates[1])
	wg.Wait()

	snap := st.Snapshot()
	require.NotNil(t, snap.SelectedParty)
	assert.Equal(t, int64(1), snap.SelectedParty.ID, "older request resolved last and overwrote the newer selection")
	assert.False(t, snap.Loading)
}

func TestCoordinator_Timeout(t *testing.T) {
	gw := &slowGateway{fakeGateway: newFakeGateway()}
	st := store.New()
	c := NewCoordinator(gw, st, testLogger, nil, 10*time.Millisecond)

	err := c.GetParties(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, st.Snapshot().ErrorMessage, "Error loading parties")
}

type slowGateway struct{ *fakeGateway }

func (g *slowGateway) ListParties(ctx context.Context) ([]domain.Party, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
