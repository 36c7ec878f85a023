package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"partyplanner/internal/domain"
	"partyplanner/internal/store"

	"golang.org/x/sync/errgroup"
)

// Outcome labels recorded for a successful fetch; failures use the FetchErrorKind name.
const OutcomeOK = "ok"

// FetchObserver records the outcome and latency of each gateway call.
type FetchObserver interface {
	ObserveFetch(res domain.Resource, outcome string, elapsed time.Duration)
}

// Coordinator runs gateway reads and commits their results to the store.
// Every operation returns nil or a *domain.FetchError; the same message is
// also kept in the store's ErrorMessage for the banner.
type Coordinator struct {
	gateway        domain.PartyGateway
	store          *store.Store
	logger         *slog.Logger
	observer       FetchObserver
	contextTimeout time.Duration

	mu       sync.Mutex
	inFlight int
}

// NewCoordinator wires a coordinator. observer may be nil; timeout <= 0 means
// requests run until the parent context ends.
func NewCoordinator(gateway domain.PartyGateway, st *store.Store, logger *slog.Logger, observer FetchObserver, timeout time.Duration) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		gateway:        gateway,
		store:          st,
		logger:         logger,
		observer:       observer,
		contextTimeout: timeout,
	}
}

// GetParties replaces the party list.
func (c *Coordinator) GetParties(ctx context.Context) error {
	return c.fetch(ctx, domain.ResourceParties, func(ctx context.Context) (store.Change, error) {
		parties, err := c.gateway.ListParties(ctx)
		return store.WithParties(parties), err
	})
}

// GetParty fetches one party and makes it the selection. Overlapping calls are
// not sequenced: whichever resolves last is selected.
func (c *Coordinator) GetParty(ctx context.Context, id int64) error {
	return c.fetch(ctx, domain.ResourceParty, func(ctx context.Context) (store.Change, error) {
		party, err := c.gateway.GetParty(ctx, id)
		if err == nil && party == nil {
			err = domain.NewShapeError(domain.ResourceParty, nil)
		}
		return store.WithSelectedParty(party), err
	})
}

// GetRsvps replaces the rsvp list.
func (c *Coordinator) GetRsvps(ctx context.Context) error {
	return c.fetch(ctx, domain.ResourceRsvps, func(ctx context.Context) (store.Change, error) {
		rsvps, err := c.gateway.ListRsvps(ctx)
		return store.WithRsvps(rsvps), err
	})
}

// GetGuests replaces the guest list.
func (c *Coordinator) GetGuests(ctx context.Context) error {
	return c.fetch(ctx, domain.ResourceGuests, func(ctx context.Context) (store.Change, error) {
		guests, err := c.gateway.ListGuests(ctx)
		return store.WithGuests(guests), err
	})
}

// Startup loads parties, rsvps and guests concurrently and waits for all three.
// A failure does not cancel the other loads; the first failure is returned and
// every failure is logged and counted.
func (c *Coordinator) Startup(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.GetParties(ctx) })
	g.Go(func() error { return c.GetRsvps(ctx) })
	g.Go(func() error { return c.GetGuests(ctx) })
	return g.Wait()
}

// Refresh reloads the three collections; it is the user-triggered retry.
func (c *Coordinator) Refresh(ctx context.Context) error {
	return c.Startup(ctx)
}

func (c *Coordinator) fetch(ctx context.Context, res domain.Resource, call func(context.Context) (store.Change, error)) error {
	c.begin()

	if c.contextTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.contextTimeout)
		defer cancel()
	}

	start := time.Now()
	change, err := call(ctx)
	elapsed := time.Since(start)

	if err != nil {
		fe := domain.AsFetchError(res, err)
		c.observe(res, fe.Kind.String(), elapsed)
		c.logger.WarnContext(ctx, "fetch failed",
			"resource", string(res),
			"kind", fe.Kind.String(),
			"status", fe.Status,
			"err", fe.Err,
		)
		c.finish(store.WithErrorMessage(fe.Error()))
		return fe
	}

	c.observe(res, OutcomeOK, elapsed)
	c.logger.DebugContext(ctx, "fetch ok", "resource", string(res), "duration_ms", elapsed.Milliseconds())
	c.finish(change)
	return nil
}

// begin announces loading and clears the previous error.
func (c *Coordinator) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight++
	c.store.SetState(store.WithLoading(true), store.WithErrorMessage(""))
}

// finish commits change and keeps loading on while other fetches are pending.
func (c *Coordinator) finish(change store.Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	c.store.SetState(change, store.WithLoading(c.inFlight > 0))
}

func (c *Coordinator) observe(res domain.Resource, outcome string, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveFetch(res, outcome, elapsed)
	}
}
