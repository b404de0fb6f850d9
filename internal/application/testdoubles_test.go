package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"btcprice-service/internal/domain"

	"github.com/shopspring/decimal"
)

var sampleSnapshot = domain.PriceSnapshot{
	Symbol:      domain.SymbolBTC,
	Prices:      domain.Prices{USD: 65000.5, EUR: 60000.1, GBP: 52000.3},
	Change24h:   1.23,
	LastUpdated: "2023-11-14T22:13:20.000Z",
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// blockingSource counts calls and holds every Fetch until release is closed.
type blockingSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	out     domain.PriceSnapshot
}

func newBlockingSource(out domain.PriceSnapshot) *blockingSource {
	return &blockingSource{started: make(chan struct{}, 16), release: make(chan struct{}), out: out}
}

func (s *blockingSource) Fetch(context.Context) (domain.PriceSnapshot, error) {
	s.calls.Add(1)
	s.started <- struct{}{}
	<-s.release
	return s.out, nil
}

type staticSource struct {
	out domain.PriceSnapshot
	err error
}

func (s staticSource) Fetch(context.Context) (domain.PriceSnapshot, error) { return s.out, s.err }

type fakePublisher struct {
	mu  sync.Mutex
	got []domain.PriceSnapshot
	err error
}

func (p *fakePublisher) Publish(_ context.Context, snap domain.PriceSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, snap)
	return p.err
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	records []domain.PriceRecord
	stats   domain.PriceStatistics
	err     error
	limits  []int
}

func (f *fakeHistoryRepo) Insert(_ context.Context, snap domain.PriceSnapshot) (domain.PriceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.PriceRecord{}, f.err
	}
	rec := domain.PriceRecord{
		ID:         int64(len(f.records) + 1),
		PriceUSD:   snap.Prices.USD,
		PriceEUR:   snap.Prices.EUR,
		Change24h:  snap.Change24h,
		RecordedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeHistoryRepo) List(_ context.Context, limit int) ([]domain.PriceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeHistoryRepo) Recent(_ context.Context, limit int) ([]domain.RecentPrice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.RecentPrice
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, domain.RecentPrice{PriceUSD: f.records[i].PriceUSD, RecordedAt: f.records[i].RecordedAt})
	}
	return out, nil
}

func (f *fakeHistoryRepo) Statistics(context.Context) (domain.PriceStatistics, error) {
	if f.err != nil {
		return domain.PriceStatistics{}, f.err
	}
	return f.stats, nil
}

type fakeIdem struct {
	mu       sync.Mutex
	seen     map[string]bool
	err      error
	released []string
}

func (f *fakeIdem) TryReserve(_ context.Context, k string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[k] {
		return false, nil
	}
	f.seen[k] = true
	return true, nil
}

func (f *fakeIdem) Release(_ context.Context, k string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, k)
	f.released = append(f.released, k)
	return nil
}

// flakySource fails its first `failures` calls, then returns out.
type flakySource struct {
	calls    atomic.Int32
	failures int32
	err      error
	out      domain.PriceSnapshot
}

func (s *flakySource) Fetch(context.Context) (domain.PriceSnapshot, error) {
	if s.calls.Add(1) <= s.failures {
		return domain.PriceSnapshot{}, s.err
	}
	return s.out, nil
}

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}
