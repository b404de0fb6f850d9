package httpserver

import (
	"context"
	"sync"
	"time"

	"btcprice-service/internal/application"
	"btcprice-service/internal/domain"

	"github.com/shopspring/decimal"
)

var testSnapshot = domain.PriceSnapshot{
	Symbol:      domain.SymbolBTC,
	Prices:      domain.Prices{USD: 65000.5, EUR: 60000.1, GBP: 52000.3},
	Change24h:   -0.42,
	LastUpdated: "2024-05-01T12:00:00.000Z",
}

type stubSource struct {
	out domain.PriceSnapshot
	err error
}

func (s stubSource) Fetch(context.Context) (domain.PriceSnapshot, error) { return s.out, s.err }

// memHistory keeps records in insertion order and serves them newest first.
type memHistory struct {
	mu      sync.Mutex
	rows    []domain.PriceRecord
	err     error
	lastLim int
}

func (m *memHistory) Insert(_ context.Context, snap domain.PriceSnapshot) (domain.PriceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.PriceRecord{}, m.err
	}
	rec := domain.PriceRecord{
		ID:         int64(len(m.rows) + 1),
		PriceUSD:   snap.Prices.USD,
		PriceEUR:   snap.Prices.EUR,
		Change24h:  snap.Change24h,
		RecordedAt: time.Date(2024, 5, 1, 12, 0, len(m.rows), 0, time.UTC),
	}
	m.rows = append(m.rows, rec)
	return rec, nil
}

func (m *memHistory) List(_ context.Context, limit int) ([]domain.PriceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLim = limit
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.PriceRecord{}
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.rows[i])
	}
	return out, nil
}

func (m *memHistory) Recent(ctx context.Context, limit int) ([]domain.RecentPrice, error) {
	rows, err := m.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RecentPrice, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.RecentPrice{PriceUSD: r.PriceUSD, RecordedAt: r.RecordedAt})
	}
	return out, nil
}

func (m *memHistory) Statistics(context.Context) (domain.PriceStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.PriceStatistics{}, m.err
	}
	st := domain.PriceStatistics{TotalRecords: int64(len(m.rows))}
	if len(m.rows) == 0 {
		return st, nil
	}
	lo, hi, sum := m.rows[0].PriceUSD, m.rows[0].PriceUSD, 0.0
	for _, r := range m.rows {
		if r.PriceUSD < lo {
			lo = r.PriceUSD
		}
		if r.PriceUSD > hi {
			hi = r.PriceUSD
		}
		sum += r.PriceUSD
	}
	first, last := m.rows[0].RecordedAt, m.rows[len(m.rows)-1].RecordedAt
	st.MinPrice = decimal.NewNullDecimal(decimal.NewFromFloat(lo))
	st.MaxPrice = decimal.NewNullDecimal(decimal.NewFromFloat(hi))
	st.AvgPrice = decimal.NewNullDecimal(decimal.NewFromFloat(sum / float64(len(m.rows))))
	st.FirstRecord, st.LastRecord = &first, &last
	return st, nil
}

type memIdem struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memIdem) TryReserve(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func newServer(src application.PriceSource, history *memHistory) *Server {
	cache := application.NewPriceCache(src)
	svc := application.NewBitcoinService(cache, history, &memIdem{})
	return NewServer(svc, BuildInfo{Version: "1.2.3", Environment: "test"})
}

func (m *memIdem) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
