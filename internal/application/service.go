package application

import (
	"context"
	"errors"
	"fmt"

	"btcprice-service/internal/domain"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
	RecentRecordsLimit  = 10
)

type BitcoinService struct {
	prices  *PriceCache
	history PriceHistoryRepo
	idem    IdempotencyStore
}

func NewBitcoinService(prices *PriceCache, history PriceHistoryRepo, idem IdempotencyStore) *BitcoinService {
	if idem == nil {
		idem = NoopIdempotency{}
	}
	return &BitcoinService{prices: prices, history: history, idem: idem}
}

// RecordResult is the outcome of persisting the current price.
type RecordResult struct {
	Record  domain.PriceRecord
	Current domain.PriceSnapshot
}

func (s *BitcoinService) CurrentPrice(ctx context.Context) (domain.PriceSnapshot, error) {
	return s.prices.Get(ctx)
}

// RecordPrice stores the current price in the history table. A non-empty
// idempotency key that was already used yields ErrConflict; a failed attempt
// releases its key so the client can retry with it.
func (s *BitcoinService) RecordPrice(ctx context.Context, idem *string) (RecordResult, error) {
	var key string
	if idem != nil && *idem != "" {
		key = idempotencyKey("record", *idem)
		ok, err := s.idem.TryReserve(ctx, key)
		if err != nil {
			return RecordResult{}, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !ok {
			return RecordResult{}, ErrConflict
		}
	}
	res, err := s.record(ctx)
	if err != nil && key != "" {
		if relErr := s.idem.Release(context.WithoutCancel(ctx), key); relErr != nil {
			err = errors.Join(err, fmt.Errorf("release idempotency key: %w", relErr))
		}
	}
	return res, err
}

func (s *BitcoinService) record(ctx context.Context) (RecordResult, error) {
	snap, err := s.prices.Get(ctx)
	if err != nil {
		return RecordResult{}, err
	}
	rec, err := s.history.Insert(ctx, snap)
	if err != nil {
		return RecordResult{}, fmt.Errorf("insert price record: %w", err)
	}
	return RecordResult{Record: rec, Current: snap}, nil
}

func (s *BitcoinService) History(ctx context.Context, limit int) ([]domain.PriceRecord, error) {
	return s.history.List(ctx, ClampHistoryLimit(limit))
}

// Stats gathers the current price, table aggregates and the latest records concurrently.
func (s *BitcoinService) Stats(ctx context.Context) (domain.PriceStats, error) {
	var out domain.PriceStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := s.prices.Get(gctx)
		out.Current = snap
		return err
	})
	g.Go(func() error {
		st, err := s.history.Statistics(gctx)
		out.Statistics = st
		return err
	})
	g.Go(func() error {
		recent, err := s.history.Recent(gctx, RecentRecordsLimit)
		out.RecentRecords = recent
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.PriceStats{}, err
	}
	if out.RecentRecords == nil {
		out.RecentRecords = []domain.RecentPrice{}
	}
	return out, nil
}

// ClampHistoryLimit maps missing or non-positive limits to the default and caps the rest.
func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
