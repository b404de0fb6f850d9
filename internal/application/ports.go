package application

import (
	"context"

	"btcprice-service/internal/domain"
)

type PriceHistoryRepo interface {
	Insert(ctx context.Context, snap domain.PriceSnapshot) (domain.PriceRecord, error)
	List(ctx context.Context, limit int) ([]domain.PriceRecord, error)
	Recent(ctx context.Context, limit int) ([]domain.RecentPrice, error)
	Statistics(ctx context.Context) (domain.PriceStatistics, error)
}

// SnapshotPublisher fans freshly fetched snapshots out to other processes.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap domain.PriceSnapshot) error
}

// NoopPublisher drops every snapshot; used when redis is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.PriceSnapshot) error { return nil }
