package application

import (
	"context"

	"btcprice-service/internal/domain"
)

// PriceSource performs one upstream lookup. Implementations return the
// domain upstream error types on failure and never retry.
//
//go:generate mockgen -source=source.go -destination=mock_source_test.go -package=application
type PriceSource interface {
	Fetch(ctx context.Context) (domain.PriceSnapshot, error)
}
