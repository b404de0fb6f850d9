package provider

import (
	"context"
	"time"

	"btcprice-service/internal/application"
	"btcprice-service/internal/domain"
)

// Ensure Fake implements application.PriceSource.
var _ application.PriceSource = (*Fake)(nil)

// Fake quotes a fixed USD price with EUR and GBP derived from constant rates.
type Fake struct {
	usd float64
}

func NewFake(usd float64) *Fake { return &Fake{usd: usd} }

func (f *Fake) Fetch(context.Context) (domain.PriceSnapshot, error) {
	return domain.PriceSnapshot{
		Symbol: domain.SymbolBTC,
		Prices: domain.Prices{
			USD: f.usd,
			EUR: f.usd * 0.92,
			GBP: f.usd * 0.79,
		},
		LastUpdated: domain.FormatLastUpdated(time.Now().Unix()),
	}, nil
}
