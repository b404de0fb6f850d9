package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is one row of the recorded price history.
type PriceRecord struct {
	ID         int64     `json:"id"`
	PriceUSD   float64   `json:"price_usd"`
	PriceEUR   float64   `json:"price_eur"`
	Change24h  float64   `json:"change_24h"`
	RecordedAt time.Time `json:"recorded_at"`
}

type RecentPrice struct {
	PriceUSD   float64   `json:"price_usd"`
	RecordedAt time.Time `json:"recorded_at"`
}

// PriceStatistics aggregates the whole history table. Price fields are null
// while the table is empty.
type PriceStatistics struct {
	TotalRecords int64               `json:"total_records"`
	MinPrice     decimal.NullDecimal `json:"min_price"`
	MaxPrice     decimal.NullDecimal `json:"max_price"`
	AvgPrice     decimal.NullDecimal `json:"avg_price"`
	FirstRecord  *time.Time          `json:"first_record"`
	LastRecord   *time.Time          `json:"last_record"`
}

type PriceStats struct {
	Current       PriceSnapshot   `json:"current"`
	Statistics    PriceStatistics `json:"statistics"`
	RecentRecords []RecentPrice   `json:"recent_records"`
}
