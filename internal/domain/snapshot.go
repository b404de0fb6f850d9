package domain

import "time"

const (
	SymbolBTC = "BTC"

	// LastUpdatedLayout renders timestamps as UTC ISO-8601 with millisecond precision.
	LastUpdatedLayout = "2006-01-02T15:04:05.000Z"
)

type Prices struct {
	USD float64 `json:"usd"`
	EUR float64 `json:"eur"`
	GBP float64 `json:"gbp"`
}

// PriceSnapshot is the normalized price record handed to callers.
// It is a value type; a refresh replaces it wholesale.
type PriceSnapshot struct {
	Symbol      string  `json:"symbol"`
	Prices      Prices  `json:"prices"`
	Change24h   float64 `json:"change_24h"`
	LastUpdated string  `json:"last_updated"`
	Cached      bool    `json:"cached"`
}

// FormatLastUpdated converts upstream Unix seconds to the snapshot timestamp format.
func FormatLastUpdated(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).UTC().Format(LastUpdatedLayout)
}
