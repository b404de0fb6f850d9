package config

import "time"

// Pool settings for the price history database.
const (
	DefaultPGMaxConns    = 10
	DefaultPGMinConns    = 1
	DefaultPGConnTimeout = 5 * time.Second
	DefaultPGIdleTime    = 30 * time.Second
)
