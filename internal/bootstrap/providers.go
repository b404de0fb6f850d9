package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"btcprice-service/internal/application"
	"btcprice-service/internal/config"
	"btcprice-service/internal/infrastructure/httpx"
	"btcprice-service/internal/infrastructure/logx"
	"btcprice-service/internal/infrastructure/pg"
	"btcprice-service/internal/infrastructure/provider"
	redisstore "btcprice-service/internal/infrastructure/redis"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required")

// fakeUSD is the price quoted by PROVIDER=fake.
const fakeUSD = 65000

// Messaging groups the redis-backed collaborators. REDIS_ENABLED turns both
// off; IDEMPOTENCY_BACKEND=none turns off only the idempotency store.
type Messaging struct {
	Idem      application.IdempotencyStore
	Publisher application.SnapshotPublisher
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect pg: %w", err)
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

func ProvideHistoryRepo(db *pg.DB) application.PriceHistoryRepo { return pg.NewHistoryRepo(db) }

// ProvideRedisClient returns nil when REDIS_ENABLED is false.
func ProvideRedisClient(cfg config.Config) (*redis.Client, func(), error) {
	if !cfg.RedisEnabled {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }, nil
}

func ProvideMessaging(client *redis.Client, log *zap.Logger, cfg config.Config) Messaging {
	m := Messaging{Idem: application.NoopIdempotency{}, Publisher: application.NoopPublisher{}}
	if client == nil {
		if cfg.IdempotencyBackend == "redis" {
			log.Warn("redis disabled; idempotency keys are not enforced")
		}
		return m
	}
	m.Publisher = redisstore.NewPublisher(client, cfg.PriceChannel, cfg.PriceCacheTTL)
	if cfg.IdempotencyBackend == "redis" {
		m.Idem = redisstore.New(client, cfg.RedisTTL)
	}
	return m
}

func ProvidePriceSource(cfg config.Config) (application.PriceSource, error) {
	switch cfg.Provider {
	case "coingecko":
		return &provider.CoinGeckoProvider{
			BaseURL: cfg.CoinGeckoAPIBase,
			Client:  httpx.New(cfg.UpstreamTimeout, cfg.UpstreamUserAgent),
		}, nil
	case "fake":
		return provider.NewFake(fakeUSD), nil
	default:
		return nil, fmt.Errorf("unsupported PROVIDER=%q", cfg.Provider)
	}
}

func ProvidePriceCache(src application.PriceSource, m Messaging, log *zap.Logger, cfg config.Config) *application.PriceCache {
	return application.NewPriceCache(src,
		application.WithTTL(cfg.PriceCacheTTL),
		application.WithPublisher(m.Publisher),
		application.WithCacheLogger(log),
	)
}

func ProvideBitcoinService(cache *application.PriceCache, repo application.PriceHistoryRepo, m Messaging) *application.BitcoinService {
	return application.NewBitcoinService(cache, repo, m.Idem)
}
