package bootstrap

import (
	"context"
	"net/http"

	"btcprice-service/internal/application"
	"btcprice-service/internal/config"
	httpserver "btcprice-service/internal/infrastructure/http"
	"btcprice-service/internal/infrastructure/pg"
	"btcprice-service/internal/infrastructure/worker"

	"go.uber.org/zap"
)

// cleanups runs registered funcs in reverse order.
type cleanups []func()

func (c *cleanups) add(fn func()) { *c = append(*c, fn) }

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// Core is the part shared by the API and the recorder.
type Core struct {
	Config  config.Config
	Log     *zap.Logger
	DB      *pg.DB
	Service *application.BitcoinService
}

func buildCore(ctx context.Context) (Core, func(), error) {
	var cl cleanups
	fail := func(err error) (Core, func(), error) {
		cl.run()
		return Core{}, func() {}, err
	}

	cfg := ProvideConfig()
	log := ProvideLogger()

	db, closeDB, err := ProvideDB(ctx, log, cfg)
	if err != nil {
		return fail(err)
	}
	cl.add(closeDB)

	rdb, closeRedis, err := ProvideRedisClient(cfg)
	if err != nil {
		return fail(err)
	}
	cl.add(closeRedis)

	src, err := ProvidePriceSource(cfg)
	if err != nil {
		return fail(err)
	}
	msg := ProvideMessaging(rdb, log, cfg)
	cache := ProvidePriceCache(src, msg, log, cfg)
	svc := ProvideBitcoinService(cache, ProvideHistoryRepo(db), msg)

	return Core{Config: cfg, Log: log, DB: db, Service: svc}, cl.run, nil
}

// API is a ready-to-serve HTTP handler plus the settings main needs to run it.
type API struct {
	Config  config.Config
	Log     *zap.Logger
	Server  *httpserver.Server
	Handler http.Handler
}

func InitAPI(ctx context.Context) (API, func(), error) {
	core, cleanup, err := buildCore(ctx)
	if err != nil {
		return API{}, func() {}, err
	}
	cfg := core.Config
	srv := httpserver.NewServer(core.Service, httpserver.BuildInfo{
		Version:     cfg.APIVersion,
		Environment: cfg.Env,
	})
	srv.SetReadyCheck(core.DB.Ping)
	h := httpserver.NewRouter(srv, httpserver.RouterConfig{
		CORSOrigin:      cfg.CORSOrigin,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		HideErrors:      cfg.IsProduction(),
	})
	return API{Config: cfg, Log: core.Log, Server: srv, Handler: h}, cleanup, nil
}

func ProvideRecorder(svc *application.BitcoinService, log *zap.Logger, cfg config.Config) (*worker.Recorder, error) {
	w := &worker.Recorder{
		Service:  svc,
		Schedule: cfg.RecordSchedule,
		Timeout:  cfg.UpstreamTimeout * 2,
		Log:      log,
	}
	if err := w.Init(); err != nil {
		return nil, err
	}
	return w, nil
}
