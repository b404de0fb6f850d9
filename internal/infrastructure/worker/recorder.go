package worker

import (
	"context"
	"fmt"
	"time"

	"btcprice-service/internal/application"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var _ application.Worker = (*Recorder)(nil)

// PriceRecorder persists the current price; *application.BitcoinService satisfies it.
type PriceRecorder interface {
	RecordPrice(ctx context.Context, idem *string) (application.RecordResult, error)
}

// Recorder stores the current price on a cron schedule.
type Recorder struct {
	Service  PriceRecorder
	Schedule string
	Timeout  time.Duration
	Log      *zap.Logger

	cron *cron.Cron
}

const defaultRecordTimeout = 10 * time.Second

// Init validates the schedule; Start calls it when needed.
func (w *Recorder) Init() error {
	if w.Log == nil {
		w.Log = zap.NewNop()
	}
	if w.Timeout <= 0 {
		w.Timeout = defaultRecordTimeout
	}
	if w.Schedule == "" {
		w.Schedule = "@every 1m"
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(w.Schedule, func() { w.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("recorder schedule %q: %w", w.Schedule, err)
	}
	w.cron = c
	return nil
}

func (w *Recorder) Start(ctx context.Context) {
	if w.cron == nil {
		if err := w.Init(); err != nil {
			w.Log.Error("recorder_init_failed", zap.Error(err))
			return
		}
	}
	w.cron.Start()
	w.Log.Info("recorder_started", zap.String("schedule", w.Schedule))
	<-ctx.Done()
	<-w.cron.Stop().Done()
	w.Log.Info("recorder_stopped")
}

// RunOnce records one price; failures are logged and the next tick tries again.
func (w *Recorder) RunOnce(ctx context.Context) {
	c, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()
	res, err := w.Service.RecordPrice(c, nil)
	if err != nil {
		w.Log.Warn("record_failed", zap.Error(err))
		return
	}
	w.Log.Info("record_done",
		zap.Int64("id", res.Record.ID),
		zap.Float64("price_usd", res.Record.PriceUSD),
	)
}
