package bootstrap

import (
	"context"
	"fmt"
)

type WorkerApp func(ctx context.Context) error

// InitRecorderApp wires the scheduled price recorder. The returned app
// blocks until ctx is done.
func InitRecorderApp(ctx context.Context) (WorkerApp, func(), error) {
	core, cleanup, err := buildCore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("init recorder: %w", err)
	}
	w, err := ProvideRecorder(core.Service, core.Log, core.Config)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init recorder: %w", err)
	}
	run := func(ctx context.Context) error {
		w.Start(ctx)
		return nil
	}
	return run, cleanup, nil
}
