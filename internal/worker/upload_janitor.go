package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper deletes staged uploads older than maxAge.
type Sweeper interface {
	Sweep(maxAge time.Duration) (int, error)
}

// UploadJanitor periodically removes staged uploads that outlived their retention.
type UploadJanitor struct {
	sweeper   Sweeper
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewUploadJanitor(sweeper Sweeper, retention, interval time.Duration, logger *zap.Logger) *UploadJanitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadJanitor{
		sweeper:   sweeper,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

// Start runs one sweep immediately, then one per interval until ctx ends or Close is called.
func (j *UploadJanitor) Start(ctx context.Context) error {
	if j.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		j.sweep()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				j.sweep()
			}
		}
	}()

	return nil
}

func (j *UploadJanitor) sweep() {
	removed, err := j.sweeper.Sweep(j.retention)
	if err != nil {
		j.logger.Warn("sweep staged uploads failed", zap.Error(err))
	}
	if removed > 0 {
		j.logger.Info("removed expired uploads", zap.Int("count", removed))
	}
}

func (j *UploadJanitor) Close() {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()
}
