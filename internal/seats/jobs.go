package seats

import (
	"context"
	"sync"
	"time"

	"shelfkeeper/pkg/logger"
)

// SweepJob runs CancelExpired on a ticker. Runs never overlap: a tick that
// arrives while a sweep is in progress is skipped.
type SweepJob struct {
	service  Service
	interval time.Duration
	log      *logger.Logger

	running  sync.Mutex
	done     chan struct{}
	stopOnce sync.Once
}

func NewSweepJob(service Service, interval time.Duration, log *logger.Logger) *SweepJob {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &SweepJob{
		service:  service,
		interval: interval,
		log:      log.WithComponent("seat-sweep"),
		done:     make(chan struct{}),
	}
}

func (j *SweepJob) Start(ctx context.Context) {
	go j.loop(ctx)
	j.log.Info("Seat expiry sweep started", "interval", j.interval.String())
}

func (j *SweepJob) Stop() {
	j.stopOnce.Do(func() {
		close(j.done)
		j.log.Info("Seat expiry sweep stopped")
	})
}

func (j *SweepJob) loop(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, _, err := j.RunOnce(ctx); err != nil {
				j.log.ErrorWithContext(ctx, "Seat expiry sweep failed", err, nil)
			}
		case <-j.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce sweeps now unless another sweep holds the lock, in which case it
// returns ran=false without waiting.
func (j *SweepJob) RunOnce(ctx context.Context) (result *SweepResult, ran bool, err error) {
	if !j.running.TryLock() {
		return nil, false, nil
	}
	defer j.running.Unlock()

	result, err = j.service.CancelExpired(ctx)
	return result, true, err
}
