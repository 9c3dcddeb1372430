package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/pastelaria-api/cache"
	"github.com/yeremiapane/pastelaria-api/utils"
)

const sweepTimeout = 30 * time.Second

// CacheSweeper periodically removes expired cache entries.
type CacheSweeper struct {
	Store    cache.Store
	StopChan chan struct{}
	Interval time.Duration
	stopOnce sync.Once
}

func NewCacheSweeper(store cache.Store, interval time.Duration) *CacheSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CacheSweeper{
		Store:    store,
		StopChan: make(chan struct{}),
		Interval: interval,
	}
}

func (cs *CacheSweeper) Start() {
	go func() {
		ticker := time.NewTicker(cs.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cs.SweepOnce(context.Background())
			case <-cs.StopChan:
				return
			}
		}
	}()
}

func (cs *CacheSweeper) Stop() {
	cs.stopOnce.Do(func() { close(cs.StopChan) })
}

// SweepOnce runs a single sweep and reports how many entries were removed.
func (cs *CacheSweeper) SweepOnce(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := cs.Store.Sweep(ctx)
	if err != nil {
		utils.ErrorLogger.Errorf("cache sweep failed: %v", err)
		return 0
	}
	if n > 0 {
		utils.InfoLogger.WithField("entries", n).Info("expired cache entries removed")
	}
	return n
}
