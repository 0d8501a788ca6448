// Package scheduler runs the periodic sweeps of the inventory service.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/cache"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/notification"
	"github.com/fekuna/rims-inventory-service/internal/request"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	sweepLimit   = 500
	notifiedTTL  = 7 * 24 * time.Hour
	sweepTimeout = time.Minute
)

type Config struct {
	DelayedSweepCron string
	Location         *time.Location
}

// Scheduler publishes a delayed notification once for every line item that has waited too long.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	requests request.UseCase
	notifier notification.Notifier
	redis    *cache.RedisClient
	logger   logger.ZapLogger

	mu       sync.Mutex
	notified map[string]bool
}

// NewScheduler builds the scheduler. redis may be nil; dedupe then lives in memory only.
func NewScheduler(cfg Config, requests request.UseCase, notifier notification.Notifier, redis *cache.RedisClient, log logger.ZapLogger) *Scheduler {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	schedule := cfg.DelayedSweepCron
	if schedule == "" {
		schedule = "* * * * *"
	}
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: schedule,
		requests: requests,
		notifier: notifier,
		redis:    redis,
		logger:   log,
		notified: map[string]bool{},
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		return err
	}
	s.logger.Info("starting scheduler", zap.String("delayed_sweep", s.schedule))
	s.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	sent, err := s.SweepDelayed(ctx)
	if err != nil {
		s.logger.Error("delayed sweep failed", zap.Error(err))
		return
	}
	if sent > 0 {
		s.logger.Info("delayed sweep published notifications", zap.Int("count", sent))
	}
}

// SweepDelayed notifies every delayed line item not notified before and returns how many were sent.
func (s *Scheduler) SweepDelayed(ctx context.Context) (int, error) {
	items, err := s.requests.ListPendingQueue(ctx, sweepLimit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range items {
		item := &items[i]
		if item.Urgency != request.UrgencyDelayed {
			continue
		}
		first, err := s.markNotified(ctx, item)
		if err != nil {
			s.logger.Warn("delayed dedupe unavailable", zap.String("line_item_id", item.ItemID), zap.Error(err))
			continue
		}
		if !first {
			continue
		}
		if err := s.notifier.RequestDelayed(ctx, item); err != nil {
			s.logger.Warn("failed to publish delayed notification",
				zap.String("request_id", item.RequestID),
				zap.String("line_item_id", item.ItemID),
				zap.Error(err))
			s.unmark(ctx, item)
			continue
		}
		sent++
	}
	return sent, nil
}

func notifiedKey(item *model.QueueItem) string {
	return "notified:delayed:" + item.ItemID
}

// markNotified reports whether this call is the first to claim the item.
func (s *Scheduler) markNotified(ctx context.Context, item *model.QueueItem) (bool, error) {
	if s.redis != nil {
		return s.redis.Client.SetNX(ctx, notifiedKey(item), item.RequestID, notifiedTTL).Result()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notified[item.ItemID] {
		return false, nil
	}
	s.notified[item.ItemID] = true
	return true, nil
}

func (s *Scheduler) unmark(ctx context.Context, item *model.QueueItem) {
	if s.redis != nil {
		s.redis.Client.Del(ctx, notifiedKey(item))
		return
	}
	s.mu.Lock()
	delete(s.notified, item.ItemID)
	s.mu.Unlock()
}
