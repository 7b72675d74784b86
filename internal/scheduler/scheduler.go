package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hanbit-systems/netstock/internal/config"
	"github.com/hanbit-systems/netstock/internal/domain/models"
	"github.com/hanbit-systems/netstock/internal/service/cablestock"
	"github.com/hanbit-systems/netstock/internal/service/inventory"
	"github.com/hanbit-systems/netstock/pkg/clients/notify"
)

// Scheduler manages the recurring housekeeping jobs: the stale inventory
// sweep and the month-end cable stock upload reminder.
type Scheduler struct {
	cron         *cron.Cron
	inventorySvc *inventory.Service
	cableSvc     *cablestock.Service
	notifier     notify.Client
	cfg          config.JobsConfig
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. The notifier may be nil;
// jobs then only log their findings.
func NewScheduler(cfg config.JobsConfig, inventorySvc *inventory.Service, cableSvc *cablestock.Service, notifier notify.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:         cron.New(),
		inventorySvc: inventorySvc,
		cableSvc:     cableSvc,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.StaleSweepSchedule, s.sweepStaleInventory); err != nil {
		s.logger.Error("failed to schedule stale inventory sweep", zap.Error(err))
	}
	if _, err := s.cron.AddFunc(s.cfg.UploadReminderSchedule, s.remindCableStockUpload); err != nil {
		s.logger.Error("failed to schedule upload reminder", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sweepStaleInventory() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	window := time.Duration(s.cfg.StaleAfterDays) * 24 * time.Hour
	stale, err := s.inventorySvc.Stale(ctx, window)
	if err != nil {
		s.logger.Error("stale inventory sweep failed", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		s.logger.Info("stale inventory sweep found nothing")
		return
	}

	lines := make([]string, 0, len(stale))
	for _, item := range stale {
		lines = append(lines, fmt.Sprintf("%s at %s (last updated %s)", item.Item, item.Location, item.Updated.Format("2006-01-02")))
	}
	s.logger.Info("stale inventory found", zap.Int("count", len(stale)))

	s.send(ctx, notify.Event{
		Type:    "inventory.stale",
		Subject: fmt.Sprintf("%d inventory items not reviewed in %d days", len(stale), s.cfg.StaleAfterDays),
		Message: strings.Join(lines, "\n"),
		Time:    time.Now().UTC(),
	})
}

func (s *Scheduler) remindCableStockUpload() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	month := models.MonthKey(time.Now())
	if _, err := s.cableSvc.Snapshot(ctx, month); err == nil {
		return
	} else if !errors.Is(err, models.ErrSnapshotNotFound) {
		s.logger.Error("upload reminder check failed", zap.Error(err))
		return
	}

	s.logger.Info("cable stock snapshot missing", zap.String("month", month))
	s.send(ctx, notify.Event{
		Type:    "cablestock.reminder",
		Subject: "cable stock upload missing",
		Message: fmt.Sprintf("No cable stock sheet has been uploaded for %s yet.", month),
		Time:    time.Now().UTC(),
	})
}

func (s *Scheduler) send(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, event); err != nil {
		s.logger.Error("notification failed", zap.String("type", event.Type), zap.Error(err))
	}
}
