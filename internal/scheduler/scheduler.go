package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"PriceSniper/internal/calculator"
	"PriceSniper/internal/collector"
	"PriceSniper/internal/logger"
	"PriceSniper/internal/model"
	"PriceSniper/internal/notifier"
	"PriceSniper/internal/recorder"
	"PriceSniper/internal/watch"
)

// Scheduler manages the cron tasks and chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Watch     *watch.Manager
	Notifier  *notifier.TelegramNotifier // nil when Telegram is disabled
	Recorder  recorder.Recorder
	Ctx       context.Context
	Now       func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, wm *watch.Manager, tn *notifier.TelegramNotifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Watch:     wm,
		Notifier:  tn,
		Recorder:  rec,
		Ctx:       ctx,
		Now:       time.Now,
	}
}

// RegisterAll registers the snapshot and digest tasks.
func (s *Scheduler) RegisterAll(snapshotCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	if s.Notifier != nil {
		if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
			return fmt.Errorf("register digest task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.L.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.L.Info("scheduler stopped")
}

// RunDigestNow executes the digest task immediately (for RUN_ON_START).
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

// snapshotTask renders the dashboard and caches one reading per product.
func (s *Scheduler) snapshotTask() {
	logger.L.Info("running snapshot task")
	now := s.Now()
	dash, err := s.Collector.Dashboard(s.Ctx, s.Watch, now)
	if err != nil {
		logger.L.Errorf("snapshot dashboard: %v", err)
		return
	}
	for i := range dash.Cards {
		if err := s.Recorder.RecordReading(collector.Reading(&dash.Cards[i], now)); err != nil {
			logger.L.Errorf("record reading for product %d: %v", dash.Cards[i].Product.ID, err)
		}
	}
	logger.L.Infof("snapshot recorded %d readings", len(dash.Cards))
}

func (s *Scheduler) digestTask() {
	logger.L.Info("running digest task")
	dash, err := s.Collector.Dashboard(s.Ctx, s.Watch, s.Now())
	if err != nil {
		logger.L.Errorf("digest dashboard: %v", err)
		s.trySend(fmt.Sprintf("❌ Dashboard unavailable: %v", err))
		return
	}
	s.trySend(notifier.FormatDashboard(dash))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	name := strings.ToLower(fields[0])
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}
	args := fields[1:]

	switch name {
	case "/list", "/dashboard":
		return s.cmdList()
	case "/card":
		return s.cmdCard(args)
	case "/window":
		return s.cmdWindow(args)
	case "/track":
		return s.cmdTrack(args)
	case "/refresh":
		return s.cmdRefresh(args)
	case "/untrack":
		return s.cmdUntrack(args)
	case "/alert":
		return s.cmdAlert(args)
	case "/alerts":
		return s.cmdAlerts(args)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) cmdList() string {
	dash, err := s.Collector.Dashboard(s.Ctx, s.Watch, s.Now())
	if err != nil {
		logger.L.Errorf("list: %v", err)
		return fmt.Sprintf("❌ Dashboard unavailable: %v", err)
	}
	return notifier.FormatDashboard(dash)
}

func (s *Scheduler) cmdCard(args []string) string {
	id, err := productID(args)
	if err != nil {
		return err.Error()
	}
	if len(args) > 1 {
		if _, err := s.Watch.SetWindow(id, args[1]); err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
	}
	return s.renderCard(id)
}

func (s *Scheduler) cmdWindow(args []string) string {
	id, err := productID(args)
	if err != nil {
		return err.Error()
	}
	if len(args) < 2 {
		return fmt.Sprintf("Usage: /window %d &lt;7D|30D|3M|1Y|ALL&gt;", id)
	}
	w, err := s.Watch.SetWindow(id, args[1])
	if err != nil {
		return fmt.Sprintf("❌ %v", err)
	}
	return fmt.Sprintf("✅ #%d now shows %s of history", id, w)
}

func (s *Scheduler) cmdTrack(args []string) string {
	if len(args) == 0 {
		return "Usage: /track &lt;product url&gt;"
	}
	p, err := s.Collector.Fetcher.TrackProduct(s.Ctx, args[0])
	if err != nil {
		logger.L.Errorf("track %s: %v", args[0], err)
		return fmt.Sprintf("❌ Failed to add product: %v", err)
	}
	logger.L.Infof("tracking product %d: %s", p.ID, p.URL)
	return s.renderCard(p.ID)
}

func (s *Scheduler) cmdRefresh(args []string) string {
	if len(args) > 0 && strings.EqualFold(args[0], "all") {
		if err := s.Collector.Fetcher.RefreshAll(s.Ctx); err != nil {
			logger.L.Errorf("refresh all: %v", err)
			return fmt.Sprintf("❌ Tracker error: %v", err)
		}
		return "🔄 Price refresh queued for every product"
	}
	id, err := productID(args)
	if err != nil {
		return err.Error()
	}
	if err := s.Collector.Fetcher.RefreshProduct(s.Ctx, id); err != nil {
		return replyError(id, err)
	}
	return fmt.Sprintf("🔄 Price refresh queued for #%d", id)
}

func (s *Scheduler) cmdUntrack(args []string) string {
	id, err := productID(args)
	if err != nil {
		return err.Error()
	}
	if err := s.Collector.Fetcher.DeleteProduct(s.Ctx, id); err != nil {
		return replyError(id, err)
	}
	if err := s.Watch.Forget(id); err != nil {
		logger.L.Warnf("forget product %d: %v", id, err)
	}
	return fmt.Sprintf("🗑 Stopped tracking #%d", id)
}

func (s *Scheduler) cmdAlert(args []string) string {
	id, err := productID(args)
	if err != nil {
		return err.Error()
	}
	p, err := s.Collector.Fetcher.GetProduct(s.Ctx, id)
	if err != nil {
		return replyError(id, err)
	}

	target := calculator.SuggestedTarget(p.CurrentPrice, s.Collector.AlertDiscount)
	if len(args) > 1 {
		target, err = decimal.NewFromString(args[1])
		if err != nil || !target.IsPositive() {
			return fmt.Sprintf("❌ %q is not a valid price", args[1])
		}
	}

	contact := "default"
	if s.Notifier != nil {
		contact = s.Notifier.ChatID
	}
	if _, err := s.Collector.Fetcher.CreateAlert(s.Ctx, model.AlertRequest{
		ProductID:     id,
		TargetPrice:   target,
		ContactMethod: model.ContactTelegram,
		ContactValue:  contact,
	}); err != nil {
		return replyError(id, err)
	}
	return fmt.Sprintf("✅ Alert set for %s on #%d", notifier.FormatMoney(target, p.Currency), id)
}

func (s *Scheduler) cmdAlerts(args []string) string {
	id, err := productID(args)
	if err != nil {
		return err.Error()
	}
	p, err := s.Collector.Fetcher.GetProduct(s.Ctx, id)
	if err != nil {
		return replyError(id, err)
	}
	alerts, err := s.Collector.Fetcher.ProductAlerts(s.Ctx, id)
	if err != nil {
		return replyError(id, err)
	}
	return notifier.FormatAlerts(p, alerts)
}

func (s *Scheduler) renderCard(id int64) string {
	now := s.Now()
	card, err := s.Collector.CardByID(s.Ctx, id, s.Watch.Window(id), now)
	if err != nil {
		return replyError(id, err)
	}
	return notifier.FormatCard(card, now)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logger.L.Errorf("send notification: %v", err)
	}
}

func productID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("❌ Missing product id")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("❌ %q is not a product id", args[0])
	}
	return id, nil
}

func replyError(id int64, err error) string {
	if collector.IsNotFound(err) {
		return fmt.Sprintf("❌ Product #%d not found", id)
	}
	logger.L.Errorf("product %d: %v", id, err)
	return fmt.Sprintf("❌ Tracker error: %v", err)
}
