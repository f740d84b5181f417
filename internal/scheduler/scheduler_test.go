package scheduler

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"PriceSniper/internal/collector"
	"PriceSniper/internal/model"
	"PriceSniper/internal/notifier"
	"PriceSniper/internal/recorder"
	"PriceSniper/internal/watch"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type memRecorder struct {
	recorder.NoopRecorder
	readings []model.Reading
}

func (m *memRecorder) RecordReading(r *model.Reading) error {
	m.readings = append(m.readings, *r)
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *collector.MockFetcher, *memRecorder) {
	t.Helper()
	mock := collector.NewMockFetcher()
	mock.AddProduct(model.Product{
		ID: 1, Name: "Noise Cancelling Headphones", CurrentPrice: decimal.NewFromInt(900),
		IsAvailable: true, CreatedAt: now.AddDate(0, 0, -10), UpdatedAt: now.Add(-time.Hour),
	})
	mock.History[1] = []model.PriceObservation{
		{Timestamp: now.AddDate(0, 0, -20), Price: decimal.NewFromInt(1000)},
		{Timestamp: now.AddDate(0, 0, -10), Price: decimal.NewFromInt(800)},
		{Timestamp: now.AddDate(0, 0, -2), Price: decimal.NewFromInt(900)},
	}
	mock.Analyses[1] = &model.Analysis{
		ProductID:     1,
		MinPrice30Day: decimal.NewNullDecimal(decimal.NewFromInt(800)),
		MaxPrice30Day: decimal.NewNullDecimal(decimal.NewFromInt(1000)),
	}

	wm, err := watch.NewManager(filepath.Join(t.TempDir(), "state.json"), model.Window30D)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	rec := &memRecorder{}
	col := collector.NewCollector(mock, decimal.NewFromFloat(0.05))
	s := NewScheduler(context.Background(), col, wm, nil, rec)
	s.Now = func() time.Time { return now }
	return s, mock, rec
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	if err := s.RegisterAll("0 0 */6 * * *", "0 0 9 * * *"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	// digest needs a notifier
	if n := len(s.Cron.Entries()); n != 1 {
		t.Errorf("expected 1 entry without Telegram, got %d", n)
	}

	s2, _, _ := newTestScheduler(t)
	s2.Notifier = notifier.NewTelegramNotifier("token", "42", "")
	if err := s2.RegisterAll("0 0 */6 * * *", "0 0 9 * * *"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if n := len(s2.Cron.Entries()); n != 2 {
		t.Errorf("expected 2 entries with Telegram, got %d", n)
	}

	s3, _, _ := newTestScheduler(t)
	if err := s3.RegisterAll("not a cron", "0 0 9 * * *"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestSnapshotTask(t *testing.T) {
	s, _, rec := newTestScheduler(t)
	s.snapshotTask()

	if len(rec.readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(rec.readings))
	}
	r := rec.readings[0]
	if r.ProductID != 1 || r.Score != 50 || r.Verdict != model.VerdictOkay {
		t.Errorf("unexpected reading: %+v", r)
	}
	if !r.RecordedAt.Equal(now) {
		t.Errorf("expected reading at %v, got %v", now, r.RecordedAt)
	}
}

func TestSnapshotTask_TrackerDown(t *testing.T) {
	s, mock, rec := newTestScheduler(t)
	mock.Err = context.DeadlineExceeded
	s.snapshotTask()
	if len(rec.readings) != 0 {
		t.Errorf("expected no readings, got %d", len(rec.readings))
	}
}

func TestHandleCommand_List(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	for _, cmd := range []string{"/list", "/LIST", "/list@PriceSniperBot"} {
		reply := s.HandleCommand(cmd)
		if !strings.Contains(reply, "#1 Noise Cancelling Headphones") {
			t.Errorf("%s: expected product line, got:\n%s", cmd, reply)
		}
		if !strings.Contains(reply, "Okay 50") {
			t.Errorf("%s: expected verdict and score, got:\n%s", cmd, reply)
		}
	}
}

func TestHandleCommand_Help(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	for _, cmd := range []string{"", "/start", "hello"} {
		if reply := s.HandleCommand(cmd); reply != notifier.FormatHelp() {
			t.Errorf("%q: expected help, got %q", cmd, reply)
		}
	}
}

func TestHandleCommand_Card(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	reply := s.HandleCommand("/card 1")
	if !strings.Contains(reply, "score 50/100") {
		t.Errorf("expected gauge score, got:\n%s", reply)
	}
	if !strings.Contains(reply, "History (30D)") {
		t.Errorf("expected default window, got:\n%s", reply)
	}

	reply = s.HandleCommand("/card #1 7d")
	if !strings.Contains(reply, "History (7D)") {
		t.Errorf("expected 7D window, got:\n%s", reply)
	}
	if w := s.Watch.Window(1); w != model.Window7D {
		t.Errorf("expected window to persist as 7D, got %s", w)
	}

	if reply := s.HandleCommand("/card 1 2W"); !strings.HasPrefix(reply, "❌") {
		t.Errorf("expected error for unknown window, got %q", reply)
	}
	if reply := s.HandleCommand("/card 99"); !strings.Contains(reply, "not found") {
		t.Errorf("expected not found, got %q", reply)
	}
	if reply := s.HandleCommand("/card abc"); !strings.Contains(reply, "not a product id") {
		t.Errorf("expected id error, got %q", reply)
	}
	if reply := s.HandleCommand("/card"); !strings.Contains(reply, "Missing product id") {
		t.Errorf("expected missing id, got %q", reply)
	}
}

func TestHandleCommand_Window(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	if reply := s.HandleCommand("/window 1"); !strings.HasPrefix(reply, "Usage") {
		t.Errorf("expected usage, got %q", reply)
	}
	reply := s.HandleCommand("/window 1 3m")
	if !strings.Contains(reply, "#1 now shows 3M") {
		t.Errorf("unexpected reply %q", reply)
	}
	if w := s.Watch.Window(1); w != model.Window3M {
		t.Errorf("expected 3M, got %s", w)
	}
}

func TestHandleCommand_TrackRefreshUntrack(t *testing.T) {
	s, mock, _ := newTestScheduler(t)

	reply := s.HandleCommand("/track https://example.com/p/42")
	if !strings.Contains(reply, "https://example.com/p/42") {
		t.Errorf("expected new product card, got:\n%s", reply)
	}
	if !strings.Contains(reply, "building price history") {
		t.Errorf("expected degenerate gauge for new product, got:\n%s", reply)
	}
	if reply := s.HandleCommand("/track"); !strings.HasPrefix(reply, "Usage") {
		t.Errorf("expected usage, got %q", reply)
	}

	if reply := s.HandleCommand("/refresh 1"); !strings.Contains(reply, "queued for #1") {
		t.Errorf("unexpected refresh reply %q", reply)
	}
	if len(mock.Refreshed) != 1 || mock.Refreshed[0] != 1 {
		t.Errorf("expected product 1 refreshed, got %v", mock.Refreshed)
	}

	if reply := s.HandleCommand("/refresh all"); !strings.Contains(reply, "every product") {
		t.Errorf("unexpected refresh-all reply %q", reply)
	}
	if mock.RefreshedAll != 1 {
		t.Errorf("expected one refresh-all call, got %d", mock.RefreshedAll)
	}

	if _, err := s.Watch.SetWindow(1, "1Y"); err != nil {
		t.Fatalf("SetWindow: %v", err)
	}
	if reply := s.HandleCommand("/untrack 1"); !strings.Contains(reply, "Stopped tracking #1") {
		t.Errorf("unexpected untrack reply %q", reply)
	}
	if _, ok := mock.Products[1]; ok {
		t.Error("expected product 1 deleted")
	}
	if w := s.Watch.Window(1); w != model.Window30D {
		t.Errorf("expected window reset to default, got %s", w)
	}
	if reply := s.HandleCommand("/untrack 1"); !strings.Contains(reply, "not found") {
		t.Errorf("expected not found, got %q", reply)
	}
}

func TestHandleCommand_Alert(t *testing.T) {
	s, mock, _ := newTestScheduler(t)

	reply := s.HandleCommand("/alert 1")
	if !strings.Contains(reply, "Alert set for ₹855") {
		t.Errorf("expected suggested target, got %q", reply)
	}
	if reply := s.HandleCommand("/alert 1 700"); !strings.Contains(reply, "₹700") {
		t.Errorf("expected explicit target, got %q", reply)
	}
	if reply := s.HandleCommand("/alert 1 cheap"); !strings.Contains(reply, "not a valid price") {
		t.Errorf("expected price error, got %q", reply)
	}
	if reply := s.HandleCommand("/alert 1 -5"); !strings.Contains(reply, "not a valid price") {
		t.Errorf("expected price error, got %q", reply)
	}

	alerts := mock.Alerts[1]
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].ContactMethod != model.ContactTelegram || alerts[0].ContactValue != "default" {
		t.Errorf("unexpected contact: %+v", alerts[0])
	}

	reply = s.HandleCommand("/alerts 1")
	if !strings.Contains(reply, "≤ ₹855") || !strings.Contains(reply, "≤ ₹700") {
		t.Errorf("expected both alerts listed, got:\n%s", reply)
	}
}

func TestHandleCommand_AlertUsesChatID(t *testing.T) {
	s, mock, _ := newTestScheduler(t)
	s.Notifier = notifier.NewTelegramNotifier("token", "12345", "")

	s.HandleCommand("/alert 1")
	if got := mock.Alerts[1][0].ContactValue; got != "12345" {
		t.Errorf("expected chat id as contact, got %q", got)
	}
}
