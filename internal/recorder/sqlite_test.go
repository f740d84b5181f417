package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"PriceSniper/internal/model"
)

func openTestDB(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "cache", "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r := openTestDB(t)
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	readings := []model.Reading{
		{ProductID: 1, Name: "Phone", Price: decimal.RequireFromString("999.99"), Score: 12.5,
			Verdict: model.VerdictSkip, Min: decimal.NewNullDecimal(decimal.NewFromInt(900)),
			Max: decimal.NewNullDecimal(decimal.NewFromInt(1010)), RecordedAt: base},
		{ProductID: 1, Name: "Phone", Price: decimal.NewFromInt(905), Score: 95.45,
			Verdict: model.VerdictBuy, Min: decimal.NewNullDecimal(decimal.NewFromInt(900)),
			Max: decimal.NewNullDecimal(decimal.NewFromInt(1010)), RecordedAt: base.Add(time.Hour)},
		{ProductID: 2, Name: "Shoes", Price: decimal.NewFromInt(50), Score: 50, Degenerate: true,
			Verdict: model.VerdictTracking, RecordedAt: base},
	}
	for i := range readings {
		if err := r.RecordReading(&readings[i]); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	got, err := r.RecentReadings(1, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(got))
	}
	if got[0].Verdict != model.VerdictBuy || !got[0].RecordedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("expected newest first, got %+v", got[0])
	}
	if !got[1].Price.Equal(decimal.RequireFromString("999.99")) {
		t.Errorf("price not preserved: %s", got[1].Price)
	}
	if !got[1].Max.Valid || !got[1].Max.Decimal.Equal(decimal.NewFromInt(1010)) {
		t.Errorf("band max not preserved: %+v", got[1].Max)
	}

	shoes, err := r.RecentReadings(2, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(shoes) != 1 || !shoes[0].Degenerate || shoes[0].Min.Valid {
		t.Errorf("unexpected degenerate reading %+v", shoes)
	}
}

func TestSQLiteRecorder_Limit(t *testing.T) {
	r := openTestDB(t)
	base := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rd := &model.Reading{ProductID: 3, Price: decimal.NewFromInt(int64(100 + i)), RecordedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := r.RecordReading(rd); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, err := r.RecentReadings(3, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || !got[0].Price.Equal(decimal.NewFromInt(104)) {
		t.Errorf("expected the 2 newest readings, got %+v", got)
	}

	empty, err := r.RecentReadings(99, 5)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v, %v", empty, err)
	}
}
