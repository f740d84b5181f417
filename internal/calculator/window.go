package calculator

import (
	"sort"
	"strings"
	"time"

	"PriceSniper/internal/model"
)

// ParseWindow normalizes user input into a TimeWindow. Unrecognized input
// yields WindowAll and ok=false so callers can tell the user.
func ParseWindow(s string) (model.TimeWindow, bool) {
	w := model.TimeWindow(strings.ToUpper(strings.TrimSpace(s)))
	switch w {
	case model.Window7D, model.Window30D, model.Window3M, model.Window1Y, model.WindowAll:
		return w, true
	}
	return model.WindowAll, false
}

// Cutoff returns the earliest timestamp visible in window w as of now.
// The boolean is false when the window has no lower bound.
func Cutoff(w model.TimeWindow, now time.Time) (time.Time, bool) {
	switch w {
	case model.Window7D:
		return now.AddDate(0, 0, -7), true
	case model.Window30D:
		return now.AddDate(0, 0, -30), true
	case model.Window3M:
		return now.AddDate(0, -3, 0), true
	case model.Window1Y:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

// FilterRange returns the observations inside window w, oldest first.
// The input slice is left untouched and may be in any order.
// An unrecognized window returns every observation, sorted.
func FilterRange(obs []model.PriceObservation, w model.TimeWindow, now time.Time) []model.PriceObservation {
	cutoff, bounded := Cutoff(w, now)

	out := make([]model.PriceObservation, 0, len(obs))
	for _, o := range obs {
		if bounded && o.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}
