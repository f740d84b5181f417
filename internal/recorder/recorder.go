package recorder

import "PriceSniper/internal/model"

// Recorder caches gauge readings so recent gauges can be shown while the
// tracker is unreachable. It is never the source of truth.
type Recorder interface {
	RecordReading(r *model.Reading) error
	RecentReadings(productID int64, limit int) ([]model.Reading, error)
	Close() error
}
