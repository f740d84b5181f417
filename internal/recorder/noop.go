package recorder

import "PriceSniper/internal/model"

// NoopRecorder is a no-op implementation used when no cache is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordReading(_ *model.Reading) error { return nil }
func (n *NoopRecorder) RecentReadings(_ int64, _ int) ([]model.Reading, error) {
	return []model.Reading{}, nil
}
func (n *NoopRecorder) Close() error { return nil }
