package batch

import "go.uber.org/zap"

// Observer receives progress events from a batch run. It is a notification
// side channel for presentation layers; the orchestrator's results never
// depend on it.
type Observer interface {
	ItemStarted(path string)
	ItemFinished(path string, status ItemStatus)
	BatchFinished(report *Report)
}

// NopObserver ignores all progress events.
type NopObserver struct{}

// ItemStarted implements Observer.
func (NopObserver) ItemStarted(string) {}

// ItemFinished implements Observer.
func (NopObserver) ItemFinished(string, ItemStatus) {}

// BatchFinished implements Observer.
func (NopObserver) BatchFinished(*Report) {}

// LogObserver reports progress events through a zap logger.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates a new LogObserver instance
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// ItemStarted implements Observer.
func (o *LogObserver) ItemStarted(path string) {
	o.logger.Info("item started", zap.String("path", path))
}

// ItemFinished implements Observer.
func (o *LogObserver) ItemFinished(path string, status ItemStatus) {
	o.logger.Info("item finished",
		zap.String("path", path),
		zap.String("status", string(status)))
}

// BatchFinished implements Observer.
func (o *LogObserver) BatchFinished(report *Report) {
	o.logger.Info("batch finished",
		zap.String("run_id", report.RunID),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped))
}
