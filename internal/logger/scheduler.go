package logger

import (
	"log/slog"

	"github.com/go-co-op/gocron/v2"
)

type schedulerLogger struct {
	log *slog.Logger
}

// SchedulerLogger adapts log to the gocron.Logger interface. gocron's own
// messages are emitted one level lower than requested so they stay out of
// info-level output except for errors.
func SchedulerLogger(log *slog.Logger) gocron.Logger { //nolint:ireturn // gocron.WithLogger takes the interface
	return &schedulerLogger{log: log.With("component", "gocron")}
}

func (l *schedulerLogger) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l *schedulerLogger) Info(msg string, args ...any)  { l.log.Debug(msg, args...) }
func (l *schedulerLogger) Warn(msg string, args ...any)  { l.log.Warn(msg, args...) }
func (l *schedulerLogger) Error(msg string, args ...any) { l.log.Error(msg, args...) }
