package scheduler

import (
	"github.com/GoCodeAlone/fibonacci/app"
	"github.com/robfig/cron/v3"
)

// cronLogger adapts app.Logger to cron.Logger.
type cronLogger struct {
	logger app.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
