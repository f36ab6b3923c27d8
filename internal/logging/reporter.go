package logging

import (
	"sort"

	"go.uber.org/zap"
)

// ZapReporter delivers trial diagnostics to a *zap.Logger.
type ZapReporter struct {
	logger *zap.Logger
}

// NewZapReporter returns a reporter writing to logger. A nil logger discards
// everything.
func NewZapReporter(logger *zap.Logger) *ZapReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapReporter{logger: logger.Named("trial")}
}

func (r *ZapReporter) Debug(msg string, fields ...map[string]interface{}) {
	r.logger.Debug(msg, zapFields(fields)...)
}

func (r *ZapReporter) Info(msg string, fields ...map[string]interface{}) {
	r.logger.Info(msg, zapFields(fields)...)
}

func (r *ZapReporter) Warn(msg string, fields ...map[string]interface{}) {
	r.logger.Warn(msg, zapFields(fields)...)
}

func (r *ZapReporter) Error(msg string, fields ...map[string]interface{}) {
	r.logger.Error(msg, zapFields(fields)...)
}

func zapFields(fields []map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields[0]))
	for k := range fields[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[0][k]))
	}
	return out
}
