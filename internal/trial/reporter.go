package trial

// Reporter receives leveled, human-readable diagnostics. Implementations must
// not panic or exit; a diagnostic never blocks the operation that raised it.
//
// *logging.Logger and logging.ZapReporter both satisfy Reporter.
type Reporter interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
}

// NopReporter discards every diagnostic.
type NopReporter struct{}

func (NopReporter) Debug(string, ...map[string]interface{}) {}
func (NopReporter) Info(string, ...map[string]interface{})  {}
func (NopReporter) Warn(string, ...map[string]interface{})  {}
func (NopReporter) Error(string, ...map[string]interface{}) {}
