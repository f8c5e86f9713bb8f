package nakama

import (
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/rs/zerolog"
)

// runtimeLogWriter forwards zerolog output to the Nakama runtime logger at the
// matching level.
type runtimeLogWriter struct {
	logger runtime.Logger
}

func (w runtimeLogWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w runtimeLogWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		w.logger.Debug("%s", line)
	case zerolog.WarnLevel:
		w.logger.Warn("%s", line)
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		w.logger.Error("%s", line)
	default:
		w.logger.Info("%s", line)
	}
	return len(p), nil
}

// newServiceLogger builds the structured logger handed to app and bot code.
func newServiceLogger(logger runtime.Logger, component string) zerolog.Logger {
	return zerolog.New(runtimeLogWriter{logger: logger}).With().Str("component", component).Logger()
}
