package rxws

import (
	"go.uber.org/zap"
)

type zapLogger struct {
	*zap.SugaredLogger
}

// NewZapLogger adapts a zap sugared logger. Fields are attached as structured zap fields.
func NewZapLogger(l *zap.SugaredLogger) logger {
	if l == nil {
		return noopLogger{}
	}
	return zapLogger{SugaredLogger: l}
}

func (l zapLogger) WithField(key string, value any) logger {
	return zapLogger{SugaredLogger: l.SugaredLogger.With(key, value)}
}
