package qb

import (
	"fmt"

	"go.uber.org/zap"
)

type LogLevel int

const (
	LogLevelDev LogLevel = iota
	LogLevelProd
)

// Logger receives the compiled SQL and its bindings at debug level and
// compile failures at warn level.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type zapLogger struct {
	l *zap.SugaredLogger
}

func NewLogger(level LogLevel) (Logger, error) {
	return newZapLogger(level)
}

func newZapLogger(level LogLevel) (*zapLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	switch level {
	case LogLevelDev:
		l, err = zap.NewDevelopmentConfig().Build()
	case LogLevelProd:
		l, err = zap.NewProductionConfig().Build()
	default:
		return nil, fmt.Errorf("%w: log level should be either LogLevelDev or LogLevelProd", ErrInvalidArgument)
	}
	if err != nil {
		return nil, err
	}
	return &zapLogger{l.Sugar()}, nil
}

func (z *zapLogger) Debugf(format string, args ...any) {
	z.l.Debugf("[DEBUG] "+format, args...)
}

func (z *zapLogger) Warnf(format string, args ...any) {
	z.l.Warnf("[WARN] "+format, args...)
}

func (z *zapLogger) Errorf(format string, args ...any) {
	z.l.Errorf("[ERROR] "+format, args...)
}

func (z *zapLogger) Infof(format string, args ...any) {
	z.l.Infof("[INFO] "+format, args...)
}

var defaultLogger Logger = &zapLogger{zap.NewNop().Sugar()}

// SetLogger replaces the package wide logger used by statements that were not
// created through a Builder. A nil logger silences output.
func SetLogger(l Logger) {
	if l == nil {
		l = &zapLogger{zap.NewNop().Sugar()}
	}
	defaultLogger = l
}
