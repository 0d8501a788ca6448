package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is the structured logger every layer receives by injection.
type ZapLogger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)
	With(fields ...zap.Field) ZapLogger
	Named(name string) ZapLogger
	Sync() error
}

type ZapLoggerConfig struct {
	IsDevelopment     bool
	Encoding          string
	Level             string
	DisableCaller     bool
	DisableStacktrace bool
}

type zapLogger struct {
	l *zap.Logger
}

func NewZapLogger(cfg *ZapLoggerConfig) ZapLogger {
	var zc zap.Config
	if cfg.IsDevelopment {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	if cfg.Level != "" {
		if lvl, err := zapcore.ParseLevel(cfg.Level); err == nil {
			zc.Level = zap.NewAtomicLevelAt(lvl)
		}
	}
	zc.DisableCaller = cfg.DisableCaller
	zc.DisableStacktrace = cfg.DisableStacktrace

	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		// A bad encoder name is the only realistic failure; fall back rather than abort startup.
		l = zap.NewExample()
	}
	return &zapLogger{l: l}
}

// Wrap adapts an existing zap logger, such as one built on an observer core in tests.
func Wrap(l *zap.Logger) ZapLogger {
	return &zapLogger{l: l}
}

// NewNop returns a logger that discards everything.
func NewNop() ZapLogger {
	return &zapLogger{l: zap.NewNop()}
}

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.l.Error(msg, fields...) }
func (z *zapLogger) Fatal(msg string, fields ...zap.Field) { z.l.Fatal(msg, fields...) }

func (z *zapLogger) With(fields ...zap.Field) ZapLogger {
	return &zapLogger{l: z.l.With(fields...)}
}

func (z *zapLogger) Named(name string) ZapLogger {
	return &zapLogger{l: z.l.Named(name)}
}

func (z *zapLogger) Sync() error {
	return z.l.Sync()
}
