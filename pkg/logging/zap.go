package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZapLogger implements Logger backed by uber-go/zap.
type ZapLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
	fields []Field
}

// ZapOption configures a zap-backed logger.
type ZapOption func(*zapOptions)

type zapOptions struct {
	development bool
	level       *zapcore.Level
	rotate      *lumberjack.Logger
}

// WithDevelopmentMode enables the human-readable development encoder.
func WithDevelopmentMode() ZapOption {
	return func(o *zapOptions) { o.development = true }
}

// WithLogLevel sets the minimum emitted level.
func WithLogLevel(level Level) ZapOption {
	return func(o *zapOptions) {
		var zl zapcore.Level
		switch level {
		case DEBUG:
			zl = zapcore.DebugLevel
		case WARN:
			zl = zapcore.WarnLevel
		case ERROR:
			zl = zapcore.ErrorLevel
		default:
			zl = zapcore.InfoLevel
		}
		o.level = &zl
	}
}

// WithRotatingFile writes log entries to a size-rotated file instead of
// stdout. maxSizeMB bounds the size of a single file before rotation and
// maxBackups bounds how many rotated files are kept.
func WithRotatingFile(path string, maxSizeMB, maxBackups int) ZapOption {
	return func(o *zapOptions) {
		o.rotate = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			Compress:   true,
		}
	}
}

// NewZapLogger creates a Logger backed by zap. Without options it writes
// JSON to stdout at INFO level.
func NewZapLogger(options ...ZapOption) Logger {
	opts := &zapOptions{}
	for _, opt := range options {
		opt(opts)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.level != nil {
		level.SetLevel(*opts.level)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"

	var enc zapcore.Encoder
	if opts.development {
		devCfg := zap.NewDevelopmentEncoderConfig()
		devCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewConsoleEncoder(devCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stdout)
	if opts.rotate != nil {
		sink = zapcore.AddSync(opts.rotate)
	}

	core := zapcore.NewCore(enc, sink, level)
	return &ZapLogger{
		logger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		level:  level,
	}
}

func (l *ZapLogger) Debug(msg string, fields ...Field) {
	if ce := l.logger.Check(zapcore.DebugLevel, msg); ce != nil {
		ce.Write(l.convert(fields)...)
	}
}

func (l *ZapLogger) Info(msg string, fields ...Field) {
	if ce := l.logger.Check(zapcore.InfoLevel, msg); ce != nil {
		ce.Write(l.convert(fields)...)
	}
}

func (l *ZapLogger) Warn(msg string, fields ...Field) {
	if ce := l.logger.Check(zapcore.WarnLevel, msg); ce != nil {
		ce.Write(l.convert(fields)...)
	}
}

func (l *ZapLogger) Error(msg string, fields ...Field) {
	if ce := l.logger.Check(zapcore.ErrorLevel, msg); ce != nil {
		ce.Write(l.convert(fields)...)
	}
}

// WithFields implements Logger.
func (l *ZapLogger) WithFields(fields ...Field) Logger {
	next := *l
	next.fields = make([]Field, 0, len(l.fields)+len(fields))
	next.fields = append(next.fields, l.fields...)
	next.fields = append(next.fields, fields...)
	return &next
}

// SetLevel implements Logger.
func (l *ZapLogger) SetLevel(level Level) {
	switch level {
	case DEBUG:
		l.level.SetLevel(zapcore.DebugLevel)
	case WARN:
		l.level.SetLevel(zapcore.WarnLevel)
	case ERROR:
		l.level.SetLevel(zapcore.ErrorLevel)
	default:
		l.level.SetLevel(zapcore.InfoLevel)
	}
}

// Close flushes buffered entries.
func (l *ZapLogger) Close() error {
	return l.logger.Sync()
}

func (l *ZapLogger) convert(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(l.fields)+len(fields))
	for _, f := range l.fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
