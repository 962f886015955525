package logsvc

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/darasa/core"
)

const (
	levelDebug = "debug"
	levelInfo  = "info"
	levelWarn  = "warn"
	levelError = "error"
	levelFatal = "fatal"

	flushTimeout = 2 * time.Second
)

type sink interface {
	report(level string, msg string, args []interface{})
	flush(timeout time.Duration)
}

// Logger writes structured entries with zap and forwards them to the configured error trackers.
type Logger struct {
	log   *zap.Logger
	level zap.AtomicLevel
	sinks []sink
	exit  func(code int) // mockable
}

var _ core.Logger = (*Logger)(nil)

// NewZap builds the base zap logger: JSON in PROD, console elsewhere.
func NewZap(level, env string) (*zap.Logger, zap.AtomicLevel, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	var cfg zap.Config
	if strings.EqualFold(env, "prod") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel), zap.AddCallerSkip(1))
	if err != nil {
		return nil, lvl, errors.Wrap(err, "building zap logger")
	}
	return base, lvl, nil
}

func NewLogger(conf *core.Config) (*Logger, error) {
	base, lvl, err := NewZap(conf.LogLevel, conf.Env)
	if err != nil {
		return nil, err
	}
	l := New(base, conf)
	l.level = lvl

	sentrySink, err := newSentrySink(conf)
	if err != nil {
		return nil, err
	}
	if sentrySink != nil {
		l.sinks = append(l.sinks, sentrySink)
	}
	return l, nil
}

// New wraps base, forwarding to Rollbar when a token is configured.
func New(base *zap.Logger, conf *core.Config) *Logger {
	l := &Logger{log: base, level: zap.NewAtomicLevel(), exit: os.Exit}
	if conf.RollbarToken != "" {
		l.sinks = append(l.sinks, newRollbarSink(conf))
	}
	return l
}

// Zap exposes the underlying logger for libraries that take one.
func (l *Logger) Zap() *zap.Logger {
	return l.log
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level string) error {
	return l.level.UnmarshalText([]byte(strings.ToLower(level)))
}

// Sync flushes buffered entries and waits for the error trackers.
func (l *Logger) Sync() {
	for _, s := range l.sinks {
		s.flush(flushTimeout)
	}
	_ = l.log.Sync()
}

// fields turns args into zap fields.
// expected fmt: error, map[string]interface{}, core.Actor
func fields(args []interface{}) []zap.Field {
	flds := make([]zap.Field, 0, len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			flds = append(flds, zap.Error(a))
		case core.Actor:
			flds = append(flds, zap.Int64("user_id", a.UserID), zap.String("user_role", a.Role))
		case map[string]interface{}:
			for k, v := range a {
				flds = append(flds, zap.Any(k, v))
			}
		default:
			flds = append(flds, zap.Any("arg", a))
		}
	}
	return flds
}

func (l *Logger) report(level string, msg string, args []interface{}) {
	for _, s := range l.sinks {
		s.report(level, msg, args)
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log.Debug(msg, fields(args)...)
	l.report(levelDebug, msg, args)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.log.Info(msg, fields(args)...)
	l.report(levelInfo, msg, args)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log.Warn(msg, fields(args)...)
	l.report(levelWarn, msg, args)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.log.Error(msg, fields(args)...)
	l.report(levelError, msg, args)
}

// Fatal logs, flushes every sink, then exits with status 1.
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log.Error(msg, append(fields(args), zap.Bool("fatal", true))...)
	l.report(levelFatal, msg, args)
	l.Sync()
	l.exit(1)
}
