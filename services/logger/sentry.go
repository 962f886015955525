package logsvc

import (
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// sentrySink captures errors and fatal entries in Sentry.
type sentrySink struct{}

func newSentrySink(conf *core.Config) (*sentrySink, error) {
	if conf.SentryDSN == "" {
		return nil, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         conf.SentryDSN,
		Environment: conf.Env,
		Release:     conf.Build,
		ServerName:  conf.AppName,
	})
	if err != nil {
		return nil, errors.Wrap(err, "initializing sentry")
	}
	return &sentrySink{}, nil
}

func (sentrySink) report(level string, msg string, args []interface{}) {
	hub := sentry.CurrentHub().Clone()
	var captured bool
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if level == levelFatal {
			scope.SetLevel(sentry.LevelFatal)
		}
		for _, arg := range args {
			switch a := arg.(type) {
			case core.Actor:
				scope.SetUser(sentry.User{ID: strconv.FormatInt(a.UserID, 10), Email: a.Email})
			case map[string]interface{}:
				scope.SetExtras(a)
			}
		}
	})
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			hub.CaptureException(err)
			captured = true
		}
	}
	if !captured {
		hub.CaptureMessage(msg)
	}
}

func (sentrySink) flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
