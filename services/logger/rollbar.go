package logsvc

import (
	"strconv"
	"time"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/darasa/core"
)

// rollbarSink forwards log entries to Rollbar.
type rollbarSink struct{}

func newRollbarSink(conf *core.Config) rollbarSink {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Address)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "")
	return rollbarSink{}
}

// expected fmt: msg | error, map[string]interface{}, core.Actor
func (rollbarSink) prepare(msg string, args []interface{}) []interface{} {
	var actorSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		if actor, ok := arg.(core.Actor); ok {
			if !actorSet { // only set one person
				rollbar.SetPerson(strconv.FormatInt(actor.UserID, 10), actor.Role, actor.Email)
				actorSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !actorSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

func (s rollbarSink) report(level string, msg string, args []interface{}) {
	args = s.prepare(msg, args)
	switch level {
	case levelDebug:
		rollbar.Debug(args...)
	case levelInfo:
		rollbar.Info(args...)
	case levelWarn:
		rollbar.Warning(args...)
	case levelError:
		rollbar.Error(args...)
	case levelFatal:
		rollbar.Critical(args...)
	}
}

func (rollbarSink) flush(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		rollbar.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
