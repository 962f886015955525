package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/services/metrics"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor, err := getActor(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context actor")
			}
			if actor.IsAdmin() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// metricsMiddleware records the latency and status of every request under its route pattern.
func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)
		if err != nil {
			ctx.Error(err) // commits the response so its status is known
		}

		route := ctx.Path()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(ctx.Request().Method, route, ctx.Response().Status, time.Since(start))
		return err
	}
}
