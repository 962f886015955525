package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "Access denied. Admin privileges required")

	validationFailed = "validation failed"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed { // already handled down the chain
			return
		}

		var code int
		var message string
		var details map[string]string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = "Access token required"
				break
			}
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = validationFailed
			details = make(map[string]string, len(origErr))
			for _, fld := range core.TranslateFieldErrors(origErr, translator) {
				details[fld.Field] = fld.Error
			}
		case *core.ValidationError:
			code = http.StatusBadRequest
			if origErr.Err == nil && len(origErr.Fields) > 0 {
				message = validationFailed
				details = make(map[string]string, len(origErr.Fields))
				for _, fld := range origErr.Fields {
					details[fld.Field] = fld.Error
				}
			} else {
				message = origErr.Error()
			}
		case *core.NotFoundError:
			code, message = http.StatusNotFound, origErr.Error()
		case *core.ForbiddenError:
			code, message = http.StatusForbidden, origErr.Error()
		case *core.ConflictError:
			code, message = http.StatusBadRequest, origErr.Error()
		case *core.CapacityError:
			code, message = http.StatusBadRequest, origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(code)

			args := []interface{}{errors.Wrap(err, message), map[string]interface{}{
				"method": ctx.Request().Method,
				"path":   ctx.Path(),
			}}
			if actor, aErr := getActor(ctx); aErr == nil {
				args = append(args, actor)
			}
			logger.Error(message, args...)

			if ctx.Echo().Debug {
				message = err.Error()
			}
			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		body := echo.Map{"error": message}
		if details != nil {
			body["details"] = details
		}

		// Send response
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, body)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
