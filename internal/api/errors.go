package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/metrics"
	"github.com/eduraapp/edura-backend/internal/observability"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindUnauthenticated: http.StatusUnauthorized,
	apperr.KindUnauthorized:    http.StatusForbidden,
	apperr.KindNotFound:        http.StatusNotFound,
	apperr.KindConflict:        http.StatusConflict,
	apperr.KindValidation:      http.StatusBadRequest,
	apperr.KindTimeout:         http.StatusInternalServerError,
	apperr.KindInternal:        http.StatusInternalServerError,
}

// newHTTPErrorHandler translates error kinds into JSON error bodies.
// Internal errors are reported to Sentry; everything else is the caller's
// problem and only logged at debug.
func newHTTPErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var message any = http.StatusText(code)

		switch e := err.(type) {
		case *echo.HTTPError:
			code = e.Code
			message = e.Message
		case validator.ValidationErrors:
			fields := make(map[string]string, len(e))
			for _, fe := range e {
				fields[fe.Field()] = fe.Tag()
			}
			code = http.StatusBadRequest
			message = fields
		default:
			kind := apperr.KindOf(err)
			code = kindStatus[kind]
			if kind == apperr.KindInternal {
				log.Errorw("internal error", "path", c.Path(), "err", err)
				observability.CaptureErr(err)
				metrics.HandlerErrors.Inc()
			} else {
				message = err.Error()
				log.Debugw("request rejected", "path", c.Path(), "err", err)
			}
			if kind == apperr.KindTimeout {
				message = err.Error() // distinct, retryable
			}
		}

		_ = c.JSON(code, map[string]any{"error": message})
	}
}
