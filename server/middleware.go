package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pedrohavay/recordlink/linkage"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	TraceID   string         `json:"trace_id,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

func requestID(c echo.Context) string {
	id := c.Request().Header.Get(echo.HeaderXRequestID)
	if id == "" {
		id = c.Response().Header().Get(echo.HeaderXRequestID)
	}
	return id
}

// Logger writes one access log line per request.
func Logger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()
			res := c.Response()
			start := time.Now()
			if err = next(c); err != nil {
				c.Error(err)
			}
			stop := time.Now()

			id := requestID(c)
			if id == "" {
				id = uuid.New().String()
			}

			logger.Info("Request",
				zap.String("request_id", id),
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", res.Status),
				zap.String("route", c.Path()),
				zap.String("remote_ip", c.RealIP()),
				zap.String("protocol", req.Proto),
				zap.String("user_agent", req.UserAgent()),
				zap.Duration("response_time", stop.Sub(start)),
				zap.String("request_size", req.Header.Get(echo.HeaderContentLength)),
				zap.String("response_size", strconv.FormatInt(res.Size, 10)),
			)
			return nil
		}
	}
}

// ErrorHandler renders every error as an ErrorResponse.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal Server Error"
		meta := map[string]any{}

		var he *echo.HTTPError
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &he):
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(code)
			}
		case errors.Is(err, linkage.ErrNotFound):
			code = http.StatusNotFound
			message = err.Error()
		case errors.As(err, &verrs):
			code = http.StatusBadRequest
			message = "validation failed"
			for _, fe := range verrs {
				meta[fe.Field()] = fe.Tag()
			}
		}

		if code >= http.StatusInternalServerError {
			logger.Error("api is returning an error", zap.Error(err), zap.String("route", c.Path()))
		} else {
			logger.Debug("api is returning an error", zap.Error(err), zap.Int("status", code))
		}

		var traceID string
		if sc := trace.SpanContextFromContext(c.Request().Context()); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		}

		resp := ErrorResponse{
			Message:   message,
			RequestID: requestID(c),
			TraceID:   traceID,
			Meta:      meta,
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}
