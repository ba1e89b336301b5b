package http

import (
	"context"
	"errors"
	"math"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-admin/internal/observability"
	"github.com/spec-kit/commerce-admin/internal/ratelimit"
	"github.com/spec-kit/commerce-admin/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
// The request logger wraps the error handler so it sees the final status.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = util.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				path := c.Route().Path
				if path == "" {
					path = c.Path()
				}
				metrics.RecordError(path, c.Method(), domainErr.Code)
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.String("request_id", observability.RequestID(c)),
						zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// toDomainError keeps the status of fiber's own errors, such as unmatched routes.
func toDomainError(err error) *util.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := util.CodeBadRequest
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			code = util.CodeNotFound
		case fiber.StatusTooManyRequests:
			code = util.CodeRateLimited
		case fiber.StatusConflict:
			code = util.CodeConflict
		}
		if fiberErr.Code >= fiber.StatusInternalServerError {
			code = util.CodeInternal
		}
		return util.NewDomainError(code, fiberErr.Message, fiberErr.Code, nil)
	}
	return util.ToDomainError(err)
}

// requestRateLimit throttles a route per client IP.
func requestRateLimit(limiter *ratelimit.Limiter, name string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision, _ := limiter.Allow(c.UserContext(), name+":"+c.IP(), limit, window)
		if !decision.Allowed {
			if decision.RetryAfter > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			}
			return util.NewRateLimited("too many requests")
		}
		return c.Next()
	}
}
