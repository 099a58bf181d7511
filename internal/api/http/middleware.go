package http

import (
	"context"
	"encoding/json"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-ticket-service/internal/observability"
	apperrors "github.com/spec-kit/parking-ticket-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
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
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(observability.RouteLabel(c), observability.MethodLabel(c), domainErr.Code)
				response := errorBody(domainErr)
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.String("method", c.Method()),
						zap.String("path", c.Path()),
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

func errorBody(domainErr *apperrors.DomainError) fiber.Map {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return fiber.Map{"error": body}
}

// rejectUnknownMethods answers 405 for method tokens the router does not
// know. fiber would otherwise reply with a bare 400 before any middleware runs.
func rejectUnknownMethods(next fasthttp.RequestHandler, known []string, logger *zap.Logger, metrics *observability.Metrics) fasthttp.RequestHandler {
	allowed := make(map[string]struct{}, len(known))
	for _, method := range known {
		allowed[method] = struct{}{}
	}
	return func(rctx *fasthttp.RequestCtx) {
		if _, ok := allowed[string(rctx.Method())]; ok {
			next(rctx)
			return
		}
		method := string(rctx.Method())
		domainErr := apperrors.ToDomainError(apperrors.NewMethodNotAllowed(method))
		metrics.RecordError(observability.UnmatchedRoute, "other", domainErr.Code)
		logger.Info("request",
			zap.String("method", method),
			zap.ByteString("path", rctx.Path()),
			zap.Int("status", domainErr.HTTPStatus))

		body, err := json.Marshal(errorBody(domainErr))
		if err != nil {
			rctx.Error(domainErr.Message, domainErr.HTTPStatus)
			return
		}
		rctx.SetStatusCode(domainErr.HTTPStatus)
		rctx.SetContentType(fiber.MIMEApplicationJSON)
		rctx.SetBody(body)
	}
}

func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.NewDomainError("HTTP_ERROR", fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}
