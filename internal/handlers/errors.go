package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/services"
)

// ErrorHandler maps handler errors to JSON responses: fiber errors keep their
// code, fatal pipeline input errors become 400, the rest 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	log = logger.OrNop(log)
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		case errors.Is(err, services.ErrFatalInput):
			code = fiber.StatusBadRequest
			message = err.Error()
		default:
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
			"code":  code,
		})
	}
}
