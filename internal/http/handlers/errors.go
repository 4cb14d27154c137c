package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "torta/internal/log"
)

// ErrorHandler logs the error and shows a friendly page or JSON body
// without internal detail.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	if code >= 500 {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Info(c, "request.rejected", map[string]any{"code": code, "reason": err.Error()})
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": statusMessage(code)})
	}
	key := "common.genericError"
	if code == fiber.StatusNotFound {
		key = "common.notFound"
	}
	if rerr := message(c, code, key); rerr != nil {
		return c.Status(code).SendString("Something went wrong. Please try again.")
	}
	return nil
}

func statusMessage(code int) string {
	if code >= 500 {
		return "Internal server error"
	}
	if msg := fiber.NewError(code).Message; msg != "" {
		return msg
	}
	return "Request rejected"
}

// NotFound is the catch-all route.
func NotFound(c *fiber.Ctx) error {
	return message(c, fiber.StatusNotFound, "common.notFound")
}
