package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"torta/internal/domain"
	applog "torta/internal/log"
	"torta/internal/metrics"
	"torta/internal/services"
)

const SubmitOrderPath = "/api/submit-order"

type OrderAPIHandler struct {
	Orders  *services.OrderService
	Metrics *metrics.Metrics
}

func orderOutcome(err error) string {
	var verr *services.ValidationError
	switch {
	case err == nil:
		return "relayed"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, services.ErrRelayNotConfigured):
		return "unconfigured"
	default:
		return "failed"
	}
}

// Info handles GET and reports whether relay credentials are present.
func (h *OrderAPIHandler) Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":         "Order submission endpoint",
		"endpoint":        SubmitOrderPath,
		"method":          fiber.MethodPost,
		"relayConfigured": h.Orders.RelayConfigured(),
	})
}

// Submit handles POST with an order payload and relays it once.
func (h *OrderAPIHandler) Submit(c *fiber.Ctx) error {
	var p domain.OrderPayload
	if err := c.App().Config().JSONDecoder(c.Body(), &p); err != nil {
		h.Metrics.ObserveOrder("invalid")
		applog.Info(c, "order.api.bad_body", map[string]any{"err": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	receipt, err := h.Orders.Submit(c.UserContext(), p)
	h.Metrics.ObserveOrder(orderOutcome(err))

	var verr *services.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		applog.Info(c, "order.api.invalid", map[string]any{"reason": verr.Message})
		body := fiber.Map{"error": verr.Message}
		if len(verr.Fields) > 0 {
			body["fields"] = verr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, services.ErrRelayNotConfigured):
		applog.Error(c, "order.api.unconfigured", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Order relay is not configured"})
	default:
		applog.Error(c, "order.api.relay_fail", err, nil)
		var terr *services.TransportError
		details := "Unknown error"
		if errors.As(err, &terr) {
			details = errors.Cause(terr.Err).Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to process order",
			"details": details,
		})
	}

	applog.Audit(c, "order.relayed", map[string]any{
		"reference": receipt.Reference, "relay_message_id": receipt.RelayMessageID, "items": receipt.Items,
	})
	return c.JSON(fiber.Map{
		"success":        true,
		"message":        "Order submitted successfully",
		"relayMessageId": receipt.RelayMessageID,
		"reference":      receipt.Reference,
	})
}
