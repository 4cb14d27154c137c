package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"torta/internal/catalog"
	"torta/internal/domain"
	"torta/internal/validate"
)

// Sender delivers a rendered order message to the chat.
type Sender interface {
	Configured() bool
	SendMessage(ctx context.Context, text string) (int64, error)
}

type OrderService struct {
	Catalog *catalog.Catalog
	Relay   Sender
	Now     func() time.Time
}

func NewOrderService(cat *catalog.Catalog, relay Sender) *OrderService {
	return &OrderService{Catalog: cat, Relay: relay, Now: time.Now}
}

// Receipt describes a relayed order.
type Receipt struct {
	Reference      string
	RelayMessageID int64
	Total          decimal.Decimal
	Items          int
}

func (s *OrderService) RelayConfigured() bool {
	return s.Relay != nil && s.Relay.Configured()
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalize(req domain.OrderRequest) domain.OrderRequest {
	req.CustomerName = clean(req.CustomerName)
	req.PhoneNumber = clean(req.PhoneNumber)
	req.Address = clean(req.Address)
	req.ShippingMethod = domain.ShippingMethod(strings.ToLower(strings.TrimSpace(string(req.ShippingMethod))))
	return req
}

func (s *OrderService) resolve(req domain.OrderRequest) (domain.OrderPayload, error) {
	if errs := validate.Order(req); !errs.Empty() {
		return domain.OrderPayload{}, &ValidationError{Message: MsgInvalidOrder, Fields: errs}
	}
	items, err := s.Catalog.Resolve(req.LineItems)
	if err != nil {
		return domain.OrderPayload{}, &ValidationError{
			Message: MsgInvalidOrder,
			Fields:  validate.Errors{validate.FieldProducts: "validation.unknownProduct"},
		}
	}
	return domain.OrderPayload{OrderRequest: req, Items: items}, nil
}

// Prepare validates form input and attaches catalog details. It performs
// no I/O; a *ValidationError means nothing may be sent.
func (s *OrderService) Prepare(req domain.OrderRequest) (domain.OrderPayload, error) {
	return s.resolve(normalize(req))
}

// Submit checks a payload received from a client, re-resolves its items
// against the catalog and relays it in a single attempt.
func (s *OrderService) Submit(ctx context.Context, p domain.OrderPayload) (Receipt, error) {
	req := normalize(p.OrderRequest)
	if req.CustomerName == "" || req.PhoneNumber == "" || req.Address == "" || len(p.Items) == 0 {
		return Receipt{}, &ValidationError{Message: MsgMissingFields}
	}
	if !req.ShippingMethod.Valid() {
		return Receipt{}, &ValidationError{
			Message: MsgInvalidShipping,
			Fields:  validate.Errors{validate.FieldShipping: "validation.selectShippingMethod"},
		}
	}
	// Client-sent names and prices are not trusted; only ids and quantities are kept.
	req.LineItems = make([]domain.LineItem, len(p.Items))
	for i, it := range p.Items {
		req.LineItems[i] = domain.LineItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	payload, err := s.resolve(req)
	if err != nil {
		return Receipt{}, err
	}

	if !s.RelayConfigured() {
		return Receipt{}, ErrRelayNotConfigured
	}
	text := RenderMessage(payload, s.Now())
	id, err := s.Relay.SendMessage(ctx, text)
	if err != nil {
		return Receipt{}, &TransportError{Err: errors.WithStack(err)}
	}
	return Receipt{
		Reference:      uuid.NewString(),
		RelayMessageID: id,
		Total:          payload.Total(),
		Items:          payload.TotalQuantity(),
	}, nil
}
