package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torta/internal/catalog"
	"torta/internal/domain"
	"torta/internal/services"
	"torta/internal/validate"
)

type fakeSender struct {
	configured bool
	err        error
	sent       []string
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) SendMessage(_ context.Context, text string) (int64, error) {
	f.sent = append(f.sent, text)
	if f.err != nil {
		return 0, f.err
	}
	return int64(100 + len(f.sent)), nil
}

var fixedNow = time.Date(2026, 10, 14, 15, 4, 5, 0, time.UTC)

func newOrders(sender *fakeSender) *services.OrderService {
	s := services.NewOrderService(catalog.Default(), sender)
	s.Now = func() time.Time { return fixedNow }
	return s
}

func janeDoe() domain.OrderRequest {
	return domain.OrderRequest{
		CustomerName:   "Jane Doe",
		PhoneNumber:    "0555123456",
		Address:        "12 Example Street, City",
		ShippingMethod: domain.Pickup,
		LineItems:      []domain.LineItem{{ProductID: 1, Quantity: 2}},
	}
}

func TestJaneDoeScenario(t *testing.T) {
	sender := &fakeSender{configured: true}
	orders := newOrders(sender)

	payload, err := orders.Prepare(janeDoe())
	require.NoError(t, err)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "Chocolate", payload.Items[0].Name)

	receipt, err := orders.Submit(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, int64(101), receipt.RelayMessageID)
	assert.Equal(t, "900", receipt.Total.String())
	assert.NotEmpty(t, receipt.Reference)

	require.Len(t, sender.sent, 1, "exactly one relay call")
	text := sender.sent[0]
	assert.Contains(t, text, "Qty: 2")
	assert.Contains(t, text, "<b>Total Price:</b> 900 DZD")
	assert.Contains(t, text, "🏪 Pickup")
	assert.Contains(t, text, "October 14, 2026, 03:04:05 PM UTC")
}

func TestRoundTripProductThree(t *testing.T) {
	cat := catalog.Default()
	p, ok := cat.ByID(3)
	require.True(t, ok)

	req := janeDoe()
	req.LineItems = []domain.LineItem{{ProductID: 3, Quantity: 4}}
	payload, err := newOrders(&fakeSender{}).Prepare(req)
	require.NoError(t, err)

	parsed, err := services.ParseMessage(services.RenderMessage(payload, fixedNow))
	require.NoError(t, err)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, p.Name, parsed.Items[0].Name)
	assert.Equal(t, 4, parsed.Items[0].Quantity)
	assert.True(t, parsed.Items[0].Subtotal.Equal(p.PriceOrZero().Mul(decimal.NewFromInt(4))))
	assert.True(t, parsed.Total.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, "Jane Doe", parsed.CustomerName)
	assert.Equal(t, domain.Pickup, parsed.ShippingMethod)
	assert.True(t, parsed.OrderTime.Equal(fixedNow))
}

func TestRenderEscapesUserText(t *testing.T) {
	req := janeDoe()
	req.CustomerName = "<script>x</script>"
	req.Address = "12 Rue & Co\n  Building <B>"
	payload, err := newOrders(&fakeSender{}).Prepare(req)
	require.NoError(t, err)

	text := services.RenderMessage(payload, fixedNow)
	assert.NotContains(t, text, "<script>")
	assert.Contains(t, text, "&lt;script&gt;")

	parsed, err := services.ParseMessage(text)
	require.NoError(t, err)
	assert.Equal(t, "<script>x</script>", parsed.CustomerName)
	assert.Equal(t, "12 Rue & Co Building <B>", parsed.Address)
}

func TestPrepareBlocksEmptyOrder(t *testing.T) {
	sender := &fakeSender{configured: true}
	req := janeDoe()
	req.LineItems = nil

	_, err := newOrders(sender).Prepare(req)
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "validation.selectAtLeastOneProduct", verr.Fields[validate.FieldProducts])
	assert.Empty(t, sender.sent)
}

func TestPrepareRejectsUnknownProduct(t *testing.T) {
	req := janeDoe()
	req.LineItems = []domain.LineItem{{ProductID: 99, Quantity: 1}}
	_, err := newOrders(&fakeSender{}).Prepare(req)
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "validation.unknownProduct", verr.Fields[validate.FieldProducts])
}

func TestSubmitRejections(t *testing.T) {
	sender := &fakeSender{configured: true}
	orders := newOrders(sender)
	good, err := orders.Prepare(janeDoe())
	require.NoError(t, err)

	cases := map[string]struct {
		mutate func(p *domain.OrderPayload)
		msg    string
	}{
		"missing name":     {func(p *domain.OrderPayload) { p.CustomerName = "  " }, services.MsgMissingFields},
		"missing phone":    {func(p *domain.OrderPayload) { p.PhoneNumber = "" }, services.MsgMissingFields},
		"missing address":  {func(p *domain.OrderPayload) { p.Address = "" }, services.MsgMissingFields},
		"no items":         {func(p *domain.OrderPayload) { p.Items = nil }, services.MsgMissingFields},
		"bad shipping":     {func(p *domain.OrderPayload) { p.ShippingMethod = "drone" }, services.MsgInvalidShipping},
		"quantity too big": {func(p *domain.OrderPayload) { p.Items[0].Quantity = 51 }, services.MsgInvalidOrder},
		"unknown product":  {func(p *domain.OrderPayload) { p.Items[0].ProductID = 404 }, services.MsgInvalidOrder},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := good
			p.Items = append([]domain.ResolvedItem(nil), good.Items...)
			tc.mutate(&p)
			_, err := orders.Submit(context.Background(), p)
			var verr *services.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tc.msg, verr.Message)
		})
	}
	assert.Empty(t, sender.sent)
}

func TestSubmitUsesCatalogPrices(t *testing.T) {
	sender := &fakeSender{configured: true}
	orders := newOrders(sender)
	p, err := orders.Prepare(janeDoe())
	require.NoError(t, err)
	p.Items[0].Price = decimal.NewNullDecimal(decimal.NewFromInt(1))
	p.Items[0].Name = "Free cake"

	receipt, err := orders.Submit(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "900", receipt.Total.String())
	assert.True(t, strings.Contains(sender.sent[0], "<b>Chocolate</b>"))
}

func TestSubmitNotConfigured(t *testing.T) {
	sender := &fakeSender{configured: false}
	orders := newOrders(sender)
	p, err := orders.Prepare(janeDoe())
	require.NoError(t, err)

	_, err = orders.Submit(context.Background(), p)
	assert.ErrorIs(t, err, services.ErrRelayNotConfigured)
	assert.Empty(t, sender.sent)
}

func TestSubmitTransportFailureIsNotRetried(t *testing.T) {
	sender := &fakeSender{configured: true, err: errors.New("connection reset")}
	orders := newOrders(sender)
	p, err := orders.Prepare(janeDoe())
	require.NoError(t, err)

	_, err = orders.Submit(context.Background(), p)
	var terr *services.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Len(t, sender.sent, 1)
}
