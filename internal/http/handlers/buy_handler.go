package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"torta/internal/catalog"
	"torta/internal/domain"
	applog "torta/internal/log"
	"torta/internal/metrics"
	"torta/internal/services"
	"torta/internal/validate"
)

type BuyHandler struct {
	Catalog *catalog.Catalog
	Orders  *services.OrderService
	Metrics *metrics.Metrics
}

type buyItemView struct {
	productView
	Selected bool
	Quantity int
	Subtotal string
	Error    string
}

type buyForm struct {
	FullName       string
	PhoneNumber    string
	Address        string
	ShippingMethod string
}

func (h *BuyHandler) product(c *fiber.Ctx) (domain.Product, bool) {
	raw, ok := validate.ID(c.Params("productId"))
	if !ok {
		return domain.Product{}, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return domain.Product{}, false
	}
	return h.Catalog.ByID(id)
}

func (h *BuyHandler) page(c *fiber.Ctx, status int, p domain.Product, form buyForm, sel *domain.Selection, errs validate.Errors, data fiber.Map) error {
	sh := ShellFrom(c)
	total := decimal.Zero
	items := make([]buyItemView, 0, h.Catalog.Len())
	for _, prod := range h.Catalog.All() {
		v := buyItemView{productView: viewProduct(sh, prod), Selected: sel.Has(prod.ID), Quantity: sel.Quantity(prod.ID)}
		if v.Quantity == 0 {
			v.Quantity = 1
		}
		if v.Selected {
			sub := prod.PriceOrZero().Mul(decimal.NewFromInt(int64(v.Quantity)))
			total = total.Add(sub)
			v.Subtotal = money(sh, sub)
		}
		if key, ok := errs[validate.ItemField(prod.ID)]; ok {
			v.Error = sh.T(key)
		}
		items = append(items, v)
	}
	fieldErrs := map[string]string{}
	for f, key := range errs {
		fieldErrs[f] = sh.T(key)
	}
	if data == nil {
		data = fiber.Map{}
	}
	data["Product"] = viewProduct(sh, p)
	data["Items"] = items
	data["Form"] = form
	data["Errors"] = fieldErrs
	data["Total"] = money(sh, total)
	data["HideLanguage"] = true
	data["Action"] = sh.Prefix + "/buy/" + strconv.Itoa(p.ID)
	return render(c.Status(status), "buy", data)
}

// Form handles GET /buy/:productId with the product preselected.
func (h *BuyHandler) Form(c *fiber.Ctx) error {
	p, ok := h.product(c)
	if !ok {
		return message(c, fiber.StatusNotFound, "common.notFound")
	}
	sel := domain.NewSelection(domain.LineItem{ProductID: p.ID, Quantity: 1})
	return h.page(c, fiber.StatusOK, p, buyForm{}, sel, nil, nil)
}

// selection reads the ticked products (product_<id>=on) and their
// quantities (qty_<id>) in catalog order.
func (h *BuyHandler) selection(c *fiber.Ctx) *domain.Selection {
	sel := domain.NewSelection()
	for _, id := range h.Catalog.IDs() {
		sid := strconv.Itoa(id)
		if c.FormValue("product_"+sid) == "" {
			continue
		}
		sel.Toggle(id, true)
		if q, err := strconv.Atoi(c.FormValue("qty_" + sid)); err == nil {
			sel.SetQuantity(id, q)
		} else {
			sel.SetQuantity(id, 0)
		}
	}
	return sel
}

// Submit handles POST /buy/:productId. A valid order is relayed exactly
// once; the form is then shown cleared with a confirmation.
func (h *BuyHandler) Submit(c *fiber.Ctx) error {
	p, ok := h.product(c)
	if !ok {
		return message(c, fiber.StatusNotFound, "common.notFound")
	}
	form := buyForm{
		FullName:       c.FormValue("fullName"),
		PhoneNumber:    c.FormValue("phoneNumber"),
		Address:        c.FormValue("address"),
		ShippingMethod: c.FormValue("shippingMethod"),
	}
	sel := h.selection(c)
	req := domain.OrderRequest{
		CustomerName:   form.FullName,
		PhoneNumber:    form.PhoneNumber,
		Address:        form.Address,
		ShippingMethod: domain.ShippingMethod(form.ShippingMethod),
		LineItems:      sel.Items(),
	}

	payload, err := h.Orders.Prepare(req)
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		h.Metrics.ObserveOrder("invalid")
		applog.Info(c, "order.form.invalid", map[string]any{"fields": len(verr.Fields)})
		return h.page(c, fiber.StatusBadRequest, p, form, sel, verr.Fields, nil)
	}
	if err != nil {
		return err
	}

	receipt, err := h.Orders.Submit(c.UserContext(), payload)
	h.Metrics.ObserveOrder(orderOutcome(err))
	if err != nil {
		applog.Error(c, "order.form.relay_fail", err, nil)
		return h.page(c, fiber.StatusBadGateway, p, form, sel, nil, fiber.Map{
			"Failure": ShellFrom(c).T("common.genericError"),
		})
	}
	applog.Audit(c, "order.relayed", map[string]any{
		"reference": receipt.Reference, "items": receipt.Items, "total": receipt.Total.String(),
	})
	fresh := domain.NewSelection(domain.LineItem{ProductID: p.ID, Quantity: 1})
	return h.page(c, fiber.StatusOK, p, buyForm{}, fresh, nil, fiber.Map{
		"Success":   true,
		"Reference": receipt.Reference,
	})
}
