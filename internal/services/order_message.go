package services

import (
	"bufio"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"torta/internal/domain"
)

const (
	Currency        = "DZD"
	orderTimeLayout = "January 2, 2006, 03:04:05 PM"
)

// RenderMessage formats an order as the chat message. User-provided text
// is HTML-escaped because the chat parses the message as HTML.
func RenderMessage(p domain.OrderPayload, at time.Time) string {
	var b strings.Builder
	esc := html.EscapeString

	shipping := "🚚 Delivery"
	if p.ShippingMethod == domain.Pickup {
		shipping = "🏪 Pickup"
	}

	b.WriteString("🛒 <b>NEW ORDER RECEIVED</b>\n\n")
	b.WriteString("👤 <b>Customer Details:</b>\n")
	fmt.Fprintf(&b, "<b>Name:</b> %s\n", esc(p.CustomerName))
	fmt.Fprintf(&b, "<b>Phone:</b> %s\n", esc(p.PhoneNumber))
	fmt.Fprintf(&b, "<b>Address:</b> %s\n\n", esc(p.Address))
	fmt.Fprintf(&b, "📦 <b>Shipping Method:</b> %s\n\n", shipping)
	fmt.Fprintf(&b, "🍰 <b>Products Ordered (%d items):</b>\n", p.TotalQuantity())
	for _, it := range p.Items {
		fmt.Fprintf(&b, "• <b>%s</b> (Qty: %d) - %s %s\n", esc(it.Name), it.Quantity, it.Subtotal().String(), Currency)
	}
	fmt.Fprintf(&b, "\n💰 <b>Total Price:</b> %s %s\n\n", p.Total().String(), Currency)
	fmt.Fprintf(&b, "📅 <b>Order Time:</b> %s UTC\n\n", at.UTC().Format(orderTimeLayout))
	b.WriteString("<i>Order submitted via website form</i>")
	return b.String()
}

// ParsedItem is one item line read back from a message.
type ParsedItem struct {
	Name     string
	Quantity int
	Subtotal decimal.Decimal
}

// ParsedMessage is the data recovered from a rendered message.
type ParsedMessage struct {
	CustomerName   string
	PhoneNumber    string
	Address        string
	ShippingMethod domain.ShippingMethod
	Items          []ParsedItem
	Total          decimal.Decimal
	OrderTime      time.Time
}

var (
	reItem  = regexp.MustCompile(`^• <b>(.*)</b> \(Qty: (\d+)\) - (-?[0-9.]+) ` + Currency + `$`)
	reTotal = regexp.MustCompile(`^💰 <b>Total Price:</b> (-?[0-9.]+) ` + Currency + `$`)
)

// ParseMessage reads a message produced by RenderMessage.
func ParseMessage(text string) (ParsedMessage, error) {
	var m ParsedMessage
	var sawTotal bool
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "<b>Name:</b> "):
			m.CustomerName = html.UnescapeString(strings.TrimPrefix(line, "<b>Name:</b> "))
		case strings.HasPrefix(line, "<b>Phone:</b> "):
			m.PhoneNumber = html.UnescapeString(strings.TrimPrefix(line, "<b>Phone:</b> "))
		case strings.HasPrefix(line, "<b>Address:</b> "):
			m.Address = html.UnescapeString(strings.TrimPrefix(line, "<b>Address:</b> "))
		case strings.HasPrefix(line, "📦 <b>Shipping Method:</b> "):
			if strings.HasSuffix(line, "Pickup") {
				m.ShippingMethod = domain.Pickup
			} else {
				m.ShippingMethod = domain.Delivery
			}
		case strings.HasPrefix(line, "📅 <b>Order Time:</b> "):
			raw := strings.TrimSuffix(strings.TrimPrefix(line, "📅 <b>Order Time:</b> "), " UTC")
			at, err := time.ParseInLocation(orderTimeLayout, raw, time.UTC)
			if err != nil {
				return ParsedMessage{}, errors.Wrap(err, "parse order time")
			}
			m.OrderTime = at
		default:
			if sub := reItem.FindStringSubmatch(line); sub != nil {
				qty, err := strconv.Atoi(sub[2])
				if err != nil {
					return ParsedMessage{}, errors.Wrap(err, "parse quantity")
				}
				subtotal, err := decimal.NewFromString(sub[3])
				if err != nil {
					return ParsedMessage{}, errors.Wrap(err, "parse subtotal")
				}
				m.Items = append(m.Items, ParsedItem{Name: html.UnescapeString(sub[1]), Quantity: qty, Subtotal: subtotal})
			} else if sub := reTotal.FindStringSubmatch(line); sub != nil {
				total, err := decimal.NewFromString(sub[1])
				if err != nil {
					return ParsedMessage{}, errors.Wrap(err, "parse total")
				}
				m.Total = total
				sawTotal = true
			}
		}
	}
	if err := sc.Err(); err != nil {
		return ParsedMessage{}, err
	}
	if len(m.Items) == 0 || !sawTotal {
		return ParsedMessage{}, errors.New("not an order message")
	}
	return m, nil
}
