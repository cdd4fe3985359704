package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/pricing"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Session is what the storefront needs to redirect the customer to a hosted checkout page.
type Session struct {
	ID  string
	URL string
}

// CheckoutSessionCreator starts a hosted payment for a pending order.
type CheckoutSessionCreator interface {
	CreateCheckoutSession(ctx context.Context, order models.Order) (Session, error)
}

type StripeGateway struct {
	api      *client.API
	currency string
	appURL   string
}

func NewStripeGateway(secretKey, currency, appURL string) *StripeGateway {
	return &StripeGateway{
		api:      client.New(secretKey, nil),
		currency: strings.ToLower(currency),
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

// SuccessURL and CancelURL are where the gateway sends the browser back to.
func SuccessURL(appURL, orderNumber string) string {
	return fmt.Sprintf("%s/order/%s?success=true", strings.TrimRight(appURL, "/"), orderNumber)
}

func CancelURL(appURL string) string {
	return strings.TrimRight(appURL, "/") + "/checkout?canceled=true"
}

// CreateCheckoutSession creates a card payment session with one line per order item.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, order models.Order) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(SuccessURL(g.appURL, order.OrderNumber)),
		CancelURL:          stripe.String(CancelURL(g.appURL)),
		ClientReferenceID:  stripe.String(order.OrderNumber),
	}
	if order.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(order.CustomerEmail)
	}
	for _, item := range order.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Title),
				},
				UnitAmount: stripe.Int64(pricing.MinorUnits(item.UnitPrice())),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}
	params.AddMetadata("orderId", strconv.FormatUint(uint64(order.ID), 10))
	params.AddMetadata("orderNumber", order.OrderNumber)
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, fmt.Errorf("stripe checkout session: %w", err)
	}
	return Session{ID: s.ID, URL: s.URL}, nil
}
