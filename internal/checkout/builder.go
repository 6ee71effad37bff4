package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eyira/storefront/internal/cart"
	"github.com/eyira/storefront/pkg/config"
	"github.com/eyira/storefront/pkg/enums"
	pkgerrors "github.com/eyira/storefront/pkg/errors"
)

const (
	ModePayment = "payment"

	// SessionIDPlaceholder is expanded by the provider into the created session id.
	SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

	shippingRateFixedAmount = "fixed_amount"
	estimateUnitBusinessDay = "business_day"
)

var hundred = decimal.NewFromInt(100)

// SessionConfig is the provider-facing description of a hosted checkout session.
type SessionConfig struct {
	Mode               string
	PaymentMethodTypes []string
	LineItems          []SessionLineItem
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string

	// pickup only
	PhoneNumberCollection bool
	SubmitMessage         string

	// ship only
	ShippingAllowedCountries []string
	ShippingOptions          []ShippingOption
}

type SessionLineItem struct {
	Currency    string
	UnitAmount  int64
	Quantity    int64
	Name        string
	Description string
	Images      []string
}

type ShippingOption struct {
	DisplayName     string
	Amount          int64
	Currency        string
	MinBusinessDays int64
	MaxBusinessDays int64
}

// IsFree reports whether the option costs nothing.
func (o ShippingOption) IsFree() bool {
	return o.Amount == 0
}

// Builder turns a cart snapshot into a SessionConfig. It performs no I/O.
type Builder struct {
	domain                string
	brand                 string
	currency              string
	pickupLocation        string
	freeShippingThreshold decimal.Decimal
	standardShippingCents int64
	allowedCountries      []string
	placeholderImage      string
	usePlaceholderImage   bool
}

func NewBuilder(cfg config.StorefrontConfig) *Builder {
	countries := make([]string, 0, len(cfg.AllowedCountries))
	for _, c := range cfg.AllowedCountries {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			countries = append(countries, c)
		}
	}
	return &Builder{
		domain:                strings.TrimRight(cfg.PublicDomain, "/"),
		brand:                 cfg.Brand,
		currency:              strings.ToLower(cfg.Currency),
		pickupLocation:        cfg.PickupLocation,
		freeShippingThreshold: cfg.FreeShippingThreshold,
		standardShippingCents: cfg.StandardShippingCents,
		allowedCountries:      countries,
		placeholderImage:      cfg.PlaceholderImageURL,
		usePlaceholderImage:   cfg.PublicDomainIsLocal(),
	}
}

// Build maps items and method into a SessionConfig. An empty item list is rejected.
func (b *Builder) Build(items []cart.LineItem, method enums.DeliveryMethod) (*SessionConfig, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported delivery method %q", method))
	}

	cfg := &SessionConfig{
		Mode:               ModePayment,
		PaymentMethodTypes: []string{"card"},
		LineItems:          make([]SessionLineItem, 0, len(items)),
		SuccessURL:         b.domain + "/success?session_id=" + SessionIDPlaceholder,
		CancelURL:          b.domain + "/",
		Metadata:           DeliveryMetadata(method),
	}

	for _, item := range items {
		cfg.LineItems = append(cfg.LineItems, SessionLineItem{
			Currency:    b.currency,
			UnitAmount:  MinorUnits(item.Price),
			Quantity:    item.Quantity,
			Name:        fmt.Sprintf("%s - %s", b.brand, item.Name),
			Description: item.Size,
			Images:      []string{b.imageURL(item.Image)},
		})
	}

	switch method {
	case enums.DeliveryMethodPickup:
		cfg.PhoneNumberCollection = true
		cfg.SubmitMessage = fmt.Sprintf("You are placing a PICKUP order for our %s.", b.pickupLocation)
	case enums.DeliveryMethodShip:
		cfg.ShippingAllowedCountries = append([]string(nil), b.allowedCountries...)
		cfg.ShippingOptions = b.shippingOptions(cart.Subtotal(items))
	}

	return cfg, nil
}

// QualifiesForFreeShipping reports whether subtotal meets the free-shipping threshold.
func (b *Builder) QualifiesForFreeShipping(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(b.freeShippingThreshold)
}

// shippingOptions always offers standard shipping; free shipping is added
// alongside it, never instead of it, once the threshold is met.
func (b *Builder) shippingOptions(subtotal decimal.Decimal) []ShippingOption {
	options := []ShippingOption{{
		DisplayName:     "Standard Shipping",
		Amount:          b.standardShippingCents,
		Currency:        b.currency,
		MinBusinessDays: 3,
		MaxBusinessDays: 5,
	}}
	if b.QualifiesForFreeShipping(subtotal) {
		options = append(options, ShippingOption{
			DisplayName:     "Free Shipping",
			Amount:          0,
			Currency:        b.currency,
			MinBusinessDays: 5,
			MaxBusinessDays: 7,
		})
	}
	return options
}

// imageURL resolves a storefront image path to something the provider can fetch.
func (b *Builder) imageURL(path string) string {
	if b.usePlaceholderImage {
		return b.placeholderImage
	}
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.domain + path
}

// MinorUnits converts a currency amount to cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
