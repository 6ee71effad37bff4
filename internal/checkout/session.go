package checkout

import (
	"encoding/json"
	"regexp"

	"github.com/stripe/stripe-go/v84"

	"github.com/eyira/storefront/pkg/enums"
)

// SessionIDPrefix prefixes every provider checkout session identifier.
const SessionIDPrefix = "cs_"

var sessionIDPattern = regexp.MustCompile(`^cs_[A-Za-z0-9_]+$`)

// IsSessionID reports whether id is plausibly a provider checkout session id.
func IsSessionID(id string) bool {
	return len(id) <= 255 && sessionIDPattern.MatchString(id)
}

// Session is the read-only view of a provider checkout session this service uses.
type Session struct {
	ID            string
	PaymentStatus string
	CustomerEmail string
	CustomerName  string
	ShippingName  string
	Metadata      map[string]string
	AmountTotal   int64
	Currency      string
	LineItems     []SessionLine
}

type SessionLine struct {
	Description string
	Quantity    int64
	AmountTotal int64
}

// DeliveryMethod resolves the session's delivery method from its metadata.
func (s Session) DeliveryMethod() enums.DeliveryMethod {
	return ResolveDeliveryMethod(s.Metadata)
}

// SessionFromStripe projects a Stripe checkout session.
func SessionFromStripe(cs *stripe.CheckoutSession) Session {
	if cs == nil {
		return Session{}
	}
	s := Session{
		ID:            cs.ID,
		PaymentStatus: string(cs.PaymentStatus),
		CustomerEmail: cs.CustomerEmail,
		Metadata:      cs.Metadata,
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
	}
	if cs.CustomerDetails != nil {
		if cs.CustomerDetails.Email != "" {
			s.CustomerEmail = cs.CustomerDetails.Email
		}
		s.CustomerName = cs.CustomerDetails.Name
	}
	if cs.CollectedInformation != nil && cs.CollectedInformation.ShippingDetails != nil {
		s.ShippingName = cs.CollectedInformation.ShippingDetails.Name
	}
	if cs.LineItems != nil {
		for _, li := range cs.LineItems.Data {
			if li == nil {
				continue
			}
			s.LineItems = append(s.LineItems, SessionLine{
				Description: li.Description,
				Quantity:    li.Quantity,
				AmountTotal: li.AmountTotal,
			})
		}
	}
	return s
}

// DecodeSession parses a raw checkout.session object, as found in webhook event data.
func DecodeSession(raw json.RawMessage) (Session, error) {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(raw, &cs); err != nil {
		return Session{}, err
	}
	return SessionFromStripe(&cs), nil
}
