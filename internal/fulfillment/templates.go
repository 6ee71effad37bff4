package fulfillment

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/eyira/storefront/pkg/enums"
)

const (
	subjectPickup    = "Your %s order is confirmed - pickup details"
	subjectShip      = "Your %s order is confirmed"
	subjectAbandoned = "You left something in your %s cart"
)

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #2b2b2b; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">{{if .FirstName}}Hi {{.FirstName}},{{else}}Hi there,{{end}}</h1>
	<p>Thank you for your order from {{.Brand}}! We have received your payment and our kitchen is preparing your order.</p>
	{{if .Pickup}}
	<div style="background: #f8f5f0; padding: 15px; border-radius: 5px; margin: 20px 0;">
		<p style="margin: 0;"><strong>Pickup location:</strong> {{.PickupLocation}}</p>
		<p style="margin: 5px 0 0 0;">Please wait for a separate email letting you know your order is ready for collection before coming by.</p>
	</div>
	{{else}}
	<div style="background: #f8f5f0; padding: 15px; border-radius: 5px; margin: 20px 0;">
		<p style="margin: 0;">Your order will be shipped to the address you provided. A tracking number will follow by email once it is on its way.</p>
	</div>
	{{end}}
	<p style="font-size: 12px; color: #999;">Order reference: {{.SessionID}}</p>
</body>
</html>`))

var abandonedTemplate = template.Must(template.New("abandoned").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #2b2b2b; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Still thinking it over?</h1>
	<p>Your {{.Brand}} checkout expired before it was completed. Your favourites are still waiting for you.</p>
	<p><a href="{{.StoreURL}}" style="color: #b5542b;">Return to {{.Brand}} and finish checking out</a></p>
</body>
</html>`))

type confirmationData struct {
	FirstName      string
	Brand          string
	Pickup         bool
	PickupLocation string
	SessionID      string
}

type abandonedData struct {
	Brand    string
	StoreURL string
}

// FirstName returns the first word of a display name, or "" when none is present.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func confirmationSubject(brand string, method enums.DeliveryMethod) string {
	if method == enums.DeliveryMethodPickup {
		return fmt.Sprintf(subjectPickup, brand)
	}
	return fmt.Sprintf(subjectShip, brand)
}

func renderConfirmation(data confirmationData) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render confirmation email: %w", err)
	}
	return buf.String(), nil
}

func renderAbandoned(data abandonedData) (string, error) {
	var buf bytes.Buffer
	if err := abandonedTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render abandoned cart email: %w", err)
	}
	return buf.String(), nil
}
