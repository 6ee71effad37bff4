package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sony/gobreaker/v2"

	"github.com/eyira/storefront/pkg/config"
)

var (
	errAPIKeyRequired    = errors.New("resend api key is required")
	errRecipientRequired = errors.New("email recipient is required")
)

// Message is a single transactional email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

type emailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer sends transactional email through Resend. Consecutive failures
// open a circuit breaker so a provider outage fails fast instead of holding
// webhook requests open.
type ResendMailer struct {
	api     emailsAPI
	breaker *gobreaker.CircuitBreaker[*resend.SendEmailResponse]
}

func NewResendMailer(cfg config.ResendConfig) (*ResendMailer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	client := resend.NewClient(apiKey)
	return newResendMailer(client.Emails, cfg.MaxConsecutiveFailures, cfg.BreakerCooldown), nil
}

func newResendMailer(api emailsAPI, maxFailures uint32, cooldown time.Duration) *ResendMailer {
	if maxFailures == 0 {
		maxFailures = 5
	}
	breaker := gobreaker.NewCircuitBreaker[*resend.SendEmailResponse](gobreaker.Settings{
		Name:    "resend",
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
	return &ResendMailer{api: api, breaker: breaker}
}

// Send delivers msg, returning the provider or breaker error on failure.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errRecipientRequired
	}
	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	_, err := m.breaker.Execute(func() (*resend.SendEmailResponse, error) {
		return m.api.SendWithContext(ctx, req)
	})
	if err != nil {
		return fmt.Errorf("send email via resend: %w", err)
	}
	return nil
}
