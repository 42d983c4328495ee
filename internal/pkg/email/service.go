// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/your-org/marketflow-backend/internal/config"
	"github.com/your-org/marketflow-backend/internal/domain/order"
)

const resendEndpoint = "https://api.resend.com/emails"

var statusTmpl = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #333;">
<h2>Order {{.Number}}</h2>
<p>Hi {{.Name}},</p>
<p>Your order is now <strong>{{.Status}}</strong>.</p>
{{if .Delivery}}<p>Estimated delivery: {{.Delivery}}</p>{{end}}
</body></html>`))

// Renderer produces the HTML body of an order confirmation
type Renderer interface {
	GenerateHTML(o *order.Order) ([]byte, error)
}

// Service sends order emails through the configured provider
type Service struct {
	config    config.EmailConfig
	renderer  Renderer
	logger    *logrus.Logger
	client    *http.Client
	cb        *gobreaker.CircuitBreaker
	resendURL string
}

// NewService creates a new email service
func NewService(cfg config.EmailConfig, renderer Renderer, logger *logrus.Logger) *Service {
	return &Service{
		config:   cfg,
		renderer: renderer,
		logger:   logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "email:" + cfg.Provider,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("circuit breaker state changed")
			},
		}),
		resendURL: resendEndpoint,
	}
}

// SendEmail sends an email using the configured provider
func (s *Service) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.Provider {
	case ProviderLog, "":
		s.logger.WithFields(logrus.Fields{
			"to":      email.To,
			"subject": email.Subject,
			"type":    email.Type,
		}).Info("email not sent, log provider configured")
		return nil
	case ProviderSMTP:
		return s.guard(func() error { return s.sendSMTPEmail(email) })
	case ProviderResend:
		return s.guard(func() error { return s.sendResendEmail(ctx, email) })
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Provider)
	}
}

// guard runs a provider call through the circuit breaker
func (s *Service) guard(send func() error) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, send()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("email provider unavailable: %w", err)
	}
	return err
}

// SendOrderConfirmation mails the order confirmation page to the customer
func (s *Service) SendOrderConfirmation(ctx context.Context, o *order.Order) error {
	body, err := s.renderer.GenerateHTML(o)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{o.CustomerEmail},
		Subject:     fmt.Sprintf("Order Confirmation - %s", o.OrderNumber()),
		HTMLContent: string(body),
		Type:        EmailTypeOrderConfirmation,
	})
}

// SendStatusUpdate tells the customer their order moved to a new status
func (s *Service) SendStatusUpdate(ctx context.Context, o *order.Order) error {
	data := struct {
		Number, Name, Status, Delivery string
	}{
		Number: o.OrderNumber(),
		Name:   o.CustomerName,
		Status: string(o.Status),
	}
	if o.Status == order.StatusShipped {
		data.Delivery = o.EstimatedDelivery.Format("January 2, 2006")
	}

	var buf bytes.Buffer
	if err := statusTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render status update: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{o.CustomerEmail},
		Subject:     fmt.Sprintf("Order %s is %s", o.OrderNumber(), o.Status),
		HTMLContent: buf.String(),
		Type:        EmailTypeOrderStatusUpdate,
	})
}

func (s *Service) sendResendEmail(ctx context.Context, email *Email) error {
	payload, err := json.Marshal(resendRequest{
		From:    s.fromAddress(),
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
		ReplyTo: s.config.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.resendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend API error: status %d, body: %s", resp.StatusCode, body)
	}

	var out resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err == nil {
		s.logger.WithFields(logrus.Fields{"email_id": out.ID, "type": email.Type}).Debug("email sent")
	}
	return nil
}

func (s *Service) fromAddress() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}
