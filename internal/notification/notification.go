// Package notification provides the fire-and-forget SMS/email boundary.
// Send failures are logged and counted but never propagated to the primary
// state change that triggered them.
package notification

import (
	"context"
	"strings"
	"time"

	"github.com/otcheredev/clinic-core/internal/metrics"
	"github.com/rs/zerolog/log"
)

// SMSSender is the interface for sending SMS messages
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// EmailSender is the interface for sending email messages
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Template is a reusable notification template with {{placeholder}}
// substitution
type Template struct {
	ID      string
	Subject string
	Body    string
}

var builtInTemplates = map[string]Template{
	"appointment-reminder": {
		ID:      "appointment-reminder",
		Subject: "Appointment Reminder",
		Body:    "Dear {{patient_name}}, this is a reminder of your appointment on {{date}} at {{time}}.",
	},
	"payment-receipt": {
		ID:      "payment-receipt",
		Subject: "Payment Received",
		Body:    "Dear {{patient_name}}, we received your payment of {{amount}}. Thank you.",
	},
	"visit-cleared": {
		ID:      "visit-cleared",
		Subject: "Visit Complete",
		Body:    "Dear {{patient_name}}, your visit is complete. Get well soon.",
	},
}

// Render substitutes {{key}} placeholders in a built-in template. Unknown
// template IDs return ok=false.
func Render(templateID string, data map[string]string) (subject, body string, ok bool) {
	tpl, ok := builtInTemplates[templateID]
	if !ok {
		return "", "", false
	}
	subject = tpl.Subject
	body = tpl.Body
	for key, value := range data {
		placeholder := "{{" + key + "}}"
		subject = strings.ReplaceAll(subject, placeholder, value)
		body = strings.ReplaceAll(body, placeholder, value)
	}
	return subject, body, true
}

// Notifier dispatches notifications asynchronously through the configured
// providers
type Notifier struct {
	sms     SMSSender
	email   EmailSender
	timeout time.Duration
}

// NewNotifier creates a notifier over the given providers. Either provider
// may be nil, in which case that channel is skipped.
func NewNotifier(sms SMSSender, email EmailSender) *Notifier {
	return &Notifier{
		sms:     sms,
		email:   email,
		timeout: 10 * time.Second,
	}
}

// SendSMSAsync dispatches an SMS without blocking the caller. The detached
// context means an in-flight send survives the originating request.
func (n *Notifier) SendSMSAsync(to, templateID string, data map[string]string) {
	if n.sms == nil || to == "" {
		return
	}
	_, body, ok := Render(templateID, data)
	if !ok {
		log.Warn().Str("template", templateID).Msg("Unknown notification template")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.sms.SendSMS(ctx, to, body); err != nil {
			metrics.NotificationsSent.WithLabelValues("sms", "failed").Inc()
			log.Error().Err(err).Str("template", templateID).Msg("SMS send failed")
			return
		}
		metrics.NotificationsSent.WithLabelValues("sms", "sent").Inc()
	}()
}

// SendEmailAsync dispatches an email without blocking the caller
func (n *Notifier) SendEmailAsync(to, templateID string, data map[string]string) {
	if n.email == nil || to == "" {
		return
	}
	subject, body, ok := Render(templateID, data)
	if !ok {
		log.Warn().Str("template", templateID).Msg("Unknown notification template")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.email.SendEmail(ctx, to, subject, body); err != nil {
			metrics.NotificationsSent.WithLabelValues("email", "failed").Inc()
			log.Error().Err(err).Str("template", templateID).Msg("Email send failed")
			return
		}
		metrics.NotificationsSent.WithLabelValues("email", "sent").Inc()
	}()
}

// LogProvider is a development provider that writes notifications to the
// log instead of a real gateway
type LogProvider struct{}

// SendSMS logs the message
func (LogProvider) SendSMS(ctx context.Context, to, body string) error {
	log.Info().Str("to", to).Str("body", body).Msg("SMS (log provider)")
	return nil
}

// SendEmail logs the message
func (LogProvider) SendEmail(ctx context.Context, to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("Email (log provider)")
	return nil
}
