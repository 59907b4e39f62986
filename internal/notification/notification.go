// Package notification sends customer SMS messages through a configured
// provider. Send never returns an error; failures are logged and reported in
// the Result.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Provider names accepted in Config.Provider.
const (
	ProviderLog     = "log"
	ProviderNoop    = "noop"
	ProviderWebhook = "webhook"
)

const webhookTimeout = 5 * time.Second

// Config selects and configures the SMS provider. It is fixed at construction.
type Config struct {
	Provider     string
	WebhookURL   string
	WebhookToken string
	SenderID     string
}

// Result reports the outcome of a single send.
type Result struct {
	Success bool
}

// Provider delivers a message to one recipient.
type Provider interface {
	Send(ctx context.Context, recipient, message string) error
}

// Dispatcher sends messages through a Provider and swallows its errors.
type Dispatcher struct {
	provider Provider
	name     string
	log      *zap.Logger
}

// NewDispatcher builds a Dispatcher for cfg. Unknown providers, and the webhook
// provider without a URL, fall back to logging.
func NewDispatcher(cfg Config, log *zap.Logger) *Dispatcher {
	var (
		p    Provider
		name = cfg.Provider
	)
	switch cfg.Provider {
	case ProviderNoop:
		p = noopProvider{}
	case ProviderWebhook:
		if cfg.WebhookURL == "" {
			log.Warn("SMS webhook provider selected without a URL, falling back to log provider")
			p, name = logProvider{log: log}, ProviderLog
			break
		}
		p = &webhookProvider{
			url:      cfg.WebhookURL,
			token:    cfg.WebhookToken,
			senderID: cfg.SenderID,
			client: &http.Client{
				Timeout:   webhookTimeout,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			},
		}
	default:
		p, name = logProvider{log: log}, ProviderLog
	}
	return NewDispatcherWithProvider(name, p, log)
}

// NewDispatcherWithProvider wraps an explicit Provider.
func NewDispatcherWithProvider(name string, p Provider, log *zap.Logger) *Dispatcher {
	return &Dispatcher{provider: p, name: name, log: log.Named("notification")}
}

// Send delivers message to phone.
func (d *Dispatcher) Send(ctx context.Context, phone, message string) Result {
	if phone == "" || message == "" {
		d.log.Warn("skipping SMS with empty recipient or message")
		return Result{Success: false}
	}
	if err := d.provider.Send(ctx, phone, message); err != nil {
		d.log.Error("failed to send SMS",
			zap.String("provider", d.name),
			zap.String("recipient", phone),
			zap.Error(err),
		)
		return Result{Success: false}
	}
	d.log.Debug("SMS sent", zap.String("provider", d.name), zap.String("recipient", phone))
	return Result{Success: true}
}

type logProvider struct {
	log *zap.Logger
}

func (p logProvider) Send(_ context.Context, recipient, message string) error {
	p.log.Info("SMS", zap.String("recipient", recipient), zap.String("message", message))
	return nil
}

type noopProvider struct{}

func (noopProvider) Send(context.Context, string, string) error { return nil }

type webhookProvider struct {
	url      string
	token    string
	senderID string
	client   *http.Client
}

type webhookPayload struct {
	Channel   string `json:"channel"`
	Sender    string `json:"sender,omitempty"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

func (p *webhookProvider) Send(ctx context.Context, recipient, message string) error {
	body, err := json.Marshal(webhookPayload{
		Channel:   "sms",
		Sender:    p.senderID,
		Recipient: recipient,
		Message:   message,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("provider rejected request: %s", resp.Status)
	}
	return nil
}
