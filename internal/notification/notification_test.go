package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
)

type failingProvider struct{}

func (failingProvider) Send(context.Context, string, string) error {
	return errors.New("gateway down")
}

func TestDispatcher_FailureIsReportedNotReturned(t *testing.T) {
	d := NewDispatcherWithProvider("fail", failingProvider{}, zap.NewNop())
	res := d.Send(context.Background(), "+254712345678", "hello")
	assert.False(t, res.Success)
}

func TestDispatcher_EmptyRecipient(t *testing.T) {
	d := NewDispatcher(Config{Provider: ProviderNoop}, zap.NewNop())
	assert.False(t, d.Send(context.Background(), "", "hello").Success)
	assert.True(t, d.Send(context.Background(), "+254712345678", "hello").Success)
}

func TestDispatcher_WebhookProvider(t *testing.T) {
	var got webhookPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewDispatcher(Config{
		Provider:     ProviderWebhook,
		WebhookURL:   srv.URL,
		WebhookToken: "secret",
		SenderID:     "SWIFTWASH",
	}, zap.NewNop())

	res := d.Send(context.Background(), "+254712345678", "Your car is ready")
	assert.True(t, res.Success)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, webhookPayload{Channel: "sms", Sender: "SWIFTWASH", Recipient: "+254712345678", Message: "Your car is ready"}, got)
}

func TestDispatcher_WebhookRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewDispatcher(Config{Provider: ProviderWebhook, WebhookURL: srv.URL}, zap.NewNop())
	assert.False(t, d.Send(context.Background(), "+254712345678", "hi").Success)
}

func TestDispatcher_WebhookWithoutURLFallsBackToLog(t *testing.T) {
	d := NewDispatcher(Config{Provider: ProviderWebhook}, zap.NewNop())
	assert.Equal(t, ProviderLog, d.name)
	assert.True(t, d.Send(context.Background(), "+254712345678", "hi").Success)
}

func TestStatusMessage(t *testing.T) {
	bk, err := bookingDomain.NewBooking("Jane", "+254712345678", "Kilimani",
		bookingDomain.VehicleSaloon, bookingDomain.ServiceBodyWash,
		time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), "09:00", 200, "")
	require.NoError(t, err)

	msg, ok := StatusMessage(bk, bookingDomain.StatusConfirmed)
	require.True(t, ok)
	assert.Contains(t, msg, bk.BookingNumber())
	assert.Contains(t, msg, "2026-11-02 at 09:00")

	msg, ok = StatusMessage(bk, bookingDomain.StatusDone)
	require.True(t, ok)
	assert.Contains(t, msg, "KES 200")

	_, ok = StatusMessage(bk, bookingDomain.StatusRejected)
	assert.False(t, ok)
	_, ok = StatusMessage(bk, bookingDomain.StatusPending)
	assert.False(t, ok)
}
