package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	report "adledger/internal/report/domain"
)

func TestAnomalyNotifierPayload(t *testing.T) {
	payloadCh := make(chan AnomalyPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var payload AnomalyPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		payloadCh <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel, err := NewWebhookChannel(server.URL)
	if err != nil {
		t.Fatalf("new webhook channel: %v", err)
	}
	now := time.Date(2025, time.March, 16, 9, 0, 0, 0, time.UTC)
	notifier, err := NewAnomalyNotifier(channel, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	record := &report.DayReport{
		CountryID:             "KZ",
		Date:                  time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		OwnRevenueLocal:       30,
		FirstDepositSumLocal:  50,
		RepeatDepositSumLocal: -20,
	}
	if err := notifier.NotifyAnomaly(context.Background(), record); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case payload := <-payloadCh:
		if payload.Kind != "negative_repeat_deposit" {
			t.Errorf("kind = %q", payload.Kind)
		}
		if payload.CountryID != "KZ" || payload.Date != "2025-03-15" {
			t.Errorf("key = %s/%s", payload.CountryID, payload.Date)
		}
		if payload.RepeatDepositSumLocal != -20 {
			t.Errorf("repeat deposit sum = %v, want -20", payload.RepeatDepositSumLocal)
		}
		if !payload.DetectedAt.Equal(now) {
			t.Errorf("detected at = %s, want %s", payload.DetectedAt, now)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not called")
	}
}

func TestWebhookChannelRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	channel, err := NewWebhookChannel(server.URL)
	if err != nil {
		t.Fatalf("new webhook channel: %v", err)
	}
	if err := channel.Send(context.Background(), []byte(`{}`)); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestNewWebhookChannelRequiresURL(t *testing.T) {
	if _, err := NewWebhookChannel(""); err == nil {
		t.Fatal("expected error on empty url")
	}
}
