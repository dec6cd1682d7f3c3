package notify

import (
	"context"
	"errors"
	"time"

	report "adledger/internal/report/domain"
)

// AnomalyPayload is the webhook body for a data-entry inconsistency. The
// engine stores such records as-is; this is the surfacing side.
type AnomalyPayload struct {
	Kind                  string    `json:"kind"`
	CountryID             string    `json:"country_id"`
	Date                  string    `json:"date"`
	RepeatDepositSumLocal float64   `json:"repeat_deposit_sum_local"`
	OwnRevenueLocal       float64   `json:"own_revenue_local"`
	FirstDepositSumLocal  float64   `json:"first_deposit_sum_local"`
	DetectedAt            time.Time `json:"detected_at"`
}

// AnomalyNotifier sends anomaly notifications over a channel.
type AnomalyNotifier struct {
	channel Channel
	clock   func() time.Time
}

// NotifierOption configures the notifier.
type NotifierOption func(*AnomalyNotifier)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) NotifierOption {
	return func(n *AnomalyNotifier) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// NewAnomalyNotifier constructs an anomaly notifier.
func NewAnomalyNotifier(channel Channel, opts ...NotifierOption) (*AnomalyNotifier, error) {
	if channel == nil {
		return nil, errors.New("anomaly notifier: nil channel")
	}
	notifier := &AnomalyNotifier{
		channel: channel,
		clock:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(notifier)
	}
	return notifier, nil
}

// NotifyAnomaly posts a payload for a record flagged as inconsistent.
func (n *AnomalyNotifier) NotifyAnomaly(ctx context.Context, record *report.DayReport) error {
	if record == nil {
		return report.ErrNilRecord
	}
	payload, err := MarshalPayload(AnomalyPayload{
		Kind:                  "negative_repeat_deposit",
		CountryID:             record.CountryID,
		Date:                  record.Date.Format("2006-01-02"),
		RepeatDepositSumLocal: record.RepeatDepositSumLocal,
		OwnRevenueLocal:       record.OwnRevenueLocal,
		FirstDepositSumLocal:  record.FirstDepositSumLocal,
		DetectedAt:            n.clock(),
	})
	if err != nil {
		return err
	}
	return n.channel.Send(ctx, payload)
}
