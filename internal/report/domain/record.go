package report

import "time"

// DayReport is the enriched record for one (date, country): the canonical
// inputs plus every derived financial field. It is computed fresh on each
// ingestion pass and persisted as a whole.
type DayReport struct {
	CountryID string
	Date      time.Time

	Spend map[string]float64

	SettlementRevenueLocal   float64
	SettlementRevenueSettled float64
	OwnRevenueLocal          float64
	OwnRevenueSettled        float64

	FirstDepositCount    int
	AltDepositCount      int
	FirstDepositSumLocal float64

	OtherCosts map[string]float64

	TotalSpend              float64
	AgencyFee               float64
	ExchangeRateSettlement  float64
	CommissionSettlement    float64
	ExchangeRateOwn         float64
	TotalRevenueSettled     float64
	FirstDepositSumSettled  float64
	RepeatDepositSumLocal   float64
	RepeatDepositSumSettled float64

	HandlerRepeatDepositPay float64
	HandlerFirstDepositPay  float64
	BuyerPay                float64
	FixedRolePay            float64
	TotalPayroll            float64

	TotalExpenses          float64
	ExpensesExcludingSpend float64
	NetProfit              float64
	ROI                    float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy.
func (r *DayReport) Clone() *DayReport {
	if r == nil {
		return nil
	}
	copied := *r
	copied.Spend = make(map[string]float64, len(r.Spend))
	for k, v := range r.Spend {
		copied.Spend[k] = v
	}
	copied.OtherCosts = make(map[string]float64, len(r.OtherCosts))
	for k, v := range r.OtherCosts {
		copied.OtherCosts[k] = v
	}
	return &copied
}

// HasAnomaly reports whether the record carries a signal of upstream
// data-entry inconsistency. The engine stores such values as-is; surfacing is
// the job of alerting collaborators.
func (r *DayReport) HasAnomaly() bool {
	return r != nil && r.RepeatDepositSumLocal < 0
}
