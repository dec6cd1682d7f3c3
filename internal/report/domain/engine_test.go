package report

import (
	"math"
	"reflect"
	"testing"
	"time"

	ingestion "adledger/internal/ingestion/domain"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func testRow() ingestion.CanonicalRow {
	return ingestion.CanonicalRow{
		Date: time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		Spend: map[string]float64{
			ingestion.ChannelFacebook: 100,
		},
		SettlementRevenueLocal:   1000,
		SettlementRevenueSettled: 200,
		OwnRevenueLocal:          365,
		OwnRevenueSettled:        100,
		FirstDepositCount:        7,
		FirstDepositSumLocal:     50,
		OtherCosts:               map[string]float64{},
		Precomputed:              map[ingestion.FieldID]float64{},
	}
}

func TestDeriveCascade(t *testing.T) {
	rec := Derive("KZ", testRow(), DefaultRates())

	approx(t, "TotalSpend", rec.TotalSpend, 100)
	approx(t, "AgencyFee", rec.AgencyFee, 9)
	approx(t, "ExchangeRateSettlement", rec.ExchangeRateSettlement, 5)
	approx(t, "CommissionSettlement", rec.CommissionSettlement, 30)
	approx(t, "ExchangeRateOwn", rec.ExchangeRateOwn, 3.65)
	approx(t, "TotalRevenueSettled", rec.TotalRevenueSettled, 300)
	approx(t, "FirstDepositSumSettled", rec.FirstDepositSumSettled, 50/3.65)
	approx(t, "RepeatDepositSumLocal", rec.RepeatDepositSumLocal, 315)
	approx(t, "RepeatDepositSumSettled", rec.RepeatDepositSumSettled, 315/3.65)

	handlerRepeat := (315 / 3.65) * 0.04
	approx(t, "HandlerRepeatDepositPay", rec.HandlerRepeatDepositPay, handlerRepeat)
	// Tier B (7 < 10), rate 4, bonus 15 at threshold 5, multiplier 1.2.
	approx(t, "HandlerFirstDepositPay", rec.HandlerFirstDepositPay, 51.6)
	approx(t, "BuyerPay", rec.BuyerPay, 12)
	approx(t, "FixedRolePay", rec.FixedRolePay, 10)

	payroll := handlerRepeat + 51.6 + 12 + 10
	approx(t, "TotalPayroll", rec.TotalPayroll, payroll)

	expenses := 30 + 100 + 9 + payroll
	approx(t, "TotalExpenses", rec.TotalExpenses, expenses)
	approx(t, "ExpensesExcludingSpend", rec.ExpensesExcludingSpend, expenses-100)

	// Profit numerator is own revenue only; settlement revenue is excluded.
	approx(t, "NetProfit", rec.NetProfit, 100-30-9-100-payroll)
	approx(t, "ROI", rec.ROI, (300-expenses)/expenses)
}

func TestDeriveGuardsDivisionByZero(t *testing.T) {
	row := testRow()
	row.SettlementRevenueLocal = 500
	row.SettlementRevenueSettled = 0
	row.OwnRevenueLocal = 100
	row.OwnRevenueSettled = 0

	rec := Derive("KZ", row, DefaultRates())
	approx(t, "ExchangeRateSettlement", rec.ExchangeRateSettlement, 0)
	approx(t, "CommissionSettlement", rec.CommissionSettlement, 0)
	approx(t, "ExchangeRateOwn", rec.ExchangeRateOwn, 0)
	approx(t, "FirstDepositSumSettled", rec.FirstDepositSumSettled, 0)
	approx(t, "RepeatDepositSumSettled", rec.RepeatDepositSumSettled, 0)
}

func TestDeriveFallbackOwnRate(t *testing.T) {
	rates := DefaultRates()
	rates.FallbackOwnRate = 2.5
	row := testRow()
	row.OwnRevenueSettled = 0

	rec := Derive("KZ", row, rates)
	approx(t, "ExchangeRateOwn", rec.ExchangeRateOwn, 2.5)
	approx(t, "FirstDepositSumSettled", rec.FirstDepositSumSettled, 50/2.5)
}

func TestDeriveZeroExpensesZeroROI(t *testing.T) {
	row := ingestion.CanonicalRow{
		Date:            time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		Spend:           map[string]float64{},
		OwnRevenueLocal: 100,
		OtherCosts:      map[string]float64{},
	}
	rates := DefaultRates()
	rates.FixedDailyPay = nil

	rec := Derive("KZ", row, rates)
	if rec.ROI != 0 {
		t.Fatalf("ROI = %v, want 0 when expenses are 0", rec.ROI)
	}
}

func TestDeriveKeepsNegativeRepeatDeposits(t *testing.T) {
	row := testRow()
	row.OwnRevenueLocal = 30
	row.FirstDepositSumLocal = 50

	rec := Derive("KZ", row, DefaultRates())
	approx(t, "RepeatDepositSumLocal", rec.RepeatDepositSumLocal, -20)
	if !rec.HasAnomaly() {
		t.Fatal("negative repeat deposit sum must flag an anomaly")
	}
}

func TestTierBoundaries(t *testing.T) {
	rates := DefaultRates()
	cases := []struct {
		count    int
		wantRate float64
	}{
		{0, 3},
		{4, 3},
		{5, 4},
		{9, 4},
		{10, 5},
		{11, 5},
	}
	for _, tc := range cases {
		if got := rates.TierRate(tc.count); got != tc.wantRate {
			t.Errorf("TierRate(%d) = %v, want %v", tc.count, got, tc.wantRate)
		}
	}
}

func TestBonusThreshold(t *testing.T) {
	rates := DefaultRates()
	row := testRow()

	row.FirstDepositCount = 4
	rec := Derive("KZ", row, rates)
	approx(t, "HandlerFirstDepositPay below threshold", rec.HandlerFirstDepositPay, 4*3*1.2)

	row.FirstDepositCount = 5
	rec = Derive("KZ", row, rates)
	approx(t, "HandlerFirstDepositPay at threshold", rec.HandlerFirstDepositPay, (5*4+15)*1.2)
}

func TestDeriveIsDeterministic(t *testing.T) {
	row := testRow()
	first := Derive("KZ", row, DefaultRates())
	second := Derive("KZ", row, DefaultRates())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("derive is not deterministic:\n%#v\n%#v", first, second)
	}
}

func TestReconcilePrecomputedWins(t *testing.T) {
	rec := Derive("KZ", testRow(), DefaultRates())
	merged := Reconcile(rec, map[ingestion.FieldID]float64{
		ingestion.FieldNetProfit:     123.45,
		ingestion.FieldROI:           0.5,
		ingestion.FieldTotalExpenses: 0,
	})

	approx(t, "NetProfit", merged.NetProfit, 123.45)
	approx(t, "ROI", merged.ROI, 0.5)
	// Zero pre-computed values never win.
	approx(t, "TotalExpenses", merged.TotalExpenses, rec.TotalExpenses)
	// Engine output itself is untouched.
	if rec.NetProfit == 123.45 {
		t.Fatal("reconcile must not mutate the engine output")
	}
}
