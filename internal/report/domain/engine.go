package report

import (
	ingestion "adledger/internal/ingestion/domain"
)

// Derive computes every derived financial field from a canonical row. The
// function is deterministic and side-effect free: same row and rates, same
// record. Order inside follows the dependency graph; later fields consume
// earlier ones. Every division guards its denominator and substitutes 0, the
// documented sentinel for "rate unknown". Negative intermediate values are
// kept as-is.
func Derive(countryID string, row ingestion.CanonicalRow, rates Rates) *DayReport {
	rec := &DayReport{
		CountryID: countryID,
		Date:      row.Date,

		Spend: copyAmounts(row.Spend),

		SettlementRevenueLocal:   row.SettlementRevenueLocal,
		SettlementRevenueSettled: row.SettlementRevenueSettled,
		OwnRevenueLocal:          row.OwnRevenueLocal,
		OwnRevenueSettled:        row.OwnRevenueSettled,

		FirstDepositCount:    row.FirstDepositCount,
		AltDepositCount:      row.AltDepositCount,
		FirstDepositSumLocal: row.FirstDepositSumLocal,

		OtherCosts: copyAmounts(row.OtherCosts),
	}

	for _, amount := range rec.Spend {
		rec.TotalSpend += amount
	}
	for channel, amount := range rec.Spend {
		rec.AgencyFee += amount * rates.ChannelRates[channel]
	}

	if rec.SettlementRevenueSettled > 0 {
		rec.ExchangeRateSettlement = rec.SettlementRevenueLocal / rec.SettlementRevenueSettled
	}
	rec.CommissionSettlement = rec.SettlementRevenueSettled * rates.SettlementCommission

	switch {
	case rec.OwnRevenueSettled > 0:
		rec.ExchangeRateOwn = rec.OwnRevenueLocal / rec.OwnRevenueSettled
	case rates.FallbackOwnRate > 0:
		rec.ExchangeRateOwn = rates.FallbackOwnRate
	}

	rec.TotalRevenueSettled = rec.SettlementRevenueSettled + rec.OwnRevenueSettled

	if rec.ExchangeRateOwn > 0 {
		rec.FirstDepositSumSettled = rec.FirstDepositSumLocal / rec.ExchangeRateOwn
	}

	rec.RepeatDepositSumLocal = rec.OwnRevenueLocal - rec.FirstDepositSumLocal
	if rec.ExchangeRateOwn > 0 {
		rec.RepeatDepositSumSettled = rec.RepeatDepositSumLocal / rec.ExchangeRateOwn
	}

	rec.HandlerRepeatDepositPay = rec.RepeatDepositSumSettled * rates.RepeatHandlerRate

	var bonus float64
	if rec.FirstDepositCount >= rates.BonusThreshold {
		bonus = rates.BonusAmount
	}
	tierRate := rates.TierRate(rec.FirstDepositCount)
	rec.HandlerFirstDepositPay = (float64(rec.FirstDepositCount)*tierRate + bonus) * rates.PayrollMultiplier

	rec.BuyerPay = rec.TotalSpend * rates.BuyerRate
	rec.FixedRolePay = rates.FixedRolePay()
	rec.TotalPayroll = rec.HandlerRepeatDepositPay + rec.HandlerFirstDepositPay + rec.BuyerPay + rec.FixedRolePay

	otherCosts := row.TotalOtherCosts()
	rec.TotalExpenses = rec.CommissionSettlement + rec.TotalSpend + rec.AgencyFee + rec.TotalPayroll + otherCosts
	rec.ExpensesExcludingSpend = rec.TotalExpenses - rec.TotalSpend

	// Profit intentionally counts own revenue only: settlement-channel revenue
	// is netted through its commission step and excluded from the numerator.
	rec.NetProfit = rec.OwnRevenueSettled - rec.CommissionSettlement - rec.AgencyFee -
		rec.TotalSpend - rec.TotalPayroll - otherCosts

	if rec.TotalExpenses > 0 {
		rec.ROI = (rec.TotalRevenueSettled - rec.TotalExpenses) / rec.TotalExpenses
	}

	return rec
}

// Reconcile overlays pre-computed source values onto the engine output. A
// pre-computed field wins only when non-zero: genuine zeros in these columns
// are rare and indistinguishable from "column not filled".
func Reconcile(rec *DayReport, precomputed map[ingestion.FieldID]float64) *DayReport {
	if rec == nil || len(precomputed) == 0 {
		return rec
	}
	out := rec.Clone()
	for field, value := range precomputed {
		if value == 0 {
			continue
		}
		switch field {
		case ingestion.FieldTotalSpend:
			out.TotalSpend = value
		case ingestion.FieldAgencyFee:
			out.AgencyFee = value
		case ingestion.FieldCommissionSettlement:
			out.CommissionSettlement = value
		case ingestion.FieldTotalPayroll:
			out.TotalPayroll = value
		case ingestion.FieldTotalExpenses:
			out.TotalExpenses = value
		case ingestion.FieldExpensesExcludingSpend:
			out.ExpensesExcludingSpend = value
		case ingestion.FieldNetProfit:
			out.NetProfit = value
		case ingestion.FieldROI:
			out.ROI = value
		case ingestion.FieldRepeatDepositSumLocal:
			out.RepeatDepositSumLocal = value
		case ingestion.FieldRepeatDepositSumSettled:
			out.RepeatDepositSumSettled = value
		}
	}
	return out
}

func copyAmounts(amounts map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(amounts))
	for k, v := range amounts {
		out[k] = v
	}
	return out
}
