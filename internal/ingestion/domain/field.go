package ingestion

// FieldID identifies the canonical semantic field a spreadsheet column maps to,
// independent of the literal header text.
type FieldID string

const (
	FieldDate FieldID = "date"

	FieldSpendFacebook FieldID = "spend_facebook"
	FieldSpendGoogle   FieldID = "spend_google"
	FieldSpendTiktok   FieldID = "spend_tiktok"

	FieldSettlementRevenueLocal   FieldID = "settlement_revenue_local"
	FieldSettlementRevenueSettled FieldID = "settlement_revenue_settled"
	FieldOwnRevenueLocal          FieldID = "own_revenue_local"
	FieldOwnRevenueSettled        FieldID = "own_revenue_settled"

	FieldFirstDepositCount    FieldID = "first_deposit_count"
	FieldFirstDepositCountAlt FieldID = "first_deposit_count_alt"
	FieldFirstDepositSumLocal FieldID = "first_deposit_sum_local"

	FieldRepeatDepositSumLocal   FieldID = "repeat_deposit_sum_local"
	FieldRepeatDepositSumSettled FieldID = "repeat_deposit_sum_settled"

	FieldTrackerCost FieldID = "tracker_cost"
	FieldExtraCost   FieldID = "extra_cost"

	// Pre-computed fields the source sheet may already carry. Non-zero values
	// win over engine output during reconciliation.
	FieldTotalSpend             FieldID = "total_spend"
	FieldAgencyFee              FieldID = "agency_fee"
	FieldCommissionSettlement   FieldID = "commission_settlement"
	FieldTotalPayroll           FieldID = "total_payroll"
	FieldTotalExpenses          FieldID = "total_expenses"
	FieldExpensesExcludingSpend FieldID = "expenses_excluding_spend"
	FieldNetProfit              FieldID = "net_profit"
	FieldROI                    FieldID = "roi"
)

// Channel names used for per-channel spend and agency rates.
const (
	ChannelFacebook = "facebook"
	ChannelGoogle   = "google"
	ChannelTiktok   = "tiktok"
)

// CombinePolicy decides how repeated columns for the same field merge into one row.
type CombinePolicy int

const (
	// CombineOverwrite keeps the last matched column value.
	CombineOverwrite CombinePolicy = iota
	// CombineSum adds all matched column values.
	CombineSum
	// CombineMax keeps the largest matched column value. Duplicate count
	// columns are the same measurement, not independent counts.
	CombineMax
)

// PolicyFor returns the combination policy for a field.
func PolicyFor(field FieldID) CombinePolicy {
	switch field {
	case FieldSettlementRevenueLocal, FieldSettlementRevenueSettled,
		FieldOwnRevenueLocal, FieldOwnRevenueSettled,
		FieldFirstDepositSumLocal,
		FieldRepeatDepositSumLocal, FieldRepeatDepositSumSettled:
		return CombineSum
	case FieldFirstDepositCount, FieldFirstDepositCountAlt:
		return CombineMax
	default:
		return CombineOverwrite
	}
}

// IsPrecomputed reports whether the field is one the source sheet supplies
// ready-made rather than as a raw input.
func IsPrecomputed(field FieldID) bool {
	switch field {
	case FieldTotalSpend, FieldAgencyFee, FieldCommissionSettlement,
		FieldTotalPayroll, FieldTotalExpenses, FieldExpensesExcludingSpend,
		FieldNetProfit, FieldROI,
		FieldRepeatDepositSumLocal, FieldRepeatDepositSumSettled:
		return true
	default:
		return false
	}
}

// SpendChannel maps a spend field to its channel name, or "" for non-spend fields.
func SpendChannel(field FieldID) string {
	switch field {
	case FieldSpendFacebook:
		return ChannelFacebook
	case FieldSpendGoogle:
		return ChannelGoogle
	case FieldSpendTiktok:
		return ChannelTiktok
	default:
		return ""
	}
}
