package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ingestion "adledger/internal/ingestion/domain"
	report "adledger/internal/report/domain"
)

const defaultReportTable = "country_day_reports"

// ReportRepository is a Postgres implementation of report.Repository.
type ReportRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*ReportRepository)

// WithTable overrides the default table.
func WithTable(table string) RepositoryOption {
	return func(repo *ReportRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewReportRepository constructs a repository with defaults.
func NewReportRepository(db *sql.DB, opts ...RepositoryOption) *ReportRepository {
	repo := &ReportRepository{
		db:    db,
		table: defaultReportTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

const reportColumns = `
country_id, report_date,
spend_facebook, spend_google, spend_tiktok,
settlement_revenue_local, settlement_revenue_settled,
own_revenue_local, own_revenue_settled,
first_deposit_count, alt_deposit_count, first_deposit_sum_local,
tracker_cost, extra_cost,
total_spend, agency_fee, exchange_rate_settlement, commission_settlement,
exchange_rate_own, total_revenue_settled, first_deposit_sum_settled,
repeat_deposit_sum_local, repeat_deposit_sum_settled,
handler_repeat_deposit_pay, handler_first_deposit_pay, buyer_pay,
fixed_role_pay, total_payroll,
total_expenses, expenses_excluding_spend, net_profit, roi,
created_at, updated_at`

// FindByDateAndCountry loads one record, or nil when absent.
func (r *ReportRepository) FindByDateAndCountry(ctx context.Context, date time.Time, countryID string) (*report.DayReport, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	if countryID == "" {
		return nil, report.ErrEmptyCountryID
	}
	if date.IsZero() {
		return nil, report.ErrInvalidDate
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE country_id = $1 AND report_date = $2
LIMIT 1`, reportColumns, r.table)

	row := r.db.QueryRowContext(ctx, query, countryID, ingestion.Day(date))
	rec, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// Upsert writes the record, fully overwriting any existing row for the same
// (country, date) key. Safe to retry.
func (r *ReportRepository) Upsert(ctx context.Context, rec *report.DayReport) error {
	if r == nil || r.db == nil {
		return errors.New("report repo: nil db")
	}
	if rec == nil {
		return report.ErrNilRecord
	}
	if rec.CountryID == "" {
		return report.ErrEmptyCountryID
	}
	if rec.Date.IsZero() {
		return report.ErrInvalidDate
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	country_id, report_date,
	spend_facebook, spend_google, spend_tiktok,
	settlement_revenue_local, settlement_revenue_settled,
	own_revenue_local, own_revenue_settled,
	first_deposit_count, alt_deposit_count, first_deposit_sum_local,
	tracker_cost, extra_cost,
	total_spend, agency_fee, exchange_rate_settlement, commission_settlement,
	exchange_rate_own, total_revenue_settled, first_deposit_sum_settled,
	repeat_deposit_sum_local, repeat_deposit_sum_settled,
	handler_repeat_deposit_pay, handler_first_deposit_pay, buyer_pay,
	fixed_role_pay, total_payroll,
	total_expenses, expenses_excluding_spend, net_profit, roi
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
	$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32
)
ON CONFLICT (country_id, report_date)
DO UPDATE SET
	spend_facebook = EXCLUDED.spend_facebook,
	spend_google = EXCLUDED.spend_google,
	spend_tiktok = EXCLUDED.spend_tiktok,
	settlement_revenue_local = EXCLUDED.settlement_revenue_local,
	settlement_revenue_settled = EXCLUDED.settlement_revenue_settled,
	own_revenue_local = EXCLUDED.own_revenue_local,
	own_revenue_settled = EXCLUDED.own_revenue_settled,
	first_deposit_count = EXCLUDED.first_deposit_count,
	alt_deposit_count = EXCLUDED.alt_deposit_count,
	first_deposit_sum_local = EXCLUDED.first_deposit_sum_local,
	tracker_cost = EXCLUDED.tracker_cost,
	extra_cost = EXCLUDED.extra_cost,
	total_spend = EXCLUDED.total_spend,
	agency_fee = EXCLUDED.agency_fee,
	exchange_rate_settlement = EXCLUDED.exchange_rate_settlement,
	commission_settlement = EXCLUDED.commission_settlement,
	exchange_rate_own = EXCLUDED.exchange_rate_own,
	total_revenue_settled = EXCLUDED.total_revenue_settled,
	first_deposit_sum_settled = EXCLUDED.first_deposit_sum_settled,
	repeat_deposit_sum_local = EXCLUDED.repeat_deposit_sum_local,
	repeat_deposit_sum_settled = EXCLUDED.repeat_deposit_sum_settled,
	handler_repeat_deposit_pay = EXCLUDED.handler_repeat_deposit_pay,
	handler_first_deposit_pay = EXCLUDED.handler_first_deposit_pay,
	buyer_pay = EXCLUDED.buyer_pay,
	fixed_role_pay = EXCLUDED.fixed_role_pay,
	total_payroll = EXCLUDED.total_payroll,
	total_expenses = EXCLUDED.total_expenses,
	expenses_excluding_spend = EXCLUDED.expenses_excluding_spend,
	net_profit = EXCLUDED.net_profit,
	roi = EXCLUDED.roi,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		rec.CountryID,
		ingestion.Day(rec.Date),
		rec.Spend[ingestion.ChannelFacebook],
		rec.Spend[ingestion.ChannelGoogle],
		rec.Spend[ingestion.ChannelTiktok],
		rec.SettlementRevenueLocal,
		rec.SettlementRevenueSettled,
		rec.OwnRevenueLocal,
		rec.OwnRevenueSettled,
		rec.FirstDepositCount,
		rec.AltDepositCount,
		rec.FirstDepositSumLocal,
		rec.OtherCosts[ingestion.CostTracker],
		rec.OtherCosts[ingestion.CostExtra],
		rec.TotalSpend,
		rec.AgencyFee,
		rec.ExchangeRateSettlement,
		rec.CommissionSettlement,
		rec.ExchangeRateOwn,
		rec.TotalRevenueSettled,
		rec.FirstDepositSumSettled,
		rec.RepeatDepositSumLocal,
		rec.RepeatDepositSumSettled,
		rec.HandlerRepeatDepositPay,
		rec.HandlerFirstDepositPay,
		rec.BuyerPay,
		rec.FixedRolePay,
		rec.TotalPayroll,
		rec.TotalExpenses,
		rec.ExpensesExcludingSpend,
		rec.NetProfit,
		rec.ROI,
	)
	return err
}

// ListByCountryAndRange loads records for a country ordered by date,
// from inclusive, to exclusive.
func (r *ReportRepository) ListByCountryAndRange(ctx context.Context, countryID string, from, to time.Time) ([]*report.DayReport, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	if countryID == "" {
		return nil, report.ErrEmptyCountryID
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE country_id = $1 AND report_date >= $2 AND report_date < $3
ORDER BY report_date`, reportColumns, r.table)

	rows, err := r.db.QueryContext(ctx, query, countryID, ingestion.Day(from), ingestion.Day(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*report.DayReport
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(scanner rowScanner) (*report.DayReport, error) {
	rec := &report.DayReport{
		Spend:      map[string]float64{},
		OtherCosts: map[string]float64{},
	}
	var spendFacebook, spendGoogle, spendTiktok float64
	var trackerCost, extraCost float64
	err := scanner.Scan(
		&rec.CountryID,
		&rec.Date,
		&spendFacebook,
		&spendGoogle,
		&spendTiktok,
		&rec.SettlementRevenueLocal,
		&rec.SettlementRevenueSettled,
		&rec.OwnRevenueLocal,
		&rec.OwnRevenueSettled,
		&rec.FirstDepositCount,
		&rec.AltDepositCount,
		&rec.FirstDepositSumLocal,
		&trackerCost,
		&extraCost,
		&rec.TotalSpend,
		&rec.AgencyFee,
		&rec.ExchangeRateSettlement,
		&rec.CommissionSettlement,
		&rec.ExchangeRateOwn,
		&rec.TotalRevenueSettled,
		&rec.FirstDepositSumSettled,
		&rec.RepeatDepositSumLocal,
		&rec.RepeatDepositSumSettled,
		&rec.HandlerRepeatDepositPay,
		&rec.HandlerFirstDepositPay,
		&rec.BuyerPay,
		&rec.FixedRolePay,
		&rec.TotalPayroll,
		&rec.TotalExpenses,
		&rec.ExpensesExcludingSpend,
		&rec.NetProfit,
		&rec.ROI,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Date = ingestion.Day(rec.Date)
	rec.Spend[ingestion.ChannelFacebook] = spendFacebook
	rec.Spend[ingestion.ChannelGoogle] = spendGoogle
	rec.Spend[ingestion.ChannelTiktok] = spendTiktok
	rec.OtherCosts[ingestion.CostTracker] = trackerCost
	rec.OtherCosts[ingestion.CostExtra] = extraCost
	return rec, nil
}
