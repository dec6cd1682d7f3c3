package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	ingestion "adledger/internal/ingestion/domain"
	report "adledger/internal/report/domain"
	reportpostgres "adledger/internal/report/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestDayReportUpsert_Postgres(t *testing.T) {
	dsn := os.Getenv("LEDGER_PG_TEST_DSN")
	if dsn == "" {
		t.Skip("LEDGER_PG_TEST_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if !tableExists(db, "country_day_reports") {
		t.Skip("country_day_reports missing; run migrations")
	}

	ctx := context.Background()
	countryID := "country-it"
	day := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	_, _ = db.ExecContext(ctx, "DELETE FROM country_day_reports WHERE country_id = $1", countryID)

	repo := reportpostgres.NewReportRepository(db)

	rec := &report.DayReport{
		CountryID: countryID,
		Date:      day,
		Spend: map[string]float64{
			ingestion.ChannelFacebook: 100,
			ingestion.ChannelGoogle:   40,
		},
		OtherCosts:               map[string]float64{ingestion.CostTracker: 5},
		SettlementRevenueLocal:   1000,
		SettlementRevenueSettled: 200,
		OwnRevenueLocal:          365,
		OwnRevenueSettled:        100,
		FirstDepositCount:        7,
		FirstDepositSumLocal:     50,
		TotalSpend:               140,
		AgencyFee:                12.2,
		TotalRevenueSettled:      300,
		TotalPayroll:             60,
		TotalExpenses:            217.2,
		NetProfit:                -117.2,
		ROI:                      0.46,
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	loaded, err := repo.FindByDateAndCountry(ctx, day, countryID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected stored record")
	}
	if loaded.Spend[ingestion.ChannelFacebook] != 100 {
		t.Fatalf("spend mismatch: got=%v want=100", loaded.Spend[ingestion.ChannelFacebook])
	}
	if loaded.FirstDepositCount != 7 {
		t.Fatalf("fd count mismatch: got=%d want=7", loaded.FirstDepositCount)
	}
	if loaded.NetProfit != rec.NetProfit {
		t.Fatalf("net profit mismatch: got=%v want=%v", loaded.NetProfit, rec.NetProfit)
	}
	createdAt := loaded.CreatedAt

	rec.TotalSpend = 150
	rec.NetProfit = -127.2
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	updated, err := repo.FindByDateAndCountry(ctx, day, countryID)
	if err != nil {
		t.Fatalf("find after update: %v", err)
	}
	if updated == nil {
		t.Fatal("expected record after update")
	}
	if updated.TotalSpend != 150 {
		t.Fatalf("total spend after update: got=%v want=150", updated.TotalSpend)
	}
	if !updated.CreatedAt.Equal(createdAt) {
		t.Fatalf("created_at changed on upsert: got=%v want=%v", updated.CreatedAt, createdAt)
	}
	if updated.UpdatedAt.Before(createdAt) {
		t.Fatalf("updated_at not advanced: %v", updated.UpdatedAt)
	}
}

func TestDayReportListRange_Postgres(t *testing.T) {
	dsn := os.Getenv("LEDGER_PG_TEST_DSN")
	if dsn == "" {
		t.Skip("LEDGER_PG_TEST_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if !tableExists(db, "country_day_reports") {
		t.Skip("country_day_reports missing; run migrations")
	}

	ctx := context.Background()
	countryID := "country-it-range"
	base := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	_, _ = db.ExecContext(ctx, "DELETE FROM country_day_reports WHERE country_id = $1", countryID)

	repo := reportpostgres.NewReportRepository(db)
	for i := 0; i < 4; i++ {
		rec := &report.DayReport{
			CountryID:  countryID,
			Date:       base.AddDate(0, 0, i),
			Spend:      map[string]float64{ingestion.ChannelFacebook: float64(10 * (i + 1))},
			OtherCosts: map[string]float64{},
			TotalSpend: float64(10 * (i + 1)),
		}
		if err := repo.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert day %d: %v", i, err)
		}
	}

	records, err := repo.ListByCountryAndRange(ctx, countryID, base, base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("range size: got=%d want=3", len(records))
	}
	for i, rec := range records {
		want := base.AddDate(0, 0, i)
		if !rec.Date.Equal(want) {
			t.Fatalf("record %d date: got=%v want=%v", i, rec.Date, want)
		}
	}
}

func tableExists(db *sql.DB, table string) bool {
	var exists bool
	err := db.QueryRow(`
SELECT EXISTS (
	SELECT 1
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_name = $1
)`, table).Scan(&exists)
	if err != nil {
		return false
	}
	return exists
}
