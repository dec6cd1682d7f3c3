package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	ingesthttp "adledger/internal/ingestion/interfaces"
	"adledger/internal/report/application"
	report "adledger/internal/report/domain"
	memoryrepo "adledger/internal/report/infrastructure/memory"
	reportrepo "adledger/internal/report/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	filePath  = flag.String("file", "", "path to the xlsx workbook")
	countryID = flag.String("country", "", "country id the workbook belongs to")
	dryRun    = flag.Bool("dry-run", false, "parse and derive without persisting")
	timeout   = flag.Duration("timeout", 5*time.Minute, "overall pass timeout")
)

func main() {
	flag.Parse()
	logger := log.New(os.Stdout, "[backfill] ", log.LstdFlags)

	if *filePath == "" || *countryID == "" {
		logger.Fatal("usage: backfill -file report.xlsx -country KZ")
	}

	cfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	var repo report.Repository
	if *dryRun || cfg.DatabaseURL == "" {
		if !*dryRun {
			logger.Printf("no database configured, results are discarded")
		}
		repo = memoryrepo.NewReportRepository()
	} else {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		repo = reportrepo.NewReportRepository(db)
	}

	service, err := application.NewService(repo, cfg, application.WithLogger(logger))
	if err != nil {
		logger.Fatalf("ingest service error: %v", err)
	}

	sheets, err := ingesthttp.ReadWorkbookFile(*filePath)
	if err != nil {
		logger.Fatalf("workbook error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	batches := make([]application.SheetBatch, 0, len(sheets))
	for _, sheet := range sheets {
		batches = append(batches, application.SheetBatch{
			CountryID: *countryID,
			SheetName: sheet.Name,
			Header:    sheet.Header,
			Rows:      sheet.Rows,
		})
	}

	pass, err := service.IngestSheets(ctx, batches)
	if err != nil {
		logger.Fatalf("ingest error: %v", err)
	}

	fmt.Printf("persisted=%d discarded=%d failed=%d\n", pass.Persisted, pass.Discarded, pass.Failed)
	for _, result := range pass.Results {
		if result.Err != nil {
			fmt.Printf("  %s: %v\n", result.Date.Format("2006-01-02"), result.Err)
		}
	}
	if pass.Failed > 0 {
		os.Exit(1)
	}
}
