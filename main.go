package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	apihttp "adledger/internal/api/http"
	"adledger/internal/audit"
	"adledger/internal/auth"
	"adledger/internal/notify"
	"adledger/internal/observability/metrics"
	"adledger/internal/report/application"
	report "adledger/internal/report/domain"
	memoryrepo "adledger/internal/report/infrastructure/memory"
	reportrepo "adledger/internal/report/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	var repo report.Repository
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		repo = reportrepo.NewReportRepository(db)
	} else {
		logger.Printf("no database configured, using in-memory repository")
		repo = memoryrepo.NewReportRepository()
	}

	metrics.Init(db, logger)

	var auditLogger audit.Logger
	if db != nil {
		auditLogger = audit.NewRepository(db)
	}

	opts := []application.Option{
		application.WithLogger(log.New(os.Stdout, "[ingest] ", log.LstdFlags)),
	}
	if cfg.WebhookURL != "" {
		channel, err := notify.NewWebhookChannel(cfg.WebhookURL)
		if err != nil {
			logger.Fatalf("webhook channel error: %v", err)
		}
		notifier, err := notify.NewAnomalyNotifier(channel)
		if err != nil {
			logger.Fatalf("anomaly notifier error: %v", err)
		}
		opts = append(opts, application.WithNotifier(notifier))
	}

	service, err := application.NewService(repo, cfg, opts...)
	if err != nil {
		logger.Fatalf("ingest service error: %v", err)
	}

	policy := auth.NewDefaultPolicy("/healthz", "/metrics")
	authMiddleware := auth.NewMiddleware([]byte(cfg.AuthSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/ingest/workbook", apihttp.NewIngestHandler(service, auditLogger))
	mux.Handle("/api/reports/export", apihttp.NewExportHandler(repo, auditLogger))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.ListenAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.ListenAddr)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
