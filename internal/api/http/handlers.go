package apihttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"adledger/internal/audit"
	"adledger/internal/auth"
	ingesthttp "adledger/internal/ingestion/interfaces"
	"adledger/internal/report/application"
	report "adledger/internal/report/domain"
	reportexport "adledger/internal/report/interfaces"
)

const dayLayout = "2006-01-02"

// maxWorkbookBytes caps uploaded workbook size.
const maxWorkbookBytes = 16 << 20

// IngestHandler accepts a workbook upload and runs the ingestion pipeline.
type IngestHandler struct {
	service     *application.Service
	auditLogger audit.Logger
}

// NewIngestHandler constructs an IngestHandler.
func NewIngestHandler(service *application.Service, auditLogger audit.Logger) *IngestHandler {
	return &IngestHandler{service: service, auditLogger: auditLogger}
}

type ingestResponse struct {
	Persisted int              `json:"persisted"`
	Discarded int              `json:"discarded"`
	Failed    int              `json:"failed"`
	Errors    []ingestRowError `json:"errors,omitempty"`
}

type ingestRowError struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

// ServeHTTP handles POST /api/ingest/workbook. The multipart form carries the
// xlsx under "workbook" and the sheet mapping context under "country_id".
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(maxWorkbookBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	countryID := r.FormValue("country_id")
	if countryID == "" {
		http.Error(w, "country_id is required", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("workbook")
	if err != nil {
		http.Error(w, "workbook file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	sheets, err := ingesthttp.ReadWorkbook(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	batches := make([]application.SheetBatch, 0, len(sheets))
	for _, sheet := range sheets {
		batches = append(batches, application.SheetBatch{
			CountryID: countryID,
			SheetName: sheet.Name,
			Header:    sheet.Header,
			Rows:      sheet.Rows,
		})
	}

	pass, err := h.service.IngestSheets(r.Context(), batches)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := ingestResponse{
		Persisted: pass.Persisted,
		Discarded: pass.Discarded,
		Failed:    pass.Failed,
	}
	for _, result := range pass.Results {
		if result.Err != nil {
			resp.Errors = append(resp.Errors, ingestRowError{
				Date:  result.Date.Format(dayLayout),
				Error: result.Err.Error(),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
	h.logAudit(r, countryID, resp)
}

func (h *IngestHandler) logAudit(r *http.Request, countryID string, resp ingestResponse) {
	if h.auditLogger == nil {
		return
	}
	metadata, _ := json.Marshal(map[string]int{
		"persisted": resp.Persisted,
		"discarded": resp.Discarded,
		"failed":    resp.Failed,
	})
	entry := audit.FromRequest(r, "ingest.workbook", countryID)
	entry.Actor = auth.SubjectFromContext(r.Context())
	entry.Role = string(auth.RoleFromContext(r.Context()))
	entry.Metadata = metadata
	_ = h.auditLogger.Log(r.Context(), entry)
}

// ExportHandler serves persisted reports as xlsx or pdf.
type ExportHandler struct {
	repo        report.Repository
	auditLogger audit.Logger
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(repo report.Repository, auditLogger audit.Logger) *ExportHandler {
	return &ExportHandler{repo: repo, auditLogger: auditLogger}
}

// ServeHTTP handles GET /api/reports/export?country_id=&from=&to=&format=.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.repo == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	countryID := r.URL.Query().Get("country_id")
	if countryID == "" {
		http.Error(w, "country_id is required", http.StatusBadRequest)
		return
	}
	from, err := parseDayQuery(r, "from")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := parseDayQuery(r, "to")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !to.After(from) {
		http.Error(w, "to must be after from", http.StatusBadRequest)
		return
	}

	records, err := h.repo.ListByCountryAndRange(r.Context(), countryID, from, to)
	if err != nil {
		http.Error(w, "query reports error", http.StatusInternalServerError)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "xlsx":
		data, err := reportexport.BuildReportXLSX(countryID, records)
		if err != nil {
			http.Error(w, "export error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="reports-%s.xlsx"`, countryID))
		_, _ = w.Write(data)
	case "pdf":
		data, err := reportexport.BuildReportPDF(countryID, records)
		if err != nil {
			http.Error(w, "export error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="reports-%s.pdf"`, countryID))
		_, _ = w.Write(data)
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
		return
	}
	h.logAudit(r, countryID, format, len(records))
}

func (h *ExportHandler) logAudit(r *http.Request, countryID, format string, count int) {
	if h.auditLogger == nil {
		return
	}
	if format == "" {
		format = "xlsx"
	}
	metadata, _ := json.Marshal(map[string]any{
		"format":  format,
		"records": count,
		"from":    r.URL.Query().Get("from"),
		"to":      r.URL.Query().Get("to"),
	})
	entry := audit.FromRequest(r, "reports.export", countryID)
	entry.Actor = auth.SubjectFromContext(r.Context())
	entry.Role = string(auth.RoleFromContext(r.Context()))
	entry.Metadata = metadata
	_ = h.auditLogger.Log(r.Context(), entry)
}

func parseDayQuery(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	parsed, err := time.Parse(dayLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", key)
	}
	return parsed, nil
}
