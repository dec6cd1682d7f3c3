package interfaces

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	ingestion "adledger/internal/ingestion/domain"
	report "adledger/internal/report/domain"
)

var exportHeader = []string{
	"Date", "Spend FB", "Spend Google", "Spend TikTok", "Total Spend",
	"Agency Fee", "Settlement Revenue", "Own Revenue", "Total Revenue",
	"FD Count", "FD Sum", "Repeat Deposits", "Payroll", "Expenses",
	"Net Profit", "ROI",
}

// BuildReportXLSX renders day reports for one country as a workbook.
func BuildReportXLSX(countryID string, records []*report.DayReport) ([]byte, error) {
	if countryID == "" {
		return nil, report.ErrEmptyCountryID
	}

	f := excelize.NewFile()
	sheet := "reports"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, title)
	}

	for i, rec := range records {
		if rec == nil {
			continue
		}
		values := []any{
			rec.Date.Format("2006-01-02"),
			rec.Spend[ingestion.ChannelFacebook],
			rec.Spend[ingestion.ChannelGoogle],
			rec.Spend[ingestion.ChannelTiktok],
			rec.TotalSpend,
			rec.AgencyFee,
			rec.SettlementRevenueSettled,
			rec.OwnRevenueSettled,
			rec.TotalRevenueSettled,
			rec.FirstDepositCount,
			rec.FirstDepositSumSettled,
			rec.RepeatDepositSumSettled,
			rec.TotalPayroll,
			rec.TotalExpenses,
			rec.NetProfit,
			rec.ROI,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportPDF renders a compact PDF table of day reports for one country.
func BuildReportPDF(countryID string, records []*report.DayReport) ([]byte, error) {
	if countryID == "" {
		return nil, report.ErrEmptyCountryID
	}
	if len(records) == 0 {
		return nil, errors.New("report export: no records")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, fmt.Sprintf("Daily Performance Report - %s", countryID))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 8)
	columns := []struct {
		title string
		width float64
	}{
		{"Date", 24},
		{"Spend", 26},
		{"Agency Fee", 26},
		{"Revenue", 26},
		{"FD Count", 20},
		{"Payroll", 26},
		{"Expenses", 26},
		{"Net Profit", 26},
		{"ROI", 20},
	}
	for _, col := range columns {
		pdf.CellFormat(col.width, 6, col.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, rec := range records {
		if rec == nil {
			continue
		}
		cells := []string{
			rec.Date.Format("2006-01-02"),
			fmt.Sprintf("%.2f", rec.TotalSpend),
			fmt.Sprintf("%.2f", rec.AgencyFee),
			fmt.Sprintf("%.2f", rec.TotalRevenueSettled),
			fmt.Sprintf("%d", rec.FirstDepositCount),
			fmt.Sprintf("%.2f", rec.TotalPayroll),
			fmt.Sprintf("%.2f", rec.TotalExpenses),
			fmt.Sprintf("%.2f", rec.NetProfit),
			fmt.Sprintf("%.4f", rec.ROI),
		}
		for i, cell := range cells {
			align := "R"
			if i == 0 {
				align = "C"
			}
			pdf.CellFormat(columns[i].width, 6, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
