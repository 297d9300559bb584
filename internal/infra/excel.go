package infra

// excel.go — Sales report export as an xlsx workbook using excelize.

import (
	"bytes"
	"fmt"

	"craftledger/internal/dto"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter renders report workbooks.
type ExcelExporter struct{}

func NewExcelExporter() *ExcelExporter { return &ExcelExporter{} }

// WriteSalesReport builds a two-sheet workbook: daily totals and top items.
func (e *ExcelExporter) WriteSalesReport(report *dto.SalesReportResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}

	rows := [][]interface{}{
		{"Sales report", ""},
		{"From", report.From},
		{"To", report.To},
		{"Orders", report.OrderCount},
		{"Gross sales", report.GrossSales.StringFixed(2)},
		{"Discounts", report.Discounts.StringFixed(2)},
		{"Net sales", report.NetSales.StringFixed(2)},
		{},
		{"Date", "Orders", "Total"},
	}
	for _, d := range report.ByDay {
		rows = append(rows, []interface{}{d.Date, d.OrderCount, d.Total.StringFixed(2)})
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, err
		}
	}

	const items = "Top items"
	if _, err := f.NewSheet(items); err != nil {
		return nil, err
	}
	header := []interface{}{"Item", "Quantity", "Revenue"}
	if err := f.SetSheetRow(items, "A1", &header); err != nil {
		return nil, err
	}
	for i, it := range report.TopItems {
		row := []interface{}{it.ItemName, it.Quantity.String(), it.Revenue.StringFixed(2)}
		if err := f.SetSheetRow(items, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
