// Package export writes dashboard sections as CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/salesboard/internal/sales"
)

// WriteDashboardCSV writes every section separated by a blank line.
func WriteDashboardCSV(w io.Writer, d sales.Dashboard) error {
	sections := []func(io.Writer, sales.Dashboard) error{
		WriteSummaryCSV,
		WriteDailyCSV,
		WriteProfitCSV,
		WritePaymentModesCSV,
	}
	for i, write := range sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := write(w, d); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummaryCSV emits one row per site plus a combined row.
func WriteSummaryCSV(w io.Writer, d sales.Dashboard) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"Site", "Period", "Today", "Month Total", "Target", "Predicted", "Status",
		"Gross Profit", "Fixed Expense", "Returns", "Net Profit", "Net %",
	}); err != nil {
		return err
	}
	for _, site := range d.Sites {
		if err := writer.Write([]string{
			site.Name,
			d.Window.Period(),
			formatMoney(site.Summary.TodaySales),
			formatMoney(site.Summary.MonthTotal),
			formatMoney(site.Projection.Target),
			formatProjection(site.Projection),
			site.Projection.Status,
			formatMoney(site.NetProfit.GrossProfit),
			formatMoney(site.NetProfit.FixedExpense),
			formatMoney(site.NetProfit.Returns),
			formatMoney(site.NetProfit.Net),
			formatMoney(site.NetProfit.NetPercent),
		}); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{
		"Combined",
		d.Window.Period(),
		formatMoney(d.TodayTotal),
		formatMoney(d.MonthTotal),
		formatMoney(d.Combined.Target),
		formatProjection(d.Combined),
		d.Combined.Status,
		"", "", "", "", "",
	}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteDailyCSV emits the merged per-day series with the prior-year column.
func WriteDailyCSV(w io.Writer, d sales.Dashboard) error {
	writer := csv.NewWriter(w)
	header := []string{"Day"}
	for _, site := range d.Sites {
		header = append(header, site.Name)
	}
	header = append(header, "Total", "Prior Year")
	if err := writer.Write(header); err != nil {
		return err
	}
	prior := make(map[int]float64, len(d.YearOverYear))
	for _, point := range d.YearOverYear {
		prior[point.Day] = point.Previous
	}
	for _, day := range d.Daily {
		record := []string{strconv.Itoa(day.Day)}
		for _, v := range day.BySite {
			record = append(record, formatMoney(v))
		}
		record = append(record, formatMoney(day.Total), formatMoney(prior[day.Day]))
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteProfitCSV emits each site's category profit table.
func WriteProfitCSV(w io.Writer, d sales.Dashboard) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Site", "Category", "Gross Sales", "Margin %", "Profit"}); err != nil {
		return err
	}
	for _, site := range d.Sites {
		for _, row := range site.Profit.Categories {
			if err := writer.Write([]string{
				site.Name,
				row.Category,
				formatMoney(row.GrossSales),
				formatMoney(row.ProfitPercent * 100),
				formatMoney(row.Profit),
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePaymentModesCSV emits the payment mode comparison across sites.
func WritePaymentModesCSV(w io.Writer, d sales.Dashboard) error {
	writer := csv.NewWriter(w)
	header := []string{"Payment Mode"}
	for _, site := range d.Sites {
		header = append(header, site.Name)
	}
	header = append(header, "Total")
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, mode := range d.PaymentModes {
		record := []string{mode.Mode}
		for _, v := range mode.BySite {
			record = append(record, formatMoney(v))
		}
		record = append(record, formatMoney(mode.Total))
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatProjection(p sales.Projection) string {
	if !p.Available {
		return ""
	}
	return formatMoney(p.Predicted)
}
