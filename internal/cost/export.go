package cost

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CSVExporter renders cost summaries as CSV. Amounts are rounded and
// formatted here, at the presentation boundary, never earlier.
type CSVExporter struct {
	printer *message.Printer
}

// NewCSVExporter constructs a CSVExporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{printer: message.NewPrinter(language.English)}
}

// WriteProjectSummaries renders project summaries to w.
func (e *CSVExporter) WriteProjectSummaries(w io.Writer, summaries []ProjectSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"project_id", "total_hours", "total_cost"}); err != nil {
		return err
	}
	for _, s := range summaries {
		record := []string{
			strconv.FormatInt(s.ProjectID, 10),
			s.TotalHours.StringFixed(2),
			e.money(s.TotalCost),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteUserSummaries renders user summaries to w.
func (e *CSVExporter) WriteUserSummaries(w io.Writer, summaries []UserSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"user_id", "total_hours", "total_cost"}); err != nil {
		return err
	}
	for _, s := range summaries {
		record := []string{
			strconv.FormatInt(s.UserID, 10),
			s.TotalHours.StringFixed(2),
			e.money(s.TotalCost),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (e *CSVExporter) money(amount decimal.Decimal) string {
	rounded, _ := amount.Round(2).Float64()
	return e.printer.Sprintf("%.2f", rounded)
}
