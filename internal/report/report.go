// Package report renders expense summaries as JSON or XML documents.
package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"

	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"

	"github.com/shopspring/decimal"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// ValidateFormat checks if the given format is supported.
func ValidateFormat(format string) error {
	switch format {
	case FormatJSON, FormatXML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'json', 'xml'", format)
	}
}

// CategoryTotal is one line of a monthly report.
type CategoryTotal struct {
	Category string `json:"category" xml:"category,attr"`
	Amount   string `json:"amount" xml:",chardata"`
}

// MonthlyReport is the per-category breakdown of one month.
type MonthlyReport struct {
	XMLName xml.Name        `json:"-" xml:"monthlySummary"`
	UserID  string          `json:"userId" xml:"userId,attr"`
	Month   string          `json:"month" xml:"month,attr"`
	Totals  []CategoryTotal `json:"totals" xml:"total"`
	Total   string          `json:"total" xml:"grandTotal"`
}

// ReportItem is one expense of a category report.
type ReportItem struct {
	ExpenseID string `json:"expenseId" xml:"id,attr"`
	Date      string `json:"date" xml:"date,attr"`
	Amount    string `json:"amount" xml:"amount,attr"`
	RawText   string `json:"rawText" xml:",chardata"`
}

// CategoryReport lists every expense of one category.
type CategoryReport struct {
	XMLName  xml.Name     `json:"-" xml:"categorySummary"`
	UserID   string       `json:"userId" xml:"userId,attr"`
	Category string       `json:"category" xml:"category,attr"`
	Items    []ReportItem `json:"items" xml:"expense"`
	Total    string       `json:"total" xml:"total"`
}

// NewMonthlyReport converts s. Categories are sorted by name.
func NewMonthlyReport(userID string, s models.MonthlySummary) MonthlyReport {
	r := MonthlyReport{UserID: userID, Month: s.Month, Totals: []CategoryTotal{}}
	categories := make([]string, 0, len(s.Totals))
	for c := range s.Totals {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	grand := decimal.Zero
	for _, c := range categories {
		r.Totals = append(r.Totals, CategoryTotal{Category: c, Amount: s.Totals[c].StringFixed(2)})
		grand = grand.Add(s.Totals[c])
	}
	r.Total = grand.StringFixed(2)
	return r
}

// NewCategoryReport converts s, keeping item order.
func NewCategoryReport(userID string, s models.CategorySummary) CategoryReport {
	r := CategoryReport{UserID: userID, Category: s.Category, Items: []ReportItem{}, Total: s.Total.StringFixed(2)}
	for _, e := range s.Items {
		r.Items = append(r.Items, ReportItem{
			ExpenseID: e.ID,
			Date:      e.Date,
			Amount:    e.Amount.StringFixed(2),
			RawText:   e.RawText,
		})
	}
	return r
}

// Generator renders reports.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a Generator. A nil logger falls back to the process
// default.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Generator{logger: logger.WithField("component", "ReportGenerator")}
}

// Render encodes report in format (json or xml).
func (g *Generator) Render(report any, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return g.renderJSON(report)
	case FormatXML:
		return g.renderXML(report)
	default:
		return nil, ValidateFormat(format)
	}
}

func (g *Generator) renderJSON(report any) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(data, '\n'), nil
}

func (g *Generator) renderXML(report any) ([]byte, error) {
	data, err := xml.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal XML report")
		return nil, fmt.Errorf("failed to marshal XML report: %w", err)
	}
	return []byte(xml.Header + string(data) + "\n"), nil
}
