// Package summary handles expense totals per month and per category
package summary

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"fjacquet/expense-categorizer/cmd/root"
	"fjacquet/expense-categorizer/internal/ledger"
	"fjacquet/expense-categorizer/internal/report"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const formatTable = "table"

var (
	month    string
	category string
	format   string
)

// Cmd represents the summary command
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Show expense totals per category for a month, or for one category",
	Long: `Show expense totals. Without --category, totals per category for --month
(default: the current month). With --category, every expense of that
category and their total.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		if format != formatTable {
			if err := report.ValidateFormat(format); err != nil {
				return err
			}
		}
		if category != "" {
			return runCategory(cmd.Context(), c.GetLedger(), cmd.OutOrStdout(), root.SharedFlags.UserID, category, format)
		}
		return runMonthly(cmd.Context(), c.GetLedger(), cmd.OutOrStdout(), root.SharedFlags.UserID, month, format)
	},
}

func init() {
	Cmd.Flags().StringVarP(&month, "month", "m", "", "Month, YYYY-MM (default: current month)")
	Cmd.Flags().StringVarP(&category, "category", "c", "", "Summarize one category instead")
	Cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or xml")
}

var titleStyle = lipgloss.NewStyle().Bold(true)

func render(out io.Writer, v any, format string) error {
	data, err := report.NewGenerator(root.Log).Render(v, format)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runMonthly(ctx context.Context, svc *ledger.Service, out io.Writer, userID, month, format string) error {
	s, err := svc.MonthlySummary(ctx, userID, month)
	if err != nil {
		return err
	}
	if format != formatTable {
		return render(out, report.NewMonthlyReport(userID, s), format)
	}

	fmt.Fprintln(out, titleStyle.Render("Totals for "+s.Month))
	categories := make([]string, 0, len(s.Totals))
	for c := range s.Totals {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, c := range categories {
		fmt.Fprintf(w, "%s\t%s\t\n", c, s.Totals[c].StringFixed(2))
	}
	return w.Flush()
}

func runCategory(ctx context.Context, svc *ledger.Service, out io.Writer, userID, category, format string) error {
	s, err := svc.CategorySummary(ctx, userID, category)
	if err != nil {
		return err
	}
	if format != formatTable {
		return render(out, report.NewCategoryReport(userID, s), format)
	}

	fmt.Fprintln(out, titleStyle.Render(s.Category))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range s.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Date, e.Amount.StringFixed(2), e.RawText)
	}
	fmt.Fprintf(w, "Total\t%s\t\n", s.Total.StringFixed(2))
	return w.Flush()
}
