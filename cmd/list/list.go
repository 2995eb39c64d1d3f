// Package list handles listing saved expenses
package list

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/expense-categorizer/cmd/root"
	"fjacquet/expense-categorizer/internal/ledger"
	"fjacquet/expense-categorizer/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Filters holds the list command flags. Export reuses them.
type Filters struct {
	Start    string
	End      string
	Month    string
	Category string
}

// Query builds the ledger query for userID.
func (f Filters) Query(userID string) models.ExpenseQuery {
	return models.ExpenseQuery{
		UserID:   userID,
		Start:    f.Start,
		End:      f.End,
		Month:    f.Month,
		Category: f.Category,
	}
}

// AddFlags registers the filter flags on cmd.
func (f *Filters) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Start, "start", "", "First day to include, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.End, "end", "", "Last day to include, YYYY-MM-DD")
	cmd.Flags().StringVarP(&f.Month, "month", "m", "", "Month to include, YYYY-MM")
	cmd.Flags().StringVarP(&f.Category, "category", "c", "", "Only this category")
}

var filters Filters

// Cmd represents the list command
var Cmd = &cobra.Command{
	Use:   "list",
	Short: "List saved expenses",
	Long: `List a user's saved expenses, oldest first.

Example:
  expense-categorizer list -u alice --start 2024-06-01 --end 2024-06-30`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		return run(cmd.Context(), c.GetLedger(), cmd.OutOrStdout(), filters.Query(root.SharedFlags.UserID))
	},
}

func init() {
	filters.AddFlags(Cmd)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func run(ctx context.Context, svc *ledger.Service, out io.Writer, q models.ExpenseQuery) error {
	items, err := svc.List(ctx, q)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "No expenses found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("Date"),
		headerStyle.Render("Amount"),
		headerStyle.Render("Category"),
		headerStyle.Render("Text"),
		headerStyle.Render("ID"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 10), strings.Repeat("-", 10), strings.Repeat("-", 13),
		strings.Repeat("-", 30), strings.Repeat("-", 36))
	for _, e := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Date, e.Amount.StringFixed(2), e.Category, e.RawText, e.ID)
	}
	return w.Flush()
}
