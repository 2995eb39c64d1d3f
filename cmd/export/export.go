// Package export handles writing saved expenses to CSV
package export

import (
	"context"
	"fmt"
	"io"

	"fjacquet/expense-categorizer/cmd/list"
	"fjacquet/expense-categorizer/cmd/root"
	"fjacquet/expense-categorizer/internal/common"
	"fjacquet/expense-categorizer/internal/ledger"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"

	"github.com/spf13/cobra"
)

var (
	filters   list.Filters
	output    string
	delimiter string
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved expenses to CSV",
	Long: `Export a user's saved expenses to CSV, to a file or to standard output.

Example:
  expense-categorizer export -u alice -m 2024-06 -o june.csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		delim, err := parseDelimiter(delimiter)
		if err != nil {
			return err
		}
		return run(cmd.Context(), c.GetLedger(), cmd.OutOrStdout(), filters.Query(root.SharedFlags.UserID), output, delim, root.Log)
	},
}

func init() {
	filters.AddFlags(Cmd)
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: standard output)")
	Cmd.Flags().StringVarP(&delimiter, "delimiter", "d", ",", "CSV field delimiter")
}

func parseDelimiter(s string) (rune, error) {
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got: %q", s)
	}
	return r[0], nil
}

func run(ctx context.Context, svc *ledger.Service, out io.Writer, q models.ExpenseQuery, output string, delim rune, logger logging.Logger) error {
	items, err := svc.List(ctx, q)
	if err != nil {
		return err
	}
	if items == nil {
		items = []models.Expense{}
	}
	if output == "" {
		return common.WriteExpensesCSV(out, items, delim)
	}
	return common.WriteExpensesToFile(items, output, delim, logger)
}
