// Package importer handles bulk import of confirmed expenses from CSV
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"fjacquet/expense-categorizer/cmd/root"
	"fjacquet/expense-categorizer/internal/common"
	"fjacquet/expense-categorizer/internal/currencyutils"
	"fjacquet/expense-categorizer/internal/dateutils"
	"fjacquet/expense-categorizer/internal/ledger"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/textutils"

	"github.com/spf13/cobra"
)

var input string

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import confirmed expenses from CSV",
	Long: `Import confirmed expenses from a CSV file with the columns
user_id, amount, category, raw_text and date. Every imported expense teaches
the categorizer like a manual confirmation. Rows without user_id belong to
--user; rows without amount take it from raw_text. Dates may be written
YYYY-MM-DD, DD.MM.YYYY, DD/MM/YYYY or with a month name.

Example:
  expense-categorizer import -i history.csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		return run(cmd.Context(), c.GetLedger(), cmd.OutOrStdout(), input, root.SharedFlags.UserID, root.Log)
	},
}

func init() {
	Cmd.Flags().StringVarP(&input, "input", "i", "", "CSV file to import")
	_ = Cmd.MarkFlagRequired("input")
}

// run imports every valid row. Invalid rows are reported and skipped.
func run(ctx context.Context, svc *ledger.Service, out io.Writer, path, defaultUser string, logger logging.Logger) error {
	rows, err := common.ReadCSVFile[common.ImportRow](path, logger)
	if err != nil {
		return err
	}

	imported, skipped := 0, 0
	for i, row := range rows {
		line := i + 2
		req := ledger.SaveRequest{
			UserID:   strings.TrimSpace(row.UserID),
			Category: row.Category,
			RawText:  row.RawText,
		}
		if req.UserID == "" {
			req.UserID = defaultUser
		}

		date, err := dateutils.NormalizeDate(row.Date)
		if err != nil {
			fmt.Fprintf(out, "row %d: invalid date %q\n", line, row.Date)
			skipped++
			continue
		}
		req.Date = date

		if strings.TrimSpace(row.Amount) != "" {
			d, err := currencyutils.ParseAmount(row.Amount)
			if err != nil {
				fmt.Fprintf(out, "row %d: invalid amount %q\n", line, row.Amount)
				skipped++
				continue
			}
			req.Amount = &d
		} else if d, ok := textutils.ExtractAmount(row.RawText); ok {
			req.Amount = &d
		}

		if _, err := svc.Save(ctx, req); err != nil {
			fmt.Fprintf(out, "row %d: %v\n", line, err)
			skipped++
			continue
		}
		imported++
	}

	logger.WithFields(
		logging.Field{Key: "file", Value: path},
		logging.Field{Key: "imported", Value: imported},
		logging.Field{Key: "skipped", Value: skipped},
	).Info("Import finished")
	fmt.Fprintf(out, "Imported %d expenses, skipped %d\n", imported, skipped)
	return nil
}
