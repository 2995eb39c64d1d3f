// Package confirm handles saving a user-confirmed expense
package confirm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"fjacquet/expense-categorizer/cmd/root"
	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/ledger"
	"fjacquet/expense-categorizer/internal/textutils"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Flags holds the confirm command flags.
type Flags struct {
	Amount   string
	Category string
	Date     string
}

var flags Flags

// Cmd represents the confirm command
var Cmd = &cobra.Command{
	Use:   "confirm <text>",
	Short: "Save an expense with its confirmed category",
	Long: `Save an expense with its confirmed category. The confirmation teaches the
categorizer: the extracted term becomes a learned rule and part of the
user's history.

When --amount is omitted the amount is parsed from the text.

Example:
  expense-categorizer confirm -u alice -c Shopping "1200 at kavya boutique"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		return run(cmd.Context(), c.GetLedger(), cmd.OutOrStdout(), root.SharedFlags.UserID, strings.Join(args, " "), flags)
	},
}

func init() {
	Cmd.Flags().StringVarP(&flags.Amount, "amount", "a", "", "Expense amount (default: parsed from the text)")
	Cmd.Flags().StringVarP(&flags.Category, "category", "c", "", "Confirmed category")
	Cmd.Flags().StringVarP(&flags.Date, "date", "t", "", "Expense date, YYYY-MM-DD (default: today)")
	_ = Cmd.MarkFlagRequired("category")
}

func parseAmount(flag, text string) (*decimal.Decimal, error) {
	if flag != "" {
		d, err := decimal.NewFromString(flag)
		if err != nil {
			return nil, &apperror.ValidationError{Field: "amount", Reason: "must be a number"}
		}
		return &d, nil
	}
	if d, ok := textutils.ExtractAmount(text); ok {
		return &d, nil
	}
	return nil, nil
}

func run(ctx context.Context, svc *ledger.Service, out io.Writer, userID, text string, f Flags) error {
	amount, err := parseAmount(f.Amount, text)
	if err != nil {
		return err
	}
	expense, err := svc.Save(ctx, ledger.SaveRequest{
		UserID:   userID,
		Amount:   amount,
		Category: f.Category,
		RawText:  text,
		Date:     f.Date,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s: %s %s on %s\n", expense.ID, expense.Amount.StringFixed(2), expense.Category, expense.Date)
	return nil
}
