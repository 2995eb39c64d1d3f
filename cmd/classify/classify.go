// Package classify handles the classify command
package classify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"fjacquet/expense-categorizer/cmd/root"
	"fjacquet/expense-categorizer/internal/categorizer"
	"fjacquet/expense-categorizer/internal/models"

	"github.com/spf13/cobra"
)

var explain bool

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Suggest an amount and a category for a free-text expense",
	Long: `Suggest an amount and a category for a free-text expense without saving it.

Example:
  expense-categorizer classify -u alice "spent 450 on groceries"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		return run(cmd.Context(), c.GetCategorizer(), cmd.OutOrStdout(), root.SharedFlags.UserID, strings.Join(args, " "), explain)
	},
}

func init() {
	Cmd.Flags().BoolVarP(&explain, "explain", "e", false, "Show which strategies were tried")
}

func run(ctx context.Context, cat *categorizer.Categorizer, out io.Writer, userID, text string, explain bool) error {
	req := categorizer.Request{UserID: userID, RawText: text}
	if !explain {
		res, err := cat.Resolve(ctx, req)
		if err != nil {
			return err
		}
		printResult(out, res)
		return nil
	}

	res, trace, err := cat.Explain(ctx, req)
	if err != nil {
		return err
	}
	printResult(out, res)
	fmt.Fprintf(out, "Trace:      %s\n", trace.Summary())
	for _, e := range trace.GetErrors() {
		fmt.Fprintf(out, "Error:      %v\n", e)
	}
	return nil
}

func printResult(out io.Writer, res models.ClassificationResult) {
	amount := "-"
	if res.Amount != nil {
		amount = res.Amount.String()
	}
	fmt.Fprintf(out, "Amount:     %s\n", amount)
	fmt.Fprintf(out, "Category:   %s\n", res.Category)
	if res.Confidence != nil {
		fmt.Fprintf(out, "Confidence: %.2f\n", *res.Confidence)
	}
	fmt.Fprintf(out, "Source:     %s\n", res.Source)
	if res.Term != "" {
		fmt.Fprintf(out, "Term:       %s\n", res.Term)
	}
	fmt.Fprintf(out, "Message:    %s\n", res.Message)
	if res.NeedsConfirmation() {
		fmt.Fprintf(out, "Options:    %s\n", strings.Join(res.Options, ", "))
	}
}
