// Package rules handles inspecting and exporting the static rule set
package rules

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"fjacquet/expense-categorizer/cmd/root"
	"fjacquet/expense-categorizer/internal/categorizer"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"
	"fjacquet/expense-categorizer/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var output string

// Cmd groups the rule set subcommands
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the static rule set",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active keyword table and allowed categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		return show(cmd.OutOrStdout(), c.GetRuleSet())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the active rule set as YAML",
	Long: `Write the active rule set as YAML, to use as a starting point for a
custom rules file.

Example:
  expense-categorizer rules export -o config/rules.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		return export(cmd.OutOrStdout(), c.GetRuleSet(), output, root.Log)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check that a rules file builds a valid rule set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validate(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: standard output)")
	Cmd.AddCommand(showCmd, exportCmd, validateCmd)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func show(out io.Writer, rs *categorizer.RuleSet) error {
	fmt.Fprintf(out, "%s %s\n\n", headerStyle.Render("Rule set"), rs.Version())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Keyword"), headerStyle.Render("Category"))
	for _, r := range rs.Keywords() {
		fmt.Fprintf(w, "%s\t%s\n", r.Keyword, r.Category)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s\n", headerStyle.Render("Allowed categories"))
	for _, c := range rs.Allowed() {
		fmt.Fprintf(out, "  %s\n", c)
	}
	return nil
}

func export(out io.Writer, rs *categorizer.RuleSet, output string, logger logging.Logger) error {
	cfg := rs.Config()
	if output == "" {
		data, err := yaml.Marshal(&cfg)
		if err != nil {
			return fmt.Errorf("error marshaling rules: %w", err)
		}
		_, err = out.Write(data)
		return err
	}
	if err := store.NewCategoryStore(output, logger).SaveRules(cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote rule set %s to %s\n", rs.Version(), output)
	return nil
}

func validate(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading rules file: %w", err)
	}
	var cfg models.RulesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("error parsing rules file %s: %w", path, err)
	}
	rs, err := categorizer.RuleSetFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	fmt.Fprintf(out, "%s is valid: version %s, %d keywords, %d categories\n",
		path, rs.Version(), len(rs.Keywords()), len(rs.Allowed()))
	return nil
}
