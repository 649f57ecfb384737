package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/salesreport/internal/config"
	"github.com/hargabyte/salesreport/internal/pipeline"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a report now",
	Long: `Run one full report generation for a template: aggregate the sales data,
render the chart image and dashboard, compose the PDF and email it to the
template's recipients.

Email is skipped when the template has no recipients or the sender
credentials are incomplete. A failed send is reported in the output but does
not fail the command.

Examples:
  reportgen generate                         # sales_report template
  reportgen generate -t financial_report     # another template
  reportgen generate --format json           # JSON run summary`,
	RunE: runGenerate,
}

var generateTemplate string

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateTemplate, "template", "t", "sales_report", "Report template to run")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	tmpl, err := lookupTemplate(cfg, generateTemplate)
	if err != nil {
		return err
	}

	res, err := pipeline.New(cfg).Run(context.Background(), tmpl)
	if err != nil {
		return fmt.Errorf("report generation failed: %w", err)
	}
	return printResult(cmd, res)
}

// lookupTemplate finds a configured template by name.
func lookupTemplate(cfg *config.Config, name string) (pipeline.Template, error) {
	tc, ok := cfg.Templates[name]
	if !ok {
		return pipeline.Template{}, fmt.Errorf("unknown template %q (available: %s)",
			name, strings.Join(templateNames(cfg), ", "))
	}
	return pipeline.TemplateFrom(name, tc), nil
}

// templateNames returns configured template names in sorted order.
func templateNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Templates))
	for name := range cfg.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
