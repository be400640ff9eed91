package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"faultline/packages/cases"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>",
	Short: "List cases defined in case files",
	Long: `List the test cases defined in YAML case files.

Examples:
  faultline list cases/
  faultline list cases/channels.yaml --tags smoke`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

var listTagsFlag string

func init() {
	listCmd.Flags().StringVarP(&listTagsFlag, "tags", "t", "", "Show only cases with specified tags (comma-separated)")
}

func listCommand(cmd *cobra.Command, args []string) error {
	loaded, err := loadCases(args)
	if err != nil {
		return err
	}
	if listTagsFlag != "" {
		loaded = cases.FilterByTags(loaded, splitTags(listTagsFlag))
	}

	out := cmd.OutOrStdout()
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, c := range loaded {
		line := fmt.Sprintf("%s %s %s", cyan(c.Method), c.URL, c.Name)
		if len(c.Tags) > 0 {
			line += " " + dim("["+strings.Join(c.Tags, ", ")+"]")
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "\n%d case(s)\n", len(loaded))
	return nil
}
