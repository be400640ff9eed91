package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"faultline/packages/assertions"
	"faultline/packages/cases"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>",
	Short: "Validate case files without running them",
	Long: `Parse case files and report malformed cases and unknown
assertion kinds without sending any requests.

Examples:
  faultline validate cases/
  faultline validate cases/channels.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	problems := 0
	for _, arg := range args {
		loaded, err := loadCases([]string{arg})
		if err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", red("✗"), arg, err)
			problems++
			continue
		}

		fileProblems := 0
		for _, c := range loaded {
			for _, issue := range validateCase(c) {
				fmt.Fprintf(out, "%s %s: %s\n", red("✗"), c.Name, issue)
				fileProblems++
			}
		}
		if fileProblems == 0 {
			fmt.Fprintf(out, "%s %s: %d case(s) OK\n", green("✓"), arg, len(loaded))
		}
		problems += fileProblems
	}

	if problems > 0 {
		fmt.Fprintf(out, "\n%d problem(s) found\n", problems)
		os.Exit(ExitParseError)
	}
	return nil
}

func validateCase(c cases.Case) []string {
	var issues []string

	switch c.Method {
	case "GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS":
	default:
		issues = append(issues, fmt.Sprintf("unknown HTTP method %q", c.Method))
	}
	if c.ExpectedStatus < 100 || c.ExpectedStatus > 599 {
		issues = append(issues, fmt.Sprintf("expected_status %d out of range", c.ExpectedStatus))
	}
	for _, rule := range c.Assertions {
		if !assertions.KnownKind(rule.Kind) {
			issues = append(issues, fmt.Sprintf("unknown assertion kind %q for field %q", rule.Kind, rule.Field))
		}
	}
	if c.DBAssertion != nil {
		if c.DBAssertion.Collection == "" {
			issues = append(issues, "db_assertions missing collection")
		}
		if c.DBAssertion.MatchBy == "" {
			issues = append(issues, "db_assertions missing match_by")
		}
		for _, rule := range c.DBAssertion.Verify {
			if !assertions.KnownKind(rule.Kind) {
				issues = append(issues, fmt.Sprintf("unknown assertion kind %q in db_assertions", rule.Kind))
			}
		}
	}
	return issues
}
