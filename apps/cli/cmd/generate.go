package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"faultline/packages/config"
	"faultline/packages/mutation"
	"faultline/packages/output"
	"faultline/packages/schema"
)

var generateCmd = &cobra.Command{
	Use:   "generate <schema-file>",
	Short: "Generate negative test cases from a schema",
	Long: `Generate negative test cases by mutating a known-good payload
against a JSON Schema or an OpenAPI operation.

Examples:
  faultline generate schema.json --example valid.json
  faultline generate openapi.yaml --operation createChannel --example valid.json
  faultline generate schema.json --example valid.json --strategies missing_field,boundary
  faultline generate schema.json --example valid.json --run --method POST --path /channels`,
	Args: cobra.ExactArgs(1),
	RunE: generateCommand,
}

var (
	exampleFlag      string
	operationFlag    string
	strategiesFlag   string
	rejectStatusFlag int
	genOutputFlag    string
	genRunFlag       bool
	genMethodFlag    string
	genPathFlag      string
)

func init() {
	generateCmd.Flags().StringVarP(&exampleFlag, "example", "e", "", "Path to a known-good JSON payload (required)")
	generateCmd.Flags().StringVar(&operationFlag, "operation", "", "OpenAPI operationId to target (treats the schema file as an OpenAPI spec)")
	generateCmd.Flags().StringVarP(&strategiesFlag, "strategies", "s", "", "Mutation strategies to run (comma-separated, default all)")
	generateCmd.Flags().IntVar(&rejectStatusFlag, "reject-status", 0, "Expected status for rejected payloads (default 400)")
	generateCmd.Flags().StringVar(&genOutputFlag, "output-file", "", "Write generated cases to file (default: stdout)")
	generateCmd.Flags().BoolVar(&genRunFlag, "run", false, "Execute the generated cases against --base-url instead of printing them")
	generateCmd.Flags().StringVarP(&genMethodFlag, "method", "X", "POST", "HTTP method used with --run")
	generateCmd.Flags().StringVarP(&genPathFlag, "path", "p", "", "Request path used with --run")
	generateCmd.Flags().StringVarP(&baseURLFlag, "base-url", "u", getEnvString("FAULTLINE_BASE_URL", ""), "Target API base URL (env: FAULTLINE_BASE_URL)")
	generateCmd.MarkFlagRequired("example")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSchema(args[0])
	if err != nil {
		return err
	}

	exampleData, err := os.ReadFile(exampleFlag)
	if err != nil {
		return fmt.Errorf("failed to read example payload: %w", err)
	}
	var example map[string]any
	if err := json.Unmarshal(exampleData, &example); err != nil {
		return fmt.Errorf("failed to parse example payload: %w", err)
	}

	var opts []mutation.Option
	if strategiesFlag != "" {
		opts = append(opts, mutation.WithStrategies(splitTags(strategiesFlag)...))
	}
	if rejectStatusFlag > 0 {
		opts = append(opts, mutation.WithRejectStatus(rejectStatusFlag))
	}

	gen, err := mutation.NewGenerator(s, opts...)
	if err != nil {
		return err
	}
	generated := gen.GenerateAll(example)

	if genRunFlag {
		return runGenerated(cmd, generated)
	}

	out := cmd.OutOrStdout()
	if genOutputFlag != "" {
		f, err := os.Create(genOutputFlag)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(generated)
}

// loadSchema reads the argument as an OpenAPI spec when --operation is
// set, or a plain JSON Schema otherwise.
func loadSchema(path string) (*schema.Schema, error) {
	if operationFlag != "" {
		return schema.FromOpenAPIFile(path, operationFlag)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return schema.Parse(data)
}

func runGenerated(cmd *cobra.Command, generated []mutation.Case) error {
	if genPathFlag == "" {
		return fmt.Errorf("--run requires --path")
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = mergeRunFlags(cfg)

	r, closeStore, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	campaign := r.RunMutations(context.Background(), strings.ToUpper(genMethodFlag), genPathFlag, generated)

	formatter, err := output.NewFormatter(outputFlag, cmd.OutOrStdout(), cfg.GetVerbose(), cfg.GetNoColor())
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s %s", strings.ToUpper(genMethodFlag), genPathFlag)
	formatter.FormatCampaign(title, campaign)
	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(); err != nil {
			return err
		}
	}

	if campaign.Failed+campaign.Errors > 0 {
		os.Exit(ExitCaseFailure)
	}
	return nil
}
