package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"faultline/packages/cases"
	"faultline/packages/config"
	"faultline/packages/http"
	"faultline/packages/metrics"
	"faultline/packages/output"
	"faultline/packages/runner"
	"faultline/packages/store"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>",
	Short: "Run API test cases from YAML files",
	Long: `Run declarative API test cases defined in YAML files.

Examples:
  faultline run cases/
  faultline run cases/channels.yaml --base-url http://localhost:8000
  faultline run cases/ --tags smoke,P1
  faultline run cases/ --watch
  faultline run cases/ --output json --output-file report.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

// WatchDebounceDelay is the debounce delay for file watch events
const WatchDebounceDelay = 300 * time.Millisecond

var (
	baseURLFlag     string
	configFlag      string
	tagsFlag        string
	outputFlag      string
	outputFileFlag  string
	concurrencyFlag int
	rateFlag        float64
	bailFlag        bool
	watchFlag       bool
	verboseFlag     bool
	noColorFlag     bool
	dbFlag          string
	insecureFlag    bool
	proxyFlag       string
)

func init() {
	runCmd.Flags().StringVarP(&baseURLFlag, "base-url", "u", getEnvString("FAULTLINE_BASE_URL", ""), "Target API base URL (env: FAULTLINE_BASE_URL)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("FAULTLINE_CONFIG", ""), "Path to config file (env: FAULTLINE_CONFIG)")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", "", "Run only cases with specified tags (comma-separated)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", "console", "Output format: console, json, junit")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", "", "Write output to file (default: stdout)")
	runCmd.Flags().IntVarP(&concurrencyFlag, "concurrency", "c", 0, "Number of cases to run in parallel")
	runCmd.Flags().Float64VarP(&rateFlag, "rate", "r", 0, "Cap on requests per second (0 = unlimited)")
	runCmd.Flags().BoolVar(&bailFlag, "bail", false, "Stop at the first failing case")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch case files for changes and re-run")
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	runCmd.Flags().StringVar(&dbFlag, "db", "", "SQLite path enabling database assertions")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", false, "Skip SSL certificate validation")
	runCmd.Flags().StringVar(&proxyFlag, "proxy", "", "Proxy URL for all requests")
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = mergeRunFlags(cfg)

	failed, err := runCampaign(cmd, cfg, args)
	if err != nil {
		return err
	}

	if !watchFlag {
		if failed > 0 {
			os.Exit(ExitCaseFailure)
		}
		return nil
	}

	return watchAndRerun(cmd, cfg, args)
}

// mergeRunFlags lays explicitly set flags over the loaded config.
func mergeRunFlags(cfg *config.Config) *config.Config {
	over := &config.Config{
		BaseURL:     baseURLFlag,
		Concurrency: concurrencyFlag,
		Rate:        rateFlag,
		Database:    dbFlag,
		Proxy:       proxyFlag,
	}
	if verboseFlag {
		over.Verbose = config.BoolPtr(true)
	}
	if noColorFlag {
		over.NoColor = config.BoolPtr(true)
	}
	if insecureFlag {
		over.ValidateSSL = config.BoolPtr(false)
	}
	return cfg.Merge(over)
}

func runCampaign(cmd *cobra.Command, cfg *config.Config, args []string) (failed int, err error) {
	loaded, err := loadCases(args)
	if err != nil {
		return 0, err
	}

	if tagsFlag != "" {
		loaded = cases.FilterByTags(loaded, splitTags(tagsFlag))
	}
	if len(loaded) == 0 {
		return 0, fmt.Errorf("no test cases found")
	}

	out := cmd.OutOrStdout()
	if outputFileFlag != "" {
		f, ferr := os.Create(outputFileFlag)
		if ferr != nil {
			return 0, fmt.Errorf("failed to create output file: %w", ferr)
		}
		defer f.Close()
		out = f
	}

	formatter, err := output.NewFormatter(outputFlag, out, cfg.GetVerbose(), cfg.GetNoColor())
	if err != nil {
		return 0, err
	}

	r, closeStore, err := buildRunner(cfg)
	if err != nil {
		return 0, err
	}
	defer closeStore()

	title := strings.Join(args, " ")
	var campaign *runner.CampaignResult
	if bailFlag {
		campaign = runWithBail(r, loaded)
	} else {
		campaign = r.RunCases(context.Background(), loaded)
	}

	formatter.FormatCampaign(title, campaign)
	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(); err != nil {
			return 0, err
		}
	}

	return campaign.Failed + campaign.Errors, nil
}

// runWithBail runs cases one at a time and stops at the first failure
// or error. Latency is collected across every case that actually ran,
// not just the last one.
func runWithBail(r *runner.Runner, loaded []cases.Case) *runner.CampaignResult {
	collector := metrics.NewCollector()
	collector.Start()

	combined := &runner.CampaignResult{}
	for _, c := range loaded {
		result := r.RunCases(context.Background(), []cases.Case{c})
		for _, res := range result.Results {
			var caseErr error
			if res.Error != "" {
				caseErr = errors.New(res.Error)
			}
			collector.Record(res.Duration, res.Passed, caseErr)
		}
		combined.Results = append(combined.Results, result.Results...)
		combined.Total += result.Total
		combined.Passed += result.Passed
		combined.Failed += result.Failed
		combined.Errors += result.Errors
		if result.Failed > 0 || result.Errors > 0 {
			break
		}
	}

	collector.Stop()
	combined.Summary = collector.Summarize()
	combined.Duration = combined.Summary.Duration
	return combined
}

func buildRunner(cfg *config.Config) (*runner.Runner, func(), error) {
	clientOpts := []http.ClientOption{
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, http.WithTimeout(time.Duration(cfg.Timeout)*time.Millisecond))
	}
	if cfg.Retries > 0 {
		clientOpts = append(clientOpts, http.WithRetryCount(cfg.Retries))
	}
	if cfg.RetryDelay > 0 {
		clientOpts = append(clientOpts, http.WithRetryBackoff(time.Duration(cfg.RetryDelay)*time.Millisecond))
	}
	if cfg.MaxRedirects > 0 {
		clientOpts = append(clientOpts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, http.WithDefaultHeaders(cfg.Headers))
	}

	runnerOpts := []runner.Option{
		runner.WithClient(http.NewClient(clientOpts...)),
		runner.WithConcurrency(cfg.Concurrency),
		runner.WithRateLimit(cfg.Rate),
	}

	closeStore := func() {}
	if cfg.Database != "" {
		s, err := store.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open store: %w", err)
		}
		closeStore = func() { _ = s.Close() }
		runnerOpts = append(runnerOpts, runner.WithStore(s))
	}

	return runner.NewRunner(cfg.BaseURL, runnerOpts...), closeStore, nil
}

func loadCases(args []string) ([]cases.Case, error) {
	var all []cases.Case
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			loaded, err := cases.NewLoader(arg).LoadAll()
			if err != nil {
				return nil, err
			}
			all = append(all, loaded...)
			continue
		}

		loaded, err := cases.NewLoader(filepath.Dir(arg)).LoadFile(arg)
		if err != nil {
			return nil, err
		}
		all = append(all, loaded...)
	}
	return all, nil
}

func watchAndRerun(cmd *cobra.Command, cfg *config.Config, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	for _, arg := range args {
		dir := arg
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			dir = filepath.Dir(arg)
		}
		if !watched[dir] {
			if err := watcher.Add(dir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to watch %s: %v\n", dir, err)
			}
			watched[dir] = true
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounceTimer *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) && isCaseFile(event.Name) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\nRe-running cases...\n", event.Name)
					if _, err := runCampaign(cmd, cfg, args); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

func isCaseFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func splitTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
