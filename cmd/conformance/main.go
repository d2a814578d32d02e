package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	appconformance "github.com/Apurer/petstore-api-tests/internal/app/conformance"
	suite "github.com/Apurer/petstore-api-tests/internal/conformance"
)

var (
	baseURI   string
	seed      uint64
	scenarios []string
	timeout   time.Duration
	asJSON    bool
)

var rootCmd = &cobra.Command{
	Use:           "conformance",
	Short:         "Run the pet-store conformance scenarios against a live service",
	Long:          "Runs the /pet conformance scenarios against PETSTORE_BASE_URI (or --base-uri) and exits non-zero when any scenario fails.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConformance,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range suite.Scenarios() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", s.Name, s.Description)
		}
		return nil
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&baseURI, "base-uri", "", "Service base URI, e.g. https://petstore.swagger.io/v2 (overrides PETSTORE_BASE_URI)")
	flags.Uint64Var(&seed, "seed", 0, "Fixture id seed; 0 seeds from the clock (overrides PETSTORE_FIXTURE_SEED)")
	flags.StringArrayVar(&scenarios, "run", nil, "Scenario to run; repeatable, all when omitted")
	flags.DurationVar(&timeout, "timeout", 0, "Per-request timeout (overrides PETSTORE_REQUEST_TIMEOUT)")
	flags.BoolVar(&asJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runConformance(cmd *cobra.Command, _ []string) error {
	cfg, err := appconformance.LoadConfig(func(c *appconformance.Config) {
		flags := cmd.Flags()
		if flags.Changed("base-uri") {
			c.BaseURI = baseURI
		}
		if flags.Changed("seed") {
			c.FixtureSeed = seed
		}
		if flags.Changed("timeout") {
			c.RequestTimeout = timeout
		}
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, runErr := appconformance.Run(ctx, cfg, scenarios)
	if errors.Is(runErr, suite.ErrUnknownScenario) {
		return runErr
	}
	if err := printReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	return runErr
}

func printReport(w io.Writer, report suite.Report) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	for _, res := range report.Results {
		verdict := "PASS"
		switch {
		case res.Skipped:
			verdict = "SKIP"
		case !res.Passed:
			verdict = "FAIL"
		}
		fmt.Fprintf(w, "%s  %-22s %8s", verdict, res.Name, res.Duration.Round(time.Millisecond))
		if res.Error != "" {
			fmt.Fprintf(w, "  %s", res.Error)
		}
		fmt.Fprintln(w)
	}
	passed, failed, skipped := report.Tally()
	fmt.Fprintf(w, "%d passed, %d failed, %d skipped (seed %d, run %s)\n",
		passed, failed, skipped, report.Seed, report.RunID)
	return nil
}
