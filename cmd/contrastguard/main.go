// The contrastguard CLI validates design-system color pairs against WCAG
// contrast criteria and runs the performance alerting daemon.
//
// Usage:
//
//	contrastguard check [--config X]      — run the accessibility suite, exit 0/1
//	contrastguard validate <fg> <bg>      — validate a single color pair
//	contrastguard simulate <hex>          — simulate color vision deficiencies
//	contrastguard serve [--config X]      — run the alerting daemon
//	contrastguard version                 — version info
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"contrastguard/internal/config"
	"contrastguard/internal/cvd"
	"contrastguard/internal/model"
	"contrastguard/internal/report"
	"contrastguard/internal/suite"
	"contrastguard/internal/wcag"
)

var (
	version   = "dev"
	gitCommit = "unknown"
)

var (
	configPath string
	levelFlag  string
	largeText  bool
	cvdType    string

	rootCmd = &cobra.Command{
		Use:           "contrastguard",
		Short:         "WCAG contrast validation and CSS performance alerting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Run the accessibility suite and print a JSON report",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}

	validateCmd = &cobra.Command{
		Use:   "validate <foreground> <background>",
		Short: "Validate one color pair, including color vision deficiency checks",
		Args:  cobra.ExactArgs(2),
		RunE:  runValidate,
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate <hex>",
		Short: "Show how a color appears under color vision deficiencies",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulate,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the metric ingest, alerting engine and HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("contrastguard %s (commit: %s)\n", version, gitCommit)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML or JSON)")
	checkCmd.Flags().StringVar(&levelFlag, "level", "", "conformance level override (AA or AAA)")
	validateCmd.Flags().StringVar(&levelFlag, "level", "AA", "conformance level (AA or AAA)")
	validateCmd.Flags().BoolVar(&largeText, "large", false, "treat the pair as large text")
	simulateCmd.Flags().StringVar(&cvdType, "type", "", "single deficiency type (protanopia, deuteranopia, tritanopia, achromatopsia)")
	rootCmd.AddCommand(checkCmd, validateCmd, simulateCmd, serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(report.ExitConfigError)
	}
}

// loadConfig resolves --config; no flag means built-in defaults. Any load or
// validation failure is fatal with the config-error exit code.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(config.ResolvePath(configPath))
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	level := cfg.Suite.Level
	if levelFlag != "" {
		level = model.WCAGLevel(levelFlag)
		if !level.Valid() {
			return fmt.Errorf("unknown level %q", levelFlag)
		}
	}
	results := suite.New(cfg.Suite.Pairs).Run(level)
	rep := report.Build(results, model.AlertStats{})
	printJSON(rep)
	os.Exit(rep.ExitCode())
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	level := model.WCAGLevel(levelFlag)
	if !level.Valid() {
		return fmt.Errorf("unknown level %q", levelFlag)
	}
	res := wcag.Validate(args[0], args[1], level, largeText)
	printJSON(map[string]any{
		"contrast": res,
		"cvd":      wcag.ValidateColorBlindFriendly(args[0], args[1]),
	})
	if !res.Passed {
		os.Exit(report.ExitFailed)
	}
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	hex := args[0]
	if cvdType != "" {
		t := model.CVDType(cvdType)
		if !t.Valid() {
			return fmt.Errorf("unknown deficiency type %q", cvdType)
		}
		printJSON(map[string]string{string(t): cvd.Simulate(hex, t)})
		return nil
	}
	printJSON(cvd.SimulateAll(hex))
	return nil
}

func printJSON(payload any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
