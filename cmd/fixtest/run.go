package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/fixtest/internal/analyzer"
	"github.com/dshills/fixtest/internal/analyzer/analyzertest"
	"github.com/dshills/fixtest/internal/config"
	"github.com/dshills/fixtest/internal/fixture"
	"github.com/dshills/fixtest/internal/harness"
	"github.com/dshills/fixtest/internal/script"
	"github.com/dshills/fixtest/internal/verify"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <script.lua>",
	Short: "Run an edit script against a fixture",
	Long: `Load the fixture, feed its files to the analyzer, execute the Lua
script, and report the verdict. Diagnostics for the built-in fake
analyzer come from a separate JSON file.`,
	Args:          cobra.ExactArgs(1),
	RunE:          runScript,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	runCmd.Flags().String("fixture", "", "path to the fixture JSON file (required)")
	runCmd.Flags().String("diagnostics", "", "path to a diagnostics JSON file for the fake analyzer")
	runCmd.Flags().String("report", "", "write a JSON run report to this path")
	if err := runCmd.MarkFlagRequired("fixture"); err != nil {
		panic(err)
	}
}

func runScript(cmd *cobra.Command, args []string) error {
	scriptPath := args[0]

	fixturePath, err := cmd.Flags().GetString("fixture")
	if err != nil {
		return fmt.Errorf("failed to get fixture flag: %w", err)
	}
	diagPath, err := cmd.Flags().GetString("diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get diagnostics flag: %w", err)
	}
	reportPath, err := cmd.Flags().GetString("report")
	if err != nil {
		return fmt.Errorf("failed to get report flag: %w", err)
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return fmt.Errorf("failed to get no-color flag: %w", err)
	}

	opts, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if noColor {
		opts.Color = false
	}

	fx, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}

	fake, err := buildAnalyzer(fx, diagPath, opts)
	if err != nil {
		return err
	}

	s, err := harness.NewSession(fx, fake, harness.WithIgnoreCase(opts.IgnoreCase))
	if err != nil {
		return err
	}
	v := verify.New(s,
		verify.WithMaxPasses(opts.MaxPasses),
		verify.WithColor(opts.Color),
	)

	r := script.NewRunner(s, v)
	defer r.Close()

	runErr := r.RunFile(scriptPath)

	if reportPath != "" {
		if werr := writeReport(reportPath, scriptPath, fixturePath, fake, runErr); werr != nil {
			return werr
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("FAIL"), scriptPath)
		fmt.Fprintln(os.Stderr, runErr)
		return runErr
	}
	fmt.Printf("%s %s\n", color.GreenString("PASS"), scriptPath)
	return nil
}

func loadFixture(path string) (*fixture.Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	fx, err := fixture.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return fx, nil
}

// buildAnalyzer wires the fake analyzer: every fixture file is handed over
// for position indexing, and the optional diagnostics file supplies what
// the analyzer will report once it settles.
func buildAnalyzer(fx *fixture.Fixture, diagPath string, opts config.Options) (*analyzertest.Fake, error) {
	fake := analyzertest.New()
	for _, fs := range fx.Files {
		fake.SetContent(fs.Path, fs.Content)
	}

	if diagPath != "" {
		data, err := os.ReadFile(diagPath)
		if err != nil {
			return nil, fmt.Errorf("reading diagnostics %s: %w", diagPath, err)
		}
		if err := fake.LoadDiagnostics(data); err != nil {
			return nil, fmt.Errorf("diagnostics %s: %w", diagPath, err)
		}
	}

	if opts.CancelAfter > 0 {
		fake.SetCancelToken(analyzer.CancelAfter(opts.CancelAfter))
	}
	return fake, nil
}

func writeReport(path, scriptPath, fixturePath string, fake *analyzertest.Fake, runErr error) error {
	report := []byte(`{}`)
	var err error
	for _, set := range []struct {
		key   string
		value any
	}{
		{"script", scriptPath},
		{"fixture", fixturePath},
		{"ok", runErr == nil},
		{"advances", fake.Advances()},
	} {
		if report, err = sjson.SetBytes(report, set.key, set.value); err != nil {
			return fmt.Errorf("building report: %w", err)
		}
	}
	if runErr != nil {
		if report, err = sjson.SetBytes(report, "error", runErr.Error()); err != nil {
			return fmt.Errorf("building report: %w", err)
		}
	}
	if err := os.WriteFile(path, append(report, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
