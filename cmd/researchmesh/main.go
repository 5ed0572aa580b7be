// Command researchmesh runs the research pipeline from the terminal:
//
//	researchmesh run "impact of quantum computing on cryptography"
//
// Credentials come from the environment (ANTHROPIC_API_KEY or
// OPENAI_API_KEY, plus SEARCH_API_KEY) or a YAML config file.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/researchmesh"
	"github.com/hupe1980/researchmesh/config"
	"github.com/hupe1980/researchmesh/logging"
)

const (
	exitOK          = 0
	exitRunFailed   = 1
	exitConfigError = 2
)

type runFlags struct {
	configPath  string
	iterations  int
	outputDir   string
	noSave      bool
	printReport bool
	verbose     bool
}

func main() {
	os.Exit(run())
}

func run() int {
	var flags runFlags
	exitCode := exitOK

	root := &cobra.Command{
		Use:           "researchmesh",
		Short:         "Multi-stage research pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run <query>",
		Short: "Research a topic and write a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runResearch(cmd, args[0], flags)
			exitCode = code
			return err
		},
	}
	runCmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "path to YAML config file")
	runCmd.Flags().IntVarP(&flags.iterations, "iterations", "i", 0, "revision budget (overrides config)")
	runCmd.Flags().StringVarP(&flags.outputDir, "output", "o", ".", "directory for the report file")
	runCmd.Flags().BoolVar(&flags.noSave, "no-save", false, "do not write the report to disk")
	runCmd.Flags().BoolVar(&flags.printReport, "print-report", false, "print the report to stdout")
	runCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if exitCode == exitOK {
			exitCode = exitConfigError
		}
	}
	return exitCode
}

func runResearch(cmd *cobra.Command, query string, flags runFlags) (int, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return exitConfigError, err
	}
	if flags.iterations > 0 {
		cfg.MaxIterations = flags.iterations
	}

	level := logging.ParseLogLevel(cfg.LogLevel)
	if flags.verbose {
		level = logging.LogLevelDebug
	}
	logger := logging.NewSlogLogger(level, "text", false)

	mesh, err := researchmesh.New(func(o *researchmesh.Options) {
		o.Config = cfg
		o.Logger = logger
	})
	if err != nil {
		return exitConfigError, err
	}

	st, err := mesh.Research(cmd.Context(), query)
	if err != nil {
		return exitConfigError, err
	}

	if st.Failed() {
		at := "unknown"
		if st.ErrorStage != nil {
			at = st.ErrorStage.String()
		}
		fmt.Fprintf(os.Stderr, "research failed at %s stage: %s\n", at, st.Error)
		return exitRunFailed, nil
	}

	report := st.ComposeOutput
	fmt.Printf("research completed: %q (%d revision(s))\n", report.Title, st.IterationCount)

	if flags.printReport {
		fmt.Println()
		fmt.Println(report.Markdown())
	}
	if !flags.noSave {
		path := filepath.Join(flags.outputDir, reportFilename(query, time.Now()))
		if err := os.WriteFile(path, []byte(report.Markdown()), 0o644); err != nil {
			return exitRunFailed, fmt.Errorf("write report: %w", err)
		}
		fmt.Println("report written to", path)
	}
	return exitOK, nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// reportFilename derives report_<timestamp>_<slug>.md from the query.
func reportFilename(query string, now time.Time) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(query), "_"), "_")
	if len(slug) > 40 {
		slug = slug[:40]
	}
	return fmt.Sprintf("report_%s_%s.md", now.Format("20060102_150405"), slug)
}
