// Command diaggroups prints the hierarchy of diagnostic group switches
// defined in a TableGen diagnostic groups file.
//
// Usage:
//
//	diaggroups [--top-level] [--unique] [-I dir]... groups-file
//
// Each switch is printed as -W<name>, followed by the switches it enables,
// indented per level behind a "#" comment marker.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"diaggroups/internal/config"
	"diaggroups/internal/crawler"
	"diaggroups/internal/extractor"
	"diaggroups/internal/graph"
	"diaggroups/internal/index"
	"diaggroups/internal/report"

	"github.com/spf13/cobra"
)

type flags struct {
	configPath   string
	topLevel     bool
	unique       bool
	format       string
	onCycle      string
	onUnresolved string
	includeDirs  []string
	verbose      bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "diaggroups [flags] groups-file",
		Short: "Clang diagnostics group parser",
		Long: `Parse a diagnostic groups definitions file and print every -W switch
together with the switches it transitively enables.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cfg, args[0], stdout, newLogger(stderr, cfg.Log.Level))
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", config.DefaultPath, "Path to the configuration file")
	fl.BoolVar(&f.topLevel, "top-level", false, `Show only top level switches. These filter out all switches that are enabled
by some other switch and that way remove duplicate instances from the output.`)
	fl.BoolVar(&f.unique, "unique", false, "Show only unique switches.")
	fl.StringVarP(&f.format, "format", "f", "text", "Output format: text, json, yaml or mermaid")
	fl.StringVar(&f.onCycle, "on-cycle", "error", "Reference cycle handling: error or truncate")
	fl.StringVar(&f.onUnresolved, "on-unresolved", "error", "Handling of references to records without a switch: error, skip or mark")
	fl.StringArrayVarP(&f.includeDirs, "include-dir", "I", nil, "Directory searched for included files (repeatable)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Log debug output to stderr")
	return cmd
}

// resolveConfig loads the config file and applies explicitly set flags on top.
func resolveConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("top-level") {
		cfg.Report.TopLevel = f.topLevel
	}
	if fl.Changed("unique") {
		cfg.Report.Unique = f.unique
	}
	if fl.Changed("format") {
		cfg.Report.Format = f.format
	}
	if fl.Changed("on-cycle") {
		cfg.Policy.OnCycle = f.onCycle
	}
	if fl.Changed("on-unresolved") {
		cfg.Policy.OnUnresolved = f.onUnresolved
	}
	if fl.Changed("include-dir") {
		cfg.IncludeDirs = append(cfg.IncludeDirs, f.includeDirs...)
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config, groupsFile string, out io.Writer, logger *slog.Logger) error {
	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}
	cycles, err := graph.ParseCyclePolicy(cfg.Policy.OnCycle)
	if err != nil {
		return err
	}
	unresolved, err := graph.ParseUnresolvedPolicy(cfg.Policy.OnUnresolved)
	if err != nil {
		return err
	}

	cr := crawler.NewCrawler(cfg.IncludeDirs, logger)
	idx := index.NewIndexer(cr, extractor.NewExtractor(logger), logger)

	g, err := idx.BuildGraph(groupsFile)
	if err != nil {
		return err
	}

	opts := report.Options{
		TopLevel: cfg.Report.TopLevel,
		Unique:   cfg.Report.Unique,
		Format:   format,
		Expand:   graph.ExpandOptions{Cycles: cycles, Unresolved: unresolved},
	}
	if err := report.Write(out, g, opts); err != nil {
		return fmt.Errorf("report failed: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
