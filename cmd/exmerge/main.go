// Package main provides the CLI entry point for exmerge-go.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/exmerge-go/pkg/exmerge"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/output"
	"github.com/xuri/excelize/v2"
)

type config struct {
	headerRows int
	keyColumn  string
	threshold  float64
	exactBase  bool
	workers    int
	logLevel   string
	logFormat  string
	outputPath string
	pretty     bool
	sheetsDir  string
	theirsRows bool
	theirsCols bool
	conflicts  string
	planPath   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config{}
	rootCmd := &cobra.Command{
		Use:   "exmerge",
		Short: "Three-way merge for Excel workbooks",
		Long: `exmerge-go aligns the columns and rows of three revisions of a workbook
(base, ours, theirs), classifies every changed cell and writes a merged workbook.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.IntVar(&cfg.headerRows, "header-rows", exmerge.HeaderRowsAuto, "Header rows compared by position (-1: detect)")
	pf.StringVar(&cfg.keyColumn, "key-column", "auto", "Primary key column in ours: a letter or number, auto or none")
	pf.Float64Var(&cfg.threshold, "threshold", exmerge.DefaultOptions().SimilarityThreshold, "Minimum row similarity for a heuristic match")
	pf.BoolVar(&cfg.exactBase, "exact-base", true, "Include base in the coordinate-by-coordinate scan")
	pf.IntVar(&cfg.workers, "workers", 0, "Sheets compared concurrently (0: one per CPU)")
	pf.StringVar(&cfg.logLevel, "log-level", envOr("EXMERGE_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	pf.StringVar(&cfg.logFormat, "log-format", envOr("EXMERGE_LOG_FORMAT", "text"), "Log format: text, json")

	rootCmd.AddCommand(newDiffCmd(cfg), newMergeCmd(cfg))
	return rootCmd
}

func newDiffCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [base.xlsx] ours.xlsx theirs.xlsx",
		Short: "Compare workbooks and print the merge grid as JSON",
		Long: `Compare three workbooks, or ours and theirs alone when only two paths
are given, and print every changed cell with its classification as JSON.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, cfg, args)
		},
	}
	cmd.Flags().StringVarP(&cfg.outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&cfg.pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&cfg.sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	return cmd
}

func newMergeCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge [base.xlsx] ours.xlsx theirs.xlsx",
		Short: "Write a merged workbook",
		Long: `Compare three workbooks and write ours with the non-conflicting changes
of theirs applied. Conflicts keep ours unless --conflicts says otherwise.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, cfg, args)
		},
	}
	cmd.Flags().StringVarP(&cfg.outputPath, "output", "o", "", "Merged workbook path (required)")
	cmd.Flags().BoolVar(&cfg.theirsRows, "take-theirs-rows", false, "Insert rows added by theirs and delete rows it removed")
	cmd.Flags().BoolVar(&cfg.theirsCols, "take-theirs-columns", false, "Insert columns added by theirs and delete columns it removed")
	cmd.Flags().StringVar(&cfg.conflicts, "conflicts", "ours", "Side kept for conflicting cells: ours, theirs, base")
	cmd.Flags().StringVar(&cfg.planPath, "plan", "", "Write the resolved physical operations as JSON to this path")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// splitPaths returns base, ours and theirs; base is empty for two paths.
func splitPaths(args []string) (string, string, string) {
	if len(args) == 2 {
		return "", args[0], args[1]
	}
	return args[0], args[1], args[2]
}

func (cfg *config) options() (exmerge.Options, error) {
	logger, err := setupLogging(os.Stderr, cfg.logLevel, cfg.logFormat)
	if err != nil {
		return exmerge.Options{}, err
	}
	key, err := parseKeyColumn(cfg.keyColumn)
	if err != nil {
		return exmerge.Options{}, err
	}
	if cfg.threshold <= 0 || cfg.threshold > 1 {
		return exmerge.Options{}, fmt.Errorf("invalid threshold: %v (must be in (0, 1])", cfg.threshold)
	}

	opts := exmerge.DefaultOptions()
	opts.HeaderRows = cfg.headerRows
	opts.KeyColumn = key
	opts.SimilarityThreshold = cfg.threshold
	opts.ExactScanBase = cfg.exactBase
	opts.Workers = cfg.workers
	opts.Logger = logger
	return opts, nil
}

// parseKeyColumn accepts "auto", "none", a column letter or a 1-based
// column number.
func parseKeyColumn(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return exmerge.KeyAuto, nil
	case "none":
		return exmerge.KeyNone, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n, nil
	}
	n, err := excelize.ColumnNameToNumber(strings.ToUpper(s))
	if err != nil {
		return 0, fmt.Errorf("invalid key column: %s", s)
	}
	return n, nil
}

func runDiff(cmd *cobra.Command, cfg *config, args []string) error {
	opts, err := cfg.options()
	if err != nil {
		return err
	}
	basePath, oursPath, theirsPath := splitPaths(args)

	wd, err := exmerge.Compare(cmd.Context(), basePath, oursPath, theirsPath, opts)
	if err != nil {
		return fmt.Errorf("compare failed: %w", err)
	}
	logSummaries(opts, wd)

	jsonData, err := output.ToJSON(wd, cfg.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if cfg.outputPath != "" {
		if err := os.WriteFile(cfg.outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if cfg.sheetsDir == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	}

	if cfg.sheetsDir != "" {
		if err := writeSheetFiles(wd, cfg.sheetsDir, cfg.pretty); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}
	return nil
}

func runMerge(cmd *cobra.Command, cfg *config, args []string) error {
	opts, err := cfg.options()
	if err != nil {
		return err
	}
	source, err := parseSide(cfg.conflicts)
	if err != nil {
		return err
	}
	basePath, oursPath, theirsPath := splitPaths(args)
	if basePath == "" && source == models.SideBase {
		return fmt.Errorf("--conflicts base needs a base workbook")
	}

	wd, err := exmerge.Compare(cmd.Context(), basePath, oursPath, theirsPath, opts)
	if err != nil {
		return fmt.Errorf("compare failed: %w", err)
	}
	logSummaries(opts, wd)

	policy := exmerge.Policy{TakeTheirsRows: cfg.theirsRows, TakeTheirsColumns: cfg.theirsCols}
	plans := make([]exmerge.SheetPlan, len(wd.Sheets))
	for i := range wd.Sheets {
		d := &wd.Sheets[i]
		for j := range d.Cells {
			if d.Cells[j].Status == models.StatusConflict {
				exmerge.ApplyChoice(&d.Cells[j], source)
			}
		}
		plans[i] = exmerge.SheetPlan{Diff: d, Edits: exmerge.AutoPlan(d, policy)}
	}

	results, err := exmerge.Save(oursPath, cfg.outputPath, plans, opts)
	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	opts.Logger.Info("merged workbook written", "path", cfg.outputPath)

	if cfg.planPath != "" {
		byName := make(map[string]models.WriteSet, len(results))
		for i, ws := range results {
			byName[wd.Sheets[i].Name] = ws
		}
		jsonData, err := output.WriteSetsToJSON(byName, true)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		if err := os.WriteFile(cfg.planPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write plan: %w", err)
		}
	}
	return nil
}

func parseSide(s string) (models.Side, error) {
	switch models.Side(strings.ToLower(s)) {
	case models.SideOurs:
		return models.SideOurs, nil
	case models.SideTheirs:
		return models.SideTheirs, nil
	case models.SideBase:
		return models.SideBase, nil
	}
	return "", fmt.Errorf("invalid side: %s (must be ours, theirs, or base)", s)
}

func logSummaries(opts exmerge.Options, wd *models.WorkbookDiff) {
	for i := range wd.Sheets {
		s := output.Summarize(&wd.Sheets[i])
		opts.Logger.Info("sheet diff",
			"sheet", s.Name,
			"strategy", s.Strategy,
			"conflicts", s.Conflicts,
			"ours_changed", s.OursChanged,
			"theirs_changed", s.TheirsChanged,
			"rows_added", s.RowsAdded,
			"rows_deleted", s.RowsDeleted,
			"rows_ambiguous", s.RowsAmbiguous,
		)
		if s.Suspicious() {
			opts.Logger.Warn("cells differ by position but none after alignment", "sheet", s.Name)
		}
	}
}

func writeSheetFiles(wd *models.WorkbookDiff, dir string, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for i := range wd.Sheets {
		sheet := &wd.Sheets[i]
		jsonData, err := output.SheetToJSON(sheet, pretty)
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, sheet.Name+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}

	return nil
}
