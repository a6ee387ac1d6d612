package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acavemancodes/Snistplacements/internal/exporter"
	"github.com/acavemancodes/Snistplacements/internal/extractor"
	"github.com/acavemancodes/Snistplacements/internal/mailbox"
	"github.com/acavemancodes/Snistplacements/internal/scheduler"
	"github.com/acavemancodes/Snistplacements/internal/server"
	"github.com/acavemancodes/Snistplacements/internal/types"
)

var (
	exportFile string
	noExport   bool
	fetchTime  time.Duration
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the mailbox once, print statistics and export postings",
	Long: `Fetch the newest emails from the configured mailbox, extract placement
postings, print a summary and export them as CSV (or JSON when the export
file ends in .json).

Examples:
  placements fetch --config configs/config.yaml
  placements fetch --export drives.json`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract postings from .eml, .json or .txt files, or JSON on stdin",
	Long: `Extract postings from local files and print them as JSON.

Examples:
  placements extract mail/drive.eml
  placements extract mail/
  cat batch.json | placements extract -`,
	Args: cobra.ArbitraryArgs,
	RunE: runExtract,
}

var explainCmd = &cobra.Command{
	Use:   "explain <file>",
	Short: "Show every scored candidate per field for one email",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the mailbox on a schedule and serve postings over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	fetchCmd.Flags().StringVar(&exportFile, "export", "", "export file (overrides export.file)")
	fetchCmd.Flags().BoolVar(&noExport, "no-export", false, "only print statistics")
	fetchCmd.Flags().DurationVar(&fetchTime, "timeout", 5*time.Minute, "overall fetch timeout")
	extractCmd.Flags().StringVar(&exportFile, "export", "", "also export postings to this file")
}

func runFetch(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTime)
	defer cancel()

	src, err := a.source()
	if err != nil {
		return err
	}
	emails, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch mail: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Fetched %d emails\n", len(emails))

	postings, err := a.analyzer.AnalyzeEmails(ctx, emails)
	if err != nil {
		return err
	}
	exporter.PrintStatistics(out, postings)

	if !noExport && len(postings) > 0 {
		file := exportFile
		if file == "" {
			file = a.cfg.Export.File
		}
		if err := export(out, file, postings); err != nil {
			return err
		}
	}

	printRecent(out, postings)
	return nil
}

func export(out io.Writer, file string, postings []types.JobPosting) error {
	ce := exporter.NewCSVExporter(file)
	if err := ce.ExportPostings(postings); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nPostings exported to %s\n", ce.Filename())

	stats, err := ce.ExportStatistics(postings, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Statistics exported to %s\n", stats)
	return nil
}

// printRecent 显示最近5条
func printRecent(out io.Writer, postings []types.JobPosting) {
	if len(postings) == 0 {
		return
	}
	fmt.Fprintln(out, "\nLatest postings:")
	for i, p := range postings {
		if i >= 5 {
			break
		}
		fmt.Fprintf(out, "• %s | %s | last date %s\n", p.DisplayText, p.Link(), p.LastDate)
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	emails, err := readEmails(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	postings, err := a.analyzer.AnalyzeEmails(cmd.Context(), emails)
	if err != nil {
		return err
	}

	if err := exporter.WriteJSON(cmd.OutOrStdout(), postings); err != nil {
		return err
	}
	if exportFile != "" {
		return exporter.NewCSVExporter(exportFile).ExportPostings(postings)
	}
	return nil
}

// readEmails loads the given paths, or decodes stdin when none (or "-")
// is given.
func readEmails(stdin io.Reader, args []string) ([]types.Email, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		var emails []types.Email
		if err := json.NewDecoder(stdin).Decode(&emails); err != nil {
			return nil, fmt.Errorf("decode stdin: %w", err)
		}
		return emails, nil
	}
	return mailbox.LoadFiles(args...)
}

func runExplain(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	emails, err := mailbox.LoadFile(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, email := range emails {
		printExplanation(out, a.ex, email)
	}
	return nil
}

func printExplanation(out io.Writer, ex *extractor.Extractor, email types.Email) {
	fmt.Fprintf(out, "=== %s ===\n", email.Subject)
	explained := ex.Explain(email)
	for _, f := range extractor.Fields {
		fmt.Fprintf(out, "%s:\n", f)
		cands := explained[f]
		if len(cands) == 0 {
			fmt.Fprintln(out, "  (none)")
			continue
		}
		for _, c := range cands {
			fmt.Fprintf(out, "  %3d  %-22s %q %v\n", c.Confidence, c.Rule, c.Canonical, c.Adjustments)
		}
	}
	if p, ok := ex.ExtractPosting(email); ok {
		fmt.Fprintf(out, "posting: %s (valid=%t)\n\n", p.DisplayText, p.HasValidData)
	} else {
		fmt.Fprintf(out, "posting: none (no company scored %d or more)\n\n", extractor.CompanyGate)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := scheduler.NewStore()
	src, err := a.source()
	if err != nil {
		a.log.Warn("mailbox polling disabled", zap.Error(err))
	} else {
		poller := scheduler.New(a.cfg.Server.Poll, src, a.analyzer, store, a.log)
		if err := poller.Start(ctx); err != nil {
			return err
		}
		defer poller.Stop()
	}

	srv := server.New(server.Options{
		Analyzer:  a.analyzer,
		Extractor: a.ex,
		Store:     store,
		Gatherer:  a.registry,
		Logger:    a.log,
	})
	return srv.Run(ctx, a.cfg.Server.Listen)
}
