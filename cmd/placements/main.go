// Command placements pulls placement postings out of a college placement
// mailbox.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acavemancodes/Snistplacements/internal/analyzer"
	"github.com/acavemancodes/Snistplacements/internal/config"
	"github.com/acavemancodes/Snistplacements/internal/extractor"
	"github.com/acavemancodes/Snistplacements/internal/logging"
	"github.com/acavemancodes/Snistplacements/internal/mailbox"
)

const defaultConfigPath = "configs/config.yaml"

var (
	configPath string
	logLevel   string
	logFormat  string
	version    = "dev"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "placements",
	Short: "Extract placement postings from recruitment emails",
	Long: `placements reads recruitment emails from an IMAP mailbox or from local
.eml/.json/.txt files and extracts company, salary, last date, application
link and position for each placement drive.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+defaultConfigPath+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json or console")
	rootCmd.AddCommand(fetchCmd, extractCmd, explainCmd, serveCmd)
}

// app bundles what every subcommand needs.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	ex       *extractor.Extractor
	analyzer *analyzer.JobAnalyzer
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ex := extractor.New(extractor.WithMaxInputBytes(cfg.Extract.MaxInputBytes))
	return &app{
		cfg:      cfg,
		log:      log,
		registry: reg,
		ex:       ex,
		analyzer: analyzer.NewJobAnalyzer(ex, log, analyzer.NewMetrics(reg), cfg.Extract.Workers),
	}, nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	return config.Default(), nil
}

// source picks the mailbox: fetch.dir when set, IMAP otherwise.
func (a *app) source() (mailbox.Source, error) {
	if a.cfg.Fetch.Dir != "" {
		return mailbox.DirSource{Dir: a.cfg.Fetch.Dir}, nil
	}
	if !a.cfg.UseIMAP() {
		return nil, errors.New("no mailbox configured: set imap.email/imap.host or fetch.dir")
	}

	w, err := a.cfg.Window()
	if err != nil {
		return nil, err
	}
	im := a.cfg.IMAP
	a.log.Info("using imap mailbox",
		zap.String("host", im.Host),
		zap.String("email", im.Email),
		zap.Strings("folders", im.Folders),
		logging.RedactedString("password", im.Password))
	return mailbox.NewIMAPSource(mailbox.IMAPOptions{
		Addr:              im.Host,
		UseTLS:            im.UseTLS,
		Email:             im.Email,
		Password:          im.Password,
		OAuthClientID:     im.OAuthClientID,
		OAuthClientSecret: im.OAuthClientSecret,
		RefreshToken:      im.RefreshToken,
		Folders:           im.Folders,
		MaxEmails:         a.cfg.Fetch.MaxEmails,
		Since:             w.Since,
		Before:            w.Before,
	}, a.log), nil
}
