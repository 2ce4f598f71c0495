package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Casey2134/pulse/internal/config"
	"github.com/Casey2134/pulse/internal/domain"
	"github.com/Casey2134/pulse/internal/libvirt"
	"github.com/Casey2134/pulse/internal/local"
	"github.com/Casey2134/pulse/internal/proxmox"
	"github.com/Casey2134/pulse/internal/tui"
)

// Set via ldflags at build time.
var version = "dev"

var (
	configFlag  string
	refreshFlag string
	logFlag     string
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Terminal dashboard for virtualization hosts",
	Long: `Pulse polls Proxmox VE clusters, libvirt hosts and the local machine,
and presents their nodes and guests in one live terminal view.

Configuration lives in ~/.config/pulse/config.yaml by default.`,
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "path to config file")
	rootCmd.Flags().StringVarP(&refreshFlag, "refresh", "r", "", "refresh interval, e.g. 10s (overrides config)")
	rootCmd.Flags().StringVar(&logFlag, "log", "", "write diagnostics to this file")
}

func run() error {
	logger, closeLog, err := newLogger(logFlag)
	if err != nil {
		return err
	}
	defer closeLog()

	path := configFlag
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if refreshFlag != "" {
		cfg.Refresh = refreshFlag
	}

	providers := buildProviders(cfg, logger)
	if len(providers) == 0 {
		return fmt.Errorf("no providers configured; edit %s", path)
	}
	logger.Info("starting", "version", version, "providers", len(providers),
		"refresh", cfg.RefreshInterval())

	m := tui.NewModel(providers, cfg.RefreshInterval(), logger)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// buildProviders assembles one provider per config entry. A malformed
// entry is logged and skipped; the dashboard still runs on the rest.
func buildProviders(cfg *config.Config, logger *slog.Logger) []domain.Provider {
	var providers []domain.Provider

	for _, pc := range cfg.Providers.Proxmox {
		providers = append(providers, proxmox.New(pc, logger))
	}

	for _, lc := range cfg.Providers.Libvirt {
		p, err := libvirt.New(lc, logger)
		if err != nil {
			logger.Warn("skipping libvirt provider", "name", lc.Name, "error", err)
			continue
		}
		providers = append(providers, p)
	}

	if cfg.Providers.Local.Enabled {
		providers = append(providers, local.New(cfg.Providers.Local))
	}

	return providers
}

// newLogger opens the diagnostics sink. Without --log everything is
// discarded: stderr belongs to the TUI.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
