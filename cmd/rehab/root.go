// ABOUTME: Root Cobra command for rehab CLI.
// ABOUTME: Handles config, logger, ledger, and tracker lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/harperreed/rehab/internal/config"
	"github.com/harperreed/rehab/internal/ledger"
	"github.com/harperreed/rehab/internal/tracker"
	"github.com/spf13/cobra"
)

// skipStore marks commands that must run without the ledger open.
const skipStore = "skip-store"

var (
	cfg     *config.Config
	logger  *log.Logger
	gateway *ledger.Gateway
	trk     *tracker.Tracker

	flagYes     bool
	flagBackend string
	flagDataDir string
)

var rootCmd = &cobra.Command{
	Use:   "rehab",
	Short: "Encrypted rehabilitation session tracker",
	Long: `Rehab is a CLI tool for tracking rehabilitation therapy sessions.

Session metrics are encrypted before they leave your machine. Each session
records an exercise, its duration in minutes, an intensity (low, medium, high),
optional therapist notes, and a progress score from 0 to 100.

QUICK START:

  $ rehab add "knee extension" -d 20 -i medium -m "rom 95deg, pain 2/10"
  $ rehab list                        # Recent sessions, newest first
  $ rehab list --search high          # Filter by exercise or intensity
  $ rehab stats                       # Totals, averages, progress trend
  $ rehab status                      # Check the encryption service

SIGNING:

  Every write is signed by your identity. You are asked to approve each
  write unless --yes is given.

BACKENDS:

  charm     Charm Cloud KV, synced across devices (default)
  badger    Local embedded database
  sqlite    Local SQLite file
  memory    Throwaway, for trying things out

  Pick one with --backend, REHAB_BACKEND, or "backend" in
  ~/.config/rehab/config.json.

MCP INTEGRATION:

  Run 'rehab mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "rehab": { "command": "rehab", "args": ["mcp"] }
    }
  }`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Annotations[skipStore] == "true" {
			return nil
		}

		// A failed RunE skips PersistentPostRunE.
		_ = closeGateway()

		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		logger, err = cfg.NewLogger()
		if err != nil {
			return err
		}

		approver := promptApprover(cmd.InOrStdin(), cmd.ErrOrStderr())
		if flagYes || cmd.Name() == "mcp" {
			approver = ledger.AutoApprove
		}

		gateway, trk, err = openTracker(cfg, approver)
		if err != nil {
			return fmt.Errorf("failed to open %s backend: %w", cfg.GetBackend(), err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeGateway()
	},
}

func closeGateway() error {
	if gateway == nil {
		return nil
	}
	err := gateway.Close()
	gateway, trk = nil, nil
	return err
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	c, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flagBackend != "" {
		c.Backend = flagBackend
	}
	if flagDataDir != "" {
		c.DataDir = flagDataDir
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// openTracker opens the configured backend and wraps it in a gateway and tracker.
func openTracker(c *config.Config, approver ledger.Approver) (*ledger.Gateway, *tracker.Tracker, error) {
	timeout, err := c.GetTimeout()
	if err != nil {
		return nil, nil, err
	}

	store, err := c.OpenStore()
	if err != nil {
		return nil, nil, err
	}

	gw := ledger.NewGateway(store,
		ledger.WithIdentity(c.IdentitySource(store)),
		ledger.WithApprover(approver),
		ledger.WithTimeout(timeout),
		ledger.WithLogger(logger),
	)
	t := tracker.New(gw,
		tracker.WithLogger(logger),
		tracker.WithNotifier(printPending),
	)
	return gw, t, nil
}

func printPending(s tracker.Status) {
	fmt.Fprintln(os.Stderr, color.New(color.Faint).Sprint(s.Message))
}

// printStatus shows a notification the way the tracker classified it.
func printStatus(s tracker.Status) {
	switch s.Level {
	case tracker.LevelSuccess:
		color.Green("✓ %s", s.Message)
	case tracker.LevelError:
		color.Red("✗ %s", s.Message)
	case tracker.LevelPending:
		printPending(s)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "approve writes without prompting")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "ledger backend: charm, badger, sqlite, memory")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory for local backends")
}
