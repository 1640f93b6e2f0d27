// Package cmd assembles the piso command tree. The device daemon, the
// simulator and the headless pool operations all hang off one cobra root
// and share the config and logger setup done here.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dogi/pISO/internal/config"
	"github.com/dogi/pISO/internal/logger"
	"github.com/dogi/pISO/internal/version"
)

var (
	cfgFile  string
	logLevel string

	// cfg is loaded once in the root PersistentPreRunE and read by every
	// subcommand.
	cfg *config.Config
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
)

var rootCmd = &cobra.Command{
	Use:   version.AppName,
	Short: "Virtual USB drives carved from an LVM thin pool",
	Long: `piso turns an LVM thin pool into a rack of virtual USB drives.

On the device it drives the OLED menu and the buttons and exports every
drive to the USB host. The same registry is also reachable headless
(ls, add, rm, status) and as a terminal simulator (sim).`,
	Version:       version.AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		logger.Setup(c.LogLevel)
		cfg = c
		return nil
	},
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: /etc/piso/piso.yaml, ./piso.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log verbosity: trace, debug, info, warn, error")
}
