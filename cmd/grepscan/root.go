package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/grepscan/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for grepscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grepscan",
		Short: "Passive detector for sensitive data in HTTP responses",
		Long: `grepscan runs grep detectors over HTTP responses that were already fetched
by a crawler, a proxy, or curl -i. Each response is a raw HTTP/1.x dump.

Built-in detectors:
  credit_cards  Luhn-valid payment card numbers in response text
  oracle        pages generated by Oracle Application Server
  symfony       Symfony forms without a CSRF token

Findings are deduplicated per detector and stored in a local database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// newLogger creates the logger for a command. Logs go to the command's
// error stream, as JSON when --log-json is set.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLogs, _ = cmd.Root().PersistentFlags().GetBool("log-json")
	}
	if jsonLogs {
		return log.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
