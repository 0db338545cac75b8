package main

import (
	"fmt"
	"os"

	"github.com/danmuck/marketwire/internal/observability"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "itchctl: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "itchctl",
		Short: "Market data session and codec tool",
		Long: `itchctl speaks the line framed FX market data session protocol and
decodes NASDAQ ITCH 5.0 and QBBO 2.1 capture files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			observability.InitLogger("itchctl")
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to itchctl.toml")

	root.AddCommand(
		connectCmd(&configPath),
		serveCmd(&configPath),
		dumpCmd(),
		initCmd(),
		versionCmd(),
	)
	return root
}
