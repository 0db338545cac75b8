package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/marketwire/internal/config"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var (
		kind     string
		force    bool
		validate bool
	)

	cmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write or validate a starter itchctl.toml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "itchctl.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if validate {
				cfg, err := loadConfig(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: addr=%s pairs=%s orders=%d\n",
					path, cfg.Addr, strings.Join(cfg.CurrencyPairs, ","), len(cfg.Orders))
				return nil
			}
			if err := config.WriteTemplate(path, kind, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s config to %s\n", kind, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "feed", "template kind: "+strings.Join(config.Kinds, "|"))
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&validate, "validate", false, "load PATH and report what it configures")

	return cmd
}
